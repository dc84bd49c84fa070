package gemini

import (
	"strings"
	"testing"
)

func TestSplitTTSChunks_ReconstructsInput(t *testing.T) {
	inputs := []string{
		"One. Two! Three?",
		"No terminal punctuation at all",
		"Line one\nline two\n",
		strings.Repeat("A sentence of some length. ", 40),
	}
	for _, in := range inputs {
		chunks := splitTTSChunks(in)
		if got := strings.Join(chunks, ""); got != in {
			t.Errorf("chunks lose text:\n in:  %q\n out: %q", in, got)
		}
	}
}

func TestSplitTTSChunks_RespectsMaxLength(t *testing.T) {
	long := strings.Repeat("A fairly ordinary sentence to pad things out. ", 40)
	for i, chunk := range splitTTSChunks(long) {
		// A single oversized sentence may exceed the cap; these do not.
		if len(chunk) > maxTTSChunkLen+60 {
			t.Errorf("chunk %d is %d bytes", i, len(chunk))
		}
	}
	if n := len(splitTTSChunks(long)); n < 2 {
		t.Errorf("long input produced %d chunks, want several", n)
	}
}

func TestSplitTTSChunks_SingleShortInput(t *testing.T) {
	chunks := splitTTSChunks("Hello there.")
	if len(chunks) != 1 || chunks[0] != "Hello there." {
		t.Errorf("chunks = %q", chunks)
	}
}

func TestPunctuationOnlyPattern(t *testing.T) {
	for _, s := range []string{".", "?!", "...", "؟", `"'()`} {
		if !punctuationOnly.MatchString(s) {
			t.Errorf("%q not recognized as punctuation-only", s)
		}
	}
	for _, s := range []string{"a.", "hi", "؟x"} {
		if punctuationOnly.MatchString(s) {
			t.Errorf("%q wrongly recognized as punctuation-only", s)
		}
	}
}
