// Package speech converts a growing token stream into discrete, speakable
// sentence fragments so synthesis can run ahead of the full response.
package speech

import "strings"

// boundary characters that end a speakable fragment. A run of consecutive
// boundary characters belongs to the fragment it terminates.
const boundaryChars = ".!?؟\n"

// Segmenter accumulates text deltas and emits completed sentence
// fragments in order. Concatenating every emitted fragment (including the
// Flush remainder) reconstructs the input exactly; cleaning for speech is
// the caller's concern (see CleanForSpeech).
type Segmenter struct {
	buf strings.Builder
}

// Add appends a delta to the unconsumed tail and returns every fragment
// completed by it, in order. A fragment runs up to and including its
// terminating boundary run.
func (s *Segmenter) Add(delta string) []string {
	if delta == "" {
		return nil
	}
	s.buf.WriteString(delta)
	text := s.buf.String()

	var out []string
	start := 0
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		if !isBoundary(runes[i]) {
			i++
			continue
		}
		// Extend over the whole boundary run.
		for i < len(runes) && isBoundary(runes[i]) {
			i++
		}
		out = append(out, string(runes[start:i]))
		start = i
	}

	if len(out) == 0 {
		return nil
	}
	s.buf.Reset()
	s.buf.WriteString(string(runes[start:]))
	return out
}

// Flush returns the text that never reached a boundary, emptying the
// segmenter. Call when the stream ends.
func (s *Segmenter) Flush() string {
	out := s.buf.String()
	s.buf.Reset()
	return out
}

// Pending returns the size of the unconsumed tail.
func (s *Segmenter) Pending() int { return s.buf.Len() }

func isBoundary(r rune) bool {
	return strings.ContainsRune(boundaryChars, r)
}
