package speech

import (
	"regexp"
	"strings"
)

var (
	urlPattern        = regexp.MustCompile(`(?:https?://|www\.)\S+`)
	barePathPattern   = regexp.MustCompile(`[a-zA-Z0-9-]+\.(?:com|org|net|io)/\S*`)
	mdLinkPattern     = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	mdMarkupPattern   = regexp.MustCompile("[*_~`#]")
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// CleanForSpeech strips text of everything a TTS voice should not read
// aloud: URLs, bare domain paths, markdown link syntax (keeping the
// label), and markdown emphasis/heading punctuation. Whitespace is
// collapsed. An empty result means the fragment is not speakable.
func CleanForSpeech(text string) string {
	if text == "" {
		return ""
	}
	cleaned := urlPattern.ReplaceAllString(text, "")
	cleaned = barePathPattern.ReplaceAllString(cleaned, "")
	cleaned = mdLinkPattern.ReplaceAllString(cleaned, "$1")
	cleaned = mdMarkupPattern.ReplaceAllString(cleaned, "")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
