// Package directive recognizes the generation tokens the model embeds in
// free-form text. The bracketed grammar is an external protocol constraint
// and must be matched verbatim; keeping the parsing here, behind one
// extraction function, is what keeps the rest of the code free of inline
// string matching.
package directive

import "regexp"

// Kind is the type of side-effecting generation a directive requests.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Directive is one recognized generation token.
type Directive struct {
	Kind   Kind
	Prompt string
	// Raw is the exact matched token, for stripping from display text.
	Raw string
}

var (
	imagePattern = regexp.MustCompile(`\[GENERATE_IMAGE:\s*([^\]]*)\]`)
	videoPattern = regexp.MustCompile(`\[GENERATE_GIF:\s*([^\]]*)\]`)
)

// Extract returns the first recognized directive in text. When both kinds
// appear, the video token is checked first; the original client's handling
// order between the two is accidental, so first-checked-wins is as good a
// policy as any.
func Extract(text string) (Directive, bool) {
	if m := videoPattern.FindStringSubmatch(text); m != nil {
		return Directive{Kind: KindVideo, Prompt: trim(m[1]), Raw: m[0]}, true
	}
	if m := imagePattern.FindStringSubmatch(text); m != nil {
		return Directive{Kind: KindImage, Prompt: trim(m[1]), Raw: m[0]}, true
	}
	return Directive{}, false
}

// Contains reports whether text carries any directive token. Cheaper than
// Extract when only the presence matters (for halting speech).
func Contains(text string) bool {
	return videoPattern.MatchString(text) || imagePattern.MatchString(text)
}

// Strip removes every directive token from text, leaving the surrounding
// prose for display.
func Strip(text string) string {
	text = videoPattern.ReplaceAllString(text, "")
	return imagePattern.ReplaceAllString(text, "")
}

func trim(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}
