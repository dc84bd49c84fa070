package live

import (
	"regexp"
	"sync"
)

var (
	linkPattern = regexp.MustCompile(`https?://[^\s)\]>"']+`)

	// youtubePatterns cover watch URLs, short links, shorts and embeds.
	// A video ID is exactly 11 URL-safe characters.
	youtubePatterns = []*regexp.Regexp{
		regexp.MustCompile(`youtube\.com/watch\?(?:[^\s#&]*&)*v=([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/shorts/([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]{11})`),
	}
)

// ExtractLinks returns every URL in text, in order of appearance.
func ExtractLinks(text string) []string {
	return linkPattern.FindAllString(text, -1)
}

// YouTubeID extracts the 11-character video identifier from a recognized
// video-hosting URL.
func YouTubeID(url string) (string, bool) {
	for _, p := range youtubePatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// linkTracker accumulates distinct URLs from the model's text and the most
// recent embeddable video. Scanning is resumable: the model turn's text
// only grows, so each scan starts from scratch over the full text and the
// seen set suppresses repeats.
type linkTracker struct {
	mu      sync.Mutex
	seen    map[string]bool
	links   []string
	embedID string
}

func newLinkTracker() *linkTracker {
	return &linkTracker{seen: make(map[string]bool)}
}

// scan folds the URLs in text into the tracker and returns the newly seen
// links plus the embed ID if a new video link replaced the previous one.
func (lt *linkTracker) scan(text string) (fresh []string, embedID string) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	for _, url := range ExtractLinks(text) {
		if lt.seen[url] {
			continue
		}
		lt.seen[url] = true
		lt.links = append(lt.links, url)
		fresh = append(fresh, url)
		if id, ok := YouTubeID(url); ok {
			lt.embedID = id
			embedID = id
		}
	}
	return fresh, embedID
}

// Links returns every distinct URL seen so far, in first-seen order.
func (lt *linkTracker) Links() []string {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	return append([]string(nil), lt.links...)
}
