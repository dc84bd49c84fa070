package gemini

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/mano-habib/gimanoui/pkg/core"
	"github.com/mano-habib/gimanoui/pkg/core/live"
)

// SearchYouTubeVideoID finds the official YouTube video for query using
// search grounding and returns its 11-character identifier. Grounding
// chunk URLs are preferred over the model's prose.
func (c *Client) SearchYouTubeVideoID(ctx context.Context, query string) (string, error) {
	temp := float32(0.1)
	cfg := &genai.GenerateContentConfig{
		Tools:       []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		Temperature: &temp,
	}
	prompt := `TASK: Find the OFFICIAL YouTube video link for: "` + query + `".
RULES:
1. Use Google Search to find the real link.
2. Return ONLY the full valid YouTube URL (e.g., https://www.youtube.com/watch?v=...).
3. Do not invent links.`
	contents := []*genai.Content{{Parts: []*genai.Part{genai.NewPartFromText(prompt)}}}

	resp, err := c.genai.Models.GenerateContent(ctx, textModel, contents, cfg)
	if err != nil {
		return "", c.classify(err)
	}

	url := strings.TrimSpace(resp.Text())
	for _, cand := range resp.Candidates {
		if cand.GroundingMetadata == nil {
			continue
		}
		for _, gc := range cand.GroundingMetadata.GroundingChunks {
			if gc.Web == nil {
				continue
			}
			if strings.Contains(gc.Web.URI, "youtube.com") || strings.Contains(gc.Web.URI, "youtu.be") {
				url = gc.Web.URI
				break
			}
		}
	}

	if id, ok := live.YouTubeID(url); ok {
		return id, nil
	}
	return "", core.NewAPIError("no YouTube video found for query")
}
