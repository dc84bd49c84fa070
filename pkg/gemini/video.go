package gemini

import (
	"context"
	"time"

	"google.golang.org/genai"

	"github.com/mano-habib/gimanoui/pkg/core"
)

// videoPollInterval is how often a pending generation operation is polled.
const videoPollInterval = 5 * time.Second

// GenerateVideo produces a short looping clip for prompt and returns its
// playable URI. The returned URI carries the API key so it can be fetched
// directly.
func (c *Client) GenerateVideo(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		Resolution:     "720p",
		AspectRatio:    "1:1",
	}
	op, err := c.genai.Models.GenerateVideos(ctx, videoModel, prompt, nil, cfg)
	if err != nil {
		return "", c.classify(err)
	}

	for !op.Done {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(videoPollInterval):
		}
		op, err = c.genai.Operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return "", c.classify(err)
		}
	}

	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 ||
		op.Response.GeneratedVideos[0].Video == nil ||
		op.Response.GeneratedVideos[0].Video.URI == "" {
		return "", core.NewAPIError("video operation finished with no video")
	}
	// The file endpoint requires the key as a query parameter.
	return op.Response.GeneratedVideos[0].Video.URI + "&key=" + c.apiKey, nil
}
