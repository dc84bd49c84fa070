package gemini

import (
	"context"

	"google.golang.org/genai"

	"github.com/mano-habib/gimanoui/pkg/core"
	"github.com/mano-habib/gimanoui/pkg/core/types"
)

// GenerateImage produces one image for prompt at the given aspect ratio.
func (c *Client) GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
	cfg := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{AspectRatio: aspectRatio},
	}
	contents := []*genai.Content{{Parts: []*genai.Part{genai.NewPartFromText(prompt)}}}

	resp, err := c.genai.Models.GenerateContent(ctx, imageModel, contents, cfg)
	if err != nil {
		return nil, c.classify(err)
	}
	data := firstInlineData(resp)
	if len(data) == 0 {
		return nil, core.NewAPIError("image model returned no image")
	}
	return data, nil
}

// EditImage applies prompt to one or more source images and returns the
// edited result.
func (c *Client) EditImage(ctx context.Context, sources []types.MediaItem, prompt string) ([]byte, error) {
	var parts []*genai.Part
	for _, src := range sources {
		if len(src.Data) > 0 {
			parts = append(parts, genai.NewPartFromBytes(src.Data, src.MIMEType))
		}
	}
	parts = append(parts, genai.NewPartFromText(prompt))
	contents := []*genai.Content{{Parts: parts}}

	resp, err := c.genai.Models.GenerateContent(ctx, imageModel, contents, nil)
	if err != nil {
		return nil, c.classify(err)
	}
	data := firstInlineData(resp)
	if len(data) == 0 {
		return nil, core.NewAPIError("image model returned no image")
	}
	return data, nil
}
