package gemini

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"github.com/mano-habib/gimanoui/pkg/core/types"
)

const analyzePrompt = `TASK: Perform an advanced, highly accurate linguistic analysis and transcription of this media.
OUTPUT FORMAT: JSON
{ "summary": "...", "transcript": [{ "speaker": "...", "text": "..." }] }`

// AnalyzeMedia transcribes and summarizes one inline media payload.
func (c *Client) AnalyzeMedia(ctx context.Context, data []byte, mimeType string) (*types.AnalysisResult, error) {
	temp := float32(0.2)
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temp,
	}
	contents := []*genai.Content{{Parts: []*genai.Part{
		genai.NewPartFromBytes(data, mimeType),
		genai.NewPartFromText(analyzePrompt),
	}}}

	resp, err := c.genai.Models.GenerateContent(ctx, textModel, contents, cfg)
	if err != nil {
		return nil, c.classify(err)
	}

	var result types.AnalysisResult
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &result); err != nil {
		return nil, c.classify(err)
	}
	return &result, nil
}

var (
	jsonFenceOpen  = regexp.MustCompile("(?i)^```json\\s*")
	jsonFenceBare  = regexp.MustCompile("^```\\s*")
	jsonFenceClose = regexp.MustCompile("\\s*```$")
)

// cleanJSON strips markdown code fences the model sometimes wraps JSON in.
func cleanJSON(text string) string {
	text = jsonFenceOpen.ReplaceAllString(text, "")
	text = jsonFenceBare.ReplaceAllString(text, "")
	text = jsonFenceClose.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
