package gemini

import (
	"context"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"github.com/mano-habib/gimanoui/pkg/core"
	"github.com/mano-habib/gimanoui/pkg/core/codec"
)

// ttsSampleRate is the PCM rate of the synthesis backend's output.
const ttsSampleRate = 24000

var punctuationOnly = regexp.MustCompile(`^[.,!?;:"'()\[\]{}؟]+$`)

// Synthesize turns text into one playable clip. Long text is split into
// sentence chunks no larger than maxTTSChunkLen and synthesized
// sequentially; fragments the backend rejects as unspeakable are skipped
// rather than failing the whole clip. A nil buffer with a nil error means
// there was nothing speakable.
//
// While the quota cooldown is active no request is attempted at all.
func (c *Client) Synthesize(ctx context.Context, text, voiceName, language string) (*codec.AudioBuffer, error) {
	if c.gate.Active() {
		return nil, core.NewQuotaError("synthesis suppressed during quota cooldown")
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var pcm []byte
	for _, chunk := range splitTTSChunks(text) {
		part, err := c.synthChunk(ctx, strings.TrimSpace(chunk), voiceName)
		if err != nil {
			return nil, err
		}
		pcm = append(pcm, part...)
	}
	if len(pcm) == 0 {
		return nil, nil
	}
	return codec.DecodePCM16(pcm, ttsSampleRate, 1), nil
}

// SynthesizePCM is Synthesize without the decode step, for callers that
// concatenate raw payloads.
func (c *Client) SynthesizePCM(ctx context.Context, text, voiceName string) ([]byte, error) {
	if c.gate.Active() {
		return nil, core.NewQuotaError("synthesis suppressed during quota cooldown")
	}
	var pcm []byte
	for _, chunk := range splitTTSChunks(text) {
		part, err := c.synthChunk(ctx, strings.TrimSpace(chunk), voiceName)
		if err != nil {
			return nil, err
		}
		pcm = append(pcm, part...)
	}
	return pcm, nil
}

// synthChunk synthesizes one chunk with bounded retries. Unsupported
// input is a skip, not a failure.
func (c *Client) synthChunk(ctx context.Context, text, voiceName string) ([]byte, error) {
	if text == "" || punctuationOnly.MatchString(text) {
		return nil, nil
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voiceName},
			},
		},
	}
	contents := []*genai.Content{{Parts: []*genai.Part{genai.NewPartFromText(text)}}}

	var data []byte
	err := c.retry(ctx, func() error {
		resp, err := c.genai.Models.GenerateContent(ctx, ttsModel, contents, cfg)
		if err != nil {
			if isUnsupportedInput(err) {
				data = nil
				return nil
			}
			return err
		}
		data = firstInlineData(resp)
		return nil
	})
	if err != nil {
		return nil, c.classify(err)
	}
	return data, nil
}

// splitTTSChunks splits text on sentence boundaries and accumulates the
// pieces into chunks no longer than maxTTSChunkLen.
func splitTTSChunks(text string) []string {
	var segments []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if !isSentenceEnd(runes[i]) {
			continue
		}
		for i+1 < len(runes) && isSentenceEnd(runes[i+1]) {
			i++
		}
		segments = append(segments, string(runes[start:i+1]))
		start = i + 1
	}
	if start < len(runes) {
		segments = append(segments, string(runes[start:]))
	}

	var chunks []string
	var current strings.Builder
	for _, seg := range segments {
		if current.Len()+len(seg) > maxTTSChunkLen && strings.TrimSpace(current.String()) != "" {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(seg)
	}
	if strings.TrimSpace(current.String()) != "" {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '\n'
}

func firstInlineData(resp *genai.GenerateContentResponse) []byte {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && len(p.InlineData.Data) > 0 {
				return p.InlineData.Data
			}
		}
	}
	return nil
}
