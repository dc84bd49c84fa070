package gemini

import (
	"context"
	"io"

	"google.golang.org/genai"

	"github.com/mano-habib/gimanoui/pkg/core/chat"
	"github.com/mano-habib/gimanoui/pkg/core/types"
)

// systemInstruction defines the companion's identity and the generation
// directive grammar the client recognizes in its replies.
const systemInstruction = `IDENTITY: You are **Gimanoui** (جمانوي), a highly intelligent, precise, and fast AI assistant.
DEVELOPER: Developed by **Mano Habib**.

CORE BEHAVIOR:
1. **Accuracy & Speed**: Provide direct, correct, and high-quality answers immediately.
2. **Connectivity**: You are always connected to the internet.
3. **Music & Video**: If the user asks for a song or video, you MUST use the Google Search tool to find the **official** YouTube link and provide it in your response. Ensure the link is valid (e.g., https://www.youtube.com/watch?v=...).

LANGUAGE:
   - **EGYPTIAN ARABIC (Masri)**: If the user speaks Arabic, reply in authentic Egyptian Colloquial Arabic.
   - **Other Languages**: Reply in the exact same language/dialect as the user.

CAPABILITIES:
- **Voice Interaction**: Speak if asked.
- **Image Generation**: If asked to "draw" or "generate image", output [GENERATE_IMAGE: <prompt>].
- **GIF/Animation**: If asked for a "GIF", "Animation", or "Moving Image", output [GENERATE_GIF: <prompt>].
- **Search**: Use Google Search for news, facts, weather, and media links.

TONE: Smart, helpful, friendly, and efficient.`

type chunkResult struct {
	chunk chat.Chunk
	err   error
}

// chunkStream adapts the SDK's pull iterator to chat.ChunkStream.
type chunkStream struct {
	ch     chan chunkResult
	cancel context.CancelFunc
}

func (s *chunkStream) Next() (chat.Chunk, error) {
	res, ok := <-s.ch
	if !ok {
		return chat.Chunk{}, io.EOF
	}
	return res.chunk, res.err
}

func (s *chunkStream) Close() error {
	s.cancel()
	return nil
}

// StreamChat opens a reply stream for the conversation so far plus the
// new user turn. Text deltas and grounding sources arrive as chunks; the
// stream ends with io.EOF.
func (c *Client) StreamChat(ctx context.Context, history []types.ChatMessage, msg types.ChatMessage) (chat.ChunkStream, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		contents = append(contents, messageContent(m))
	}
	contents = append(contents, messageContent(msg))

	temp := float32(0.5)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(systemInstruction)}},
		Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		Temperature:       &temp,
	}

	ctx, cancel := context.WithCancel(ctx)
	stream := &chunkStream{ch: make(chan chunkResult, 32), cancel: cancel}

	go func() {
		defer close(stream.ch)
		for resp, err := range c.genai.Models.GenerateContentStream(ctx, textModel, contents, cfg) {
			if err != nil {
				stream.push(ctx, chunkResult{err: c.classify(err)})
				return
			}
			if len(resp.Candidates) == 0 {
				continue
			}
			cand := resp.Candidates[0]
			var chunk chat.Chunk
			if cand.Content != nil {
				for _, p := range cand.Content.Parts {
					chunk.Text += p.Text
				}
			}
			if cand.GroundingMetadata != nil {
				for _, gc := range cand.GroundingMetadata.GroundingChunks {
					if gc.Web != nil && gc.Web.URI != "" && gc.Web.Title != "" {
						chunk.Sources = append(chunk.Sources, types.GroundingSource{
							URI:   gc.Web.URI,
							Title: gc.Web.Title,
						})
					}
				}
			}
			if chunk.Text == "" && len(chunk.Sources) == 0 {
				continue
			}
			if !stream.push(ctx, chunkResult{chunk: chunk}) {
				return
			}
		}
	}()
	return stream, nil
}

func (s *chunkStream) push(ctx context.Context, res chunkResult) bool {
	select {
	case s.ch <- res:
		return true
	case <-ctx.Done():
		return false
	}
}

func messageContent(m types.ChatMessage) *genai.Content {
	role := "user"
	if m.Role == types.RoleModel {
		role = "model"
	}
	var parts []*genai.Part
	for _, item := range m.Media {
		if len(item.Data) > 0 {
			parts = append(parts, genai.NewPartFromBytes(item.Data, item.MIMEType))
		}
	}
	if m.Text != "" || len(parts) == 0 {
		parts = append(parts, genai.NewPartFromText(m.Text))
	}
	return &genai.Content{Role: role, Parts: parts}
}
