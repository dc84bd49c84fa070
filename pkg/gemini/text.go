package gemini

import (
	"context"
	"encoding/json"
	"strings"

	"google.golang.org/genai"

	"github.com/mano-habib/gimanoui/pkg/core"
	"github.com/mano-habib/gimanoui/pkg/core/codec"
	"github.com/mano-habib/gimanoui/pkg/core/types"
)

const proofreaderInstruction = `ROLE: Strict Proofreader & Diacritics Expert.
TASK: Correct spelling/grammar errors ONLY. Do NOT change words, style, or meaning.
RULES:
1. **Preserve Content**: Keep the user's original words and sentence structure exactly as is, unless there is a clear spelling mistake.
2. **No Rewriting**: Do NOT paraphrase. Do NOT add new text.
3. **Egyptian Arabic**: If the text is in Egyptian Arabic, add necessary diacritics (Tashkeel) to ensure correct pronunciation in the Egyptian dialect.
4. **Accuracy**: Only fix what is broken. If the text is correct, return it exactly as input.`

// CorrectText proofreads dictated text without rewriting it. On failure
// the original text is returned so dictation never loses input.
func (c *Client) CorrectText(ctx context.Context, text, language string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	temp := float32(0.1)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(proofreaderInstruction)}},
		Temperature:       &temp,
	}
	contents := []*genai.Content{{Parts: []*genai.Part{genai.NewPartFromText(text)}}}

	resp, err := c.genai.Models.GenerateContent(ctx, textModel, contents, cfg)
	if err != nil {
		return text, c.classify(err)
	}
	if corrected := strings.TrimSpace(resp.Text()); corrected != "" {
		return corrected, nil
	}
	return text, nil
}

// PersonaText generates conversational text in a named voice's persona,
// used to script speech for a specific catalog voice.
func (c *Client) PersonaText(ctx context.Context, prompt, personaName string) (string, error) {
	temp := float32(0.8)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{
			genai.NewPartFromText("ROLE: You are " + personaName + ". TONE: Natural, conversational."),
		}},
		Temperature: &temp,
	}
	contents := []*genai.Content{{Parts: []*genai.Part{genai.NewPartFromText(prompt)}}}

	resp, err := c.genai.Models.GenerateContent(ctx, textModel, contents, cfg)
	if err != nil {
		return "", c.classify(err)
	}
	return resp.Text(), nil
}

type scriptLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// GeneratePodcastSpeech turns a topic into a multi-speaker dialogue and
// synthesizes each line with its speaker's voice, concatenated into one
// clip. onStatus, if non-nil, receives progress strings.
func (c *Client) GeneratePodcastSpeech(ctx context.Context, topic string, speakers []types.SpeakerVoice, style string, onStatus func(string)) (*codec.AudioBuffer, error) {
	if len(speakers) == 0 {
		return nil, core.NewUnsupportedInputError("no speakers configured")
	}

	names := make([]string, len(speakers))
	for i, s := range speakers {
		names[i] = `"` + s.Speaker + `"`
	}
	prompt := `Convert this into a dialogue JSON [{speaker, text}].
Topic: ` + topic + `. Speakers: ` + strings.Join(names, ", ") + `. Style: ` + style + `.
Detect language from topic (Egyptian Arabic, English, etc).`

	if onStatus != nil {
		onStatus("Writing script...")
	}
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	contents := []*genai.Content{{Parts: []*genai.Part{genai.NewPartFromText(prompt)}}}

	var resp *genai.GenerateContentResponse
	err := c.retry(ctx, func() error {
		var err error
		resp, err = c.genai.Models.GenerateContent(ctx, textModel, contents, cfg)
		return err
	})
	if err != nil {
		return nil, c.classify(err)
	}

	var script []scriptLine
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &script); err != nil {
		return nil, c.classify(err)
	}

	var pcm []byte
	for _, line := range script {
		voice := speakers[0]
		for _, s := range speakers {
			if strings.TrimSpace(s.Speaker) == strings.TrimSpace(line.Speaker) {
				voice = s
				break
			}
		}
		if onStatus != nil {
			onStatus("Recording: " + line.Speaker + "...")
		}
		part, err := c.SynthesizePCM(ctx, line.Text, voice.VoiceAPIName)
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
