// Package types defines the shared data model for the companion engine:
// chat messages, media attachments, grounding sources, and the records
// produced by media analysis.
package types

import "github.com/google/uuid"

// Role identifies the author of a chat message or transcript turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// MediaItem is one inline media attachment. Data holds the raw payload for
// images; for generated videos Data is empty and URI points at the playable
// resource.
type MediaItem struct {
	Data     []byte `json:"data,omitempty"`
	URI      string `json:"uri,omitempty"`
	MIMEType string `json:"mime_type"`
}

// GroundingSource is a web citation attached to a model response.
type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// ChatMessage is one exchange unit in the conversation. Text is appended to
// while a model reply streams and is frozen once the stream ends.
type ChatMessage struct {
	ID      string            `json:"id"`
	Role    Role              `json:"role"`
	Text    string            `json:"text"`
	Media   []MediaItem       `json:"media,omitempty"`
	Sources []GroundingSource `json:"sources,omitempty"`
}

// NewMessage creates a message with a fresh identifier.
func NewMessage(role Role, text string) ChatMessage {
	return ChatMessage{ID: uuid.NewString(), Role: role, Text: text}
}

// MergeSources unions src into the message's citation list, deduplicated by
// URI. Existing entries are never replaced.
func (m *ChatMessage) MergeSources(src []GroundingSource) {
	for _, s := range src {
		if s.URI == "" {
			continue
		}
		dup := false
		for _, have := range m.Sources {
			if have.URI == s.URI {
				dup = true
				break
			}
		}
		if !dup {
			m.Sources = append(m.Sources, s)
		}
	}
}

// TranscriptLine is one attributed line from media analysis.
type TranscriptLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// AnalysisResult is the structured output of a media-analysis request.
type AnalysisResult struct {
	Summary    string           `json:"summary"`
	Transcript []TranscriptLine `json:"transcript"`
}

// SpeakerVoice maps a named speaker in a multi-voice script to a backend
// voice.
type SpeakerVoice struct {
	Speaker      string `json:"speaker"`
	VoiceAPIName string `json:"voice_api_name"`
	Gender       string `json:"gender,omitempty"`
}

// ImageGenMode selects between creating a new image and editing uploads.
type ImageGenMode string

const (
	ImageGenCreate ImageGenMode = "create"
	ImageGenEdit   ImageGenMode = "edit"
)

// ImageGenState is the image-generation form state kept alive across
// navigation so switching views does not lose in-progress work. It is
// mutated only by the image-generation front end; it has no concurrency
// concerns.
type ImageGenState struct {
	Mode                ImageGenMode `json:"mode"`
	CreatePrompt        string       `json:"create_prompt"`
	CreateAspectRatio   string       `json:"create_aspect_ratio"`
	CreateGeneratedData []byte       `json:"create_generated_data,omitempty"`
	EditPrompt          string       `json:"edit_prompt"`
	EditSourceImages    []MediaItem  `json:"edit_source_images,omitempty"`
	EditGeneratedData   []byte       `json:"edit_generated_data,omitempty"`
	EditAspectRatio     string       `json:"edit_aspect_ratio"`
}
