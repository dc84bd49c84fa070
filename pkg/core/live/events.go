package live

import (
	"github.com/mano-habib/gimanoui/pkg/core/types"
)

// Event is the interface for all live session events.
type Event interface {
	// EventType returns the event type string for serialization.
	EventType() string
}

// StateChangedEvent is emitted when the session state changes.
type StateChangedEvent struct {
	From SessionState `json:"from"`
	To   SessionState `json:"to"`
}

func (e *StateChangedEvent) EventType() string { return "live.state_changed" }

// TranscriptEvent carries the current text of the open turn after a delta
// was folded in.
type TranscriptEvent struct {
	Role types.Role `json:"role"`
	Text string     `json:"text"`
}

func (e *TranscriptEvent) EventType() string { return "live.transcript" }

// TurnCompleteEvent is emitted when the server signals end of a model turn.
type TurnCompleteEvent struct{}

func (e *TurnCompleteEvent) EventType() string { return "live.turn_complete" }

// InterruptedEvent is emitted when the server signals barge-in; all
// scheduled audio has been discarded by the time it is delivered.
type InterruptedEvent struct{}

func (e *InterruptedEvent) EventType() string { return "live.interrupted" }

// LinkEvent is emitted once per distinct URL seen in model text.
type LinkEvent struct {
	URL string `json:"url"`
}

func (e *LinkEvent) EventType() string { return "live.link" }

// EmbedEvent surfaces a recognized video-hosting link as an embeddable
// preview, replacing any previous one.
type EmbedEvent struct {
	VideoID string `json:"video_id"`
}

func (e *EmbedEvent) EventType() string { return "live.embed" }

// GeneratedMediaEvent is emitted when a directive's generation completes
// and its result has been attached to the transcript.
type GeneratedMediaEvent struct {
	MIMEType string `json:"mime_type"`
	URI      string `json:"uri,omitempty"`
}

func (e *GeneratedMediaEvent) EventType() string { return "live.generated_media" }

// LevelEvent carries the playback amplitude for visualization.
type LevelEvent struct {
	RMS float64 `json:"rms"`
}

func (e *LevelEvent) EventType() string { return "live.level" }

// ErrorEvent carries a session failure and its localized user text.
type ErrorEvent struct {
	Err  error  `json:"-"`
	Text string `json:"text"`
}

func (e *ErrorEvent) EventType() string { return "live.error" }

// ClosedEvent is emitted exactly once when the session ends, carrying the
// finalized transcript converted to chat-history messages.
type ClosedEvent struct {
	Messages []types.ChatMessage `json:"messages"`
}

func (e *ClosedEvent) EventType() string { return "live.closed" }
