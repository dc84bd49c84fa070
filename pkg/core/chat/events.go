package chat

import "github.com/mano-habib/gimanoui/pkg/core/types"

// Event is the interface for all chat controller events.
type Event interface {
	// EventType returns the event type string for serialization.
	EventType() string
}

// StateChangedEvent is emitted when the controller state changes.
type StateChangedEvent struct {
	From State `json:"from"`
	To   State `json:"to"`
}

func (e *StateChangedEvent) EventType() string { return "chat.state_changed" }

// MessageUpdatedEvent carries a snapshot of a message whose content changed,
// including the streaming reply as deltas accumulate.
type MessageUpdatedEvent struct {
	Message types.ChatMessage `json:"message"`
}

func (e *MessageUpdatedEvent) EventType() string { return "chat.message_updated" }

// TurnCompleteEvent is emitted when one full exchange finishes, successfully
// or not, and the controller is ready for the next send.
type TurnCompleteEvent struct{}

func (e *TurnCompleteEvent) EventType() string { return "chat.turn_complete" }

// ErrorEvent carries a failure and its user-facing localized text.
type ErrorEvent struct {
	Err  error  `json:"-"`
	Text string `json:"text"`
}

func (e *ErrorEvent) EventType() string { return "chat.error" }
