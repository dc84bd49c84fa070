// Package store persists the small amount of local state the companion
// keeps between runs: the user's selected voice and the conversation
// history.
package store

import (
	"context"

	"github.com/mano-habib/gimanoui/pkg/core/types"
)

// Store is the persistence boundary. The in-memory implementation backs
// runs without a database; Postgres backs everything else.
type Store interface {
	// VoiceID returns the last selected voice identifier, or "" when the
	// user has not picked one yet.
	VoiceID(ctx context.Context) (string, error)

	// SetVoiceID records the selection. Called on every voice change.
	SetVoiceID(ctx context.Context, id string) error

	// AppendMessages adds messages to the stored conversation in order.
	AppendMessages(ctx context.Context, msgs []types.ChatMessage) error

	// LoadHistory returns the most recent limit messages in chronological
	// order. limit <= 0 loads everything.
	LoadHistory(ctx context.Context, limit int) ([]types.ChatMessage, error)

	// ClearHistory deletes the stored conversation.
	ClearHistory(ctx context.Context) error

	// Close releases the store's resources.
	Close()
}
