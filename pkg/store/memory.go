package store

import (
	"context"
	"sync"

	"github.com/mano-habib/gimanoui/pkg/core/types"
)

// Memory is a Store that lives and dies with the process. It is the
// default when no database is configured, and the fixture for tests.
type Memory struct {
	mu       sync.Mutex
	voiceID  string
	messages []types.ChatMessage
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) VoiceID(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voiceID, nil
}

func (m *Memory) SetVoiceID(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voiceID = id
	return nil
}

func (m *Memory) AppendMessages(ctx context.Context, msgs []types.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *Memory) LoadHistory(ctx context.Context, limit int) ([]types.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := 0
	if limit > 0 && len(m.messages) > limit {
		start = len(m.messages) - limit
	}
	out := make([]types.ChatMessage, len(m.messages)-start)
	copy(out, m.messages[start:])
	return out, nil
}

func (m *Memory) ClearHistory(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
	return nil
}

func (m *Memory) Close() {}
