package store

import (
	"context"
	"testing"

	"github.com/mano-habib/gimanoui/pkg/core/types"
)

func TestMemory_VoiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	id, err := m.VoiceID(ctx)
	if err != nil || id != "" {
		t.Fatalf("fresh store VoiceID = %q, %v", id, err)
	}

	if err := m.SetVoiceID(ctx, "layla_soft"); err != nil {
		t.Fatalf("SetVoiceID: %v", err)
	}
	id, err = m.VoiceID(ctx)
	if err != nil || id != "layla_soft" {
		t.Errorf("VoiceID = %q, %v", id, err)
	}
}

func TestMemory_HistoryOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	msgs := []types.ChatMessage{
		types.NewMessage(types.RoleUser, "one"),
		types.NewMessage(types.RoleModel, "two"),
		types.NewMessage(types.RoleUser, "three"),
	}
	if err := m.AppendMessages(ctx, msgs); err != nil {
		t.Fatalf("AppendMessages: %v", err)
	}

	all, err := m.LoadHistory(ctx, 0)
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(all) != 3 || all[0].Text != "one" || all[2].Text != "three" {
		t.Errorf("history = %+v", all)
	}

	recent, err := m.LoadHistory(ctx, 2)
	if err != nil {
		t.Fatalf("LoadHistory(2): %v", err)
	}
	if len(recent) != 2 || recent[0].Text != "two" || recent[1].Text != "three" {
		t.Errorf("recent = %+v", recent)
	}
}

func TestMemory_ClearHistory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.AppendMessages(ctx, []types.ChatMessage{types.NewMessage(types.RoleUser, "x")})

	if err := m.ClearHistory(ctx); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	got, _ := m.LoadHistory(ctx, 0)
	if len(got) != 0 {
		t.Errorf("history after clear = %+v", got)
	}
}
