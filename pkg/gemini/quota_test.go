package gemini

import (
	"testing"
	"time"
)

func TestQuotaGate_WindowOpensAndExpires(t *testing.T) {
	now := time.Unix(1000, 0)
	gate := NewQuotaGate(30 * time.Second)
	gate.SetClock(func() time.Time { return now })

	if gate.Active() {
		t.Fatal("fresh gate is active")
	}

	gate.Trip()
	if !gate.Active() {
		t.Fatal("gate not active after Trip")
	}

	now = now.Add(29 * time.Second)
	if !gate.Active() {
		t.Error("gate expired before the cooldown elapsed")
	}

	now = now.Add(2 * time.Second)
	if gate.Active() {
		t.Error("gate still active after the cooldown elapsed")
	}
}

func TestQuotaGate_TripRestartsWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	gate := NewQuotaGate(30 * time.Second)
	gate.SetClock(func() time.Time { return now })

	gate.Trip()
	now = now.Add(20 * time.Second)
	gate.Trip()
	now = now.Add(20 * time.Second)
	if !gate.Active() {
		t.Error("second Trip did not restart the window")
	}
}

func TestQuotaGate_Clear(t *testing.T) {
	gate := NewQuotaGate(time.Minute)
	gate.Trip()
	gate.Clear()
	if gate.Active() {
		t.Error("gate active after Clear")
	}
}
