package gemini

import (
	"sync"
	"time"
)

// DefaultQuotaCooldown is how long synthesis attempts stay suppressed
// after a quota failure.
const DefaultQuotaCooldown = 30 * time.Second

// QuotaGate is the process-wide quota cooldown. Any caller hitting a
// quota error trips it; while active, speech synthesis attempts are
// suppressed instead of sent. The clock is injectable for tests.
type QuotaGate struct {
	cooldown time.Duration
	now      func() time.Time

	mu    sync.Mutex
	until time.Time
}

// NewQuotaGate creates a cleared gate with the given cooldown.
func NewQuotaGate(cooldown time.Duration) *QuotaGate {
	if cooldown <= 0 {
		cooldown = DefaultQuotaCooldown
	}
	return &QuotaGate{cooldown: cooldown, now: time.Now}
}

// SetClock overrides the gate's time source.
func (g *QuotaGate) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// Trip starts (or restarts) the cooldown window.
func (g *QuotaGate) Trip() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.until = g.now().Add(g.cooldown)
}

// Active reports whether the cooldown window is still open.
func (g *QuotaGate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.now().Before(g.until)
}

// Clear ends the cooldown immediately.
func (g *QuotaGate) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.until = time.Time{}
}
