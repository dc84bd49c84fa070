package chat

import (
	"sync"
	"time"
)

// DefaultSilenceWindow is how long dictation waits after the last partial
// result before auto-stopping.
const DefaultSilenceWindow = 2 * time.Second

// SilenceTimer auto-stops a dictation session after a fixed window of
// silence, measured from the last received partial result. Every Touch
// restarts the window.
//
// Speech recognition itself runs in the host front end; this type only
// supplies the auto-stop timing a recognizer integration calls Touch on.
type SilenceTimer struct {
	window   time.Duration
	onExpire func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewSilenceTimer creates a timer that calls onExpire once the window
// elapses with no Touch. The window does not start until the first Touch.
func NewSilenceTimer(window time.Duration, onExpire func()) *SilenceTimer {
	if window <= 0 {
		window = DefaultSilenceWindow
	}
	return &SilenceTimer{window: window, onExpire: onExpire}
}

// Touch restarts the silence window. Called on every partial result.
func (t *SilenceTimer) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.window, t.expire)
}

// Stop cancels the timer. Safe to call multiply; onExpire will not fire
// after Stop returns.
func (t *SilenceTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *SilenceTimer) expire() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.timer = nil
	fn := t.onExpire
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}
