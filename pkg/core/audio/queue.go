package audio

import (
	"context"
	"sync"

	"github.com/mano-habib/gimanoui/pkg/core/codec"
)

// Player renders one decoded clip to the output device. Play blocks until
// the clip finishes or the context is canceled; Halt cuts off whatever is
// currently sounding.
type Player interface {
	Play(ctx context.Context, buf *codec.AudioBuffer) error
	Halt()
}

// SynthFunc produces one clip. A nil buffer with a nil error means "nothing
// to play" (for example an empty or unsupported fragment).
type SynthFunc func(ctx context.Context) (*codec.AudioBuffer, error)

type queueEntry struct {
	done  chan struct{}
	buf   *codec.AudioBuffer
	err   error
	token Token
}

// Queue serializes potentially-parallel synthesis results into strictly
// ordered, non-overlapping playback. Synthesis starts as soon as a clip is
// enqueued; playback order is a function of enqueue order only, regardless
// of completion order. A failed synthesis is a no-op clip; failures never
// abort the queue.
type Queue struct {
	player Player
	epoch  *Epoch

	mu       sync.Mutex
	entries  []*queueEntry
	draining bool

	ctx    context.Context
	cancel context.CancelFunc

	// onIdle, if set, is called when the drain loop empties the queue.
	onIdle func()
}

// NewQueue creates a playback queue over player, tagging entries with
// tokens from epoch.
func NewQueue(player Player, epoch *Epoch) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{player: player, epoch: epoch, ctx: ctx, cancel: cancel}
}

// SetOnIdle registers a callback invoked whenever the queue drains empty.
func (q *Queue) SetOnIdle(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onIdle = fn
}

// Enqueue appends a deferred clip to the tail of the queue and starts its
// synthesis immediately. It does not block. The clip is tagged with the
// current epoch token and will be discarded unplayed if the epoch advances
// before it reaches the head.
func (q *Queue) Enqueue(synth SynthFunc) {
	entry := &queueEntry{done: make(chan struct{}), token: q.epoch.Current()}

	go func() {
		buf, err := synth(q.ctx)
		entry.buf, entry.err = buf, err
		close(entry.done)
	}()

	q.mu.Lock()
	q.entries = append(q.entries, entry)
	start := !q.draining
	if start {
		q.draining = true
	}
	q.mu.Unlock()

	if start {
		go q.drain()
	}
}

// drain plays entries head-first until the queue empties. It runs in at
// most one goroutine at a time.
func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.entries) == 0 {
			q.draining = false
			idle := q.onIdle
			q.mu.Unlock()
			if idle != nil {
				idle()
			}
			return
		}
		head := q.entries[0]
		q.mu.Unlock()

		select {
		case <-head.done:
		case <-q.ctx.Done():
			return
		}

		q.mu.Lock()
		// Stop may have emptied the queue while we waited on the head.
		if len(q.entries) == 0 || q.entries[0] != head {
			q.mu.Unlock()
			continue
		}
		q.entries = q.entries[1:]
		q.mu.Unlock()

		if head.err != nil || head.buf == nil {
			continue
		}
		if head.token != q.epoch.Current() {
			// Stale epoch: superseded by an interrupt, never played.
			continue
		}
		q.player.Halt()
		_ = q.player.Play(q.ctx, head.buf)
	}
}

// Stop advances the epoch (invalidating all queued and in-flight entries),
// halts the currently sounding clip, and empties the queue. Safe to call
// at any time, from any goroutine.
func (q *Queue) Stop() {
	q.epoch.Advance()

	q.mu.Lock()
	q.entries = nil
	q.mu.Unlock()

	q.player.Halt()
}

// Close releases the queue's resources. Pending synthesis contexts are
// canceled.
func (q *Queue) Close() {
	q.Stop()
	q.cancel()
}

// Len returns the number of queued (unplayed) entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
