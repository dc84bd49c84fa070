package live

import (
	"context"
	"sync/atomic"
	"time"
)

// framer transmits video frames on a fixed cadence with drop-if-busy
// backpressure: a tick is skipped entirely while the previous frame's
// transmission is still in flight. Frames are never queued.
type framer struct {
	source   FrameSource
	interval time.Duration
	send     func(jpeg []byte) error

	inFlight atomic.Bool
	cancel   context.CancelFunc
	done     chan struct{}

	// dropped counts skipped ticks, for metrics.
	dropped atomic.Int64
}

func newFramer(source FrameSource, interval time.Duration, send func([]byte) error) *framer {
	return &framer{source: source, interval: interval, send: send}
}

func (f *framer) start(ctx context.Context) {
	ctx, f.cancel = context.WithCancel(ctx)
	f.done = make(chan struct{})
	go f.run(ctx)
}

func (f *framer) stop() {
	if f.cancel == nil {
		return
	}
	f.cancel()
	<-f.done
	f.cancel = nil
}

func (f *framer) run(ctx context.Context) {
	defer close(f.done)
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !f.inFlight.CompareAndSwap(false, true) {
				f.dropped.Add(1)
				continue
			}
			go func() {
				defer f.inFlight.Store(false)
				jpeg, err := f.source.CaptureJPEG(ctx)
				if err != nil || len(jpeg) == 0 {
					return
				}
				_ = f.send(jpeg)
			}()
		}
	}
}
