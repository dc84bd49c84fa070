package audio

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/mano-habib/gimanoui/pkg/core/codec"
)

// Sink receives raw PCM at playback rate. Implementations wrap the output
// device (or capture bytes in tests).
type Sink interface {
	Write(pcm []byte) error
}

// SchedulerConfig describes the stream fed to a Scheduler.
type SchedulerConfig struct {
	SampleRate     int
	Channels       int
	BytesPerSample int
	Tick           time.Duration
}

func (c *SchedulerConfig) applyDefaults() {
	if c.SampleRate <= 0 {
		c.SampleRate = 24000
	}
	if c.Channels <= 0 {
		c.Channels = 1
	}
	if c.BytesPerSample <= 0 {
		c.BytesPerSample = 2
	}
	if c.Tick <= 0 {
		c.Tick = 20 * time.Millisecond
	}
}

// Scheduler plays streamed PCM chunks back-to-back with no gaps or
// overlaps even though each chunk arrives asynchronously. Chunks append to
// a single contiguous buffer that a tick loop drains to the sink at
// realtime rate, which is the advancing-cursor guarantee: chunk N+1 always
// starts exactly where chunk N ended. Reset models the server's
// "interrupted" signal (barge-in): everything scheduled is discarded
// immediately.
type Scheduler struct {
	cfg  SchedulerConfig
	sink Sink

	mu         sync.Mutex
	buffer     bytes.Buffer
	playedB    int64
	generation uint64

	onLevel func(rms float64)

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a scheduler writing to sink and starts its tick
// loop.
func NewScheduler(cfg SchedulerConfig, sink Sink) *Scheduler {
	cfg.applyDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{cfg: cfg, sink: sink, ctx: ctx, cancel: cancel, done: make(chan struct{})}
	go s.run()
	return s
}

// SetLevelFunc registers a callback receiving the RMS level of each drained
// slice, the amplitude signal for visualizers.
func (s *Scheduler) SetLevelFunc(fn func(rms float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLevel = fn
}

// Schedule appends a decoded chunk after everything already scheduled.
func (s *Scheduler) Schedule(pcm []byte) {
	if len(pcm) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.buffer.Write(pcm)
}

// Reset discards all scheduled audio and rewinds the playback cursor to
// now. Called when the server signals an interruption.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer.Reset()
	s.playedB = 0
	s.generation++
}

// BufferedMs returns how much unplayed audio is scheduled, in
// milliseconds.
func (s *Scheduler) BufferedMs() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	bps := int64(s.cfg.SampleRate * s.cfg.Channels * s.cfg.BytesPerSample)
	if bps <= 0 {
		return 0
	}
	return int64(s.buffer.Len()) * 1000 / bps
}

// Close stops the tick loop. Idempotent.
func (s *Scheduler) Close() {
	s.cancel()
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.onTick()
		}
	}
}

func (s *Scheduler) onTick() {
	bps := int64(s.cfg.SampleRate * s.cfg.Channels * s.cfg.BytesPerSample)
	perTick := bps * int64(s.cfg.Tick) / int64(time.Second)
	if perTick <= 0 {
		perTick = 1
	}

	s.mu.Lock()
	var toPlay []byte
	if s.buffer.Len() > 0 {
		n := int(perTick)
		if n > s.buffer.Len() {
			n = s.buffer.Len()
		}
		toPlay = make([]byte, n)
		_, _ = io.ReadFull(&s.buffer, toPlay)
		s.playedB += int64(n)
	}
	level := s.onLevel
	s.mu.Unlock()

	if len(toPlay) == 0 {
		return
	}
	_ = s.sink.Write(toPlay)
	if level != nil {
		level(codec.RMSEnergy(toPlay))
	}
}
