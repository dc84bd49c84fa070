package live

import (
	"context"
	"time"

	"github.com/mano-habib/gimanoui/pkg/core/audio"
)

// VideoMode selects the outbound video source. Modes are mutually
// exclusive; switching modes restarts the frame loop against the new
// source.
type VideoMode string

const (
	VideoOff    VideoMode = "off"
	VideoCamera VideoMode = "camera"
	VideoScreen VideoMode = "screen"
)

// MicSource delivers captured microphone audio as fixed-size frames of
// floating samples at the capture rate. Start fails when the device grant
// is denied; Stop releases the device and closes the frame channel.
type MicSource interface {
	Start(ctx context.Context) (<-chan []float32, error)
	Stop()
}

// FrameSource captures one video frame as JPEG at a bounded transmission
// resolution.
type FrameSource interface {
	CaptureJPEG(ctx context.Context) ([]byte, error)
}

// Config holds the live session's collaborators and tunables.
type Config struct {
	// Dial opens the duplex connection. Required.
	Dial func(ctx context.Context) (Transport, error)

	// Mic supplies outbound audio. Nil disables the outbound audio path.
	Mic MicSource

	// Camera and Screen supply outbound video frames for their modes.
	Camera FrameSource
	Screen FrameSource

	// Sink renders inbound audio. Nil discards inbound audio.
	Sink audio.Sink

	// Images and Videos run directive-driven generation. Nil skips the
	// directive's generation, leaving only the stripped text.
	Images ImageGenerator
	Videos VideoGenerator

	// Language for localized error messages.
	Language string

	// CaptureRate is the outbound sample rate in Hz. Default: 16000.
	CaptureRate int

	// PlaybackRate is the inbound sample rate in Hz. Default: 24000.
	PlaybackRate int

	// FrameInterval is the outbound video cadence. Default: 100ms (10 fps).
	FrameInterval time.Duration

	// AspectRatio for directive-driven image generation.
	AspectRatio string

	// EventBuffer is the capacity of the events channel.
	EventBuffer int
}

// DefaultConfig returns a Config with sensible defaults. Collaborators
// must still be filled in.
func DefaultConfig() Config {
	return Config{
		Language:      "ar",
		CaptureRate:   16000,
		PlaybackRate:  24000,
		FrameInterval: 100 * time.Millisecond,
		AspectRatio:   "1:1",
		EventBuffer:   128,
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Language == "" {
		c.Language = def.Language
	}
	if c.CaptureRate == 0 {
		c.CaptureRate = def.CaptureRate
	}
	if c.PlaybackRate == 0 {
		c.PlaybackRate = def.PlaybackRate
	}
	if c.FrameInterval == 0 {
		c.FrameInterval = def.FrameInterval
	}
	if c.AspectRatio == "" {
		c.AspectRatio = def.AspectRatio
	}
	if c.EventBuffer == 0 {
		c.EventBuffer = def.EventBuffer
	}
}
