// Package observe holds the OpenTelemetry metric instruments for the
// companion engine. A package-level default [Metrics] instance
// ([DefaultMetrics]) is provided for convenience; tests should use
// [NewMetrics] with a custom [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for all engine metrics.
const meterName = "github.com/mano-habib/gimanoui"

// Metrics holds all metric instruments. All fields are safe for
// concurrent use; the underlying OTel types handle their own
// synchronisation.
type Metrics struct {
	// ChatTurnDuration tracks one full send-to-idle exchange.
	ChatTurnDuration metric.Float64Histogram

	// TTSDuration tracks speech synthesis latency per fragment.
	TTSDuration metric.Float64Histogram

	// GenerationDuration tracks directive-driven image/video generation.
	// Use with attribute.String("kind", "image"|"video").
	GenerationDuration metric.Float64Histogram

	// ClipsPlayed counts synthesized clips that reached the speaker.
	ClipsPlayed metric.Int64Counter

	// Interruptions counts playback cut short by user speech.
	Interruptions metric.Int64Counter

	// FramesDropped counts video capture ticks skipped under backpressure.
	FramesDropped metric.Int64Counter

	// APIErrors counts backend failures. Use with attributes:
	//   attribute.String("surface", ...), attribute.String("type", ...)
	APIErrors metric.Int64Counter

	// ActiveLiveSessions tracks currently open duplex sessions.
	ActiveLiveSessions metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) for the
// conversation pipeline.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation
// fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ChatTurnDuration, err = m.Float64Histogram("gimanoui.chat.turn.duration",
		metric.WithDescription("Latency of one full chat exchange."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TTSDuration, err = m.Float64Histogram("gimanoui.tts.duration",
		metric.WithDescription("Latency of speech synthesis per fragment."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.GenerationDuration, err = m.Float64Histogram("gimanoui.generation.duration",
		metric.WithDescription("Latency of directive-driven media generation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.ClipsPlayed, err = m.Int64Counter("gimanoui.audio.clips.played",
		metric.WithDescription("Synthesized clips that reached playback."),
	); err != nil {
		return nil, err
	}
	if met.Interruptions, err = m.Int64Counter("gimanoui.audio.interruptions",
		metric.WithDescription("Playback cut short by user speech."),
	); err != nil {
		return nil, err
	}
	if met.FramesDropped, err = m.Int64Counter("gimanoui.video.frames.dropped",
		metric.WithDescription("Video capture ticks skipped under backpressure."),
	); err != nil {
		return nil, err
	}
	if met.APIErrors, err = m.Int64Counter("gimanoui.api.errors",
		metric.WithDescription("Backend failures by surface and error type."),
	); err != nil {
		return nil, err
	}

	if met.ActiveLiveSessions, err = m.Int64UpDownCounter("gimanoui.live.sessions.active",
		metric.WithDescription("Currently open duplex voice sessions."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating
// it on first call using [otel.GetMeterProvider]. Subsequent calls return
// the same pointer.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity
// at call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}
