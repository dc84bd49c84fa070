package main

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/mano-habib/gimanoui/internal/observe"
	"github.com/mano-habib/gimanoui/pkg/core"
	"github.com/mano-habib/gimanoui/pkg/core/codec"
	"github.com/mano-habib/gimanoui/pkg/gemini"
)

// measuredBackend wraps the Gemini client with latency and error metrics.
// It satisfies the synthesizer and generator interfaces of both the chat
// controller and the live session.
type measuredBackend struct {
	client  *gemini.Client
	metrics *observe.Metrics
}

func (b *measuredBackend) Synthesize(ctx context.Context, text, voiceName, language string) (*codec.AudioBuffer, error) {
	start := time.Now()
	buf, err := b.client.Synthesize(ctx, text, voiceName, language)
	b.metrics.TTSDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		b.countError(ctx, "tts", err)
	}
	return buf, err
}

func (b *measuredBackend) GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
	start := time.Now()
	data, err := b.client.GenerateImage(ctx, prompt, aspectRatio)
	b.metrics.GenerationDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(observe.Attr("kind", "image")))
	if err != nil {
		b.countError(ctx, "image", err)
	}
	return data, err
}

func (b *measuredBackend) GenerateVideo(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	uri, err := b.client.GenerateVideo(ctx, prompt)
	b.metrics.GenerationDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(observe.Attr("kind", "video")))
	if err != nil {
		b.countError(ctx, "video", err)
	}
	return uri, err
}

func (b *measuredBackend) countError(ctx context.Context, surface string, err error) {
	b.metrics.APIErrors.Add(ctx, 1, metric.WithAttributes(
		observe.Attr("surface", surface),
		observe.Attr("type", string(core.TypeOf(err))),
	))
}
