// Package gemini is the client for the generative backend: streaming chat
// with search grounding, speech synthesis, image and video generation,
// media analysis, and the duplex live transport.
package gemini

import (
	"context"
	"time"

	"google.golang.org/genai"

	"github.com/mano-habib/gimanoui/pkg/core"
)

// Model names. The text model carries the chat, analysis, and utility
// surfaces; the rest are special-purpose.
const (
	textModel  = "gemini-3-flash-preview"
	ttsModel   = "gemini-2.5-flash-preview-tts"
	imageModel = "gemini-2.5-flash-image"
	videoModel = "veo-3.1-fast-generate-preview"
	liveModel  = "gemini-2.5-flash-native-audio-preview-12-2025"
)

const (
	maxRetries     = 3
	retryBackoff   = 1500 * time.Millisecond
	maxTTSChunkLen = 500
)

// Config configures the client.
type Config struct {
	// APIKey authenticates every request. Required.
	APIKey string

	// QuotaCooldown overrides the synthesis suppression window.
	QuotaCooldown time.Duration
}

// Client wraps the generative API. Safe for concurrent use.
type Client struct {
	genai  *genai.Client
	apiKey string
	gate   *QuotaGate
}

// NewClient creates a client. A missing API key is an authentication
// error, surfaced before any request is made.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, core.NewAuthenticationError("API key not found; set GEMINI_API_KEY")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, core.NewAuthenticationError(err.Error())
	}
	return &Client{
		genai:  gc,
		apiKey: cfg.APIKey,
		gate:   NewQuotaGate(cfg.QuotaCooldown),
	}, nil
}

// Quota returns the shared synthesis cooldown gate.
func (c *Client) Quota() *QuotaGate {
	return c.gate
}

// retry runs op up to maxRetries+1 times with linear backoff between
// attempts. The backoff grows by one base interval per attempt.
func (c *Client) retry(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := op(); err != nil {
			lastErr = err
			if attempt == maxRetries {
				break
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff * time.Duration(attempt+1)):
			}
			continue
		}
		return nil
	}
	return lastErr
}
