// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// GeminiAPIKey authenticates every backend call. The chat surface
	// still works offline without it, with canned replies.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	// DatabaseURL selects the Postgres store. Empty runs in-memory.
	DatabaseURL string `env:"DATABASE_URL"`

	Language    string `env:"GIMANOUI_LANG" envDefault:"ar"`
	VoiceID     string `env:"GIMANOUI_VOICE"`
	AspectRatio string `env:"GIMANOUI_ASPECT_RATIO" envDefault:"1:1"`

	// HistoryLimit caps how many stored messages are loaded at startup.
	HistoryLimit int `env:"GIMANOUI_HISTORY_LIMIT" envDefault:"50"`

	// NoSpeaker disables ffplay; replies stay text-only.
	NoSpeaker  bool   `env:"GIMANOUI_NO_SPEAKER" envDefault:"false"`
	FFplayPath string `env:"GIMANOUI_FFPLAY" envDefault:"ffplay"`
	FFmpegPath string `env:"GIMANOUI_FFMPEG" envDefault:"ffmpeg"`

	// CameraDevice and ScreenDevice are the ffmpeg capture inputs for
	// live video modes. Defaults suit Linux; on macOS use avfoundation
	// indices like "0".
	CameraDevice string `env:"GIMANOUI_CAMERA" envDefault:"/dev/video0"`
	ScreenDevice string `env:"GIMANOUI_SCREEN" envDefault:":0.0"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SlogLevel maps the LOG_LEVEL string onto a slog level, defaulting to
// info for unknown values.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
