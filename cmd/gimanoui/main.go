// Command gimanoui is a terminal front end for the Gimanoui companion:
// a turn-based chat with spoken replies and an optional live duplex
// voice mode.
package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mano-habib/gimanoui/internal/config"
	"github.com/mano-habib/gimanoui/internal/dotenv"
	"github.com/mano-habib/gimanoui/internal/observe"
	"github.com/mano-habib/gimanoui/pkg/core/audio"
	"github.com/mano-habib/gimanoui/pkg/core/chat"
	"github.com/mano-habib/gimanoui/pkg/core/codec"
	"github.com/mano-habib/gimanoui/pkg/gemini"
	"github.com/mano-habib/gimanoui/pkg/store"
	"github.com/mano-habib/gimanoui/pkg/voice"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := dotenv.Load(); err != nil {
		slog.Error("load .env", "error", err)
		return 1
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		return 1
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("open store", "error", err)
		return 1
	}
	defer st.Close()

	metrics := observe.DefaultMetrics()

	var backend *measuredBackend
	var connectivity chat.Connectivity = &netProbe{}
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey})
		if err != nil {
			slog.Error("create gemini client", "error", err)
			return 1
		}
		backend = &measuredBackend{client: client, metrics: metrics}
	} else {
		slog.Warn("GEMINI_API_KEY is not set; running with offline replies only")
		connectivity = offlineNet{}
	}

	selected, err := resolveVoice(ctx, st, cfg.VoiceID)
	if err != nil {
		slog.Error("resolve voice", "error", err)
		return 1
	}

	var speaker *ffplaySpeaker
	var queue *audio.Queue
	if !cfg.NoSpeaker && backend != nil {
		speaker, err = newFFplaySpeaker(cfg.FFplayPath, 24000)
		if err != nil {
			slog.Warn("speaker unavailable; replies will be text-only", "error", err)
		} else {
			defer speaker.Close()
			queue = audio.NewQueue(countingPlayer{speaker, metrics}, &audio.Epoch{})
			defer queue.Close()
		}
	}

	ctrl := buildController(cfg, backend, connectivity, queue, selected)
	defer ctrl.Close()

	if history, err := st.LoadHistory(ctx, cfg.HistoryLimit); err != nil {
		slog.Warn("load history", "error", err)
	} else if len(history) > 0 {
		ctrl.SetHistory(history)
	}

	r := &repl{
		cfg:     cfg,
		ctrl:    ctrl,
		backend: backend,
		store:   st,
		speaker: speaker,
		metrics: metrics,
		voice:   selected,
		in:      os.Stdin,
		out:     os.Stdout,
	}
	if err := r.run(ctx); err != nil {
		slog.Error("repl", "error", err)
		return 1
	}
	return 0
}

func buildController(cfg *config.Config, backend *measuredBackend, connectivity chat.Connectivity, queue *audio.Queue, v voice.Voice) *chat.Controller {
	ctrlCfg := chat.Config{
		Net:         connectivity,
		Queue:       queue,
		VoiceID:     v.APIName,
		Language:    cfg.Language,
		AspectRatio: cfg.AspectRatio,
	}
	if backend != nil {
		ctrlCfg.Streamer = backend.client
		ctrlCfg.Synth = backend
		ctrlCfg.Images = backend
		ctrlCfg.Videos = backend
	}
	return chat.NewController(ctrlCfg)
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		slog.Info("no DATABASE_URL; conversation history will not survive restarts")
		return store.NewMemory(), nil
	}
	return store.NewPostgres(ctx, cfg.DatabaseURL)
}

// resolveVoice picks the active voice: the stored selection first, then
// the configured one, then the catalog default.
func resolveVoice(ctx context.Context, st store.Store, configured string) (voice.Voice, error) {
	id, err := st.VoiceID(ctx)
	if err != nil {
		slog.Warn("could not load the stored voice selection; falling back", "error", err)
	}
	if id != "" {
		if v, err := voice.ByID(id); err == nil {
			return v, nil
		}
		slog.Warn("stored voice is not in the catalog; falling back", "voice", id)
	}
	if configured != "" {
		if v, err := voice.ByID(configured); err == nil {
			return v, nil
		}
		slog.Warn("configured voice is not in the catalog; falling back", "voice", configured)
	}
	return voice.Default()
}

// countingPlayer wraps the speaker to count clips that reach playback.
type countingPlayer struct {
	*ffplaySpeaker
	metrics *observe.Metrics
}

func (p countingPlayer) Play(ctx context.Context, buf *codec.AudioBuffer) error {
	err := p.ffplaySpeaker.Play(ctx, buf)
	if err == nil {
		p.metrics.ClipsPlayed.Add(ctx, 1)
	}
	return err
}

// netProbe reports connectivity by dialing the generative endpoint. The
// result is cached briefly so rapid sends do not each pay a dial.
type netProbe struct {
	mu      sync.Mutex
	checked time.Time
	online  bool
}

func (p *netProbe) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if time.Since(p.checked) < 10*time.Second {
		return p.online
	}
	conn, err := net.DialTimeout("tcp", "generativelanguage.googleapis.com:443", 2*time.Second)
	if err == nil {
		conn.Close()
	}
	p.checked = time.Now()
	p.online = err == nil
	return p.online
}

// offlineNet forces the offline path when no API key is configured.
type offlineNet struct{}

func (offlineNet) Online() bool { return false }
