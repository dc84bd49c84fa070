// Package chat drives one user to model exchange at a time over a token
// stream: it appends the user's turn to history, consumes the reply stream,
// feeds the growing text to the sentence segmenter for speculative speech
// synthesis, and dispatches any embedded generation directive.
package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mano-habib/gimanoui/pkg/core"
	"github.com/mano-habib/gimanoui/pkg/core/audio"
	"github.com/mano-habib/gimanoui/pkg/core/codec"
	"github.com/mano-habib/gimanoui/pkg/core/directive"
	"github.com/mano-habib/gimanoui/pkg/core/speech"
	"github.com/mano-habib/gimanoui/pkg/core/types"
	"github.com/mano-habib/gimanoui/pkg/i18n"
)

// State represents the current phase of the exchange cycle.
type State int

const (
	// StateIdle means no exchange is in flight.
	StateIdle State = iota
	// StateSending means the user turn is committed and the stream is opening.
	StateSending
	// StateStreaming means reply chunks are being consumed.
	StateStreaming
	// StateFinalizing means the stream ended and trailing speech is flushing.
	StateFinalizing
	// StateGeneratingMedia means a directive was found and generation is running.
	StateGeneratingMedia
	// StateError means the last exchange failed. The controller re-arms on
	// the next send.
	StateError
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateSending:
		return "SENDING"
	case StateStreaming:
		return "STREAMING"
	case StateFinalizing:
		return "FINALIZING"
	case StateGeneratingMedia:
		return "GENERATING_MEDIA"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

var (
	// ErrEmptyMessage is returned when a send carries no text and no media.
	ErrEmptyMessage = errors.New("chat: empty message")
	// ErrBusy is returned when a previous exchange is still in flight.
	ErrBusy = errors.New("chat: exchange already in flight")
)

// Chunk is one unit of the model's streamed reply.
type Chunk struct {
	Text    string
	Sources []types.GroundingSource
}

// ChunkStream yields reply chunks until io.EOF.
type ChunkStream interface {
	Next() (Chunk, error)
	Close() error
}

// Streamer opens a model reply stream for the conversation so far.
type Streamer interface {
	StreamChat(ctx context.Context, history []types.ChatMessage, msg types.ChatMessage) (ChunkStream, error)
}

// Synthesizer turns one cleaned text fragment into a playable clip.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID, language string) (*codec.AudioBuffer, error)
}

// ImageGenerator produces an image for a directive prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error)
}

// VideoGenerator produces a playable video URI for a directive prompt.
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, prompt string) (string, error)
}

// Connectivity reports whether the network is reachable. The check runs
// once per send, before any request is attempted.
type Connectivity interface {
	Online() bool
}

// Config holds the controller's collaborators and tunables. Streamer is
// required; every other collaborator is optional and its concern is
// skipped when nil.
type Config struct {
	Streamer Streamer
	Synth    Synthesizer
	Images   ImageGenerator
	Videos   VideoGenerator
	Net      Connectivity

	// Queue serializes fragment synthesis into ordered playback. Nil
	// disables speech entirely.
	Queue *audio.Queue

	// VoiceID and Language select the synthesis voice and the locale for
	// user-facing strings.
	VoiceID  string
	Language string

	// OfflineDelay simulates thinking time before a canned offline reply.
	OfflineDelay time.Duration

	// AspectRatio for directive-driven image generation.
	AspectRatio string

	// EventBuffer is the capacity of the events channel.
	EventBuffer int
}

// DefaultConfig returns a Config with sensible defaults. Collaborators
// must still be filled in.
func DefaultConfig() Config {
	return Config{
		Language:     "ar",
		OfflineDelay: 600 * time.Millisecond,
		AspectRatio:  "1:1",
		EventBuffer:  64,
	}
}

// Controller orchestrates turn-based exchanges. One exchange runs at a
// time; sends during an in-flight exchange are rejected, not queued.
type Controller struct {
	cfg Config

	mu       sync.Mutex
	state    State
	busy     bool
	voiceID  string
	history  []types.ChatMessage
	lastErr  string
	ttsCache map[string]*codec.AudioBuffer

	events chan Event
	done   chan struct{}
}

// NewController creates a controller. Missing tunables are filled from
// DefaultConfig.
func NewController(cfg Config) *Controller {
	def := DefaultConfig()
	if cfg.Language == "" {
		cfg.Language = def.Language
	}
	if cfg.OfflineDelay == 0 {
		cfg.OfflineDelay = def.OfflineDelay
	}
	if cfg.AspectRatio == "" {
		cfg.AspectRatio = def.AspectRatio
	}
	if cfg.EventBuffer == 0 {
		cfg.EventBuffer = def.EventBuffer
	}
	return &Controller{
		cfg:      cfg,
		voiceID:  cfg.VoiceID,
		ttsCache: make(map[string]*codec.AudioBuffer),
		events:   make(chan Event, cfg.EventBuffer),
		done:     make(chan struct{}),
	}
}

// Voice returns the current synthesis voice identifier.
func (c *Controller) Voice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voiceID
}

// SetVoice switches the synthesis voice for subsequent speech. Cached
// clips for the old voice are dropped.
func (c *Controller) SetVoice(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == c.voiceID {
		return
	}
	c.voiceID = id
	c.ttsCache = make(map[string]*codec.AudioBuffer)
}

// Events returns the channel of controller events. Events are dropped,
// not blocked on, when the channel is full.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// State returns the current controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the user-facing text of the most recent failure, or
// an empty string.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// History returns a copy of the conversation so far.
func (c *Controller) History() []types.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.ChatMessage, len(c.history))
	copy(out, c.history)
	return out
}

// SetHistory seeds the conversation, typically from persisted storage.
// It must be called before the first send.
func (c *Controller) SetHistory(msgs []types.ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append([]types.ChatMessage(nil), msgs...)
}

// Send commits one user turn and runs the exchange asynchronously. It
// returns ErrEmptyMessage when text is blank and media is empty, and
// ErrBusy when a previous exchange has not finished. The user message is
// in history by the time Send returns nil.
func (c *Controller) Send(ctx context.Context, text string, media []types.MediaItem) error {
	if strings.TrimSpace(text) == "" && len(media) == 0 {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.lastErr = ""
	userMsg := types.NewMessage(types.RoleUser, text)
	userMsg.Media = media
	prior := make([]types.ChatMessage, len(c.history))
	copy(prior, c.history)
	c.history = append(c.history, userMsg)
	c.mu.Unlock()

	// A new turn invalidates whatever the previous reply still has
	// queued or playing: the epoch advances and pending clips drop.
	c.StopSpeech()

	c.setState(StateSending)
	c.emit(&MessageUpdatedEvent{Message: userMsg})

	go c.run(ctx, prior, userMsg)
	return nil
}

// Close releases the controller. In-flight work observes the closed done
// channel through dropped events only; network calls are not aborted.
func (c *Controller) Close() {
	c.mu.Lock()
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	c.mu.Unlock()
	if c.cfg.Queue != nil {
		c.cfg.Queue.Stop()
	}
}

func (c *Controller) run(ctx context.Context, prior []types.ChatMessage, userMsg types.ChatMessage) {
	if c.cfg.Net != nil && !c.cfg.Net.Online() {
		c.runOffline(userMsg)
		return
	}

	stream, err := c.cfg.Streamer.StreamChat(ctx, prior, userMsg)
	if err != nil {
		c.fail(err)
		return
	}
	defer stream.Close()

	c.setState(StateStreaming)

	reply := types.NewMessage(types.RoleModel, "")
	c.appendMessage(reply)

	var seg speech.Segmenter
	var dir directive.Directive
	var haveDirective bool
	var streamErr error

	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Keep the partial reply; stop consuming further chunks.
			streamErr = err
			break
		}

		if haveDirective {
			// Remainder of the stream is drained but ignored for display.
			continue
		}

		reply.Text += chunk.Text
		reply.MergeSources(chunk.Sources)

		if d, ok := directive.Extract(reply.Text); ok {
			// Speech for this response is superseded; anything queued or
			// sounding is stale from here on.
			haveDirective = true
			dir = d
			reply.Text = strings.TrimSpace(directive.Strip(reply.Text))
			if c.cfg.Queue != nil {
				c.cfg.Queue.Stop()
			}
			placeholder := reply
			placeholder.Text = i18n.T(c.cfg.Language, i18n.KeyImageLoading)
			c.updateMessage(placeholder)
			continue
		}
		for _, frag := range seg.Add(chunk.Text) {
			c.enqueueSpeech(frag)
		}
		c.updateMessage(reply)
	}

	if streamErr != nil {
		c.updateMessage(reply)
		c.fail(streamErr)
		return
	}

	if haveDirective {
		c.setState(StateGeneratingMedia)
		c.generateMedia(ctx, reply, dir)
	} else {
		c.setState(StateFinalizing)
		if tail := seg.Flush(); tail != "" {
			c.enqueueSpeech(tail)
		}
		c.updateMessage(reply)
	}

	c.finish(StateIdle)
}

// runOffline substitutes a local canned reply after a short simulated
// delay. No network access is attempted.
func (c *Controller) runOffline(userMsg types.ChatMessage) {
	time.Sleep(c.cfg.OfflineDelay)
	reply := types.NewMessage(types.RoleModel, OfflineReply(userMsg.Text, c.cfg.Language))
	c.appendMessage(reply)
	c.finish(StateIdle)
}

// generateMedia runs the directive's generation request and swaps the
// placeholder for the result, or an error note. Generation failures are
// not fatal to the controller.
func (c *Controller) generateMedia(ctx context.Context, reply types.ChatMessage, dir directive.Directive) {
	switch dir.Kind {
	case directive.KindVideo:
		if c.cfg.Videos == nil {
			reply.Text = i18n.T(c.cfg.Language, i18n.KeyVideoFailed)
			break
		}
		uri, err := c.cfg.Videos.GenerateVideo(ctx, dir.Prompt)
		if err != nil {
			reply.Text = i18n.T(c.cfg.Language, i18n.KeyVideoFailed)
			break
		}
		reply.Media = append(reply.Media, types.MediaItem{URI: uri, MIMEType: "video/mp4"})
	default:
		if c.cfg.Images == nil {
			reply.Text = i18n.T(c.cfg.Language, i18n.KeyImageFailed)
			break
		}
		data, err := c.cfg.Images.GenerateImage(ctx, dir.Prompt, c.cfg.AspectRatio)
		if err != nil {
			reply.Text = i18n.T(c.cfg.Language, i18n.KeyImageFailed)
			break
		}
		reply.Media = append(reply.Media, types.MediaItem{Data: data, MIMEType: "image/png"})
	}

	c.updateMessage(reply)
}

// PlaySpeech replays one message's text through the synthesis queue,
// caching the synthesized clip so replaying the same message again does
// not hit the network.
func (c *Controller) PlaySpeech(ctx context.Context, messageID string) error {
	if c.cfg.Synth == nil || c.cfg.Queue == nil {
		return core.NewUnsupportedInputError("speech playback is not configured")
	}

	c.mu.Lock()
	var text string
	found := false
	for _, m := range c.history {
		if m.ID == messageID {
			text = m.Text
			found = true
			break
		}
	}
	cached := c.ttsCache[messageID]
	c.mu.Unlock()

	if !found {
		return core.NewUnsupportedInputError("unknown message " + messageID)
	}
	cleaned := speech.CleanForSpeech(text)
	if cleaned == "" {
		return nil
	}

	c.cfg.Queue.Stop()
	c.cfg.Queue.Enqueue(func(ctx context.Context) (*codec.AudioBuffer, error) {
		if cached != nil {
			return cached, nil
		}
		buf, err := c.cfg.Synth.Synthesize(ctx, cleaned, c.Voice(), c.cfg.Language)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.ttsCache[messageID] = buf
		c.mu.Unlock()
		return buf, nil
	})
	return nil
}

// StopSpeech halts playback and discards queued clips without touching
// the exchange state. Called when another surface takes over the speaker.
func (c *Controller) StopSpeech() {
	if c.cfg.Queue != nil {
		c.cfg.Queue.Stop()
	}
}

func (c *Controller) enqueueSpeech(fragment string) {
	if c.cfg.Synth == nil || c.cfg.Queue == nil {
		return
	}
	cleaned := speech.CleanForSpeech(fragment)
	if cleaned == "" {
		return
	}
	c.cfg.Queue.Enqueue(func(ctx context.Context) (*codec.AudioBuffer, error) {
		return c.cfg.Synth.Synthesize(ctx, cleaned, c.Voice(), c.cfg.Language)
	})
}

// appendMessage adds msg to history.
func (c *Controller) appendMessage(msg types.ChatMessage) {
	c.mu.Lock()
	c.history = append(c.history, msg)
	c.mu.Unlock()
	c.emit(&MessageUpdatedEvent{Message: msg})
}

// updateMessage replaces the history entry with msg's ID.
func (c *Controller) updateMessage(msg types.ChatMessage) {
	c.mu.Lock()
	for i := range c.history {
		if c.history[i].ID == msg.ID {
			c.history[i] = msg
			break
		}
	}
	c.mu.Unlock()
	c.emit(&MessageUpdatedEvent{Message: msg})
}

// fail records a user-visible error and ends the turn. The next send
// re-arms the controller.
func (c *Controller) fail(err error) {
	text := core.UserMessage(err, c.cfg.Language)
	c.mu.Lock()
	c.lastErr = text
	c.mu.Unlock()
	c.emit(&ErrorEvent{Err: err, Text: text})
	c.finish(StateError)
}

func (c *Controller) finish(final State) {
	c.setState(final)
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
	c.emit(&TurnCompleteEvent{})
}

func (c *Controller) setState(to State) {
	c.mu.Lock()
	from := c.state
	c.state = to
	c.mu.Unlock()
	if from != to {
		c.emit(&StateChangedEvent{From: from, To: to})
	}
}

// emit sends an event to the events channel, dropping it when full.
func (c *Controller) emit(event Event) {
	select {
	case c.events <- event:
	case <-c.done:
	default:
	}
}
