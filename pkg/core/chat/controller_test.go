package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mano-habib/gimanoui/pkg/core/audio"
	"github.com/mano-habib/gimanoui/pkg/core/codec"
	"github.com/mano-habib/gimanoui/pkg/core/types"
	"github.com/mano-habib/gimanoui/pkg/i18n"
)

type fakeStream struct {
	chunks []Chunk
	err    error // returned after chunks are exhausted, instead of io.EOF
	pos    int
}

func (s *fakeStream) Next() (Chunk, error) {
	if s.pos >= len(s.chunks) {
		if s.err != nil {
			return Chunk{}, s.err
		}
		return Chunk{}, io.EOF
	}
	c := s.chunks[s.pos]
	s.pos++
	return c, nil
}

func (s *fakeStream) Close() error { return nil }

type fakeStreamer struct {
	mu      sync.Mutex
	calls   int
	stream  *fakeStream
	openErr error
	block   chan struct{} // when set, StreamChat waits on it before returning
}

func (f *fakeStreamer) StreamChat(ctx context.Context, history []types.ChatMessage, msg types.ChatMessage) (ChunkStream, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.stream, nil
}

func (f *fakeStreamer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSynth struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, voiceID, language string) (*codec.AudioBuffer, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	return &codec.AudioBuffer{SampleRate: 24000, Channels: [][]float32{{0}}}, nil
}

func (f *fakeSynth) synthesized() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type fakeImages struct {
	mu     sync.Mutex
	prompt string
	data   []byte
	err    error
}

func (f *fakeImages) GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
	f.mu.Lock()
	f.prompt = prompt
	f.mu.Unlock()
	return f.data, f.err
}

type online bool

func (o online) Online() bool { return bool(o) }

// blockingSynth holds every synthesis until release is closed.
type blockingSynth struct {
	fakeSynth
	release chan struct{}
}

func (b *blockingSynth) Synthesize(ctx context.Context, text, voiceID, language string) (*codec.AudioBuffer, error) {
	<-b.release
	return b.fakeSynth.Synthesize(ctx, text, voiceID, language)
}

type countingPlayer struct {
	mu    sync.Mutex
	plays int
}

func (p *countingPlayer) Play(ctx context.Context, buf *codec.AudioBuffer) error {
	p.mu.Lock()
	p.plays++
	p.mu.Unlock()
	return nil
}

func (p *countingPlayer) Halt() {}

func (p *countingPlayer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays
}

type noopPlayer struct{}

func (noopPlayer) Play(ctx context.Context, buf *codec.AudioBuffer) error { return nil }
func (noopPlayer) Halt()                                                  {}

func newTestQueue() *audio.Queue {
	return audio.NewQueue(noopPlayer{}, &audio.Epoch{})
}

// waitTurn drains events until the turn completes.
func waitTurn(t *testing.T, c *Controller) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-c.Events():
			if _, ok := ev.(*TurnCompleteEvent); ok {
				return
			}
		case <-deadline:
			t.Fatal("turn did not complete in time")
		}
	}
}

func TestSend_EmptyMessageIsNoOp(t *testing.T) {
	streamer := &fakeStreamer{stream: &fakeStream{}}
	c := NewController(Config{Streamer: streamer})

	if err := c.Send(context.Background(), "   ", nil); err != ErrEmptyMessage {
		t.Fatalf("Send(blank) = %v, want ErrEmptyMessage", err)
	}
	if len(c.History()) != 0 {
		t.Error("history changed by an empty send")
	}
	if streamer.callCount() != 0 {
		t.Error("empty send reached the network")
	}
}

func TestSend_MediaOnlyIsAccepted(t *testing.T) {
	streamer := &fakeStreamer{stream: &fakeStream{chunks: []Chunk{{Text: "nice photo"}}}}
	c := NewController(Config{Streamer: streamer})

	media := []types.MediaItem{{Data: []byte{1}, MIMEType: "image/jpeg"}}
	if err := c.Send(context.Background(), "", media); err != nil {
		t.Fatalf("Send(media only) = %v", err)
	}
	waitTurn(t, c)
}

func TestSend_RejectsConcurrentExchange(t *testing.T) {
	release := make(chan struct{})
	streamer := &fakeStreamer{stream: &fakeStream{}, block: release}
	c := NewController(Config{Streamer: streamer})

	if err := c.Send(context.Background(), "first", nil); err != nil {
		t.Fatalf("first Send = %v", err)
	}
	if err := c.Send(context.Background(), "second", nil); err != ErrBusy {
		t.Fatalf("second Send = %v, want ErrBusy", err)
	}
	close(release)
	waitTurn(t, c)
}

func TestStream_AccumulatesTextAndMergesSources(t *testing.T) {
	src := types.GroundingSource{URI: "https://example.com", Title: "Example"}
	streamer := &fakeStreamer{stream: &fakeStream{chunks: []Chunk{
		{Text: "Hel", Sources: []types.GroundingSource{src}},
		{Text: "lo", Sources: []types.GroundingSource{src}},
	}}}
	c := NewController(Config{Streamer: streamer})

	if err := c.Send(context.Background(), "hi", nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	waitTurn(t, c)

	hist := c.History()
	if len(hist) != 2 {
		t.Fatalf("history has %d messages, want 2", len(hist))
	}
	reply := hist[1]
	if reply.Role != types.RoleModel || reply.Text != "Hello" {
		t.Errorf("reply = {%s %q}", reply.Role, reply.Text)
	}
	if len(reply.Sources) != 1 {
		t.Errorf("sources = %v, want one deduplicated entry", reply.Sources)
	}
	if c.State() != StateIdle {
		t.Errorf("state = %v, want IDLE", c.State())
	}
}

func TestOffline_CannedReplyWithoutNetwork(t *testing.T) {
	streamer := &fakeStreamer{stream: &fakeStream{}}
	c := NewController(Config{
		Streamer:     streamer,
		Net:          online(false),
		OfflineDelay: 10 * time.Millisecond,
		Language:     "en",
	})

	start := time.Now()
	if err := c.Send(context.Background(), "hello", nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	waitTurn(t, c)

	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("reply arrived in %v, before the simulated delay", elapsed)
	}
	if streamer.callCount() != 0 {
		t.Error("offline send issued a network request")
	}
	hist := c.History()
	if len(hist) != 2 {
		t.Fatalf("history has %d messages, want 2", len(hist))
	}
	if hist[1].Text != i18n.T("en", i18n.KeyOfflineReply) {
		t.Errorf("offline reply = %q", hist[1].Text)
	}
}

func TestOffline_IdentityQuestionsGetRealAnswers(t *testing.T) {
	if got := OfflineReply("who are you?", "en"); !strings.Contains(got, "Gimanoui") {
		t.Errorf("identity reply = %q", got)
	}
	if got := OfflineReply("مين عملك", "ar"); !strings.Contains(got, "Mano Habib") {
		t.Errorf("developer reply = %q", got)
	}
}

func TestDirective_StopsSpeechAndGeneratesImage(t *testing.T) {
	streamer := &fakeStreamer{stream: &fakeStream{chunks: []Chunk{
		{Text: "Sure! "},
		{Text: "[GENERATE_IMAGE: a cat]"},
		{Text: " ignored trailer."},
	}}}
	synth := &fakeSynth{}
	images := &fakeImages{data: []byte{0x89, 0x50}}
	c := NewController(Config{
		Streamer: streamer,
		Synth:    synth,
		Images:   images,
		Queue:    newTestQueue(),
		Language: "en",
	})

	if err := c.Send(context.Background(), "draw a cat", nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	waitTurn(t, c)

	if images.prompt != "a cat" {
		t.Errorf("generation prompt = %q, want %q", images.prompt, "a cat")
	}
	reply := c.History()[1]
	if strings.Contains(reply.Text, "GENERATE_IMAGE") {
		t.Errorf("visible text still carries the directive token: %q", reply.Text)
	}
	if len(reply.Media) != 1 || reply.Media[0].MIMEType != "image/png" {
		t.Errorf("media = %+v, want one image/png attachment", reply.Media)
	}
	for _, s := range synth.synthesized() {
		if strings.Contains(s, "cat") || strings.Contains(s, "ignored") {
			t.Errorf("synthesized text after the directive: %q", s)
		}
	}
}

func TestDirective_GenerationFailureIsNonFatal(t *testing.T) {
	streamer := &fakeStreamer{stream: &fakeStream{chunks: []Chunk{
		{Text: "[GENERATE_IMAGE: a dog]"},
	}}}
	images := &fakeImages{err: errors.New("backend down")}
	c := NewController(Config{Streamer: streamer, Images: images, Language: "en"})

	if err := c.Send(context.Background(), "draw", nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	waitTurn(t, c)

	reply := c.History()[1]
	if reply.Text != i18n.T("en", i18n.KeyImageFailed) {
		t.Errorf("failure note = %q", reply.Text)
	}
	if c.State() != StateIdle {
		t.Errorf("state = %v, want IDLE after non-fatal failure", c.State())
	}
}

func TestStreamError_SurfacesAndReArms(t *testing.T) {
	streamer := &fakeStreamer{stream: &fakeStream{
		chunks: []Chunk{{Text: "partial"}},
		err:    errors.New("stream broke"),
	}}
	c := NewController(Config{Streamer: streamer, Language: "en"})

	if err := c.Send(context.Background(), "hi", nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	waitTurn(t, c)

	if c.State() != StateError {
		t.Errorf("state = %v, want ERROR", c.State())
	}
	if c.LastError() == "" {
		t.Error("no user-visible error recorded")
	}
	// Partial text is kept.
	if got := c.History()[1].Text; got != "partial" {
		t.Errorf("partial reply = %q", got)
	}

	// The controller re-arms for the next send.
	streamer.stream = &fakeStream{chunks: []Chunk{{Text: "ok"}}}
	streamer.openErr = nil
	if err := c.Send(context.Background(), "again", nil); err != nil {
		t.Fatalf("Send after error = %v", err)
	}
	waitTurn(t, c)
	if c.State() != StateIdle {
		t.Errorf("state after recovery = %v, want IDLE", c.State())
	}
}

func TestSilenceTimer_ExpiresAfterWindow(t *testing.T) {
	fired := make(chan struct{})
	timer := NewSilenceTimer(20*time.Millisecond, func() { close(fired) })
	timer.Touch()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestSilenceTimer_TouchRestartsWindow(t *testing.T) {
	var mu sync.Mutex
	fired := false
	timer := NewSilenceTimer(50*time.Millisecond, func() {
		mu.Lock()
		fired = true
		mu.Unlock()
	})
	timer.Touch()
	time.Sleep(30 * time.Millisecond)
	timer.Touch()
	time.Sleep(30 * time.Millisecond)

	mu.Lock()
	early := fired
	mu.Unlock()
	if early {
		t.Error("timer fired despite being touched inside the window")
	}
	timer.Stop()
}

func TestSilenceTimer_StopPreventsExpiry(t *testing.T) {
	timer := NewSilenceTimer(10*time.Millisecond, func() {
		t.Error("onExpire fired after Stop")
	})
	timer.Touch()
	timer.Stop()
	timer.Stop() // idempotent
	time.Sleep(30 * time.Millisecond)
}

func TestPlaySpeech_CachesSynthesis(t *testing.T) {
	synth := &fakeSynth{}
	c := NewController(Config{Synth: synth, Queue: newTestQueue(), Language: "en"})
	c.SetHistory([]types.ChatMessage{{ID: "m1", Role: types.RoleModel, Text: "Hello there."}})

	for i := 0; i < 2; i++ {
		if err := c.PlaySpeech(context.Background(), "m1"); err != nil {
			t.Fatalf("PlaySpeech: %v", err)
		}
		deadline := time.Now().Add(time.Second)
		for len(synth.synthesized()) == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		// Give the cache write behind the synthesis call time to land.
		time.Sleep(20 * time.Millisecond)
	}

	if got := len(synth.synthesized()); got != 1 {
		t.Errorf("synthesize called %d times, want 1 (cached on replay)", got)
	}
}

func TestSend_DropsSpeechFromPreviousTurn(t *testing.T) {
	synth := &blockingSynth{release: make(chan struct{})}
	player := &countingPlayer{}
	streamer := &fakeStreamer{stream: &fakeStream{chunks: []Chunk{{Text: "Stale reply."}}}}
	c := NewController(Config{
		Streamer: streamer,
		Synth:    synth,
		Queue:    audio.NewQueue(player, &audio.Epoch{}),
		Language: "en",
	})

	if err := c.Send(context.Background(), "first", nil); err != nil {
		t.Fatalf("first Send: %v", err)
	}
	waitTurn(t, c)

	// The first reply's clip is still held in synthesis when the next
	// exchange starts. It must never reach the player.
	streamer.stream = &fakeStream{chunks: []Chunk{{Text: "Fresh reply."}}}
	if err := c.Send(context.Background(), "second", nil); err != nil {
		t.Fatalf("second Send: %v", err)
	}
	waitTurn(t, c)

	close(synth.release)
	deadline := time.Now().Add(time.Second)
	for len(synth.synthesized()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	if got := player.count(); got > 1 {
		t.Errorf("%d clips played, want at most 1 (the stale first reply must be dropped)", got)
	}
}

func TestStopSpeech_DiscardsPendingPlayback(t *testing.T) {
	synth := &blockingSynth{release: make(chan struct{})}
	player := &countingPlayer{}
	c := NewController(Config{Synth: synth, Queue: audio.NewQueue(player, &audio.Epoch{}), Language: "en"})
	c.SetHistory([]types.ChatMessage{{ID: "m1", Role: types.RoleModel, Text: "Queued speech."}})

	if err := c.PlaySpeech(context.Background(), "m1"); err != nil {
		t.Fatalf("PlaySpeech: %v", err)
	}
	c.StopSpeech()
	close(synth.release)
	time.Sleep(50 * time.Millisecond)

	if got := player.count(); got != 0 {
		t.Errorf("%d clips played after StopSpeech, want 0", got)
	}

	// Safe with no playback queue configured.
	bare := NewController(Config{Streamer: &fakeStreamer{stream: &fakeStream{}}})
	bare.StopSpeech()
}

func TestPlaySpeech_UnknownMessage(t *testing.T) {
	c := NewController(Config{Synth: &fakeSynth{}, Queue: newTestQueue()})
	if err := c.PlaySpeech(context.Background(), "nope"); err == nil {
		t.Error("PlaySpeech(unknown id) did not fail")
	}
}
