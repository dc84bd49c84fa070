// Package live manages one continuous bidirectional voice session:
// microphone frames and video frames go out over a duplex transport,
// inbound audio is scheduled gaplessly, and the two inbound transcript
// streams are folded into a role-alternating turn history that is flushed
// into the main conversation on close.
package live

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/mano-habib/gimanoui/pkg/core"
	"github.com/mano-habib/gimanoui/pkg/core/audio"
	"github.com/mano-habib/gimanoui/pkg/core/codec"
	"github.com/mano-habib/gimanoui/pkg/core/directive"
	"github.com/mano-habib/gimanoui/pkg/core/transcript"
	"github.com/mano-habib/gimanoui/pkg/core/types"
	"github.com/mano-habib/gimanoui/pkg/i18n"
)

// SessionState represents the current state of the live session.
type SessionState int

const (
	// StateConnecting is the initial state while devices and the
	// transport are being acquired.
	StateConnecting SessionState = iota
	// StateConnected is the steady state with both paths flowing.
	StateConnected
	// StateError is reached on acquisition or transport failure. The
	// session does not reconnect; the user closes and restarts it.
	StateError
	// StateClosed is terminal and triggers the transcript flush.
	StateClosed
)

// String returns a human-readable state name.
func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateError:
		return "ERROR"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ServerEvent is one inbound unit from the duplex session. Fields are
// independent; a single event may carry several of them.
type ServerEvent struct {
	// Audio is an inbound PCM16 chunk at the playback rate.
	Audio []byte
	// InputTranscript is a delta of the user's recognized speech.
	InputTranscript string
	// OutputTranscript is a delta of the model's generated speech.
	OutputTranscript string
	// Interrupted signals barge-in: all scheduled audio must be dropped.
	Interrupted bool
	// TurnComplete signals the end of the model's turn.
	TurnComplete bool
}

// Transport is the duplex connection to the model. Receive blocks until
// the next server event and returns io.EOF on orderly close.
type Transport interface {
	SendAudio(pcm []byte) error
	SendVideoFrame(jpeg []byte) error
	SendText(text string) error
	Receive() (*ServerEvent, error)
	Close() error
}

// ImageGenerator produces an image for a directive prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error)
}

// VideoGenerator produces a playable video URI for a directive prompt.
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, prompt string) (string, error)
}

// Session is one live duplex conversation.
type Session struct {
	cfg Config

	mu        sync.Mutex
	state     SessionState
	muted     bool
	videoMode VideoMode
	transport Transport
	frames    <-chan []float32
	reducer   *transcript.Reducer
	// directiveHandled is true once the open model turn's directive has
	// been dispatched; reset when the turn closes.
	directiveHandled bool
	messages         []types.ChatMessage

	scheduler *audio.Scheduler
	links     *linkTracker
	framer    *framer
	// droppedFrames accumulates drop counts from retired framers.
	droppedFrames int64

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewSession creates a session; Start opens it.
func NewSession(cfg Config) *Session {
	cfg.applyDefaults()
	return &Session{
		cfg:     cfg,
		reducer: &transcript.Reducer{},
		links:   newLinkTracker(),
		events:  make(chan Event, cfg.EventBuffer),
		done:    make(chan struct{}),
	}
}

// Events returns the channel of session events. A ClosedEvent is the
// terminal event; the channel itself is never closed.
func (s *Session) Events() <-chan Event {
	return s.events
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start acquires the microphone, dials the transport, and starts both
// directions. A device or dial failure moves the session to StateError
// and is returned; nothing is retried.
func (s *Session) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.setState(StateConnecting)

	if s.cfg.Mic != nil {
		frames, err := s.cfg.Mic.Start(s.ctx)
		if err != nil {
			perr := core.NewPermissionError(err.Error())
			s.fail(perr, i18n.T(s.cfg.Language, i18n.KeyMicDenied))
			return perr
		}
		s.mu.Lock()
		s.frames = frames
		s.mu.Unlock()
	}

	transport, err := s.cfg.Dial(s.ctx)
	if err != nil {
		if s.cfg.Mic != nil {
			s.cfg.Mic.Stop()
		}
		s.fail(err, i18n.T(s.cfg.Language, i18n.KeyConnectionFailed))
		return err
	}
	s.mu.Lock()
	s.transport = transport
	s.mu.Unlock()

	if s.cfg.Sink != nil {
		s.scheduler = audio.NewScheduler(audio.SchedulerConfig{
			SampleRate: s.cfg.PlaybackRate,
		}, s.cfg.Sink)
		s.scheduler.SetLevelFunc(func(rms float64) {
			s.emit(&LevelEvent{RMS: rms})
		})
	}

	s.setState(StateConnected)

	if s.frames != nil {
		s.wg.Add(1)
		go s.audioLoop()
	}
	s.wg.Add(1)
	go s.receiveLoop()
	return nil
}

// SetMuted pauses or resumes the outbound audio path. Captured frames are
// discarded while muted, not buffered.
func (s *Session) SetMuted(muted bool) {
	s.mu.Lock()
	s.muted = muted
	s.mu.Unlock()
}

// SetVideoMode switches the outbound video source. The previous frame
// loop stops before the new one starts; a system text notice tells the
// model what changed.
func (s *Session) SetVideoMode(mode VideoMode) error {
	s.mu.Lock()
	if s.state != StateConnected {
		s.mu.Unlock()
		return core.NewAPIError("session is not connected")
	}
	if s.videoMode == mode {
		s.mu.Unlock()
		return nil
	}
	prev := s.framer
	s.framer = nil
	if prev != nil {
		s.droppedFrames += prev.dropped.Load()
	}
	s.videoMode = mode
	transport := s.transport
	s.mu.Unlock()

	if prev != nil {
		prev.stop()
	}

	var source FrameSource
	switch mode {
	case VideoCamera:
		source = s.cfg.Camera
	case VideoScreen:
		source = s.cfg.Screen
	case VideoOff:
		_ = transport.SendText("(The user turned off video sharing.)")
		return nil
	}
	if source == nil {
		return core.NewPermissionError("no capture source for mode " + string(mode))
	}

	notice := "(The user turned on their camera. React to what you can see.)"
	if mode == VideoScreen {
		notice = "(The user started sharing their screen. React to what you can see.)"
	}
	_ = transport.SendText(notice)

	f := newFramer(source, s.cfg.FrameInterval, transport.SendVideoFrame)
	s.mu.Lock()
	s.framer = f
	s.mu.Unlock()
	f.start(s.ctx)
	return nil
}

// History returns the chat messages flushed from the transcript. Empty
// until the session closes.
func (s *Session) History() []types.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.ChatMessage(nil), s.messages...)
}

// Links returns every distinct URL surfaced from model text so far.
func (s *Session) Links() []string {
	return s.links.Links()
}

// DroppedFrames reports how many video capture ticks were skipped because
// a previous frame was still in flight.
func (s *Session) DroppedFrames() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.droppedFrames
	if s.framer != nil {
		n += s.framer.dropped.Load()
	}
	return n
}

// Close tears the session down: finalizes the open transcript turn,
// converts the turn history into chat messages, and releases the
// transport, scheduler, and capture devices. Idempotent and unconditional;
// safe to call at any time, in any state.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		prevState := s.state
		s.state = StateClosed
		f := s.framer
		s.framer = nil
		if f != nil {
			s.droppedFrames += f.dropped.Load()
		}
		transport := s.transport
		turns := s.reducer.Close()
		s.messages = transcript.Messages(turns)
		msgs := append([]types.ChatMessage(nil), s.messages...)
		s.mu.Unlock()

		if prevState != StateClosed {
			s.emit(&StateChangedEvent{From: prevState, To: StateClosed})
		}

		if s.cancel != nil {
			s.cancel()
		}
		if f != nil {
			f.stop()
		}
		if s.cfg.Mic != nil {
			s.cfg.Mic.Stop()
		}
		if s.scheduler != nil {
			s.scheduler.Close()
		}
		if transport != nil {
			_ = transport.Close()
		}

		s.emit(&ClosedEvent{Messages: msgs})
		close(s.done)
	})
}

// audioLoop encodes and transmits captured frames while connected and
// unmuted. Sample clamping happens inside the PCM16 encoder.
func (s *Session) audioLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case frame, ok := <-s.frames:
			if !ok {
				return
			}
			s.mu.Lock()
			muted := s.muted
			transport := s.transport
			connected := s.state == StateConnected
			s.mu.Unlock()
			if muted || !connected || len(frame) == 0 {
				continue
			}
			pcm := codec.EncodePCM16([][]float32{frame})
			if err := transport.SendAudio(pcm); err != nil {
				s.fatal(err)
				return
			}
		}
	}
}

// receiveLoop consumes server events until the transport closes.
func (s *Session) receiveLoop() {
	defer s.wg.Done()
	for {
		ev, err := s.transport.Receive()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			if err == io.EOF {
				s.Close()
				return
			}
			s.fatal(err)
			return
		}
		s.handleServerEvent(ev)
	}
}

func (s *Session) handleServerEvent(ev *ServerEvent) {
	if ev == nil {
		return
	}
	if len(ev.Audio) > 0 && s.scheduler != nil {
		s.scheduler.Schedule(ev.Audio)
	}
	if ev.Interrupted {
		if s.scheduler != nil {
			s.scheduler.Reset()
		}
		s.emit(&InterruptedEvent{})
	}
	if ev.InputTranscript != "" {
		s.foldTranscript(types.RoleUser, ev.InputTranscript)
	}
	if ev.OutputTranscript != "" {
		s.foldTranscript(types.RoleModel, ev.OutputTranscript)
	}
	if ev.TurnComplete {
		s.mu.Lock()
		s.reducer.FinishTurn()
		s.directiveHandled = false
		s.mu.Unlock()
		s.emit(&TurnCompleteEvent{})
	}
}

// foldTranscript feeds one delta into the reducer and, for model turns,
// scans the accumulated text for directives and links.
func (s *Session) foldTranscript(role types.Role, delta string) {
	s.mu.Lock()
	if open := s.reducer.Open(); open != nil && open.Role != role {
		// A role switch closes the previous turn and re-arms directive
		// detection for the next model turn.
		s.directiveHandled = false
	}
	s.reducer.Add(role, delta)
	open := s.reducer.Open()
	var text string
	if open != nil {
		text = open.Text
	}
	handled := s.directiveHandled
	s.mu.Unlock()

	if role == types.RoleModel {
		if !handled {
			if d, ok := directive.Extract(text); ok {
				text = strings.TrimSpace(directive.Strip(text))
				s.mu.Lock()
				s.directiveHandled = true
				s.reducer.SetOpenText(text)
				s.mu.Unlock()
				go s.runDirective(d)
			}
		}
		fresh, embedID := s.links.scan(text)
		for _, url := range fresh {
			s.emit(&LinkEvent{URL: url})
		}
		if embedID != "" {
			s.emit(&EmbedEvent{VideoID: embedID})
		}
	}

	s.emit(&TranscriptEvent{Role: role, Text: text})
}

// runDirective executes one generation request and attaches the result to
// whichever turn now owns it; the reducer guarantees the attachment lands
// on the open model turn or the most recently finalized one.
func (s *Session) runDirective(d directive.Directive) {
	switch d.Kind {
	case directive.KindVideo:
		if s.cfg.Videos == nil {
			return
		}
		uri, err := s.cfg.Videos.GenerateVideo(s.ctx, d.Prompt)
		if err != nil {
			s.emit(&ErrorEvent{Err: err, Text: i18n.T(s.cfg.Language, i18n.KeyVideoFailed)})
			return
		}
		s.mu.Lock()
		s.reducer.AttachVideo(uri)
		s.mu.Unlock()
		s.emit(&GeneratedMediaEvent{MIMEType: "video/mp4", URI: uri})
	default:
		if s.cfg.Images == nil {
			return
		}
		data, err := s.cfg.Images.GenerateImage(s.ctx, d.Prompt, s.cfg.AspectRatio)
		if err != nil {
			s.emit(&ErrorEvent{Err: err, Text: i18n.T(s.cfg.Language, i18n.KeyImageFailed)})
			return
		}
		s.mu.Lock()
		s.reducer.AttachImage(data)
		s.mu.Unlock()
		s.emit(&GeneratedMediaEvent{MIMEType: "image/png"})
	}
}

// fatal handles a mid-session failure: the session moves to StateError
// and stays there. Devices already granted are released only on explicit
// Close, leaving the user to decide when to leave.
func (s *Session) fatal(err error) {
	s.fail(err, core.UserMessage(err, s.cfg.Language))
}

func (s *Session) fail(err error, text string) {
	s.mu.Lock()
	if s.state == StateClosed || s.state == StateError {
		s.mu.Unlock()
		return
	}
	from := s.state
	s.state = StateError
	s.mu.Unlock()
	s.emit(&StateChangedEvent{From: from, To: StateError})
	s.emit(&ErrorEvent{Err: err, Text: text})
}

func (s *Session) setState(to SessionState) {
	s.mu.Lock()
	from := s.state
	s.state = to
	s.mu.Unlock()
	if from != to {
		s.emit(&StateChangedEvent{From: from, To: to})
	}
}

// emit sends an event to the events channel, dropping it when full.
func (s *Session) emit(event Event) {
	select {
	case s.events <- event:
	default:
	}
}
