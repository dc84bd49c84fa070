package main

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mano-habib/gimanoui/pkg/core/audio"
	"github.com/mano-habib/gimanoui/pkg/core/live"
	"github.com/mano-habib/gimanoui/pkg/core/types"
	"github.com/mano-habib/gimanoui/pkg/gemini"
)

// runLive drives one live duplex session from the terminal. Returns when
// the session ends, locally or from the server side.
func (r *repl) runLive(ctx context.Context) {
	mic := newFFmpegMic(r.cfg.FFmpegPath, 16000)

	var sink audio.Sink
	if r.speaker != nil {
		sink = r.speaker
	}

	sess := live.NewSession(live.Config{
		Dial: func(ctx context.Context) (live.Transport, error) {
			return r.backend.client.DialLive(ctx, gemini.LiveOptions{
				VoiceName:         r.voice.APIName,
				SystemInstruction: gemini.LiveSystemInstruction,
			})
		},
		Mic:         mic,
		Camera:      newCameraSource(r.cfg.FFmpegPath, r.cfg.CameraDevice),
		Screen:      newScreenSource(r.cfg.FFmpegPath, r.cfg.ScreenDevice),
		Sink:        sink,
		Images:      r.backend,
		Videos:      r.backend,
		Language:    r.cfg.Language,
		AspectRatio: r.cfg.AspectRatio,
	})

	liveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The live scheduler owns the speaker for the whole session; clips
	// still pending from the turn-based chat must not write over it.
	r.ctrl.StopSpeech()

	if err := sess.Start(liveCtx); err != nil {
		fmt.Fprintf(r.out, "! live session failed: %v\n", err)
		return
	}
	r.metrics.ActiveLiveSessions.Add(ctx, 1)
	defer r.metrics.ActiveLiveSessions.Add(ctx, -1)

	fmt.Fprintln(r.out, "live session started. Speak, or type: /mute /unmute /camera /screen /novideo /stop")

	g, gctx := errgroup.WithContext(liveCtx)
	g.Go(func() error { return r.liveEvents(gctx, sess) })
	g.Go(func() error {
		defer sess.Close()
		return r.liveInput(gctx, sess)
	})
	_ = g.Wait()

	r.metrics.FramesDropped.Add(ctx, sess.DroppedFrames())
	r.mergeLiveHistory(ctx, sess.History())
	fmt.Fprintln(r.out, "live session ended")
}

// liveEvents prints session events until the session closes. Transcript
// events carry the whole open turn, so only the unseen tail is printed.
func (r *repl) liveEvents(ctx context.Context, sess *live.Session) error {
	var (
		openRole types.Role
		printed  int
	)
	newline := func() {
		if printed > 0 {
			fmt.Fprintln(r.out)
			printed = 0
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-sess.Events():
			switch e := ev.(type) {
			case *live.TranscriptEvent:
				if e.Role != openRole {
					newline()
					openRole = e.Role
					if e.Role == types.RoleModel {
						fmt.Fprint(r.out, "gimanoui: ")
					} else {
						fmt.Fprint(r.out, "you: ")
					}
				}
				printed += printDelta(r.out, e.Text, printed)
			case *live.TurnCompleteEvent:
				newline()
				openRole = ""
			case *live.InterruptedEvent:
				newline()
				r.metrics.Interruptions.Add(ctx, 1)
			case *live.LinkEvent:
				newline()
				fmt.Fprintf(r.out, "  link: %s\n", e.URL)
			case *live.EmbedEvent:
				newline()
				fmt.Fprintf(r.out, "  video: https://www.youtube.com/watch?v=%s\n", e.VideoID)
			case *live.GeneratedMediaEvent:
				newline()
				if e.URI != "" {
					fmt.Fprintf(r.out, "  generated %s: %s\n", e.MIMEType, e.URI)
				} else {
					fmt.Fprintf(r.out, "  generated %s (attached to transcript)\n", e.MIMEType)
				}
			case *live.ErrorEvent:
				newline()
				fmt.Fprintf(r.out, "! %s\n", e.Text)
			case *live.ClosedEvent:
				newline()
				return nil
			}
		}
	}
}

// liveInput handles in-session commands. Scanning blocks on the terminal,
// so after a remote close the loop ends on the next entered line.
func (r *repl) liveInput(ctx context.Context, sess *live.Session) error {
	for {
		if !r.scanner.Scan() {
			return r.scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		switch strings.TrimSpace(r.scanner.Text()) {
		case "/stop", "/quit", "/exit":
			return nil
		case "/mute":
			sess.SetMuted(true)
			fmt.Fprintln(r.out, "microphone muted")
		case "/unmute":
			sess.SetMuted(false)
			fmt.Fprintln(r.out, "microphone live")
		case "/camera":
			if err := sess.SetVideoMode(live.VideoCamera); err != nil {
				fmt.Fprintf(r.out, "! %v\n", err)
			}
		case "/screen":
			if err := sess.SetVideoMode(live.VideoScreen); err != nil {
				fmt.Fprintf(r.out, "! %v\n", err)
			}
		case "/novideo":
			if err := sess.SetVideoMode(live.VideoOff); err != nil {
				fmt.Fprintf(r.out, "! %v\n", err)
			}
		case "":
			if sess.State() == live.StateClosed || sess.State() == live.StateError {
				return nil
			}
		default:
			fmt.Fprintln(r.out, "in-session commands: /mute /unmute /camera /screen /novideo /stop")
		}
	}
}

// mergeLiveHistory folds the spoken conversation into the chat history so
// the next typed turn has the full context.
func (r *repl) mergeLiveHistory(ctx context.Context, msgs []types.ChatMessage) {
	if len(msgs) == 0 {
		return
	}
	r.ctrl.SetHistory(append(r.ctrl.History(), msgs...))
	r.persist(ctx)
}
