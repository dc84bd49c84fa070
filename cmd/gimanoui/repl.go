package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mano-habib/gimanoui/internal/config"
	"github.com/mano-habib/gimanoui/internal/observe"
	"github.com/mano-habib/gimanoui/pkg/core/chat"
	"github.com/mano-habib/gimanoui/pkg/core/codec"
	"github.com/mano-habib/gimanoui/pkg/core/types"
	"github.com/mano-habib/gimanoui/pkg/store"
	"github.com/mano-habib/gimanoui/pkg/voice"
)

type repl struct {
	cfg     *config.Config
	ctrl    *chat.Controller
	backend *measuredBackend
	store   store.Store
	speaker *ffplaySpeaker
	metrics *observe.Metrics
	voice   voice.Voice

	in      io.Reader
	out     io.Writer
	scanner *bufio.Scanner

	// persisted tracks how much of the controller history has been
	// written to the store.
	persisted int

	// imageState survives between /edit invocations so a prompt without
	// a file refines the previous result.
	imageState types.ImageGenState
}

func (r *repl) run(ctx context.Context) error {
	fmt.Fprintf(r.out, "Gimanoui. Voice: %s. Type /help for commands, /quit to exit.\n", r.voice.DisplayName(r.cfg.Language))

	r.persisted = len(r.ctrl.History())

	r.scanner = bufio.NewScanner(r.in)
	r.scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(r.out, "> ")
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(r.out)
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := r.handleCommand(ctx, line); quit {
				return nil
			}
			continue
		}

		r.sendAndWait(ctx, line, nil)
	}
}

// sendAndWait runs one exchange synchronously, printing streamed text as
// it accumulates.
func (r *repl) sendAndWait(ctx context.Context, text string, media []types.MediaItem) {
	start := time.Now()
	if err := r.ctrl.Send(ctx, text, media); err != nil {
		fmt.Fprintf(r.out, "! %v\n", err)
		return
	}

	var printed int
	var lastID string
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-r.ctrl.Events():
			switch e := ev.(type) {
			case *chat.MessageUpdatedEvent:
				if e.Message.Role != types.RoleModel {
					continue
				}
				if e.Message.ID != lastID {
					lastID = e.Message.ID
					printed = 0
				}
				printed += printDelta(r.out, e.Message.Text, printed)
			case *chat.ErrorEvent:
				fmt.Fprintf(r.out, "\n! %s\n", e.Text)
			case *chat.TurnCompleteEvent:
				fmt.Fprintln(r.out)
				r.metrics.ChatTurnDuration.Record(ctx, time.Since(start).Seconds())
				r.printMedia(r.ctrl.History())
				r.persist(ctx)
				return
			}
		}
	}
}

// printDelta writes the unprinted tail of text and returns how many bytes
// it wrote. A shrunk text (directive stripping) prints nothing.
func printDelta(out io.Writer, text string, printed int) int {
	if printed >= len(text) {
		return 0
	}
	fmt.Fprint(out, text[printed:])
	return len(text) - printed
}

func (r *repl) printMedia(history []types.ChatMessage) {
	if len(history) == 0 {
		return
	}
	last := history[len(history)-1]
	for _, item := range last.Media {
		switch {
		case item.URI != "":
			fmt.Fprintf(r.out, "[%s] %s\n", item.MIMEType, item.URI)
		case len(item.Data) > 0:
			path, err := saveMedia(item)
			if err != nil {
				fmt.Fprintf(r.out, "! save media: %v\n", err)
				continue
			}
			fmt.Fprintf(r.out, "[%s] saved to %s\n", item.MIMEType, path)
		}
	}
	for _, src := range last.Sources {
		fmt.Fprintf(r.out, "  source: %s (%s)\n", src.Title, src.URI)
	}
}

// persist appends any history the store has not seen yet.
func (r *repl) persist(ctx context.Context) {
	history := r.ctrl.History()
	if len(history) <= r.persisted {
		return
	}
	if err := r.store.AppendMessages(ctx, history[r.persisted:]); err != nil {
		fmt.Fprintf(r.out, "! persist history: %v\n", err)
		return
	}
	r.persisted = len(history)
}

func (r *repl) handleCommand(ctx context.Context, line string) (quit bool) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		fmt.Fprintln(r.out, "bye")
		return true

	case "/help":
		fmt.Fprintln(r.out, `commands:
  /voices              list available voices
  /voice <id>          switch the speaking voice
  /say                 replay the last reply out loud
  /correct <text>      proofread text without a conversation turn
  /persona <name>: <prompt>   answer a prompt in a named persona
  /analyze <file>      describe an image or audio file
  /edit <file> <prompt>       edit an image with a prompt
  /podcast <topic>     generate and play a two-host podcast
  /yt <query>          find a YouTube video for a song or clip
  /clear               wipe the conversation
  /live                start a live voice session
  /quit                exit`)

	case "/voices":
		voices, err := voice.All()
		if err != nil {
			fmt.Fprintf(r.out, "! %v\n", err)
			return false
		}
		for _, v := range voices {
			marker := " "
			if v.ID == r.voice.ID {
				marker = "*"
			}
			fmt.Fprintf(r.out, "%s %-12s %s (%s, %s)\n", marker, v.ID, v.DisplayName(r.cfg.Language), v.Gender, v.Style)
		}

	case "/voice":
		if arg == "" {
			fmt.Fprintf(r.out, "current voice: %s\n", r.voice.ID)
			return false
		}
		v, err := voice.ByID(arg)
		if err != nil {
			fmt.Fprintf(r.out, "! %v\n", err)
			return false
		}
		r.voice = v
		r.ctrl.SetVoice(v.APIName)
		if err := r.store.SetVoiceID(ctx, v.ID); err != nil {
			fmt.Fprintf(r.out, "! persist voice: %v\n", err)
		}
		fmt.Fprintf(r.out, "voice switched to %s\n", v.DisplayName(r.cfg.Language))

	case "/say":
		history := r.ctrl.History()
		for i := len(history) - 1; i >= 0; i-- {
			if history[i].Role == types.RoleModel {
				if err := r.ctrl.PlaySpeech(ctx, history[i].ID); err != nil {
					fmt.Fprintf(r.out, "! %v\n", err)
				}
				return false
			}
		}
		fmt.Fprintln(r.out, "nothing to say yet")

	case "/correct":
		if r.backend == nil {
			fmt.Fprintln(r.out, "! an API key is required for this command")
			return false
		}
		if arg == "" {
			fmt.Fprintln(r.out, "usage: /correct <text>")
			return false
		}
		fixed, err := r.backend.client.CorrectText(ctx, arg, r.cfg.Language)
		if err != nil {
			fmt.Fprintf(r.out, "! %v\n", err)
			return false
		}
		fmt.Fprintln(r.out, fixed)

	case "/persona":
		if r.backend == nil {
			fmt.Fprintln(r.out, "! an API key is required for this command")
			return false
		}
		name, prompt, ok := strings.Cut(arg, ":")
		name = strings.TrimSpace(name)
		prompt = strings.TrimSpace(prompt)
		if !ok || name == "" || prompt == "" {
			fmt.Fprintln(r.out, "usage: /persona <name>: <prompt>")
			return false
		}
		text, err := r.backend.client.PersonaText(ctx, prompt, name)
		if err != nil {
			fmt.Fprintf(r.out, "! %v\n", err)
			return false
		}
		fmt.Fprintln(r.out, text)

	case "/analyze":
		r.analyzeFile(ctx, arg)

	case "/edit":
		r.editImage(ctx, arg)

	case "/podcast":
		r.podcast(ctx, arg)

	case "/yt":
		if r.backend == nil {
			fmt.Fprintln(r.out, "! an API key is required for this command")
			return false
		}
		if arg == "" {
			fmt.Fprintln(r.out, "usage: /yt <query>")
			return false
		}
		id, err := r.backend.client.SearchYouTubeVideoID(ctx, arg)
		if err != nil {
			fmt.Fprintf(r.out, "! %v\n", err)
			return false
		}
		fmt.Fprintf(r.out, "https://www.youtube.com/watch?v=%s\n", id)

	case "/clear":
		r.ctrl.SetHistory(nil)
		r.persisted = 0
		if err := r.store.ClearHistory(ctx); err != nil {
			fmt.Fprintf(r.out, "! clear stored history: %v\n", err)
			return false
		}
		fmt.Fprintln(r.out, "conversation cleared")

	case "/live":
		if r.backend == nil {
			fmt.Fprintln(r.out, "! an API key is required for live mode")
			return false
		}
		r.runLive(ctx)

	default:
		fmt.Fprintf(r.out, "unknown command %s (try /help)\n", cmd)
	}
	return false
}

func (r *repl) analyzeFile(ctx context.Context, path string) {
	if r.backend == nil {
		fmt.Fprintln(r.out, "! an API key is required for this command")
		return
	}
	if path == "" {
		fmt.Fprintln(r.out, "usage: /analyze <file>")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(r.out, "! %v\n", err)
		return
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	result, err := r.backend.client.AnalyzeMedia(ctx, data, mimeType)
	if err != nil {
		fmt.Fprintf(r.out, "! %v\n", err)
		return
	}
	fmt.Fprintln(r.out, result.Summary)
	for _, line := range result.Transcript {
		fmt.Fprintf(r.out, "  %s: %s\n", line.Speaker, line.Text)
	}
}

func (r *repl) editImage(ctx context.Context, arg string) {
	if r.backend == nil {
		fmt.Fprintln(r.out, "! an API key is required for this command")
		return
	}
	arg = strings.TrimSpace(arg)
	if arg == "" {
		fmt.Fprintln(r.out, "usage: /edit <file> <prompt>, or /edit <prompt> to refine the last result")
		return
	}

	var data []byte
	mimeType := "image/png"
	path, prompt, _ := strings.Cut(arg, " ")
	if fileExists(path) {
		prompt = strings.TrimSpace(prompt)
		if prompt == "" {
			fmt.Fprintln(r.out, "usage: /edit <file> <prompt>")
			return
		}
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(r.out, "! %v\n", err)
			return
		}
		if mt := mime.TypeByExtension(filepath.Ext(path)); mt != "" {
			mimeType = mt
		}
	} else {
		// No readable file up front: the whole argument is a prompt
		// against whatever the previous edit produced.
		prompt = arg
	}

	sources := editSources(r.imageState, data, mimeType)
	if len(sources) == 0 {
		fmt.Fprintln(r.out, "no image to edit: pass a file first")
		return
	}
	r.imageState.Mode = types.ImageGenEdit
	r.imageState.EditPrompt = prompt
	r.imageState.EditSourceImages = sources
	r.imageState.EditAspectRatio = r.cfg.AspectRatio

	edited, err := r.backend.client.EditImage(ctx, sources, prompt)
	if err != nil {
		fmt.Fprintf(r.out, "! %v\n", err)
		return
	}
	r.imageState.EditGeneratedData = edited

	saved, err := saveMedia(types.MediaItem{Data: edited, MIMEType: "image/png"})
	if err != nil {
		fmt.Fprintf(r.out, "! save image: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "edited image saved to %s\n", saved)
}

// editSources picks the inputs for an edit request: a freshly loaded file
// when one was given, otherwise the previous edit's output so refinements
// chain. Empty when neither exists.
func editSources(state types.ImageGenState, data []byte, mimeType string) []types.MediaItem {
	if len(data) > 0 {
		return []types.MediaItem{{Data: data, MIMEType: mimeType}}
	}
	if len(state.EditGeneratedData) > 0 {
		return []types.MediaItem{{Data: state.EditGeneratedData, MIMEType: "image/png"}}
	}
	return state.EditSourceImages
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (r *repl) podcast(ctx context.Context, topic string) {
	if r.backend == nil {
		fmt.Fprintln(r.out, "! an API key is required for this command")
		return
	}
	if topic == "" {
		fmt.Fprintln(r.out, "usage: /podcast <topic>")
		return
	}
	speakers := []types.SpeakerVoice{
		{Speaker: "Host", VoiceAPIName: r.voice.APIName},
		{Speaker: "Guest", VoiceAPIName: "Puck"},
	}
	buf, err := r.backend.client.GeneratePodcastSpeech(ctx, topic, speakers, "casual and curious", func(status string) {
		fmt.Fprintf(r.out, "  %s\n", status)
	})
	if err != nil {
		fmt.Fprintf(r.out, "! %v\n", err)
		return
	}
	r.playPodcast(ctx, buf)
}

// playPodcast renders a finished podcast clip, tolerating a nil buffer
// (a script can come back with no speakable audio at all).
func (r *repl) playPodcast(ctx context.Context, buf *codec.AudioBuffer) {
	if buf == nil {
		fmt.Fprintln(r.out, "the generated script produced no audio")
		return
	}
	if r.speaker == nil {
		fmt.Fprintf(r.out, "generated %.1fs of audio, but no speaker is available\n", buf.Duration())
		return
	}
	if err := r.speaker.Play(ctx, buf); err != nil {
		fmt.Fprintf(r.out, "! playback: %v\n", err)
	}
}

func saveMedia(item types.MediaItem) (string, error) {
	exts, _ := mime.ExtensionsByType(item.MIMEType)
	ext := ".bin"
	if len(exts) > 0 {
		ext = exts[0]
	}
	f, err := os.CreateTemp("", "gimanoui-*"+ext)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(item.Data); err != nil {
		return "", err
	}
	return f.Name(), nil
}
