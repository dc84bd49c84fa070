package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/mano-habib/gimanoui/pkg/core/codec"
)

// ffplaySpeaker renders PCM16 mono audio through an ffplay child process.
// It serves both surfaces: the chat queue plays whole clips through Play,
// and the live scheduler streams raw frames through Write.
type ffplaySpeaker struct {
	path       string
	sampleRate int

	mu    sync.Mutex
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

func newFFplaySpeaker(path string, sampleRate int) (*ffplaySpeaker, error) {
	if _, err := exec.LookPath(path); err != nil {
		return nil, errors.New("ffplay is required for audio playback (install ffmpeg and ensure it is in PATH)")
	}
	s := &ffplaySpeaker{path: path, sampleRate: sampleRate}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s, s.startLocked()
}

func (s *ffplaySpeaker) startLocked() error {
	cmd := exec.Command(s.path,
		"-hide_banner",
		"-nodisp",
		"-loglevel", "error",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", s.sampleRate),
		"-ch_layout", "mono",
		"-i", "-",
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open ffplay stdin: %w", err)
	}
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start ffplay: %w", err)
	}
	s.cmd = cmd
	s.stdin = stdin
	go func() {
		_ = cmd.Wait()
		s.mu.Lock()
		if s.cmd == cmd {
			s.cmd = nil
			s.stdin = nil
		}
		s.mu.Unlock()
	}()
	return nil
}

// Play blocks until the whole clip has been handed to ffplay.
func (s *ffplaySpeaker) Play(ctx context.Context, buf *codec.AudioBuffer) error {
	if buf == nil || buf.Frames() == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Write(codec.EncodePCM16(buf.Channels))
}

// Halt restarts the ffplay process, discarding anything it had buffered.
func (s *ffplaySpeaker) Halt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	_ = s.startLocked()
}

// Write streams raw PCM16 bytes. Restarts ffplay if its process died.
func (s *ffplaySpeaker) Write(pcm []byte) error {
	if len(pcm) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stdin == nil {
		if err := s.startLocked(); err != nil {
			return err
		}
	}
	_, err := s.stdin.Write(pcm)
	return err
}

func (s *ffplaySpeaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *ffplaySpeaker) stopLocked() {
	if s.stdin != nil {
		_ = s.stdin.Close()
	}
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	s.cmd = nil
	s.stdin = nil
}
