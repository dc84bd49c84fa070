package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/mano-habib/gimanoui/pkg/core/codec"
)

const micFrameDuration = 20 * time.Millisecond

// ffmpegMic captures microphone audio through an ffmpeg child process and
// delivers fixed 20ms mono float32 frames.
type ffmpegMic struct {
	path       string
	sampleRate int

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

func newFFmpegMic(path string, sampleRate int) *ffmpegMic {
	return &ffmpegMic{path: path, sampleRate: sampleRate}
}

func (m *ffmpegMic) Start(ctx context.Context) (<-chan []float32, error) {
	if _, err := exec.LookPath(m.path); err != nil {
		return nil, errors.New("ffmpeg is required for mic capture (install ffmpeg and ensure it is in PATH)")
	}
	args, err := micArgs(runtime.GOOS, m.sampleRate)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(m.path, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open ffmpeg stdout: %w", err)
	}
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg mic capture: %w", err)
	}

	m.mu.Lock()
	m.cmd = cmd
	m.stdout = stdout
	m.mu.Unlock()

	frames := make(chan []float32, 8)
	frameBytes := m.sampleRate * 2 * int(micFrameDuration) / int(time.Second)
	go func() {
		defer close(frames)
		buf := make([]byte, frameBytes)
		for {
			if _, err := io.ReadFull(stdout, buf); err != nil {
				return
			}
			frame := codec.DecodePCM16(buf, m.sampleRate, 1).Channels[0]
			select {
			case frames <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()
	return frames, nil
}

func (m *ffmpegMic) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cmd != nil && m.cmd.Process != nil {
		_ = m.cmd.Process.Kill()
		_ = m.cmd.Wait()
	}
	m.cmd = nil
	m.stdout = nil
}

func micArgs(goos string, sampleRate int) ([]string, error) {
	switch goos {
	case "darwin":
		return []string{
			"-hide_banner", "-loglevel", "error",
			"-f", "avfoundation", "-i", ":0",
			"-ac", "1", "-ar", fmt.Sprintf("%d", sampleRate),
			"-f", "s16le", "-",
		}, nil
	case "linux":
		return []string{
			"-hide_banner", "-loglevel", "error",
			"-f", "pulse", "-i", "default",
			"-ac", "1", "-ar", fmt.Sprintf("%d", sampleRate),
			"-f", "s16le", "-",
		}, nil
	default:
		return nil, fmt.Errorf("mic capture is not implemented for %s; supported platforms: darwin, linux", goos)
	}
}

// ffmpegFrameSource grabs single JPEG frames from a capture device. One
// ffmpeg invocation per frame keeps the device free between captures.
type ffmpegFrameSource struct {
	path string
	args []string
}

func newCameraSource(ffmpegPath, device string) *ffmpegFrameSource {
	var args []string
	switch runtime.GOOS {
	case "darwin":
		args = []string{"-f", "avfoundation", "-framerate", "30", "-i", device}
	default:
		args = []string{"-f", "v4l2", "-i", device}
	}
	return &ffmpegFrameSource{path: ffmpegPath, args: args}
}

func newScreenSource(ffmpegPath, display string) *ffmpegFrameSource {
	var args []string
	switch runtime.GOOS {
	case "darwin":
		args = []string{"-f", "avfoundation", "-capture_cursor", "1", "-i", display}
	default:
		args = []string{"-f", "x11grab", "-i", display}
	}
	return &ffmpegFrameSource{path: ffmpegPath, args: args}
}

func (f *ffmpegFrameSource) CaptureJPEG(ctx context.Context) ([]byte, error) {
	args := append([]string{"-hide_banner", "-loglevel", "error"}, f.args...)
	args = append(args,
		"-frames:v", "1",
		"-q:v", "5",
		"-vf", "scale=640:-2",
		"-f", "image2", "-",
	)
	out, err := exec.CommandContext(ctx, f.path, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("capture frame: %w", err)
	}
	if len(out) == 0 {
		return nil, errors.New("capture frame: empty output")
	}
	return out, nil
}
