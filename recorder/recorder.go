package recorder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/chalskim/adSTTS/config"
)

var (
	ErrAlreadyRecording = errors.New("recording already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
)

type Mode string

const (
	ModeAudio  Mode = "audio"
	ModeScreen Mode = "screen"
)

// how long ffmpeg gets to finalize the container after "q"
const stopGrace = 5 * time.Second

// DefaultOutput names a recording in dir the way the desktop app did:
// audio_recording_<ts>.wav or screen_recording_<ts>.mov.
func DefaultOutput(dir string, mode Mode, now time.Time) string {
	ts := now.Format("20060102_150405")
	if mode == ModeScreen {
		return filepath.Join(dir, fmt.Sprintf("screen_recording_%s.mov", ts))
	}
	return filepath.Join(dir, fmt.Sprintf("audio_recording_%s.wav", ts))
}

// session is one running ffmpeg process. done is closed once it exits,
// after err is set.
type session struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	output string
	done   chan struct{}
	err    error
}

type Recorder struct {
	logger *slog.Logger
	ffmpeg string
	cfg    *config.Config

	mu  sync.Mutex
	cur *session
}

func New(logger *slog.Logger, cfg *config.Config, ffmpeg string) *Recorder {
	return &Recorder{
		logger: logger,
		ffmpeg: ffmpeg,
		cfg:    cfg,
	}
}

// Args builds the ffmpeg command line for mode. maxSec bounds the capture.
func (r *Recorder) Args(mode Mode, out string, maxSec int) []string {
	cfg := r.cfg
	args := []string{"-y"}
	switch mode {
	case ModeScreen:
		if cfg.RecordInputFormat == "pulse" {
			// linux: video and audio come from separate devices
			args = append(args,
				"-f", "x11grab", "-framerate", strconv.Itoa(cfg.ScreenFPS), "-i", cfg.RecordScreenInput,
				"-f", "pulse", "-i", cfg.RecordAudioInput)
		} else {
			args = append(args, "-f", cfg.RecordInputFormat, "-i", cfg.RecordScreenInput)
		}
		args = append(args,
			"-vf", "scale="+cfg.ScreenScale,
			"-r", strconv.Itoa(cfg.ScreenFPS))
	default:
		args = append(args, "-f", cfg.RecordInputFormat, "-i", cfg.RecordAudioInput)
	}
	return append(args, "-t", strconv.Itoa(maxSec), out)
}

// Start launches ffmpeg in the background. maxSec <= 0 means RecordMaxSec.
func (r *Recorder) Start(ctx context.Context, mode Mode, out string, maxSec int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cur != nil {
		return ErrAlreadyRecording
	}
	if maxSec <= 0 {
		maxSec = r.cfg.RecordMaxSec
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	args := r.Args(mode, out, maxSec)
	r.logger.Info("recording started", "mode", mode, "output", out, "args", args)
	cmd := exec.CommandContext(ctx, r.ffmpeg, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open ffmpeg stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	s := &session{cmd: cmd, stdin: stdin, output: out, done: make(chan struct{})}
	go func() {
		s.err = cmd.Wait()
		close(s.done)
	}()
	r.cur = s
	return nil
}

func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cur != nil
}

func (r *Recorder) current() *session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cur
}

func (r *Recorder) release(s *session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cur == s {
		r.cur = nil
	}
}

// Wait blocks until ffmpeg exits, either on its own once the duration is
// reached or because Stop was called.
func (r *Recorder) Wait() (string, error) {
	s := r.current()
	if s == nil {
		return "", ErrNotRecording
	}
	<-s.done
	r.release(s)
	return finished(s)
}

// Stop asks ffmpeg to finish by sending "q" and kills it if it does not
// exit within the grace period.
func (r *Recorder) Stop() (string, error) {
	s := r.current()
	if s == nil {
		return "", ErrNotRecording
	}
	if _, err := io.WriteString(s.stdin, "q"); err != nil {
		r.logger.Warn("failed to send quit to ffmpeg", "error", err)
	}
	_ = s.stdin.Close()
	select {
	case <-s.done:
	case <-time.After(stopGrace):
		r.logger.Warn("ffmpeg did not exit in time, killing")
		if err := s.cmd.Process.Kill(); err != nil {
			r.logger.Error("failed to kill ffmpeg", "error", err)
		}
		<-s.done
	}
	r.release(s)
	r.logger.Info("recording stopped", "output", s.output, "exit", s.err)
	return finished(s)
}

// finished treats a non-zero exit as success when the file exists; ffmpeg
// exits 255 after "q".
func finished(s *session) (string, error) {
	if _, statErr := os.Stat(s.output); statErr != nil {
		if s.err != nil {
			return "", fmt.Errorf("ffmpeg recording failed: %w", s.err)
		}
		return "", fmt.Errorf("recording not written: %w", statErr)
	}
	return s.output, nil
}
