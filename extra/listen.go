package extra

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/chalskim/adSTTS/config"
)

var ErrNoAudioDevice = errors.New("audio support not built in (rebuild with -tags extra)")

// Listener feeds fixed-length microphone blocks to an STT backend.
type Listener struct {
	logger *slog.Logger
	cfg    *config.Config
	stt    STT
}

func NewListener(logger *slog.Logger, cfg *config.Config, stt STT) *Listener {
	return &Listener{logger: logger, cfg: cfg, stt: stt}
}

func (l *Listener) blockSamples() int {
	return l.cfg.STT_SR * l.cfg.ListenBlockSec
}

// transcribeBlock skips blocks shorter than a second.
func (l *Listener) transcribeBlock(ctx context.Context, samples []int16) (string, error) {
	if len(samples) <= l.cfg.STT_SR {
		return "", nil
	}
	data, err := pcmToWav(samples, l.cfg.STT_SR)
	if err != nil {
		return "", err
	}
	f, err := os.CreateTemp("", "adstts-listen-*.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return l.stt.TranscribeFile(ctx, f.Name())
}

// consume transcribes blocks until the channel closes. Non-empty text is
// sent to out.
func (l *Listener) consume(ctx context.Context, blocks <-chan []int16, out chan<- string) {
	for block := range blocks {
		text, err := l.transcribeBlock(ctx, block)
		if err != nil {
			if ctx.Err() == nil {
				l.logger.Error("failed to transcribe block", "error", err)
			}
			continue
		}
		if text == "" {
			continue
		}
		select {
		case out <- text:
		case <-ctx.Done():
		}
	}
}
