//go:build !extra
// +build !extra

package extra

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chalskim/adSTTS/config"
)

// GoogleEngine is left out of builds without the extra tag: the gTTS
// client links the beep speaker, which needs cgo and ALSA.
type GoogleEngine struct {
	logger *slog.Logger
}

func NewGoogleEngine(logger *slog.Logger, cfg *config.Config) *GoogleEngine {
	return &GoogleEngine{logger: logger}
}

func (g *GoogleEngine) Name() string {
	return "google"
}

func (g *GoogleEngine) Synthesize(ctx context.Context, req Request) error {
	g.logger.Debug("google voice not available - extra modules disabled")
	return fmt.Errorf("google voice: %w", ErrNoAudioDevice)
}
