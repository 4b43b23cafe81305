//go:build extra
// +build extra

package extra

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/chalskim/adSTTS/config"

	google_translate_tts "github.com/GrailFinder/google-translate-tts"
	"github.com/GrailFinder/google-translate-tts/handlers"
)

// GoogleEngine uses the Google Translate voice (gTTS).
type GoogleEngine struct {
	logger *slog.Logger
	folder string
}

func NewGoogleEngine(logger *slog.Logger, cfg *config.Config) *GoogleEngine {
	return &GoogleEngine{logger: logger, folder: cfg.TTSCacheDir}
}

func (g *GoogleEngine) Name() string {
	return "google"
}

func (g *GoogleEngine) Synthesize(ctx context.Context, req Request) error {
	lang, err := LookupLanguage(req.Language)
	if err != nil {
		return err
	}
	if req.Speed < 1.0 {
		g.logger.Debug("google voice in slow mode", "speed", req.Speed)
	}
	speech := &google_translate_tts.Speech{
		Folder:   g.folder,
		Language: lang.Google,
		Speed:    req.Speed,
		Handler:  &handlers.Beep{},
	}
	var segments [][]byte
	for _, sentence := range splitSentences(req.Text) {
		if err := ctx.Err(); err != nil {
			return err
		}
		reader, err := speech.GenerateSpeech(sentence)
		if err != nil {
			return fmt.Errorf("generate speech failed: %w", err)
		}
		audio, err := io.ReadAll(reader)
		if err != nil {
			return fmt.Errorf("failed to read speech: %w", err)
		}
		segments = append(segments, audio)
	}
	return writeSegments(req.Output, segments)
}
