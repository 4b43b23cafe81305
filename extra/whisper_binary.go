package extra

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chalskim/adSTTS/config"
	"github.com/chalskim/adSTTS/tools"
)

// WhisperBinary runs a whisper.cpp command line build.
type WhisperBinary struct {
	logger      *slog.Logger
	cfg         *config.Config
	whisperPath string
	modelPath   string
	lang        string
}

func NewWhisperBinary(logger *slog.Logger, cfg *config.Config) *WhisperBinary {
	modelPath := cfg.WhisperModelPath
	if modelPath == "" {
		modelPath = filepath.Join("models", fmt.Sprintf("ggml-%s.bin", cfg.WhisperModel))
	}
	lang := cfg.STT_LANG
	if lang == "" {
		lang = "auto"
	}
	return &WhisperBinary{
		logger:      logger,
		cfg:         cfg,
		whisperPath: cfg.WhisperBinaryPath,
		modelPath:   modelPath,
		lang:        lang,
	}
}

func (w *WhisperBinary) Name() string {
	return "WHISPER_BINARY"
}

func (w *WhisperBinary) args(wavPath string) []string {
	return []string{
		"-m", w.modelPath,
		"-f", wavPath,
		"-l", w.lang,
		"-nt", // no timestamps
		"-np", // only results on stdout
	}
}

func (w *WhisperBinary) TranscribeFile(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(w.modelPath); err != nil {
		return "", fmt.Errorf("whisper model not found at %s: %w", w.modelPath, err)
	}
	bin, err := tools.Locate(w.whisperPath, nil)
	if err != nil {
		return "", err
	}
	wavPath, cleanup, err := ensureWav(ctx, w.logger, w.cfg, path)
	if err != nil {
		return "", err
	}
	defer cleanup()
	out, err := tools.Run(ctx, w.logger, bin, w.args(wavPath)...)
	if err != nil {
		return "", fmt.Errorf("whisper failed: %w", err)
	}
	return cleanTranscript(string(out)), nil
}
