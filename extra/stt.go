package extra

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/chalskim/adSTTS/config"
	"github.com/chalskim/adSTTS/tools"
)

var specialRE = regexp.MustCompile(`\[.*?\]`)

// STT turns one audio file into text.
type STT interface {
	TranscribeFile(ctx context.Context, path string) (string, error)
	Name() string
}

func NewSTT(logger *slog.Logger, cfg *config.Config) (STT, error) {
	switch strings.ToUpper(cfg.STT_TYPE) {
	case "WHISPER_SERVER":
		logger.Debug("stt init, chosen whisper server")
		if cfg.STT_URL == "" {
			return nil, errors.New("STT_URL is required for WHISPER_SERVER")
		}
		return NewWhisperServer(logger, cfg), nil
	case "OPENAI":
		logger.Debug("stt init, chosen openai")
		return NewOpenAISTT(logger, cfg)
	case "WHISPER_BINARY", "":
		logger.Debug("stt init, chosen whisper binary")
		return NewWhisperBinary(logger, cfg), nil
	}
	return nil, fmt.Errorf("unknown STT_TYPE %q", cfg.STT_TYPE)
}

// cleanTranscript drops special tokens like [_BEG_] or [BLANK_AUDIO] and
// tidies whitespace.
func cleanTranscript(text string) string {
	text = strings.TrimRight(text, "\n")
	text = specialRE.ReplaceAllString(text, "")
	return strings.TrimSpace(strings.ReplaceAll(text, "\n ", "\n"))
}

// ensureWav returns a 16-bit mono wav version of path at sampleRate,
// converting with ffmpeg when needed. cleanup removes any temp file.
func ensureWav(ctx context.Context, logger *slog.Logger, cfg *config.Config, path string) (string, func(), error) {
	noop := func() {}
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return path, noop, nil
	}
	tmp, err := os.CreateTemp("", "adstts-*.wav")
	if err != nil {
		return "", noop, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	cleanup := func() { os.Remove(tmpPath) }
	if err := tools.ConvertToWav(ctx, logger, cfg.FFmpegPath, path, tmpPath, cfg.STT_SR); err != nil {
		cleanup()
		return "", noop, err
	}
	return tmpPath, cleanup, nil
}

type WhisperServer struct {
	logger    *slog.Logger
	cfg       *config.Config
	ServerURL string
	client    *http.Client
}

func NewWhisperServer(logger *slog.Logger, cfg *config.Config) *WhisperServer {
	return &WhisperServer{
		logger:    logger,
		cfg:       cfg,
		ServerURL: cfg.STT_URL,
		client:    &http.Client{Timeout: 30 * time.Minute},
	}
}

func (stt *WhisperServer) Name() string {
	return "WHISPER_SERVER"
}

func (stt *WhisperServer) TranscribeFile(ctx context.Context, path string) (string, error) {
	wavPath, cleanup, err := ensureWav(ctx, stt.logger, stt.cfg, path)
	if err != nil {
		return "", err
	}
	defer cleanup()
	audio, err := os.Open(wavPath)
	if err != nil {
		return "", err
	}
	defer audio.Close()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", err
	}
	if err := writer.WriteField("response_format", "text"); err != nil {
		return "", err
	}
	if stt.cfg.STT_LANG != "" {
		if err := writer.WriteField("language", stt.cfg.STT_LANG); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, stt.ServerURL, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := stt.client.Do(req)
	if err != nil {
		stt.logger.Error("fn: TranscribeFile", "error", err)
		return "", err
	}
	defer resp.Body.Close()
	responseTextBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whisper server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(responseTextBytes)))
	}
	return cleanTranscript(string(responseTextBytes)), nil
}
