package extra

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chalskim/adSTTS/config"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAISTT uses the hosted whisper-1 model. Uploads are capped at 25MB.
type OpenAISTT struct {
	logger *slog.Logger
	cfg    *config.Config
	client *openai.Client
}

func NewOpenAISTT(logger *slog.Logger, cfg *config.Config) (*OpenAISTT, error) {
	if cfg.OpenAIToken == "" {
		return nil, errors.New("OpenAIToken (or OPENAI_API_KEY) is required for OPENAI stt")
	}
	clientCfg := openai.DefaultConfig(cfg.OpenAIToken)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}
	return &OpenAISTT{
		logger: logger,
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}, nil
}

func (o *OpenAISTT) Name() string {
	return "OPENAI"
}

func (o *OpenAISTT) TranscribeFile(ctx context.Context, path string) (string, error) {
	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: path,
		Language: o.cfg.STT_LANG,
		Format:   openai.AudioResponseFormatText,
	}
	resp, err := o.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("transcription error: %w", err)
	}
	return cleanTranscript(resp.Text), nil
}
