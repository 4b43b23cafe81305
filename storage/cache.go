package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

var ErrCacheMiss = errors.New("transcript not cached")

type TranscriptCache interface {
	GetTranscript(ctx context.Context, key string) (string, error)
	PutTranscript(ctx context.Context, key, text string) error
}

func (p ProviderSQL) GetTranscript(ctx context.Context, key string) (string, error) {
	var text string
	err := p.db.GetContext(ctx, &text, "SELECT text FROM transcripts WHERE cache_key = $1", key)
	if isNoRows(err) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

func (p ProviderSQL) PutTranscript(ctx context.Context, key, text string) error {
	query := "INSERT OR REPLACE INTO transcripts (cache_key, text) VALUES ($1, $2);"
	_, err := p.db.ExecContext(ctx, query, key, text)
	return err
}

// TranscriptKey identifies a transcription of the file content at path by
// the given backend and model.
func TranscriptKey(path, backend, model string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return fmt.Sprintf("%s:%s:%s", hex.EncodeToString(h.Sum(nil)), backend, model), nil
}
