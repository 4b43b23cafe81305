package extra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chalskim/adSTTS/config"
	"github.com/chalskim/adSTTS/storage"
	"github.com/chalskim/adSTTS/tools"

	"golang.org/x/sync/errgroup"
)

// Span is one chunk of a long recording.
type Span struct {
	Start time.Duration
	Dur   time.Duration
}

// ChunkSpans cuts total into consecutive non-overlapping spans of at most
// chunk; the last span takes the remainder.
func ChunkSpans(total, chunk time.Duration) []Span {
	if total <= 0 || chunk <= 0 {
		return nil
	}
	n := int((total + chunk - 1) / chunk)
	spans := make([]Span, 0, n)
	for i := 0; i < n; i++ {
		start := time.Duration(i) * chunk
		end := min(start+chunk, total)
		spans = append(spans, Span{Start: start, Dur: end - start})
	}
	return spans
}

type Transcriber struct {
	logger *slog.Logger
	cfg    *config.Config
	stt    STT
	cache  storage.TranscriptCache
	out    io.Writer
	outMu  sync.Mutex
}

// NewTranscriber wires an STT backend with an optional cache. Progress
// lines go to out.
func NewTranscriber(logger *slog.Logger, cfg *config.Config, stt STT, cache storage.TranscriptCache, out io.Writer) *Transcriber {
	if out == nil {
		out = io.Discard
	}
	return &Transcriber{
		logger: logger,
		cfg:    cfg,
		stt:    stt,
		cache:  cache,
		out:    out,
	}
}

func (t *Transcriber) Backend() string {
	return t.stt.Name()
}

func (t *Transcriber) progress(format string, args ...any) {
	t.outMu.Lock()
	defer t.outMu.Unlock()
	fmt.Fprintf(t.out, format+"\n", args...)
}

// NeedsChunking reports whether a file is long or large enough to be
// transcribed piecewise.
func (t *Transcriber) NeedsChunking(dur time.Duration, size int64) bool {
	if dur > time.Duration(t.cfg.LongAudioSeconds)*time.Second {
		return true
	}
	return size > int64(t.cfg.LongAudioMB)*1024*1024
}

func (t *Transcriber) Transcribe(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("audio file not found: %w", err)
	}
	key := ""
	if t.cache != nil {
		key, err = storage.TranscriptKey(path, t.stt.Name(), t.cfg.WhisperModel)
		if err != nil {
			t.logger.Warn("failed to compute cache key", "error", err)
		} else if text, err := t.cache.GetTranscript(ctx, key); err == nil {
			t.logger.Info("transcript cache hit", "file", path)
			return text, nil
		} else if !errors.Is(err, storage.ErrCacheMiss) {
			t.logger.Warn("transcript cache lookup failed", "error", err)
		}
	}
	dur, err := tools.ProbeDuration(ctx, t.logger, t.cfg.FFprobePath, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		t.logger.Warn("ffprobe failed", "file", path, "error", err)
	}
	t.progress("Audio file info - Duration: %.1f minutes, Size: %.1f MB",
		dur.Minutes(), float64(info.Size())/(1024*1024))
	var (
		text   string
		failed int
	)
	switch {
	case t.NeedsChunking(dur, info.Size()):
		if dur <= 0 {
			return "", fmt.Errorf("large file %s needs chunking but its duration is unknown", path)
		}
		t.progress("Large audio file detected. Processing in chunks...")
		text, failed, err = t.transcribeChunks(ctx, path, dur)
	default:
		if dur <= 0 {
			t.logger.Warn("duration unknown, chunking skipped", "file", path)
		}
		t.progress("Transcribing %s...", path)
		text, err = t.stt.TranscribeFile(ctx, path)
	}
	if err != nil {
		return "", err
	}
	switch {
	case key == "":
	case failed > 0:
		t.logger.Warn("transcript not cached, chunks failed", "file", path, "failed", failed)
	case ctx.Err() != nil:
		t.logger.Warn("transcript not cached, context done", "file", path, "error", ctx.Err())
	default:
		if err := t.cache.PutTranscript(ctx, key, text); err != nil {
			t.logger.Warn("failed to cache transcript", "error", err)
		}
	}
	return text, nil
}

// transcribeChunks keeps chunk order; a chunk that fails to extract or
// transcribe contributes an empty string and counts towards failed.
func (t *Transcriber) transcribeChunks(ctx context.Context, path string, dur time.Duration) (text string, failed int, err error) {
	chunk := time.Duration(t.cfg.ChunkSeconds) * time.Second
	spans := ChunkSpans(dur, chunk)
	t.progress("Processing long audio file in %.1f-minute chunks...", chunk.Minutes())
	dir, err := os.MkdirTemp("", "adstts-chunks-*")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create chunk dir: %w", err)
	}
	defer os.RemoveAll(dir)
	texts := make([]string, len(spans))
	var failedMu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.cfg.ChunkWorkers)
	for i, span := range spans {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t.progress("Processing chunk %d/%d...", i+1, len(spans))
			chunkPath := filepath.Join(dir, fmt.Sprintf("chunk_%04d.wav", i))
			err := tools.ExtractSegment(gctx, t.logger, t.cfg.FFmpegPath, path, chunkPath, span.Start, span.Dur, t.cfg.STT_SR)
			if err == nil {
				texts[i], err = t.stt.TranscribeFile(gctx, chunkPath)
			}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				t.logger.Error("chunk transcription failed", "chunk", i+1, "error", err)
				t.progress("Error transcribing chunk %d: %v", i+1, err)
				texts[i] = ""
				failedMu.Lock()
				failed++
				failedMu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", failed, err
	}
	return strings.Join(texts, " "), failed, nil
}

// SaveTranscription writes text to dir/<base>_transcription.txt.
func SaveTranscription(dir, original, text string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	out := filepath.Join(dir, base+"_transcription.txt")
	if err := os.WriteFile(out, []byte(text), 0644); err != nil {
		return "", err
	}
	return out, nil
}
