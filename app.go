package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/chalskim/adSTTS/config"
	"github.com/chalskim/adSTTS/storage"

	"github.com/joho/godotenv"
)

var (
	cfg      *config.Config
	logger   = slog.New(slog.NewTextHandler(io.Discard, nil))
	logLevel = new(slog.LevelVar)
	store    storage.FullRepo
	// transcript cache; redis when configured, else store
	tcache  storage.TranscriptCache
	closers []io.Closer
)

func setup(path string, debug bool) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	var err error
	cfg, err = config.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	logfile, err := os.OpenFile(cfg.LogFile,
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", cfg.LogFile, err)
	}
	closers = append(closers, logfile)
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel.Set(slog.LevelInfo)
	}
	if debug {
		logLevel.Set(slog.LevelDebug)
	}
	logger = slog.New(slog.NewTextHandler(logfile, &slog.HandlerOptions{Level: logLevel}))
	store = storage.NewProviderSQL(cfg.DBPATH, logger)
	if store == nil {
		return fmt.Errorf("failed to open database %s", cfg.DBPATH)
	}
	closers = append(closers, store)
	tcache = store
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		ttl := time.Duration(cfg.CacheTTLHours) * time.Hour
		rc, err := storage.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, ttl)
		if err != nil {
			logger.Warn("redis unavailable, caching transcripts locally", "error", err)
		} else {
			tcache = rc
			closers = append(closers, rc)
		}
	}
	logger.Debug("setup done", "config", path, "stt", cfg.STT_TYPE, "tts", cfg.TTS_ENGINES)
	return nil
}

func teardown() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			fmt.Fprintln(os.Stderr, "close:", err)
		}
	}
	closers = nil
}
