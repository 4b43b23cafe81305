// Package tools finds and runs the external binaries everything else
// delegates to: ffmpeg, ffprobe, yt-dlp, whisper.cpp and melo.
package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var ErrNotFound = errors.New("executable not found")

// stderr kept in error messages
const stderrTail = 2048

// Locate resolves name through PATH first, then through fallbacks in order.
func Locate(name string, fallbacks []string) (string, error) {
	if p, err := exec.LookPath(name); err == nil {
		return p, nil
	}
	for _, fb := range fallbacks {
		info, err := os.Stat(fb)
		if err != nil || info.IsDir() {
			continue
		}
		return fb, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Available reports whether the tool starts and exits cleanly with versionFlag.
func Available(ctx context.Context, path, versionFlag string) bool {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, path, versionFlag)
	return cmd.Run() == nil
}

// Run executes name with args and returns stdout. On failure the error
// carries the tail of stderr.
func Run(ctx context.Context, logger *slog.Logger, name string, args ...string) ([]byte, error) {
	logger.Debug("running command", "cmd", name, "args", strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := tail(stderr.String(), stderrTail)
		logger.Error("command failed", "cmd", name, "error", err, "stderr", msg)
		if msg == "" {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return stdout.Bytes(), nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

// ProbeDuration asks ffprobe for the container duration of file.
func ProbeDuration(ctx context.Context, logger *slog.Logger, ffprobe, file string) (time.Duration, error) {
	out, err := Run(ctx, logger, ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		file)
	if err != nil {
		return 0, err
	}
	return parseDuration(string(out))
}

func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "N/A" {
		return 0, fmt.Errorf("no duration reported")
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", raw, err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
