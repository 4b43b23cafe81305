package tools

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ConvertArgs builds `ffmpeg -y -i in -ar rate -ac 1 -c:a pcm_s16le out`.
func ConvertArgs(in, out string, sampleRate int) []string {
	return []string{
		"-y",
		"-i", in,
		"-ar", strconv.Itoa(sampleRate),
		"-ac", "1",
		"-c:a", "pcm_s16le",
		out,
	}
}

// SegmentArgs cuts [start, start+dur) of in into a mono 16-bit wav.
func SegmentArgs(in, out string, start, dur time.Duration, sampleRate int) []string {
	return []string{
		"-y",
		"-ss", seconds(start),
		"-t", seconds(dur),
		"-i", in,
		"-ar", strconv.Itoa(sampleRate),
		"-ac", "1",
		"-c:a", "pcm_s16le",
		out,
	}
}

// DenoiseArgs applies ffmpeg's afftdn, sampling the noise profile from the
// first noiseSec seconds of the input.
func DenoiseArgs(in, out string, noiseSec float64) []string {
	filter := "afftdn=nf=-25"
	if noiseSec > 0 {
		filter = fmt.Sprintf("asendcmd=0.0 afftdn sn start,asendcmd=%s afftdn sn stop,afftdn=nf=-25",
			strconv.FormatFloat(noiseSec, 'f', -1, 64))
	}
	return []string{"-y", "-i", in, "-af", filter, out}
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func ConvertToWav(ctx context.Context, logger *slog.Logger, ffmpeg, in, out string, sampleRate int) error {
	if _, err := Run(ctx, logger, ffmpeg, ConvertArgs(in, out, sampleRate)...); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w", err)
	}
	return nil
}

func ExtractSegment(ctx context.Context, logger *slog.Logger, ffmpeg, in, out string, start, dur time.Duration, sampleRate int) error {
	if _, err := Run(ctx, logger, ffmpeg, SegmentArgs(in, out, start, dur, sampleRate)...); err != nil {
		return fmt.Errorf("ffmpeg segment failed: %w", err)
	}
	return nil
}

// DenoisedName returns <name>_denoised<ext> next to in.
func DenoisedName(in string) string {
	ext := filepath.Ext(in)
	return strings.TrimSuffix(in, ext) + "_denoised" + ext
}

// Denoise writes a noise-reduced copy of in. An empty out means DenoisedName(in).
func Denoise(ctx context.Context, logger *slog.Logger, ffmpeg, in, out string, noiseSec float64) (string, error) {
	if out == "" {
		out = DenoisedName(in)
	}
	if _, err := Run(ctx, logger, ffmpeg, DenoiseArgs(in, out, noiseSec)...); err != nil {
		return "", fmt.Errorf("noise reduction failed: %w", err)
	}
	return out, nil
}
