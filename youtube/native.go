package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chalskim/adSTTS/tools"

	yt "github.com/kkdai/youtube/v2"
)

// NativeDownloader fetches the audio stream without yt-dlp.
type NativeDownloader struct {
	logger *slog.Logger
	client yt.Client
}

func NewNativeDownloader(logger *slog.Logger) *NativeDownloader {
	return &NativeDownloader{logger: logger}
}

// pickAudioFormat prefers an audio-only stream with the highest bitrate,
// then any format that carries audio.
func pickAudioFormat(formats yt.FormatList) (*yt.Format, error) {
	var best *yt.Format
	for i := range formats {
		f := &formats[i]
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	if best != nil {
		return best, nil
	}
	withAudio := formats.WithAudioChannels()
	if len(withAudio) == 0 {
		return nil, errors.New("no audio stream available")
	}
	return &withAudio[0], nil
}

// containerExt maps a mime type like `audio/webm; codecs="opus"` to a file extension.
func containerExt(mime string) string {
	switch {
	case strings.HasPrefix(mime, "audio/mp4"), strings.HasPrefix(mime, "video/mp4"):
		return ".m4a"
	case strings.Contains(mime, "webm"):
		return ".webm"
	default:
		return ".audio"
	}
}

// Download saves the audio of url. With ffmpeg it is converted to mp3,
// otherwise the container is kept as-is.
func (d *NativeDownloader) Download(ctx context.Context, url, out, ffmpeg string) (string, error) {
	video, err := d.client.GetVideoContext(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch video info: %w", err)
	}
	format, err := pickAudioFormat(video.Formats)
	if err != nil {
		return "", err
	}
	d.logger.Info("native download", "title", video.Title, "mime", format.MimeType)
	stream, _, err := d.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return "", fmt.Errorf("failed to open stream: %w", err)
	}
	defer stream.Close()
	raw := replaceExt(out, containerExt(format.MimeType))
	if raw == out && ffmpeg != "" {
		raw = out + ".part" + containerExt(format.MimeType)
	}
	f, err := os.Create(raw)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, stream); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to save stream: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	if ffmpeg == "" {
		return raw, nil
	}
	final := replaceExt(out, ".mp3")
	if _, err := tools.Run(ctx, d.logger, ffmpeg, "-y", "-i", raw, "-vn", "-q:a", "0", final); err != nil {
		return raw, fmt.Errorf("mp3 conversion failed, original kept at %s: %w", raw, err)
	}
	if err := os.Remove(raw); err != nil {
		d.logger.Warn("failed to remove intermediate file", "path", raw, "error", err)
	}
	return final, nil
}
