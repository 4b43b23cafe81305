package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/chalskim/adSTTS/config"
	"github.com/chalskim/adSTTS/tools"
)

var (
	ErrEmptyURL   = errors.New("please enter a YouTube URL")
	ErrInvalidURL = errors.New("please enter a valid YouTube URL")
)

const extTemplate = ".%(ext)s"

// engine names reported by Extract
const (
	EngineYtDlp  = "yt-dlp"
	EngineNative = "native"
)

var urlRE = regexp.MustCompile(`^(https?://)?(www\.)?(youtube|youtu|youtube-nocookie)\.(com|be)/(watch\?v=|embed/|v/|.+\?v=)?([^&=%\?]{11})`)

func ValidURL(url string) bool {
	return urlRE.MatchString(url)
}

// VideoID returns the 11 character id matched by ValidURL.
func VideoID(url string) (string, bool) {
	m := urlRE.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[6], true
}

// DefaultOutput is the yt-dlp output template for a download started at now.
func DefaultOutput(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("youtube_audio_%s%s", now.Format("20060102_150405"), extTemplate))
}

// BuildArgs assembles the yt-dlp arguments and the path the audio will end
// up at. haveFFmpeg reports whether ffmpeg is usable at all; ffmpegLoc is
// set only when it was found outside PATH.
func BuildArgs(url, template, ffmpegLoc string, haveFFmpeg bool) ([]string, string) {
	args := []string{"-x", "--audio-quality", "0"}
	final := template
	if haveFFmpeg {
		args = append(args, "--audio-format", "mp3")
		final = replaceExt(template, ".mp3")
	} else {
		args = append(args, "--audio-format", "m4a")
		template = replaceExt(template, ".m4a")
		final = template
	}
	if ffmpegLoc != "" {
		args = append(args, "--ffmpeg-location", ffmpegLoc)
	}
	args = append(args, "-o", template, url)
	return args, final
}

func replaceExt(template, ext string) string {
	if strings.HasSuffix(template, extTemplate) {
		return strings.TrimSuffix(template, extTemplate) + ext
	}
	return template
}

type Extractor struct {
	logger *slog.Logger
	cfg    *config.Config
	native *NativeDownloader
}

func NewExtractor(logger *slog.Logger, cfg *config.Config) *Extractor {
	return &Extractor{
		logger: logger,
		cfg:    cfg,
		native: NewNativeDownloader(logger),
	}
}

// Extract downloads the audio track of url and reports which engine did
// it. out may be an explicit path or a yt-dlp template; empty means
// DefaultOutput in cfg.OutputDir.
func (e *Extractor) Extract(ctx context.Context, url, out string) (path, engine string, err error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", "", ErrEmptyURL
	}
	if !ValidURL(url) {
		return "", "", ErrInvalidURL
	}
	if out == "" {
		out = DefaultOutput(e.cfg.OutputDir, time.Now())
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return "", "", fmt.Errorf("failed to create output dir: %w", err)
	}
	ffmpegLoc, haveFFmpeg := e.findFFmpeg()
	ytdlp, err := tools.Locate(e.cfg.YtDlpPath, nil)
	if err != nil {
		e.logger.Warn("yt-dlp not found, using native downloader", "error", err)
		ffmpeg := ""
		if haveFFmpeg {
			ffmpeg = e.cfg.FFmpegPath
			if ffmpegLoc != "" {
				ffmpeg = ffmpegLoc
			}
		}
		path, err := e.native.Download(ctx, url, out, ffmpeg)
		return path, EngineNative, err
	}
	args, final := BuildArgs(url, out, ffmpegLoc, haveFFmpeg)
	if !haveFFmpeg {
		e.logger.Warn("ffmpeg not found, keeping original audio format")
	}
	e.logger.Info("downloading youtube audio", "url", url, "output", final)
	if _, err := tools.Run(ctx, e.logger, ytdlp, args...); err != nil {
		return "", EngineYtDlp, fmt.Errorf("failed to download audio: %w", err)
	}
	return final, EngineYtDlp, nil
}

// findFFmpeg returns ("", true) when ffmpeg is on PATH, (path, true) when
// it only exists in one of the fallback locations.
func (e *Extractor) findFFmpeg() (string, bool) {
	p, err := tools.Locate(e.cfg.FFmpegPath, nil)
	if err == nil && tools.Available(context.Background(), p, "-version") {
		return "", true
	}
	p, err = tools.Locate("", e.cfg.FFmpegSearchPaths)
	if err != nil {
		return "", false
	}
	return p, true
}
