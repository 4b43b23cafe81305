package youtube

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/chalskim/adSTTS/config"

	yt "github.com/kkdai/youtube/v2"
)

func TestValidURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"http://youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", true},
		{"https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ", true},
		{"https://vimeo.com/123456789", false},
		{"not a url", false},
		{"https://youtu.be/short", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidURL(tc.url); got != tc.want {
			t.Errorf("ValidURL(%q) = %v; expected %v", tc.url, got, tc.want)
		}
	}
}

func TestVideoID(t *testing.T) {
	id, ok := VideoID("https://youtu.be/dQw4w9WgXcQ")
	if !ok || id != "dQw4w9WgXcQ" {
		t.Errorf("VideoID = %q, %v", id, ok)
	}
	if _, ok := VideoID("https://example.com"); ok {
		t.Errorf("expected no id")
	}
}

func TestDefaultOutput(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)
	got := DefaultOutput("/desk", now)
	want := filepath.Join("/desk", "youtube_audio_20250102_030405.%(ext)s")
	if got != want {
		t.Errorf("DefaultOutput = %q; expected %q", got, want)
	}
}

func TestBuildArgs(t *testing.T) {
	url := "https://youtu.be/dQw4w9WgXcQ"
	cases := []struct {
		name       string
		template   string
		loc        string
		haveFFmpeg bool
		wantArgs   []string
		wantFinal  string
	}{
		{
			name:       "ffmpeg on path",
			template:   "/d/a.%(ext)s",
			haveFFmpeg: true,
			wantArgs:   []string{"-x", "--audio-quality", "0", "--audio-format", "mp3", "-o", "/d/a.%(ext)s", url},
			wantFinal:  "/d/a.mp3",
		},
		{
			name:       "ffmpeg in fallback location",
			template:   "/d/a.%(ext)s",
			loc:        "/opt/homebrew/bin/ffmpeg",
			haveFFmpeg: true,
			wantArgs: []string{"-x", "--audio-quality", "0", "--audio-format", "mp3",
				"--ffmpeg-location", "/opt/homebrew/bin/ffmpeg", "-o", "/d/a.%(ext)s", url},
			wantFinal: "/d/a.mp3",
		},
		{
			name:      "no ffmpeg",
			template:  "/d/a.%(ext)s",
			wantArgs:  []string{"-x", "--audio-quality", "0", "--audio-format", "m4a", "-o", "/d/a.m4a", url},
			wantFinal: "/d/a.m4a",
		},
		{
			name:       "explicit path",
			template:   "/d/song.mp3",
			haveFFmpeg: true,
			wantArgs:   []string{"-x", "--audio-quality", "0", "--audio-format", "mp3", "-o", "/d/song.mp3", url},
			wantFinal:  "/d/song.mp3",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			args, final := BuildArgs(url, tc.template, tc.loc, tc.haveFFmpeg)
			if !reflect.DeepEqual(args, tc.wantArgs) {
				t.Errorf("args = %v\nexpected %v", args, tc.wantArgs)
			}
			if final != tc.wantFinal {
				t.Errorf("final = %q; expected %q", final, tc.wantFinal)
			}
		})
	}
}

func TestExtractRejectsBadInput(t *testing.T) {
	e := NewExtractor(slog.New(slog.NewTextHandler(io.Discard, nil)), &config.Config{OutputDir: t.TempDir()})
	if _, _, err := e.Extract(context.Background(), "   ", ""); !errors.Is(err, ErrEmptyURL) {
		t.Errorf("expected ErrEmptyURL, got %v", err)
	}
	if _, _, err := e.Extract(context.Background(), "https://vimeo.com/1", ""); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL, got %v", err)
	}
}

func TestExtractWithYtDlp(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-ins need a unix shell")
	}
	dir := t.TempDir()
	script := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
			t.Fatal(err)
		}
		return p
	}
	cfg := &config.Config{
		OutputDir:  dir,
		FFmpegPath: script("ffmpeg", "exit 0"),
		YtDlpPath:  script("yt-dlp", `echo "$@" > "$(dirname "$0")/yt-dlp.args"`),
	}
	e := NewExtractor(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
	out := filepath.Join(dir, "talk.%(ext)s")
	path, engine, err := e.Extract(context.Background(), "https://youtu.be/dQw4w9WgXcQ", out)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if engine != EngineYtDlp {
		t.Errorf("engine = %q; expected %q", engine, EngineYtDlp)
	}
	if path != filepath.Join(dir, "talk.mp3") {
		t.Errorf("path = %q", path)
	}
	args, err := os.ReadFile(filepath.Join(dir, "yt-dlp.args"))
	if err != nil {
		t.Fatalf("yt-dlp stand-in did not run: %v", err)
	}
	if !strings.Contains(string(args), "--audio-format mp3") {
		t.Errorf("yt-dlp args = %s", args)
	}
}

func TestPickAudioFormat(t *testing.T) {
	formats := yt.FormatList{
		{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Bitrate: 500000, AudioChannels: 2},
		{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 130000, AudioChannels: 2},
		{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, Bitrate: 160000, AudioChannels: 2},
	}
	f, err := pickAudioFormat(formats)
	if err != nil {
		t.Fatal(err)
	}
	if f.ItagNo != 251 {
		t.Errorf("picked itag %d; expected 251", f.ItagNo)
	}
	if _, err := pickAudioFormat(yt.FormatList{{ItagNo: 1, MimeType: "video/mp4"}}); err == nil {
		t.Errorf("expected error when no stream carries audio")
	}
}

func TestContainerExt(t *testing.T) {
	cases := map[string]string{
		`audio/mp4; codecs="mp4a.40.2"`: ".m4a",
		`audio/webm; codecs="opus"`:     ".webm",
		"audio/ogg":                     ".audio",
	}
	for mime, want := range cases {
		if got := containerExt(mime); got != want {
			t.Errorf("containerExt(%q) = %q; expected %q", mime, got, want)
		}
	}
}
