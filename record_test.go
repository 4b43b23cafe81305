package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/chalskim/adSTTS/recorder"
)

// fakeFFmpeg installs a shell stand-in for ffmpeg as cfg.FFmpegPath.
func fakeFFmpeg(t *testing.T, body string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a unix shell for the ffmpeg stand-in")
	}
	p := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(p, []byte("#!/bin/sh\nfor last; do :; done\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	cfg.FFmpegPath = p
	cfg.FFmpegSearchPaths = nil
}

// stopWriter cancels the recording as soon as it is announced.
type stopWriter struct {
	strings.Builder
	cancel context.CancelFunc
}

func (w *stopWriter) Write(p []byte) (int, error) {
	if strings.Contains(string(p), "Press Ctrl+C") {
		w.cancel()
	}
	return w.Builder.Write(p)
}

func TestRecordUntilStop(t *testing.T) {
	testSetup(t)
	// records until ffmpeg's quit key arrives, then exits 255 like ffmpeg
	fakeFFmpeg(t, `read key
[ "$key" = "q" ] || exit 1
echo audio > "$last"
exit 255`)
	out := filepath.Join(t.TempDir(), "rec", "take.wav")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := &stopWriter{cancel: cancel}
	path, err := recordUntil(ctx, w, recorder.ModeAudio, out, 0)
	if err != nil {
		t.Fatalf("recordUntil: %v\n%s", err, w.String())
	}
	if path != out {
		t.Errorf("path = %q; expected %q", path, out)
	}
	if data, _ := os.ReadFile(out); string(data) != "audio\n" {
		t.Errorf("recording = %q", data)
	}
	if !strings.Contains(w.String(), "Stopping recording...") {
		t.Errorf("stop not announced:\n%s", w.String())
	}
}

func TestRecordUntilFinishes(t *testing.T) {
	cases := []struct {
		body    string
		wantErr bool
	}{
		{`echo audio > "$last"`, false},
		{`echo audio > "$last"; exit 255`, false},
		{`exit 3`, true},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("run_%d", i), func(t *testing.T) {
			testSetup(t)
			fakeFFmpeg(t, tc.body)
			out := filepath.Join(t.TempDir(), "take.wav")
			var w strings.Builder
			path, err := recordUntil(context.Background(), &w, recorder.ModeAudio, out, 2)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected an error, got %q", path)
				}
				return
			}
			if err != nil || path != out {
				t.Errorf("recordUntil = %q, %v", path, err)
			}
			if strings.Contains(w.String(), "Stopping") {
				t.Errorf("finished recording should not be stopped:\n%s", w.String())
			}
		})
	}
}
