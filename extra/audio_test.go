package extra

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep/v2/wav"
)

func tone(t *testing.T, n, rate int) []byte {
	t.Helper()
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16((i % 64) * 256)
	}
	data, err := pcmToWav(samples, rate)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestWriteSegmentsWav(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "speech.wav")
	segments := [][]byte{tone(t, 1600, 16000), tone(t, 800, 8000), tone(t, 1600, 16000)}
	if err := writeSegments(out, segments); err != nil {
		t.Fatalf("writeSegments: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	s, format, err := wav.Decode(f)
	if err != nil {
		t.Fatalf("output is not a wav: %v", err)
	}
	defer s.Close()
	if format.SampleRate != 16000 || format.NumChannels != 1 {
		t.Errorf("format = %+v; expected 16kHz mono", format)
	}
	// three 0.1s segments at 16kHz, the middle one resampled, plus two gaps
	gap := format.SampleRate.N(segmentGap)
	want := 3*1600 + 2*gap
	if got := s.Len(); got < want-32 || got > want+32 {
		t.Errorf("output has %d frames; expected about %d", got, want)
	}
}

func TestWriteSegmentsErrors(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		out      string
		segments [][]byte
		want     error
	}{
		{filepath.Join(dir, "a.wav"), nil, nil},
		{filepath.Join(dir, "a.ogg"), [][]byte{tone(t, 10, 16000)}, ErrUnsupportedOutput},
		{filepath.Join(dir, "noext"), [][]byte{tone(t, 10, 16000)}, ErrUnsupportedOutput},
		{filepath.Join(dir, "a.mp3"), [][]byte{tone(t, 10, 16000)}, nil},
		{filepath.Join(dir, "b.wav"), [][]byte{[]byte("not audio at all")}, nil},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("run_%d", i), func(t *testing.T) {
			err := writeSegments(tc.out, tc.segments)
			if err == nil {
				t.Fatalf("writeSegments(%s) succeeded; expected an error", filepath.Base(tc.out))
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSynthesizerRejectsOutput(t *testing.T) {
	engine := &fakeEngine{name: "melo"}
	s := &Synthesizer{logger: testLogger, cfg: ttsConfig(), engines: []Engine{engine}}
	for i, name := range []string{"speech.ogg", "speech.flac", "speech"} {
		t.Run(fmt.Sprintf("run_%d", i), func(t *testing.T) {
			out := filepath.Join(t.TempDir(), name)
			_, err := s.Synthesize(context.Background(), Request{Text: "hi", Output: out})
			if !errors.Is(err, ErrUnsupportedOutput) {
				t.Errorf("Synthesize(%s) = %v; expected ErrUnsupportedOutput", name, err)
			}
		})
	}
	if engine.calls != 0 {
		t.Errorf("engine ran %d times for rejected outputs", engine.calls)
	}
	out := filepath.Join(t.TempDir(), "SPEECH.MP3")
	if _, err := s.Synthesize(context.Background(), Request{Text: "hi", Output: out}); err != nil {
		t.Errorf("upper-case .MP3 should be accepted: %v", err)
	}
}
