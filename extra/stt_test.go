package extra

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chalskim/adSTTS/config"
)

func TestCleanTranscript(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"hello world\n", "hello world"},
		{"[_BEG_] hello [BLANK_AUDIO]\n\n", "hello"},
		{"line one\n line two", "line one\nline two"},
		{"[MUSIC]", ""},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("run_%d", i), func(t *testing.T) {
			if got := cleanTranscript(tc.in); got != tc.want {
				t.Errorf("cleanTranscript(%q) = %q; expected %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNewSTT(t *testing.T) {
	cases := []struct {
		cfg  config.Config
		name string
		err  bool
	}{
		{config.Config{}, "WHISPER_BINARY", false},
		{config.Config{STT_TYPE: "whisper_binary"}, "WHISPER_BINARY", false},
		{config.Config{STT_TYPE: "WHISPER_SERVER", STT_URL: "http://localhost:8081/inference"}, "WHISPER_SERVER", false},
		{config.Config{STT_TYPE: "WHISPER_SERVER"}, "", true},
		{config.Config{STT_TYPE: "OPENAI", OpenAIToken: "sk-test"}, "OPENAI", false},
		{config.Config{STT_TYPE: "OPENAI"}, "", true},
		{config.Config{STT_TYPE: "VOSK"}, "", true},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("run_%d", i), func(t *testing.T) {
			cfg := tc.cfg
			stt, err := NewSTT(testLogger, &cfg)
			if tc.err {
				if err == nil {
					t.Errorf("expected error for %+v", tc.cfg)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSTT: %v", err)
			}
			if stt.Name() != tc.name {
				t.Errorf("backend = %s; expected %s", stt.Name(), tc.name)
			}
		})
	}
}

func TestWhisperServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.FormValue("response_format") != "text" || r.FormValue("language") != "ko" {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(file)
		if !bytes.HasPrefix(data, []byte("RIFF")) {
			http.Error(w, "not a wav", http.StatusUnsupportedMediaType)
			return
		}
		fmt.Fprint(w, "[_BEG_] 안녕하세요\n")
	}))
	defer srv.Close()
	cfg := &config.Config{STT_URL: srv.URL, STT_LANG: "ko", STT_SR: 16000}
	wavPath := filepath.Join(t.TempDir(), "clip.wav")
	data, err := pcmToWav(make([]int16, 1600), 16000)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(wavPath, data, 0644); err != nil {
		t.Fatal(err)
	}
	got, err := NewWhisperServer(testLogger, cfg).TranscribeFile(context.Background(), wavPath)
	if err != nil {
		t.Fatalf("TranscribeFile: %v", err)
	}
	if got != "안녕하세요" {
		t.Errorf("TranscribeFile = %q", got)
	}

	cfg.STT_LANG = "en"
	if _, err := NewWhisperServer(testLogger, cfg).TranscribeFile(context.Background(), wavPath); err == nil ||
		!strings.Contains(err.Error(), "400") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestWhisperBinary(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "ggml-base.bin")
	if err := os.WriteFile(model, []byte("model"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		WhisperBinaryPath: fakeBinary(t, dir, "whisper-cli", `echo "[BLANK_AUDIO]"; echo " $@"`),
		WhisperModelPath:  model,
		STT_SR:            16000,
	}
	wavPath := filepath.Join(dir, "in.wav")
	if err := os.WriteFile(wavPath, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := NewWhisperBinary(testLogger, cfg).TranscribeFile(context.Background(), wavPath)
	if err != nil {
		t.Fatalf("TranscribeFile: %v", err)
	}
	want := fmt.Sprintf("-m %s -f %s -l auto -nt -np", model, wavPath)
	if got != want {
		t.Errorf("TranscribeFile = %q; expected %q", got, want)
	}

	cfg.WhisperModelPath = filepath.Join(dir, "missing.bin")
	if _, err := NewWhisperBinary(testLogger, cfg).TranscribeFile(context.Background(), wavPath); err == nil {
		t.Errorf("expected missing model error")
	}
}

func TestPcmToWav(t *testing.T) {
	samples := []int16{0, 1, -1, 32767}
	data, err := pcmToWav(samples, 22050)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 44+len(samples)*2 {
		t.Fatalf("wav size = %d", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" || string(data[36:40]) != "data" {
		t.Errorf("bad chunk ids in %q", data[:44])
	}
	if sr := binary.LittleEndian.Uint32(data[24:28]); sr != 22050 {
		t.Errorf("sample rate = %d", sr)
	}
	if size := binary.LittleEndian.Uint32(data[40:44]); size != 8 {
		t.Errorf("data size = %d", size)
	}
	if v := int16(binary.LittleEndian.Uint16(data[50:52])); v != 32767 {
		t.Errorf("last sample = %d", v)
	}
}

func TestListenerBlocks(t *testing.T) {
	cfg := &config.Config{STT_SR: 100, ListenBlockSec: 2}
	stt := &fileSTT{}
	l := NewListener(testLogger, cfg, stt)
	if l.blockSamples() != 200 {
		t.Errorf("blockSamples = %d", l.blockSamples())
	}
	blocks := make(chan []int16, 3)
	blocks <- make([]int16, 50) // under a second, skipped
	blocks <- make([]int16, 200)
	close(blocks)
	out := make(chan string, 3)
	l.consume(context.Background(), blocks, out)
	close(out)
	var got []string
	for text := range out {
		got = append(got, text)
	}
	if len(got) != 1 || !strings.HasPrefix(got[0], "chunk@RIFF") {
		t.Errorf("consume emitted %q", got)
	}
	if stt.calls != 1 {
		t.Errorf("expected 1 backend call, got %d", stt.calls)
	}
}
