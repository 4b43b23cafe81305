package extra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chalskim/adSTTS/config"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"회의록 요약", "회의록 요약"},
		{"**안녕하세요** 세계", "안녕하세요 세계"},
		{"## 1장. 소개", "1장. 소개"},
		{"\ufeff첫 줄", "첫 줄"},
		{"\ufeffHello", "Hello"},
		{"see `go test` and ~~old~~ notes", "see go test and old notes"},
		{"![chart](img.png) below", "chart(img.png) below"},
		{"<b>굵게</b> and <br/>plain", "굵게 and plain"},
		{"| 이름 | 값 |\n|:---|---:|\n| a | 1 |", "이름  값 \n a  1"},
		{"| = = |", ""},
		{"snake_case_name", "snakecasename"},
		{"\n\n  ---  \n", "---"},
		{"___", ""},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("run_%d", i), func(t *testing.T) {
			if got := cleanText(tc.in); got != tc.want {
				t.Errorf("cleanText(%q) = %q; expected %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestLookupLanguage(t *testing.T) {
	cases := []struct {
		in     string
		name   string
		melo   string
		google string
		err    bool
	}{
		{"korean", "korean", "KR", "ko", false},
		{"KR", "korean", "KR", "ko", false},
		{"ko", "korean", "KR", "ko", false},
		{" English ", "english", "EN", "en", false},
		{"zh-CN", "chinese", "ZH", "zh-CN", false},
		{"JP", "japanese", "JP", "ja", false},
		{"german", "german", "", "de", false},
		{"klingon", "", "", "", true},
		{"", "", "", "", true},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("run_%d", i), func(t *testing.T) {
			l, err := LookupLanguage(tc.in)
			if tc.err {
				if !errors.Is(err, ErrUnsupportedLanguage) {
					t.Errorf("expected ErrUnsupportedLanguage, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LookupLanguage(%q): %v", tc.in, err)
			}
			if l.Name != tc.name || l.Melo != tc.melo || l.Google != tc.google {
				t.Errorf("LookupLanguage(%q) = %+v", tc.in, l)
			}
		})
	}
}

func TestResolveSpeaker(t *testing.T) {
	en, _ := LookupLanguage("english")
	de, _ := LookupLanguage("german")
	kr, _ := LookupLanguage("korean")
	cases := []struct {
		lang Language
		in   string
		want string
	}{
		{en, "", "EN-US"},
		{en, "EN-BR", "EN-BR"},
		{en, "EN_INDIA", "EN_INDIA"},
		{en, "EN-NZ", "EN-US"},
		{en, "AU", "EN-AU"},
		{en, "xx", "EN-US"},
		{kr, "KR-2", "KR"},
		{de, "anything", ""},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("run_%d", i), func(t *testing.T) {
			if got := tc.lang.ResolveSpeaker(tc.in); got != tc.want {
				t.Errorf("ResolveSpeaker(%q) = %q; expected %q", tc.in, got, tc.want)
			}
		})
	}
}

type fakeEngine struct {
	name  string
	err   error
	calls int
	got   Request
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Synthesize(ctx context.Context, req Request) error {
	f.calls++
	f.got = req
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(req.Output, []byte(f.name), 0644)
}

func ttsConfig() *config.Config {
	return &config.Config{TTS_SPEED: 1.0, TTS_LANGUAGE: "english", MeloDevice: "auto"}
}

func TestSynthesizerFallback(t *testing.T) {
	meloErr := errors.New("melo missing")
	melo := &fakeEngine{name: "melo", err: meloErr}
	google := &fakeEngine{name: "google"}
	s := &Synthesizer{logger: testLogger, cfg: ttsConfig(), engines: []Engine{melo, google}}
	out := filepath.Join(t.TempDir(), "voice", "speech.wav")
	engine, err := s.Synthesize(context.Background(), Request{Text: "**Hello** there", Language: "KR", Output: out})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if engine != "google" {
		t.Errorf("engine = %q; expected google", engine)
	}
	if melo.calls != 1 || google.calls != 1 {
		t.Errorf("calls melo=%d google=%d", melo.calls, google.calls)
	}
	if google.got.Text != "Hello there" || google.got.Language != "korean" || google.got.Speed != 1.0 {
		t.Errorf("engine got %+v", google.got)
	}
	data, err := os.ReadFile(out)
	if err != nil || string(data) != "google" {
		t.Errorf("output = %q, %v", data, err)
	}
}

func TestSynthesizerFirstWins(t *testing.T) {
	melo := &fakeEngine{name: "melo"}
	google := &fakeEngine{name: "google"}
	s := &Synthesizer{logger: testLogger, cfg: ttsConfig(), engines: []Engine{melo, google}}
	engine, err := s.Synthesize(context.Background(), Request{Text: "hi", Output: filepath.Join(t.TempDir(), "a.wav")})
	if err != nil || engine != "melo" {
		t.Fatalf("Synthesize = %q, %v", engine, err)
	}
	if google.calls != 0 {
		t.Errorf("google should not be tried after melo succeeded")
	}
}

func TestSynthesizerErrors(t *testing.T) {
	errA := errors.New("a broke")
	errB := errors.New("b broke")
	cases := []struct {
		req     Request
		engines []Engine
		want    []error
	}{
		{Request{Text: "   "}, nil, []error{ErrEmptyText}},
		{Request{Text: "**"}, nil, []error{ErrEmptyText}},
		{Request{Text: "hi", Speed: 3}, nil, []error{ErrInvalidSpeed}},
		{Request{Text: "hi", Speed: 0.2}, nil, []error{ErrInvalidSpeed}},
		{Request{Text: "hi", Language: "elvish"}, nil, []error{ErrUnsupportedLanguage}},
		{
			Request{Text: "hi"},
			[]Engine{&fakeEngine{name: "a", err: errA}, &fakeEngine{name: "b", err: errB}},
			[]error{ErrAllEnginesFailed, errA, errB},
		},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("run_%d", i), func(t *testing.T) {
			s := &Synthesizer{logger: testLogger, cfg: ttsConfig(), engines: tc.engines}
			tc.req.Output = filepath.Join(t.TempDir(), "out.wav")
			_, err := s.Synthesize(context.Background(), tc.req)
			for _, want := range tc.want {
				if !errors.Is(err, want) {
					t.Errorf("expected %v in %v", want, err)
				}
			}
		})
	}
}

func TestNewSynthesizer(t *testing.T) {
	cfg := ttsConfig()
	cfg.TTS_ENGINES = []string{"melo", "kokoro", "google"}
	s, err := NewSynthesizer(testLogger, cfg)
	if err != nil {
		t.Fatal(err)
	}
	// kokoro dropped without TTS_URL
	if got := strings.Join(s.Engines(), ","); got != "melo,google" {
		t.Errorf("engines = %s", got)
	}
	cfg.TTS_ENGINES = []string{"espeak"}
	if _, err := NewSynthesizer(testLogger, cfg); err == nil {
		t.Errorf("expected error for unknown engine")
	}
}

func TestMeloEngine(t *testing.T) {
	dir := t.TempDir()
	cfg := ttsConfig()
	// stand-in copies the text file and records the args into the output
	cfg.MeloBinaryPath = fakeBinary(t, dir, "melo", `in="$1"; out="$2"; shift 2; { cat "$in"; echo; echo "$@"; } > "$out"`)
	m := NewMeloEngine(testLogger, cfg)
	out := filepath.Join(dir, "speech.wav")
	err := m.Synthesize(context.Background(), Request{Text: "hello", Language: "english", Speaker: "EN-NZ", Speed: 1.5, Output: out})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	data, _ := os.ReadFile(out)
	want := "hello\n--file --language EN --speaker EN-US --speed 1.50 --device auto\n"
	if string(data) != want {
		t.Errorf("melo output = %q; expected %q", data, want)
	}
	if err := m.Synthesize(context.Background(), Request{Text: "hallo", Language: "german", Speed: 1, Output: out}); err == nil {
		t.Errorf("expected melo to refuse german")
	}
}

func TestKokoroEngine(t *testing.T) {
	var inputs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		inputs = append(inputs, payload["input"].(string))
		if payload["lang_code"] != "a" {
			http.Error(w, "bad lang", http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, "[%s]", payload["input"])
	}))
	defer srv.Close()
	cfg := ttsConfig()
	cfg.TTS_URL = srv.URL
	k := NewKokoroEngine(testLogger, cfg)
	out := filepath.Join(t.TempDir(), "speech.mp3")
	err := k.Synthesize(context.Background(), Request{Text: "First one. Second one.", Language: "english", Speed: 1, Output: out})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("expected one request per sentence, got %v", inputs)
	}
	data, _ := os.ReadFile(out)
	if string(data) != "[First one.][Second one.]" {
		t.Errorf("mp3 output = %q", data)
	}
	if err := k.Synthesize(context.Background(), Request{Text: "x", Language: "korean", Speed: 1, Output: out}); err == nil {
		t.Errorf("expected kokoro to refuse korean")
	}
}

func TestMeloEngineConverts(t *testing.T) {
	dir := t.TempDir()
	cfg := ttsConfig()
	cfg.MeloBinaryPath = fakeBinary(t, dir, "melo", `cp "$1" "$2"`)
	// ffmpeg stand-in: prefixes the input (after -i) into the last arg
	cfg.FFmpegPath = fakeBinary(t, dir, "ffmpeg", `prev=""; for a; do [ "$prev" = "-i" ] && in="$a"; prev="$a"; done; { printf 'mp3:'; cat "$in"; } > "$prev"`)
	m := NewMeloEngine(testLogger, cfg)
	out := filepath.Join(dir, "speech.MP3")
	if err := m.Synthesize(context.Background(), Request{Text: "hello", Language: "english", Speed: 1, Output: out}); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	data, _ := os.ReadFile(out)
	if string(data) != "mp3:hello" {
		t.Errorf("converted output = %q", data)
	}
}
