package extra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/chalskim/adSTTS/config"
	"github.com/chalskim/adSTTS/models"
	"github.com/chalskim/adSTTS/tools"

	"github.com/neurosnap/sentences/english"
)

var (
	ErrEmptyText        = errors.New("text is empty")
	ErrAllEnginesFailed = errors.New("all tts engines failed")
	ErrInvalidSpeed     = errors.New("speed must be between 0.5 and 2.0")
)

var (
	// |---|:--:| rows; at least one pipe so a bare --- line survives
	tableSeparatorRE = regexp.MustCompile(`^\s*\|?([\s:]*[-=][-=:\s]*\|)+([\s:]*[-=][-=:\s]*)?\s*$`)
	htmlTagRE        = regexp.MustCompile(`<[^>]*>`)
	markdownStripper = strings.NewReplacer(
		"*", "", "#", "", "_", "", "~", "", "`", "", "[", "", "]", "", "!", "",
		"\ufeff", "",
	)
)

// cleanText strips markdown and html that would otherwise be read out loud.
func cleanText(text string) string {
	text = markdownStripper.Replace(text)
	text = htmlTagRE.ReplaceAllString(text, "")
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if tableSeparatorRE.MatchString(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, strings.ReplaceAll(line, "|", ""))
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// splitSentences keeps each synthesis request short.
func splitSentences(text string) []string {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return []string{text}
	}
	var out []string
	for _, s := range tokenizer.Tokenize(text) {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

type Request struct {
	Text     string
	Language string
	Speaker  string
	Speed    float32
	Output   string
}

type Engine interface {
	Name() string
	Synthesize(ctx context.Context, req Request) error
}

// Synthesizer tries its engines in order until one succeeds.
type Synthesizer struct {
	logger  *slog.Logger
	cfg     *config.Config
	engines []Engine
}

func NewSynthesizer(logger *slog.Logger, cfg *config.Config) (*Synthesizer, error) {
	s := &Synthesizer{logger: logger, cfg: cfg}
	for _, name := range cfg.TTS_ENGINES {
		switch strings.ToLower(name) {
		case "melo":
			s.engines = append(s.engines, NewMeloEngine(logger, cfg))
		case "kokoro":
			if cfg.TTS_URL == "" {
				logger.Warn("kokoro engine listed but TTS_URL is empty, skipping")
				continue
			}
			s.engines = append(s.engines, NewKokoroEngine(logger, cfg))
		case "google", "gtts":
			s.engines = append(s.engines, NewGoogleEngine(logger, cfg))
		default:
			return nil, fmt.Errorf("unknown tts engine %q", name)
		}
	}
	if len(s.engines) == 0 {
		return nil, errors.New("no tts engines configured")
	}
	return s, nil
}

func (s *Synthesizer) Engines() []string {
	names := make([]string, len(s.engines))
	for i, e := range s.engines {
		names[i] = e.Name()
	}
	return names
}

// Synthesize returns the name of the engine that produced req.Output.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) (string, error) {
	req.Text = cleanText(req.Text)
	if req.Text == "" {
		return "", ErrEmptyText
	}
	if req.Speed == 0 {
		req.Speed = s.cfg.TTS_SPEED
	}
	if req.Speed < 0.5 || req.Speed > 2.0 {
		return "", fmt.Errorf("%w: got %.2f", ErrInvalidSpeed, req.Speed)
	}
	if req.Language == "" {
		req.Language = s.cfg.TTS_LANGUAGE
	}
	lang, err := LookupLanguage(req.Language)
	if err != nil {
		return "", err
	}
	req.Language = lang.Name
	if req.Speaker == "" {
		req.Speaker = s.cfg.TTS_SPEAKER
	}
	if _, err := outputFormat(req.Output); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(req.Output), 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	var errs []error
	for _, engine := range s.engines {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		s.logger.Debug("trying tts engine", "engine", engine.Name(), "language", req.Language)
		err := engine.Synthesize(ctx, req)
		if err == nil {
			s.logger.Info("speech synthesized", "engine", engine.Name(), "output", req.Output)
			return engine.Name(), nil
		}
		s.logger.Warn("tts engine failed", "engine", engine.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", engine.Name(), err))
	}
	return "", errors.Join(append([]error{ErrAllEnginesFailed}, errs...)...)
}

// MeloEngine shells out to the MeloTTS command line.
type MeloEngine struct {
	logger *slog.Logger
	cfg    *config.Config
}

func NewMeloEngine(logger *slog.Logger, cfg *config.Config) *MeloEngine {
	return &MeloEngine{logger: logger, cfg: cfg}
}

func (m *MeloEngine) Name() string {
	return "melo"
}

func (m *MeloEngine) args(textFile, out string, lang Language, speaker string, speed float32) []string {
	return []string{
		textFile, out,
		"--file",
		"--language", lang.Melo,
		"--speaker", lang.ResolveSpeaker(speaker),
		"--speed", strconv.FormatFloat(float64(speed), 'f', 2, 32),
		"--device", m.cfg.MeloDevice,
	}
}

func (m *MeloEngine) Synthesize(ctx context.Context, req Request) error {
	lang, err := LookupLanguage(req.Language)
	if err != nil {
		return err
	}
	if lang.Melo == "" {
		return fmt.Errorf("melo has no model for %s", lang.Name)
	}
	bin, err := tools.Locate(m.cfg.MeloBinaryPath, nil)
	if err != nil {
		return err
	}
	tmpDir, err := os.MkdirTemp("", "adstts-melo-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)
	textFile := filepath.Join(tmpDir, "input.txt")
	if err := os.WriteFile(textFile, []byte(req.Text), 0644); err != nil {
		return err
	}
	// melo writes wav; anything else goes through ffmpeg
	out := req.Output
	if f, _ := models.FormatFromExt(filepath.Ext(out)); f != models.AFWAV {
		out = filepath.Join(tmpDir, "speech.wav")
	}
	if _, err := tools.Run(ctx, m.logger, bin, m.args(textFile, out, lang, req.Speaker, req.Speed)...); err != nil {
		return fmt.Errorf("melo failed: %w", err)
	}
	if out != req.Output {
		if _, err := tools.Run(ctx, m.logger, m.cfg.FFmpegPath, "-y", "-i", out, req.Output); err != nil {
			return fmt.Errorf("failed to convert melo output: %w", err)
		}
	}
	return nil
}

// kokoro lang codes and voices, https://github.com/remsky/Kokoro-FastAPI
var kokoroVoices = map[string][2]string{
	"english":  {"a", "af_bella(1)+af_sky(1)"},
	"spanish":  {"e", "ef_dora"},
	"french":   {"f", "ff_siwis"},
	"japanese": {"j", "jf_alpha"},
	"chinese":  {"z", "zf_xiaobei"},
}

type KokoroEngine struct {
	logger *slog.Logger
	URL    string
	Format models.AudioFormat
	client *http.Client
}

func NewKokoroEngine(logger *slog.Logger, cfg *config.Config) *KokoroEngine {
	return &KokoroEngine{
		logger: logger,
		URL:    cfg.TTS_URL,
		Format: models.AFMP3,
		client: &http.Client{},
	}
}

func (k *KokoroEngine) Name() string {
	return "kokoro"
}

func (k *KokoroEngine) requestSound(ctx context.Context, text, langCode, voice string, speed float32) ([]byte, error) {
	payload := map[string]interface{}{
		"input":           text,
		"voice":           voice,
		"response_format": k.Format,
		"download_format": k.Format,
		"stream":          false,
		"speed":           speed,
		"lang_code":       langCode,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.URL, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	resp, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (k *KokoroEngine) Synthesize(ctx context.Context, req Request) error {
	voice, ok := kokoroVoices[req.Language]
	if !ok {
		return fmt.Errorf("kokoro has no voice for %s", req.Language)
	}
	var segments [][]byte
	for _, sentence := range splitSentences(req.Text) {
		k.logger.Debug("kokoro sentence", "text-len", len(sentence))
		audio, err := k.requestSound(ctx, sentence, voice[0], voice[1], req.Speed)
		if err != nil {
			return err
		}
		segments = append(segments, audio)
	}
	return writeSegments(req.Output, segments)
}
