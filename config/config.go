package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

type Config struct {
	LogFile  string `toml:"LogFile"`
	LogLevel string `toml:"LogLevel"`
	DBPATH   string `toml:"DBPATH"`
	// output locations
	OutputDir     string `toml:"OutputDir"`     // recordings and youtube audio
	TranscriptDir string `toml:"TranscriptDir"` // <base>_transcription.txt
	VoiceDir      string `toml:"VoiceDir"`      // tts output
	// external tools
	FFmpegPath        string   `toml:"FFmpegPath"`
	FFprobePath       string   `toml:"FFprobePath"`
	YtDlpPath         string   `toml:"YtDlpPath"`
	FFmpegSearchPaths []string `toml:"FFmpegSearchPaths"`
	// recording
	RecordMaxSec      int    `toml:"RecordMaxSec"`
	RecordInputFormat string `toml:"RecordInputFormat"` // avfoundation, pulse, dshow
	RecordAudioInput  string `toml:"RecordAudioInput"`
	RecordScreenInput string `toml:"RecordScreenInput"`
	ScreenScale       string `toml:"ScreenScale"`
	ScreenFPS         int    `toml:"ScreenFPS"`
	// STT
	STT_TYPE          string `toml:"STT_TYPE"` // WHISPER_BINARY, WHISPER_SERVER, OPENAI
	STT_URL           string `toml:"STT_URL"`
	STT_SR            int    `toml:"STT_SR"`
	STT_LANG          string `toml:"STT_LANG"`
	WhisperBinaryPath string `toml:"WhisperBinaryPath"`
	WhisperModelPath  string `toml:"WhisperModelPath"`
	WhisperModel      string `toml:"WhisperModel"`
	OpenAIBaseURL     string `toml:"OpenAIBaseURL"`
	OpenAIToken       string `toml:"OpenAIToken"`
	// long audio
	ChunkSeconds     int `toml:"ChunkSeconds"`
	LongAudioSeconds int `toml:"LongAudioSeconds"`
	LongAudioMB      int `toml:"LongAudioMB"`
	ChunkWorkers     int `toml:"ChunkWorkers"`
	ListenBlockSec   int `toml:"ListenBlockSec"`
	// TTS
	TTS_ENGINES    []string `toml:"TTS_ENGINES"` // tried in order
	MeloBinaryPath string   `toml:"MeloBinaryPath"`
	MeloDevice     string   `toml:"MeloDevice"`
	TTS_URL        string   `toml:"TTS_URL"` // kokoro-fastapi
	TTS_SPEED      float32  `toml:"TTS_SPEED"`
	TTS_LANGUAGE   string   `toml:"TTS_LANGUAGE"`
	TTS_SPEAKER    string   `toml:"TTS_SPEAKER"`
	TTSCacheDir    string   `toml:"TTSCacheDir"`
	// misc
	NotifyEnabled *bool  `toml:"NotifyEnabled"`
	RedisAddr     string `toml:"RedisAddr"`
	RedisPassword string `toml:"RedisPassword"`
	RedisDB       int    `toml:"RedisDB"`
	CacheTTLHours int    `toml:"CacheTTLHours"`
}

// LoadConfig reads fn (config.toml when empty). A missing file yields the
// defaults; a malformed one is an error.
func LoadConfig(fn string) (*Config, error) {
	if fn == "" {
		fn = "config.toml"
	}
	config := &Config{}
	_, err := toml.DecodeFile(fn, config)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if token := os.Getenv("OPENAI_API_KEY"); token != "" && config.OpenAIToken == "" {
		config.OpenAIToken = token
	}
	if lvl := os.Getenv("ADSTTS_LOG_LEVEL"); lvl != "" {
		config.LogLevel = lvl
	}
	config.fillDefaults()
	return config, nil
}

func (c *Config) Notify() bool {
	return c.NotifyEnabled == nil || *c.NotifyEnabled
}

func (c *Config) fillDefaults() {
	if c.LogFile == "" {
		c.LogFile = "adstts.log"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.DBPATH == "" {
		c.DBPATH = "adstts.db"
	}
	if c.OutputDir == "" {
		c.OutputDir = defaultOutputDir()
	}
	if c.TranscriptDir == "" {
		c.TranscriptDir = "output"
	}
	if c.VoiceDir == "" {
		c.VoiceDir = "voice"
	}
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.FFprobePath == "" {
		c.FFprobePath = "ffprobe"
	}
	if c.YtDlpPath == "" {
		c.YtDlpPath = "yt-dlp"
	}
	if len(c.FFmpegSearchPaths) == 0 {
		c.FFmpegSearchPaths = []string{
			"/opt/homebrew/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/usr/bin/ffmpeg",
		}
	}
	if c.RecordMaxSec <= 0 {
		c.RecordMaxSec = 3600
	}
	format, audioIn, screenIn := platformInputs(runtime.GOOS)
	if c.RecordInputFormat == "" {
		c.RecordInputFormat = format
	}
	if c.RecordAudioInput == "" {
		c.RecordAudioInput = audioIn
	}
	if c.RecordScreenInput == "" {
		c.RecordScreenInput = screenIn
	}
	if c.ScreenScale == "" {
		c.ScreenScale = "1280:720"
	}
	if c.ScreenFPS <= 0 {
		c.ScreenFPS = 30
	}
	if c.STT_TYPE == "" {
		c.STT_TYPE = "WHISPER_BINARY"
	}
	if c.STT_SR <= 0 {
		c.STT_SR = 16000
	}
	if c.WhisperBinaryPath == "" {
		c.WhisperBinaryPath = "whisper-cli"
	}
	if c.WhisperModel == "" {
		c.WhisperModel = "base"
	}
	if c.ChunkSeconds <= 0 {
		c.ChunkSeconds = 600
	}
	if c.LongAudioSeconds <= 0 {
		c.LongAudioSeconds = 1800
	}
	if c.LongAudioMB <= 0 {
		c.LongAudioMB = 100
	}
	if c.ChunkWorkers <= 0 {
		c.ChunkWorkers = 1
	}
	if c.ListenBlockSec <= 0 {
		c.ListenBlockSec = 5
	}
	if len(c.TTS_ENGINES) == 0 {
		c.TTS_ENGINES = []string{"melo", "google"}
	}
	if c.MeloBinaryPath == "" {
		c.MeloBinaryPath = "melo"
	}
	if c.MeloDevice == "" {
		c.MeloDevice = "auto"
	}
	if c.TTS_SPEED == 0 {
		c.TTS_SPEED = 1.0
	}
	if c.TTS_LANGUAGE == "" {
		c.TTS_LANGUAGE = "english"
	}
	if c.TTSCacheDir == "" {
		c.TTSCacheDir = filepath.Join(os.TempDir(), "adstts-tts")
	}
	if c.CacheTTLHours <= 0 {
		c.CacheTTLHours = 720
	}
}

func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	desktop := filepath.Join(home, "Desktop")
	if info, err := os.Stat(desktop); err == nil && info.IsDir() {
		return desktop
	}
	return "."
}

// platformInputs returns the ffmpeg capture format plus the audio and
// screen device specs for goos.
func platformInputs(goos string) (format, audio, screen string) {
	switch goos {
	case "darwin":
		return "avfoundation", ":0", "0:0"
	case "windows":
		return "dshow", "audio=default", "desktop"
	default:
		return "pulse", "default", ":0.0"
	}
}
