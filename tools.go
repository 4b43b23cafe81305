package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/chalskim/adSTTS/extra"
	"github.com/chalskim/adSTTS/tools"

	"github.com/spf13/cobra"
)

// toolCheck is one external dependency and the flag that proves it runs.
type toolCheck struct {
	name      string
	path      string
	fallbacks []string
	flag      string
	neededFor string
}

func toolChecks() []toolCheck {
	return []toolCheck{
		{"ffmpeg", cfg.FFmpegPath, cfg.FFmpegSearchPaths, "-version", "record, convert, chunk, denoise"},
		{"ffprobe", cfg.FFprobePath, nil, "-version", "long audio detection"},
		{"yt-dlp", cfg.YtDlpPath, nil, "--version", "youtube (native fallback otherwise)"},
		{"whisper", cfg.WhisperBinaryPath, nil, "--help", "WHISPER_BINARY transcription"},
		{"melo", cfg.MeloBinaryPath, nil, "--help", "MeloTTS engine"},
	}
}

type checkResult struct {
	toolCheck
	found string
	ok    bool
}

func runChecks(ctx context.Context) []checkResult {
	checks := toolChecks()
	results := make([]checkResult, len(checks))
	for i, c := range checks {
		results[i].toolCheck = c
		p, err := tools.Locate(c.path, c.fallbacks)
		if err != nil {
			logger.Debug("tool not found", "tool", c.name, "error", err)
			continue
		}
		results[i].found = p
		results[i].ok = tools.Available(ctx, p, c.flag)
	}
	return results
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report which external tools and backends are available",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TOOL\tSTATUS\tPATH\tUSED FOR")
		for _, r := range runChecks(ctx) {
			status := "missing"
			switch {
			case r.ok:
				status = "ok"
			case r.found != "":
				status = "broken"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.name, status, r.found, r.neededFor)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Println()
		fmt.Println("STT backend:  ", cfg.STT_TYPE)
		if cfg.STT_TYPE == "WHISPER_BINARY" {
			model := cfg.WhisperModelPath
			if model == "" {
				model = filepath.Join("models", "ggml-"+cfg.WhisperModel+".bin")
			}
			if !fileExists(model) {
				model += " (missing)"
			}
			fmt.Println("Whisper model:", model)
		}
		if _, err := extra.NewSynthesizer(logger, cfg); err != nil {
			fmt.Println("TTS engines:   error:", err)
		} else {
			fmt.Println("TTS engines:  ", cfg.TTS_ENGINES)
		}
		fmt.Println("Audio devices:", audioSupport)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
