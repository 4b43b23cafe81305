package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chalskim/adSTTS/extra"
	"github.com/chalskim/adSTTS/extract"
	"github.com/chalskim/adSTTS/models"

	"github.com/spf13/cobra"
)

var ttsCmd = &cobra.Command{
	Use:   "tts [FILE]",
	Short: "Turn a text, markdown, html or pdf file into speech",
	Long: `Synthesize speech with the engines listed in TTS_ENGINES, in order.
The first engine that succeeds wins; MeloTTS falls back to Google TTS.

Languages: ` + strings.Join(extra.LanguageNames(), ", "),
	Example: `  adstts tts notes.txt
  adstts tts article.md -l korean -o voice/article.mp3
  adstts tts --text "Hello there" -s EN-BR --speed 1.2 --play`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		out, _ := cmd.Flags().GetString("output")
		lang, _ := cmd.Flags().GetString("language")
		speaker, _ := cmd.Flags().GetString("speaker")
		speed, _ := cmd.Flags().GetFloat32("speed")
		play, _ := cmd.Flags().GetBool("play")
		input := ""
		switch {
		case len(args) == 1 && text != "":
			return errors.New("give either a file or --text, not both")
		case len(args) == 1:
			input = args[0]
			var err error
			text, err = extract.ExtractText(input)
			if err != nil {
				return err
			}
		case text == "":
			return errors.New("nothing to say: pass a file or --text")
		default:
			input = "speech_" + time.Now().Format("20060102_150405")
		}
		if out == "" {
			out = voiceOutput(cfg.VoiceDir, input, ".wav")
		}
		ctx, stop := signalContext()
		defer stop()
		req := extra.Request{Text: text, Language: lang, Speaker: speaker, Speed: speed, Output: out}
		engine, err := synthesize(ctx, os.Stdout, input, req)
		if err != nil {
			return err
		}
		fmt.Printf("Audio saved to: %s (using %s)\n", out, engine)
		if play {
			if err := extra.PlayFile(ctx, out); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("playback failed: %w", err)
			}
		}
		return nil
	},
}

// synthesize runs the engine chain as a recorded job and returns the name
// of the engine that produced the file.
func synthesize(ctx context.Context, w io.Writer, input string, req extra.Request) (string, error) {
	synth, err := extra.NewSynthesizer(logger, cfg)
	if err != nil {
		return "", err
	}
	var engine string
	_, err = runJob(ctx, models.JobTTS, input, func(ctx context.Context) (string, string, error) {
		fmt.Fprintf(w, "Converting %s to speech (%s)...\n", filepath.Base(input), strings.Join(synth.Engines(), " -> "))
		name, err := synth.Synthesize(ctx, req)
		if err != nil {
			return "", "", err
		}
		engine = name
		return req.Output, name, nil
	})
	return engine, err
}

func init() {
	ttsCmd.Flags().String("text", "", "text to speak instead of a file")
	ttsCmd.Flags().StringP("output", "o", "", "output .wav or .mp3 (default <VoiceDir>/<name>.wav)")
	ttsCmd.Flags().StringP("language", "l", "", "language name or code (default TTS_LANGUAGE)")
	ttsCmd.Flags().StringP("speaker", "s", "", "MeloTTS speaker, e.g. EN-US, EN-BR, EN_INDIA, EN-AU")
	ttsCmd.Flags().Float32("speed", 0, "speech speed 0.5-2.0 (default TTS_SPEED)")
	ttsCmd.Flags().Bool("play", false, "play the result (needs -tags extra)")
	rootCmd.AddCommand(ttsCmd)
}
