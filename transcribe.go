package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/chalskim/adSTTS/extra"
	"github.com/chalskim/adSTTS/models"

	"github.com/spf13/cobra"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe FILE",
	Short: "Transcribe an audio or video file with whisper",
	Long: `Transcribe an audio or video file. Recordings longer than LongAudioSeconds
or larger than LongAudioMB are cut into ChunkSeconds pieces and transcribed
piece by piece.`,
	Example: "  adstts transcribe meeting.wav\n  adstts transcribe lecture.mp3 --model small --save=false",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if model, _ := cmd.Flags().GetString("model"); model != "" {
			cfg.WhisperModel = model
		}
		if lang, _ := cmd.Flags().GetString("language"); lang != "" {
			cfg.STT_LANG = lang
		}
		save, _ := cmd.Flags().GetBool("save")
		ctx, stop := signalContext()
		defer stop()
		text, saved, err := transcribeFile(ctx, os.Stdout, args[0], save)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println("Transcription:")
		printRule()
		fmt.Println(text)
		printRule()
		if saved != "" {
			fmt.Println("Transcription saved to:", saved)
		}
		return nil
	},
}

// transcribeFile runs the configured backend over path and optionally saves
// the text under TranscriptDir. Progress goes to w.
func transcribeFile(ctx context.Context, w io.Writer, path string, save bool) (text, saved string, err error) {
	if !fileExists(path) {
		return "", "", fmt.Errorf("audio file not found: %s", path)
	}
	stt, err := extra.NewSTT(logger, cfg)
	if err != nil {
		return "", "", err
	}
	tr := extra.NewTranscriber(logger, cfg, stt, tcache, w)
	_, err = runJob(ctx, models.JobTranscribe, path, func(ctx context.Context) (string, string, error) {
		fmt.Fprintf(w, "Loading %s backend (model %s)...\n", tr.Backend(), cfg.WhisperModel)
		text, err = tr.Transcribe(ctx, path)
		if err != nil {
			return "", tr.Backend(), err
		}
		if save {
			saved, err = extra.SaveTranscription(cfg.TranscriptDir, path, text)
			if err != nil {
				return "", tr.Backend(), fmt.Errorf("failed to save transcription: %w", err)
			}
		}
		return saved, tr.Backend(), nil
	})
	if err != nil {
		return "", "", err
	}
	return text, saved, nil
}

func init() {
	transcribeCmd.Flags().StringP("model", "m", "", "whisper model name (tiny, base, small, medium, large)")
	transcribeCmd.Flags().StringP("language", "l", "", "spoken language code, empty for auto")
	transcribeCmd.Flags().Bool("save", true, "write <TranscriptDir>/<name>_transcription.txt (--save=false to only print)")
	rootCmd.AddCommand(transcribeCmd)
}
