package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/chalskim/adSTTS/extra"
	"github.com/chalskim/adSTTS/models"

	"github.com/spf13/cobra"
)

var workflowCmd = &cobra.Command{
	Use:   "workflow FILE",
	Short: "Transcribe a recording, then read the transcript back with TTS",
	Long: `Runs transcribe and tts back to back: the transcript is saved under
TranscriptDir and spoken into VoiceDir/<name>.wav.`,
	Example: "  adstts workflow audio_recording_20250101_101500.wav -l english",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("language")
		ctx, stop := signalContext()
		defer stop()
		out, err := runJob(ctx, models.JobWorkflow, args[0], func(ctx context.Context) (string, string, error) {
			return runWorkflow(ctx, args[0], lang)
		})
		if err != nil {
			return err
		}
		fmt.Println("Workflow complete. Voice file:", out)
		return nil
	},
}

func runWorkflow(ctx context.Context, audio, lang string) (string, string, error) {
	fmt.Println("Step 1: transcribing", audio)
	text, saved, err := transcribeFile(ctx, os.Stdout, audio, true)
	if err != nil {
		return "", "", fmt.Errorf("transcription step: %w", err)
	}
	if saved != "" {
		fmt.Println("Transcript saved to:", saved)
	}
	fmt.Println("Step 2: converting transcript to speech")
	out := voiceOutput(cfg.VoiceDir, audio, ".wav")
	engine, err := synthesize(ctx, os.Stdout, audio, extra.Request{Text: text, Language: lang, Output: out})
	if errors.Is(err, extra.ErrEmptyText) {
		return "", "", errors.New("transcript is empty, nothing to speak")
	}
	if err != nil {
		return "", "", fmt.Errorf("tts step: %w", err)
	}
	return out, engine, nil
}

func init() {
	workflowCmd.Flags().StringP("language", "l", "", "language for the spoken transcript (default TTS_LANGUAGE)")
	rootCmd.AddCommand(workflowCmd)
}
