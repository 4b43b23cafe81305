package main

import (
	"context"
	"fmt"

	"github.com/chalskim/adSTTS/models"
	"github.com/chalskim/adSTTS/tools"

	"github.com/spf13/cobra"
)

var denoiseCmd = &cobra.Command{
	Use:     "denoise FILE",
	Short:   "Reduce background noise with ffmpeg's afftdn filter",
	Example: "  adstts denoise interview.wav\n  adstts denoise street.mp3 --noise-sec 1.5 -o clean.mp3",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		noiseSec, _ := cmd.Flags().GetFloat64("noise-sec")
		in := args[0]
		if !fileExists(in) {
			return fmt.Errorf("input file not found: %s", in)
		}
		ffmpeg, err := tools.Locate(cfg.FFmpegPath, cfg.FFmpegSearchPaths)
		if err != nil {
			return fmt.Errorf("ffmpeg is required for noise reduction: %w", err)
		}
		ctx, stop := signalContext()
		defer stop()
		fmt.Println("Reducing noise in:", in)
		path, err := runJob(ctx, models.JobDenoise, in, func(ctx context.Context) (string, string, error) {
			p, err := tools.Denoise(ctx, logger, ffmpeg, in, out, noiseSec)
			return p, "afftdn", err
		})
		if err != nil {
			return err
		}
		fmt.Println("Noise-reduced audio saved as:", path)
		return nil
	},
}

func init() {
	denoiseCmd.Flags().StringP("output", "o", "", "output file (default <name>_denoised<ext>)")
	denoiseCmd.Flags().Float64("noise-sec", 0.5, "seconds at the start used as the noise sample, 0 for adaptive")
	rootCmd.AddCommand(denoiseCmd)
}
