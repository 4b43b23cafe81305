package main

import (
	"context"
	"fmt"

	"github.com/chalskim/adSTTS/models"
	"github.com/chalskim/adSTTS/youtube"

	"github.com/spf13/cobra"
)

var youtubeCmd = &cobra.Command{
	Use:     "youtube URL",
	Aliases: []string{"yt"},
	Short:   "Extract the audio track of a YouTube video",
	Example: `  adstts youtube "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
  adstts yt https://youtu.be/dQw4w9WgXcQ -o talk.%(ext)s`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		ctx, stop := signalContext()
		defer stop()
		fmt.Println("Extracting audio from:", args[0])
		path, err := downloadAudio(ctx, args[0], out)
		if err != nil {
			return err
		}
		fmt.Println("Audio saved to:", path)
		return nil
	},
}

func downloadAudio(ctx context.Context, url, out string) (string, error) {
	ext := youtube.NewExtractor(logger, cfg)
	return runJob(ctx, models.JobYoutube, url, func(ctx context.Context) (string, string, error) {
		return ext.Extract(ctx, url, out)
	})
}

func init() {
	youtubeCmd.Flags().StringP("output", "o", "", "output file or yt-dlp template (default <OutputDir>/youtube_audio_<ts>.%(ext)s)")
	rootCmd.AddCommand(youtubeCmd)
}
