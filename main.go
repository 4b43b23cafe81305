package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "adstts",
	Short: "Record audio and screen, grab YouTube audio, transcribe and speak text",
	Long: `adstts wraps ffmpeg, yt-dlp, whisper and MeloTTS / Google TTS
behind one command line:

  adstts record audio -d 60
  adstts youtube "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
  adstts transcribe meeting.wav
  adstts tts notes.md -l korean
  adstts workflow lecture.mp3`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cfgPath, verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.toml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
