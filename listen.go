package main

import (
	"fmt"

	"github.com/chalskim/adSTTS/extra"

	"github.com/spf13/cobra"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Transcribe the microphone in real time",
	Long: `Capture the default microphone in ListenBlockSec blocks and print the
transcription of each block. Needs a build with -tags extra.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sec, _ := cmd.Flags().GetInt("block"); sec > 0 {
			cfg.ListenBlockSec = sec
		}
		stt, err := extra.NewSTT(logger, cfg)
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()
		texts := make(chan string)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for text := range texts {
				fmt.Println(text)
			}
		}()
		fmt.Printf("Listening with %s (%ds blocks). Press Ctrl+C to stop.\n", stt.Name(), cfg.ListenBlockSec)
		err = extra.NewListener(logger, cfg, stt).Run(ctx, texts)
		close(texts)
		<-done
		return err
	},
}

func init() {
	listenCmd.Flags().Int("block", 0, "seconds per block (default ListenBlockSec)")
	rootCmd.AddCommand(listenCmd)
}
