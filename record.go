package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/chalskim/adSTTS/models"
	"github.com/chalskim/adSTTS/recorder"
	"github.com/chalskim/adSTTS/tools"

	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:       "record audio|screen",
	Short:     "Record microphone audio or the screen with ffmpeg",
	Example:   "  adstts record audio -d 90\n  adstts record screen -o demo.mov",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(recorder.ModeAudio), string(recorder.ModeScreen)},
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := recorder.Mode(args[0])
		seconds, _ := cmd.Flags().GetInt("duration")
		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			out = recorder.DefaultOutput(cfg.OutputDir, mode, time.Now())
		}
		kind := models.JobRecordAudio
		if mode == recorder.ModeScreen {
			kind = models.JobRecordScreen
		}
		ctx, stop := signalContext()
		defer stop()
		path, err := runJob(ctx, kind, string(mode), func(ctx context.Context) (string, string, error) {
			p, err := recordUntil(ctx, os.Stdout, mode, out, seconds)
			return p, "ffmpeg", err
		})
		if err != nil {
			return err
		}
		fmt.Println("Recording saved to:", path)
		return nil
	},
}

type recordResult struct {
	path string
	err  error
}

// recordUntil records until the duration elapses or ctx is done.
func recordUntil(ctx context.Context, w io.Writer, mode recorder.Mode, out string, seconds int) (string, error) {
	ffmpeg, err := tools.Locate(cfg.FFmpegPath, cfg.FFmpegSearchPaths)
	if err != nil {
		return "", fmt.Errorf("ffmpeg is required for recording: %w", err)
	}
	rec := recorder.New(logger, cfg, ffmpeg)
	// not ctx: cancellation must reach ffmpeg as "q" so the file is finalized
	if err := rec.Start(context.Background(), mode, out, seconds); err != nil {
		return "", err
	}
	fmt.Fprintf(w, "Recording %s to %s. Press Ctrl+C to stop.\n", mode, out)
	waited := make(chan recordResult, 1)
	go func() {
		p, err := rec.Wait()
		waited <- recordResult{p, err}
	}()
	select {
	case r := <-waited:
		return r.path, r.err
	case <-ctx.Done():
		fmt.Fprintln(w, "Stopping recording...")
		p, err := rec.Stop()
		if errors.Is(err, recorder.ErrNotRecording) {
			// ffmpeg finished on its own in the meantime
			r := <-waited
			return r.path, r.err
		}
		return p, err
	}
}

func init() {
	recordCmd.Flags().IntP("duration", "d", 0, "stop after this many seconds (0 = RecordMaxSec)")
	recordCmd.Flags().StringP("output", "o", "", "output file (default <OutputDir>/<mode>_recording_<ts>)")
	rootCmd.AddCommand(recordCmd)
}
