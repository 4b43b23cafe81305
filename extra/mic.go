//go:build extra
// +build extra

package extra

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Run captures the default microphone until ctx is done and sends each
// transcribed block to out. out is not closed.
func (l *Listener) Run(ctx context.Context, out chan<- string) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio init failed: %w", err)
	}
	defer portaudio.Terminate()
	in := make([]int16, 1024)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(l.cfg.STT_SR), len(in), in)
	if err != nil {
		return fmt.Errorf("failed to open microphone: %w", err)
	}
	defer stream.Close()
	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start microphone: %w", err)
	}
	defer stream.Stop()

	blocks := make(chan []int16, 4)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.consume(ctx, blocks, out)
	}()
	defer wg.Wait()
	defer close(blocks)

	size := l.blockSamples()
	block := make([]int16, 0, size)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := stream.Read(); err != nil {
			l.logger.Error("reading stream", "error", err)
			return fmt.Errorf("microphone read failed: %w", err)
		}
		block = append(block, in...)
		if len(block) >= size {
			blocks <- block
			block = make([]int16, 0, size)
		}
	}
}
