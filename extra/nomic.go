//go:build !extra
// +build !extra

package extra

import "context"

func (l *Listener) Run(ctx context.Context, out chan<- string) error {
	l.logger.Debug("listen not available - extra modules disabled")
	return ErrNoAudioDevice
}
