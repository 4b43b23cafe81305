//go:build !extra
// +build !extra

package extra

import "context"

func PlayFile(ctx context.Context, path string) error {
	return ErrNoAudioDevice
}
