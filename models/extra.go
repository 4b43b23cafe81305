package models

import "strings"

type AudioFormat string

const (
	AFOPUS AudioFormat = "opus"
	AFMP3  AudioFormat = "mp3"
	AFWAV  AudioFormat = "wav"
	AFM4A  AudioFormat = "m4a"
)

// FormatFromExt maps a file extension (with or without dot, any case) to an
// AudioFormat. ok is false for extensions it does not know.
func FormatFromExt(ext string) (f AudioFormat, ok bool) {
	switch f = AudioFormat(strings.TrimPrefix(strings.ToLower(ext), ".")); f {
	case AFMP3, AFOPUS, AFWAV, AFM4A:
		return f, true
	}
	return "", false
}
