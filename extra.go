//go:build extra
// +build extra

package main

// built with portaudio capture and beep speaker playback
const audioSupport = "microphone, speaker and google voice enabled (needs cgo and ALSA)"
