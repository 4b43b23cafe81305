package extra

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/chalskim/adSTTS/models"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

var ErrUnsupportedOutput = errors.New("output must be a .wav or .mp3 file")

// pause inserted between synthesized sentences
const segmentGap = 200 * time.Millisecond

// writeWavHeader writes a 44 byte header for 16-bit mono PCM.
func writeWavHeader(w io.Writer, dataSize, sampleRate int) error {
	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1)
	binary.LittleEndian.PutUint16(header[22:24], 1)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate)*1*(16/8))
	binary.LittleEndian.PutUint16(header[32:34], 1*(16/8))
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))
	_, err := w.Write(header)
	return err
}

// pcmToWav wraps little-endian int16 samples into a complete wav file.
func pcmToWav(samples []int16, sampleRate int) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := writeWavHeader(buf, len(samples)*2, sampleRate); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, samples); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// outputFormat accepts the two containers every engine can produce.
func outputFormat(out string) (models.AudioFormat, error) {
	f, ok := models.FormatFromExt(filepath.Ext(out))
	if !ok || (f != models.AFWAV && f != models.AFMP3) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedOutput, filepath.Base(out))
	}
	return f, nil
}

func isWav(seg []byte) bool {
	return len(seg) >= 12 && string(seg[0:4]) == "RIFF" && string(seg[8:12]) == "WAVE"
}

// decodeSegment sniffs wav by its RIFF header and treats the rest as mp3.
func decodeSegment(seg []byte) (beep.StreamSeekCloser, beep.Format, error) {
	if isWav(seg) {
		return wav.Decode(bytes.NewReader(seg))
	}
	return mp3.Decode(io.NopCloser(bytes.NewReader(seg)))
}

// writeSegments stores mp3 or wav segments at out. A .mp3 target gets the
// raw mp3 frames back to back; a .wav target gets the decoded audio as one
// wav with a short gap between segments.
func writeSegments(out string, segments [][]byte) error {
	if len(segments) == 0 {
		return errors.New("no audio segments to write")
	}
	format, err := outputFormat(out)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if format == models.AFMP3 {
		for i, seg := range segments {
			if isWav(seg) {
				return fmt.Errorf("segment %d is wav, cannot append it to %s", i, filepath.Base(out))
			}
		}
		return os.WriteFile(out, bytes.Join(segments, nil), 0644)
	}
	return encodeWav(out, segments)
}

func encodeWav(out string, segments [][]byte) error {
	var (
		streamers []beep.Streamer
		format    beep.Format
	)
	for i, seg := range segments {
		s, f, err := decodeSegment(seg)
		if err != nil {
			return fmt.Errorf("decode failed for segment %d: %w", i, err)
		}
		defer s.Close()
		if i == 0 {
			format = f
		} else {
			streamers = append(streamers, beep.Silence(format.SampleRate.N(segmentGap)))
		}
		if f.SampleRate != format.SampleRate {
			streamers = append(streamers, beep.Resample(4, f.SampleRate, format.SampleRate, s))
			continue
		}
		streamers = append(streamers, s)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := wav.Encode(f, beep.Seq(streamers...), format); err != nil {
		f.Close()
		return fmt.Errorf("wav encode failed: %w", err)
	}
	return f.Close()
}
