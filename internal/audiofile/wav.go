// Package audiofile reads, writes, validates, and mixes the WAV
// artifacts a recording session produces.
package audiofile

import (
	"fmt"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/petems/recmeet/internal/capture"
)

// wavHeaderSize is the canonical PCM header size used when a file's
// own header cannot be parsed and duration must be estimated from the
// raw byte count.
const wavHeaderSize = 44

// ValidationError reports a captured stream that is missing, empty,
// or below the minimum duration. Fatal for the microphone stream;
// the session recovers from it for the monitor stream.
type ValidationError struct {
	Label    string
	Duration float64
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Label, e.Reason)
}

// WriteWAV writes mono 16-bit samples at the fixed capture rate.
func WriteWAV(path string, samples []int16) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, capture.SampleRate, 16, capture.NumChannels, 1)
	buf := &gaudio.IntBuffer{
		Format: &gaudio.Format{
			NumChannels: capture.NumChannels,
			SampleRate:  capture.SampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return f.Close()
}

// ReadFloat reads a WAV file as mono float32 normalized to [-1, 1],
// the format the speech engines consume. Multi-channel input is
// downmixed by averaging.
func ReadFloat(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("%s contains no audio data", path)
	}

	scale := float32(int64(1) << (buf.SourceBitDepth - 1))
	if buf.SourceBitDepth == 0 {
		scale = 1 << 15
	}

	channels := buf.Format.NumChannels
	if channels <= 1 {
		out := make([]float32, len(buf.Data))
		for i, v := range buf.Data {
			out[i] = float32(v) / scale
		}
		return out, nil
	}

	frames := len(buf.Data) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += float32(buf.Data[i*channels+ch]) / scale
		}
		out[i] = sum / float32(channels)
	}
	return out, nil
}

// Validate checks that path holds at least minDuration seconds of
// audio and returns the measured duration. Duration comes from the
// file's own header when parseable; otherwise it is estimated from
// the raw byte count at the fixed capture byte rate, and the same
// minimum still applies.
func Validate(path string, minDuration float64, label string) (float64, error) {
	fi, err := os.Stat(path)
	if err != nil || fi.Size() == 0 {
		return 0, &ValidationError{Label: label, Reason: "file is missing or empty"}
	}

	dur, ok := headerDuration(path)
	if !ok {
		dataSize := float64(fi.Size()) - wavHeaderSize
		if dataSize <= 0 {
			return 0, &ValidationError{Label: label, Reason: "file contains no data"}
		}
		dur = dataSize / float64(capture.BytesPerSecond)
	}

	if dur < minDuration {
		return 0, &ValidationError{
			Label:    label,
			Duration: dur,
			Reason:   fmt.Sprintf("too short (%.2fs < %.2fs)", dur, minDuration),
		}
	}
	return dur, nil
}

func headerDuration(path string) (float64, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	d, err := dec.Duration()
	if err != nil || d <= 0 {
		return 0, false
	}
	return d.Seconds(), true
}
