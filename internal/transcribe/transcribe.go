// Package transcribe defines the speech-to-text contract and a client
// for OpenAI-compatible transcription servers.
package transcribe

import (
	"context"
	"fmt"
	"strings"
)

// Segment is one timestamped piece of recognized text. Start and End
// are seconds on the recording timeline, half-open.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Result is a full transcription with the detected language.
type Result struct {
	Language string
	Segments []Segment
}

// Engine converts a normalized mono float buffer at the capture rate
// into timestamped text. The language hint may be empty for
// auto-detection.
type Engine interface {
	Transcribe(ctx context.Context, samples []float32, language string) (Result, error)
}

// Render formats the transcript as "[MM:SS - MM:SS] text" lines.
func (r Result) Render() string {
	var b strings.Builder
	for _, seg := range r.Segments {
		fmt.Fprintf(&b, "[%s - %s] %s\n",
			formatTimestamp(seg.Start), formatTimestamp(seg.End), seg.Text)
	}
	return b.String()
}

func formatTimestamp(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
