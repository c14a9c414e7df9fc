// Package diarize attributes spans of a recording to individual
// speakers and merges those spans into a transcript.
package diarize

import (
	"context"
	"fmt"

	"github.com/petems/recmeet/internal/transcribe"
)

// Segment is a span of audio attributed to a single speaker.
type Segment struct {
	Start   float64
	End     float64
	Speaker int
}

// Engine identifies speakers in a recording. numSpeakers of zero asks
// the engine to estimate the count itself; threshold tunes the
// clustering sensitivity.
type Engine interface {
	Diarize(ctx context.Context, samples []float32, numSpeakers int, threshold float64) ([]Segment, error)
}

// FormatSpeaker renders a zero-based speaker index as a stable label.
func FormatSpeaker(id int) string {
	return fmt.Sprintf("Speaker_%02d", id+1)
}

// MergeSpeakers labels each transcript segment with the speaker whose
// diarized span overlaps it the most. Segments with no overlapping
// speaker keep the first speaker as a default.
func MergeSpeakers(transcript []transcribe.Segment, speakers []Segment) []transcribe.Segment {
	merged := make([]transcribe.Segment, 0, len(transcript))
	for _, seg := range transcript {
		speaker := 0
		best := 0.0
		for _, sp := range speakers {
			overlap := min(seg.End, sp.End) - max(seg.Start, sp.Start)
			if overlap > best {
				best = overlap
				speaker = sp.Speaker
			}
		}
		merged = append(merged, transcribe.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  FormatSpeaker(speaker) + ": " + seg.Text,
		})
	}
	return merged
}

// CountSpeakers reports the number of distinct speakers in a set of
// diarized segments.
func CountSpeakers(speakers []Segment) int {
	seen := map[int]struct{}{}
	for _, sp := range speakers {
		seen[sp.Speaker] = struct{}{}
	}
	return len(seen)
}
