// Package pipeline runs the post-recording stages: transcription,
// optional diarization and summarization, and the meeting note.
// Recording can be canceled; a pipeline run cannot.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/petems/recmeet/internal/audiofile"
	"github.com/petems/recmeet/internal/diarize"
	"github.com/petems/recmeet/internal/note"
	"github.com/petems/recmeet/internal/summarize"
	"github.com/petems/recmeet/internal/transcribe"
)

// ErrEmptyTranscript is returned when transcription succeeds but
// yields no text. It is the only stage failure after transcription
// that aborts a run.
var ErrEmptyTranscript = errors.New("transcription produced no text")

// Stages wires the pipeline's collaborators. Nil Diarizer or
// Summarizer disables that stage.
type Stages struct {
	Transcriber transcribe.Engine
	Diarizer    diarize.Engine
	Summarizer  summarize.Summarizer
	Notify      func(title, body string)
	Log         zerolog.Logger
	Note        note.Config
	OnPhase     func(name string)
	Now         func() time.Time
}

// Options carries the per-run knobs.
type Options struct {
	Language         string
	ContextFile      string
	NoSummary        bool
	Diarize          bool
	NumSpeakers      int
	ClusterThreshold float64
	Model            string
}

// Input identifies the recording to process.
type Input struct {
	OutputDir string
	AudioPath string
	Duration  time.Duration
}

// Result reports what a run produced.
type Result struct {
	TranscriptPath string
	SummaryPath    string
	NotePath       string
	Transcript     string
	Summary        string
}

func (s *Stages) phase(name string) {
	if s.OnPhase != nil {
		s.OnPhase(name)
	}
}

func (s *Stages) notify(title, body string) {
	if s.Notify != nil {
		s.Notify(title, body)
	}
}

func (s *Stages) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func readContextFile(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

// Run processes a finished recording. Transcription failures are
// fatal; diarization, summarization, and note failures are logged and
// absorbed so the transcript always survives.
func (s *Stages) Run(ctx context.Context, in Input, opts Options) (Result, error) {
	var res Result

	s.phase("transcribing")
	s.notify("Transcribing...", "Model: "+opts.Model)

	samples, err := audiofile.ReadFloat(in.AudioPath)
	if err != nil {
		return res, fmt.Errorf("reading recording: %w", err)
	}

	tr, err := s.Transcriber.Transcribe(ctx, samples, opts.Language)
	if err != nil {
		return res, err
	}
	if len(tr.Segments) == 0 {
		return res, ErrEmptyTranscript
	}

	if opts.Diarize && s.Diarizer != nil {
		s.phase("diarizing")
		speakers, err := s.Diarizer.Diarize(ctx, samples, opts.NumSpeakers, opts.ClusterThreshold)
		switch {
		case err != nil:
			s.Log.Warn().Err(err).Msg("Diarization failed, keeping unlabeled transcript")
		case diarize.CountSpeakers(speakers) > 1:
			tr.Segments = diarize.MergeSpeakers(tr.Segments, speakers)
		default:
			s.Log.Info().Msg("Single speaker detected, skipping speaker labels")
		}
	}

	res.Transcript = tr.Render()
	res.TranscriptPath = filepath.Join(in.OutputDir, "transcript.txt")
	if err := os.WriteFile(res.TranscriptPath, []byte(res.Transcript), 0o644); err != nil {
		return res, fmt.Errorf("writing transcript: %w", err)
	}
	s.Log.Info().Str("path", res.TranscriptPath).Msg("Transcript saved")

	contextText := readContextFile(opts.ContextFile)

	if !opts.NoSummary && s.Summarizer != nil {
		s.phase("summarizing")
		s.notify("Summarizing...", "Sending transcript")
		summary, err := s.Summarizer.Summarize(ctx, res.Transcript, contextText)
		if err != nil {
			s.Log.Warn().Err(err).Msg("Summary failed, transcript is still available")
		} else {
			res.Summary = summary
			res.SummaryPath = filepath.Join(in.OutputDir, "summary.md")
			if err := os.WriteFile(res.SummaryPath, []byte(summary), 0o644); err != nil {
				s.Log.Warn().Err(err).Msg("Could not save summary")
				res.SummaryPath = ""
			} else {
				s.Log.Info().Str("path", res.SummaryPath).Msg("Summary saved")
			}
		}
	}

	s.phase("note")
	meta := note.ExtractMetadata(res.Summary)
	now := s.now()
	notePath, err := note.Write(s.Note, note.Meeting{
		Title:           meta.Title,
		Date:            now.Format("2006-01-02"),
		Time:            now.Format("15:04"),
		Description:     meta.Description,
		AITags:          meta.Tags,
		Participants:    meta.Participants,
		DurationSeconds: int(in.Duration.Seconds()),
		OutputDir:       in.OutputDir,
		WhisperModel:    opts.Model,
		ContextText:     contextText,
		SummaryText:     note.StripMetadataBlock(res.Summary),
		TranscriptText:  res.Transcript,
	})
	if err != nil {
		s.Log.Warn().Err(err).Msg("Meeting note failed")
	} else {
		res.NotePath = notePath
		s.Log.Info().Str("path", notePath).Msg("Meeting note saved")
	}

	s.phase("complete")
	s.notify("Meeting complete", in.OutputDir)
	return res, nil
}
