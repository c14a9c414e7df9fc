package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/petems/recmeet/internal/audiofile"
	"github.com/petems/recmeet/internal/capture"
	"github.com/petems/recmeet/internal/diarize"
	"github.com/petems/recmeet/internal/transcribe"
)

type fakeTranscriber struct {
	result transcribe.Result
	err    error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, samples []float32, language string) (transcribe.Result, error) {
	return f.result, f.err
}

type fakeDiarizer struct {
	segments []diarize.Segment
	err      error
	called   bool
}

func (f *fakeDiarizer) Diarize(ctx context.Context, samples []float32, numSpeakers int, threshold float64) ([]diarize.Segment, error) {
	f.called = true
	return f.segments, f.err
}

type fakeSummarizer struct {
	summary string
	err     error
	gotCtx  string
}

func (f *fakeSummarizer) Summarize(ctx context.Context, transcript, meetingContext string) (string, error) {
	f.gotCtx = meetingContext
	return f.summary, f.err
}

func writeTestAudio(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "audio.wav")
	if err := audiofile.WriteWAV(path, make([]int16, capture.SampleRate)); err != nil {
		t.Fatalf("writing test audio: %v", err)
	}
	return path
}

func testStages(tr transcribe.Engine) *Stages {
	return &Stages{
		Transcriber: tr,
		Log:         zerolog.Nop(),
		Now:         func() time.Time { return time.Date(2026, 8, 26, 14, 30, 0, 0, time.UTC) },
	}
}

func TestRunHappyPath(t *testing.T) {
	dir := t.TempDir()
	audio := writeTestAudio(t, dir)

	var phases []string
	stages := testStages(&fakeTranscriber{result: transcribe.Result{
		Segments: []transcribe.Segment{{Start: 0, End: 2, Text: "Hello team."}},
	}})
	stages.Summarizer = &fakeSummarizer{summary: "Title: Standup\n\n### Overview\n\nQuick sync.\n"}
	stages.OnPhase = func(name string) { phases = append(phases, name) }

	res, err := stages.Run(context.Background(), Input{OutputDir: dir, AudioPath: audio, Duration: 90 * time.Second}, Options{Model: "base"})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if !strings.Contains(res.Transcript, "Hello team.") {
		t.Errorf("transcript = %q", res.Transcript)
	}
	if _, err := os.Stat(res.TranscriptPath); err != nil {
		t.Errorf("transcript file missing: %v", err)
	}
	if _, err := os.Stat(res.SummaryPath); err != nil {
		t.Errorf("summary file missing: %v", err)
	}
	if res.NotePath == "" {
		t.Fatal("note path empty")
	}
	if filepath.Base(res.NotePath) != "Meeting_2026-08-26_14-30_Standup.md" {
		t.Errorf("note filename = %q", filepath.Base(res.NotePath))
	}

	want := []string{"transcribing", "summarizing", "note", "complete"}
	if len(phases) != len(want) {
		t.Fatalf("phases = %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Errorf("phase[%d] = %q, want %q", i, phases[i], want[i])
		}
	}
}

func TestRunEmptyTranscriptFatal(t *testing.T) {
	dir := t.TempDir()
	audio := writeTestAudio(t, dir)

	stages := testStages(&fakeTranscriber{result: transcribe.Result{}})
	_, err := stages.Run(context.Background(), Input{OutputDir: dir, AudioPath: audio}, Options{})
	if !errors.Is(err, ErrEmptyTranscript) {
		t.Fatalf("err = %v, want ErrEmptyTranscript", err)
	}
}

func TestRunTranscribeErrorFatal(t *testing.T) {
	dir := t.TempDir()
	audio := writeTestAudio(t, dir)

	stages := testStages(&fakeTranscriber{err: errors.New("server down")})
	if _, err := stages.Run(context.Background(), Input{OutputDir: dir, AudioPath: audio}, Options{}); err == nil {
		t.Fatal("expected transcription error to be fatal")
	}
}

func TestRunSummaryFailureAbsorbed(t *testing.T) {
	dir := t.TempDir()
	audio := writeTestAudio(t, dir)

	stages := testStages(&fakeTranscriber{result: transcribe.Result{
		Segments: []transcribe.Segment{{Start: 0, End: 1, Text: "hi"}},
	}})
	stages.Summarizer = &fakeSummarizer{err: errors.New("api down")}

	res, err := stages.Run(context.Background(), Input{OutputDir: dir, AudioPath: audio}, Options{})
	if err != nil {
		t.Fatalf("summary failure should not abort the run: %v", err)
	}
	if res.SummaryPath != "" {
		t.Error("summary path should be empty after failure")
	}
	if _, err := os.Stat(res.TranscriptPath); err != nil {
		t.Errorf("transcript must survive summary failure: %v", err)
	}
	if res.NotePath == "" {
		t.Error("note should still be written without a summary")
	}
}

func TestRunDiarizeLabelsSpeakers(t *testing.T) {
	dir := t.TempDir()
	audio := writeTestAudio(t, dir)

	stages := testStages(&fakeTranscriber{result: transcribe.Result{
		Segments: []transcribe.Segment{
			{Start: 0, End: 4, Text: "first voice"},
			{Start: 4, End: 8, Text: "second voice"},
		},
	}})
	diar := &fakeDiarizer{segments: []diarize.Segment{
		{Start: 0, End: 4, Speaker: 0},
		{Start: 4, End: 8, Speaker: 1},
	}}
	stages.Diarizer = diar

	res, err := stages.Run(context.Background(), Input{OutputDir: dir, AudioPath: audio}, Options{Diarize: true, NumSpeakers: 2})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !diar.called {
		t.Fatal("diarizer not called")
	}
	if !strings.Contains(res.Transcript, "Speaker_01: first voice") ||
		!strings.Contains(res.Transcript, "Speaker_02: second voice") {
		t.Errorf("transcript = %q", res.Transcript)
	}
}

func TestRunDiarizeFailureAbsorbed(t *testing.T) {
	dir := t.TempDir()
	audio := writeTestAudio(t, dir)

	stages := testStages(&fakeTranscriber{result: transcribe.Result{
		Segments: []transcribe.Segment{{Start: 0, End: 1, Text: "hi"}},
	}})
	stages.Diarizer = &fakeDiarizer{err: errors.New("no model")}

	res, err := stages.Run(context.Background(), Input{OutputDir: dir, AudioPath: audio}, Options{Diarize: true})
	if err != nil {
		t.Fatalf("diarization failure should not abort the run: %v", err)
	}
	if strings.Contains(res.Transcript, "Speaker_") {
		t.Errorf("transcript should be unlabeled, got %q", res.Transcript)
	}
}

func TestRunSingleSpeakerSkipsLabels(t *testing.T) {
	dir := t.TempDir()
	audio := writeTestAudio(t, dir)

	stages := testStages(&fakeTranscriber{result: transcribe.Result{
		Segments: []transcribe.Segment{{Start: 0, End: 1, Text: "monologue"}},
	}})
	stages.Diarizer = &fakeDiarizer{segments: []diarize.Segment{{Start: 0, End: 1, Speaker: 0}}}

	res, err := stages.Run(context.Background(), Input{OutputDir: dir, AudioPath: audio}, Options{Diarize: true})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if strings.Contains(res.Transcript, "Speaker_") {
		t.Errorf("single speaker should stay unlabeled, got %q", res.Transcript)
	}
}

func TestRunNoSummaryOption(t *testing.T) {
	dir := t.TempDir()
	audio := writeTestAudio(t, dir)

	summ := &fakeSummarizer{summary: "should not run"}
	stages := testStages(&fakeTranscriber{result: transcribe.Result{
		Segments: []transcribe.Segment{{Start: 0, End: 1, Text: "hi"}},
	}})
	stages.Summarizer = summ

	res, err := stages.Run(context.Background(), Input{OutputDir: dir, AudioPath: audio}, Options{NoSummary: true})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Summary != "" || res.SummaryPath != "" {
		t.Error("summary should be skipped with NoSummary")
	}
}

func TestRunContextFileReachesSummarizer(t *testing.T) {
	dir := t.TempDir()
	audio := writeTestAudio(t, dir)
	ctxFile := filepath.Join(dir, "context.md")
	if err := os.WriteFile(ctxFile, []byte("agenda: hiring"), 0o644); err != nil {
		t.Fatal(err)
	}

	summ := &fakeSummarizer{summary: "### Overview\n\nok\n"}
	stages := testStages(&fakeTranscriber{result: transcribe.Result{
		Segments: []transcribe.Segment{{Start: 0, End: 1, Text: "hi"}},
	}})
	stages.Summarizer = summ

	if _, err := stages.Run(context.Background(), Input{OutputDir: dir, AudioPath: audio}, Options{ContextFile: ctxFile}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if summ.gotCtx != "agenda: hiring" {
		t.Errorf("summarizer context = %q", summ.gotCtx)
	}
}
