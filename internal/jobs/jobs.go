// Package jobs tracks background post-processing runs so recording
// can resume while earlier meetings are still being processed.
package jobs

import (
	"sort"

	"github.com/rs/zerolog"
)

// Job identifies one background pipeline run.
type Job struct {
	ID        int
	OutputDir string
}

// Completion is delivered on the events channel when a job's work
// function returns.
type Completion struct {
	Job Job
	Err error
}

// Tracker hands out monotonically increasing job ids and reports
// completions over a channel. Submit, Finish, Pending, and
// WarnPending must all be called from the same owner goroutine; only
// the submitted work functions run concurrently.
type Tracker struct {
	log    zerolog.Logger
	nextID int
	jobs   map[int]Job
	events chan Completion
}

// NewTracker builds an empty tracker.
func NewTracker(log zerolog.Logger) *Tracker {
	return &Tracker{
		log:    log,
		jobs:   make(map[int]Job),
		events: make(chan Completion, 8),
	}
}

// Submit registers a job and runs fn on its own goroutine. The
// completion arrives on Events when fn returns.
func (t *Tracker) Submit(outputDir string, fn func() error) Job {
	t.nextID++
	job := Job{ID: t.nextID, OutputDir: outputDir}
	t.jobs[job.ID] = job
	t.log.Info().Int("job", job.ID).Str("dir", outputDir).Msg("Post-processing started")

	go func() {
		t.events <- Completion{Job: job, Err: fn()}
	}()
	return job
}

// Events delivers one Completion per submitted job.
func (t *Tracker) Events() <-chan Completion {
	return t.events
}

// Finish removes a completed job from the pending set.
func (t *Tracker) Finish(c Completion) {
	delete(t.jobs, c.Job.ID)
	if c.Err != nil {
		t.log.Error().Err(c.Err).Int("job", c.Job.ID).Str("dir", c.Job.OutputDir).
			Msg("Post-processing failed")
	} else {
		t.log.Info().Int("job", c.Job.ID).Str("dir", c.Job.OutputDir).
			Msg("Post-processing complete")
	}
}

// Pending lists outstanding jobs in submission order.
func (t *Tracker) Pending() []Job {
	out := make([]Job, 0, len(t.jobs))
	for _, job := range t.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// WarnPending logs every job that would be abandoned by quitting now.
func (t *Tracker) WarnPending() {
	for _, job := range t.Pending() {
		t.log.Warn().Int("job", job.ID).Str("dir", job.OutputDir).
			Msg("Quitting with post-processing pending")
	}
}
