package jobs

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func waitCompletion(t *testing.T, tr *Tracker) Completion {
	t.Helper()
	select {
	case c := <-tr.Events():
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for completion")
		return Completion{}
	}
}

func TestSubmitAssignsMonotonicIDs(t *testing.T) {
	tr := NewTracker(zerolog.Nop())

	a := tr.Submit("/a", func() error { return nil })
	b := tr.Submit("/b", func() error { return nil })

	if a.ID != 1 || b.ID != 2 {
		t.Errorf("ids = %d, %d, want 1, 2", a.ID, b.ID)
	}

	waitCompletion(t, tr)
	waitCompletion(t, tr)
}

func TestCompletionCarriesError(t *testing.T) {
	tr := NewTracker(zerolog.Nop())
	boom := errors.New("transcription failed")

	tr.Submit("/out", func() error { return boom })

	c := waitCompletion(t, tr)
	if !errors.Is(c.Err, boom) {
		t.Errorf("completion err = %v, want %v", c.Err, boom)
	}
	if c.Job.OutputDir != "/out" {
		t.Errorf("completion dir = %q", c.Job.OutputDir)
	}
}

func TestFinishClearsPending(t *testing.T) {
	tr := NewTracker(zerolog.Nop())
	release := make(chan struct{})

	tr.Submit("/one", func() error { <-release; return nil })
	tr.Submit("/two", func() error { <-release; return nil })

	pending := tr.Pending()
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	if pending[0].ID != 1 || pending[1].ID != 2 {
		t.Errorf("pending order = %v", pending)
	}

	close(release)
	tr.Finish(waitCompletion(t, tr))
	tr.Finish(waitCompletion(t, tr))

	if len(tr.Pending()) != 0 {
		t.Errorf("pending after finish = %v", tr.Pending())
	}
}

func TestJobsRunConcurrently(t *testing.T) {
	tr := NewTracker(zerolog.Nop())
	firstRunning := make(chan struct{})
	release := make(chan struct{})

	tr.Submit("/slow", func() error {
		close(firstRunning)
		<-release
		return nil
	})

	<-firstRunning
	tr.Submit("/fast", func() error { return nil })

	// The fast job completes while the slow one is still running.
	c := waitCompletion(t, tr)
	if c.Job.OutputDir != "/fast" {
		t.Errorf("first completion = %q, want /fast", c.Job.OutputDir)
	}

	close(release)
	waitCompletion(t, tr)
}
