package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/petems/recmeet/internal/capture"
	"github.com/petems/recmeet/internal/jobs"
	"github.com/petems/recmeet/internal/pipeline"
	"github.com/petems/recmeet/internal/session"
)

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	var (
		micSource      string
		monitorSource  string
		micOnly        bool
		outputDir      string
		devicePattern  string
		keepRaw        bool
		copyTranscript bool
		loop           bool
		ov             apiOverrides
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a meeting and process it",
		Long: "Records until Ctrl+C, then transcribes, summarizes, and writes the\n" +
			"meeting note in the background. With --loop a new recording starts\n" +
			"immediately; press Ctrl+C twice within two seconds to quit.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(deps, recordOptions{
				micSource:      micSource,
				monitorSource:  monitorSource,
				micOnly:        micOnly,
				outputDir:      outputDir,
				devicePattern:  devicePattern,
				keepRaw:        keepRaw,
				copyTranscript: copyTranscript,
				loop:           loop,
				overrides:      ov,
			})
		},
	}

	cmd.Flags().StringVar(&micSource, "source", "", "Mic source name (default: auto-detect)")
	cmd.Flags().StringVar(&monitorSource, "monitor", "", "Monitor source name (default: auto-detect)")
	cmd.Flags().BoolVar(&micOnly, "mic-only", false, "Record the microphone only")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Base directory for recordings")
	cmd.Flags().StringVar(&devicePattern, "device-pattern", "", "Regex to select audio sources")
	cmd.Flags().BoolVar(&keepRaw, "keep-raw", false, "Keep per-channel mic.wav and monitor.wav")
	cmd.Flags().BoolVar(&copyTranscript, "copy", false, "Copy the transcript to the clipboard")
	cmd.Flags().BoolVar(&loop, "loop", false, "Start a new recording after each one stops")
	cmd.Flags().StringVar(&ov.apiKey, "api-key", "", "Summary API key (overrides config and environment)")
	cmd.Flags().StringVar(&ov.apiURL, "api-url", "", "Summary API endpoint")
	cmd.Flags().StringVar(&ov.apiModel, "api-model", "", "Summary model name")
	cmd.Flags().BoolVar(&ov.noSummary, "no-summary", false, "Skip the AI summary")
	cmd.Flags().StringVar(&ov.language, "language", "", "Transcription language hint")
	cmd.Flags().StringVar(&ov.contextFile, "context-file", "", "Markdown file with pre-meeting context")
	cmd.Flags().BoolVar(&ov.noDiarize, "no-diarize", false, "Skip speaker labeling")
	cmd.Flags().IntVar(&ov.numSpeakers, "num-speakers", 0, "Expected speaker count (0 = auto)")

	return cmd
}

type recordOptions struct {
	micSource      string
	monitorSource  string
	micOnly        bool
	outputDir      string
	devicePattern  string
	keepRaw        bool
	copyTranscript bool
	loop           bool
	overrides      apiOverrides
}

func runRecord(deps *Dependencies, opts recordOptions) error {
	if err := capture.Initialize(); err != nil {
		return err
	}
	defer capture.Terminate()

	cfg := deps.Config
	log := deps.Log

	outputDir := cfg.Output.Dir
	if opts.outputDir != "" {
		outputDir = opts.outputDir
	}
	micSource := cfg.Audio.MicSource
	if opts.micSource != "" {
		micSource = opts.micSource
	}
	monitorSource := cfg.Audio.MonitorSource
	if opts.monitorSource != "" {
		monitorSource = opts.monitorSource
	}
	devicePattern := cfg.Audio.DevicePattern
	if opts.devicePattern != "" {
		devicePattern = opts.devicePattern
	}

	stages, pipeOpts := buildStages(deps, opts.overrides)
	tracker := jobs.NewTracker(log)
	stop := &capture.StopSignal{}

	// First Ctrl+C stops the recording; a second within two seconds
	// requests quit.
	var quitRequested atomic.Bool
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		var last time.Time
		for range sigCh {
			now := time.Now()
			if !last.IsZero() && now.Sub(last) < 2*time.Second {
				quitRequested.Store(true)
			}
			last = now
			stop.Request()
		}
	}()

	var progress io.Writer
	if isatty.IsTerminal(os.Stderr.Fd()) {
		progress = os.Stderr
	}

	for {
		drainCompletions(tracker)

		sess := session.New(session.Config{
			MicSource:     micSource,
			MonitorSource: monitorSource,
			MicOnly:       opts.micOnly || cfg.Audio.MicOnly,
			DevicePattern: devicePattern,
			OutputDir:     outputDir,
			MinDuration:   cfg.Audio.MinDuration,
			KeepRaw:       opts.keepRaw || cfg.Output.KeepRaw,
			Monitor:       capture.DefaultMonitorPolicy(log),
			Stop:          stop,
			Log:           log,
			Progress:      progress,
			Notify:        stages.Notify,
		})

		rec, err := sess.Run()
		if err != nil {
			tracker.WarnPending()
			return err
		}

		tracker.Submit(rec.OutputDir, func() error {
			res, perr := stages.Run(context.Background(), pipeline.Input{
				OutputDir: rec.OutputDir,
				AudioPath: rec.AudioPath,
				Duration:  rec.Duration,
			}, pipeOpts)
			if perr != nil {
				return perr
			}
			if opts.copyTranscript {
				if cerr := clipboard.WriteAll(res.Transcript); cerr != nil {
					log.Warn().Err(cerr).Msg("Clipboard copy failed")
				}
			}
			return nil
		})

		if !opts.loop || quitRequested.Load() {
			break
		}
		stop.Reset()
		log.Info().Msg("Starting next recording")
	}

	return waitForJobs(tracker, &quitRequested)
}

// drainCompletions consumes any completions already delivered, without
// blocking.
func drainCompletions(tracker *jobs.Tracker) {
	for {
		select {
		case c := <-tracker.Events():
			tracker.Finish(c)
		default:
			return
		}
	}
}

// waitForJobs blocks until background post-processing finishes or the
// user insists on quitting.
func waitForJobs(tracker *jobs.Tracker, quitRequested *atomic.Bool) error {
	for len(tracker.Pending()) > 0 {
		if quitRequested.Load() {
			tracker.WarnPending()
			return nil
		}
		select {
		case c := <-tracker.Events():
			tracker.Finish(c)
		case <-time.After(200 * time.Millisecond):
		}
	}
	return nil
}
