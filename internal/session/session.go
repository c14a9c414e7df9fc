// Package session runs one recording session end to end: source
// resolution, capture, the stop poll, and the WAV artifacts handed to
// the post-processing pipeline.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/petems/recmeet/internal/audiofile"
	"github.com/petems/recmeet/internal/capture"
	"github.com/petems/recmeet/internal/source"
)

// State is the observable lifecycle of a session.
type State int32

const (
	StateIdle State = iota
	StateRecording
	StateStopped
)

const stopPollInterval = 200 * time.Millisecond

// Config wires a session. The factories and enumerator default to the
// real portaudio backends when nil.
type Config struct {
	MicSource     string
	MonitorSource string
	MicOnly       bool
	DevicePattern string
	OutputDir     string
	MinDuration   float64 // seconds; zero means 1.0
	KeepRaw       bool

	Enumerator source.Enumerator
	NewMic     capture.Factory
	Monitor    capture.MonitorPolicy
	Stop       *capture.StopSignal

	Log      zerolog.Logger
	Progress io.Writer
	Notify   func(title, body string)
}

// Result describes a finished recording.
type Result struct {
	ID        string
	OutputDir string
	AudioPath string
	Duration  time.Duration
	DualMode  bool
}

// Session is a single-use recording run.
type Session struct {
	cfg   Config
	id    string
	log   zerolog.Logger
	state atomic.Int32
}

// New builds a session with a fresh correlation id.
func New(cfg Config) *Session {
	if cfg.MinDuration <= 0 {
		cfg.MinDuration = 1.0
	}
	if cfg.NewMic == nil {
		cfg.NewMic = func(src string) capture.Channel { return capture.NewStreamCapture(src) }
	}
	if cfg.Enumerator == nil {
		cfg.Enumerator = &source.PortAudio{}
	}
	id := uuid.NewString()
	return &Session{
		cfg: cfg,
		id:  id,
		log: cfg.Log.With().Str("session", id[:8]).Logger(),
	}
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) notify(title, body string) {
	if s.cfg.Notify != nil {
		s.cfg.Notify(title, body)
	}
}

// resolveSources fills the mic and monitor slots from config or
// detection. A missing mic is fatal; a missing monitor degrades to
// mic-only.
func (s *Session) resolveSources() (mic, monitor string, err error) {
	mic = s.cfg.MicSource
	monitor = s.cfg.MonitorSource

	if mic == "" {
		detected, derr := source.Detect(s.cfg.Enumerator, s.cfg.DevicePattern)
		if derr != nil {
			return "", "", derr
		}
		if detected.Mic == "" {
			for _, src := range detected.All {
				s.log.Info().Str("name", src.Name).Str("description", src.Description).
					Msg("Available source")
			}
			return "", "", &capture.DeviceError{
				Err: fmt.Errorf("no mic source found matching pattern %q", s.cfg.DevicePattern),
			}
		}
		mic = detected.Mic
		if !s.cfg.MicOnly && monitor == "" {
			monitor = detected.Monitor
		}
	}
	return mic, monitor, nil
}

// Run records until the shared stop signal fires, then writes and
// validates the session's WAV artifacts.
func (s *Session) Run() (Result, error) {
	mic, monitor, err := s.resolveSources()
	if err != nil {
		return Result{}, err
	}

	dual := !s.cfg.MicOnly && monitor != ""
	if dual {
		s.log.Info().Str("mic", mic).Str("monitor", monitor).Msg("Recording dual sources")
	} else {
		s.log.Info().Str("mic", mic).Msg("Recording mic only")
		if !s.cfg.MicOnly && monitor == "" {
			s.log.Info().Msg("No monitor source found")
		}
	}

	outDir, err := createOutputDir(s.cfg.OutputDir, time.Now())
	if err != nil {
		return Result{}, err
	}
	s.log.Info().Str("dir", outDir).Msg("Output directory")

	micCh := s.cfg.NewMic(mic)
	if err := micCh.Start(); err != nil {
		return Result{}, err
	}
	defer micCh.Stop()

	var monCh capture.Channel
	if dual {
		monCh, err = s.cfg.Monitor.Open(monitor)
		if err != nil {
			s.log.Warn().Err(err).Str("source", monitor).
				Msg("Monitor capture unavailable, recording mic only")
			dual = false
		} else {
			defer monCh.Stop()
		}
	}

	if dual {
		s.notify("Recording started", "Mic: "+mic+"\nMonitor: "+monitor)
	} else {
		s.notify("Recording started", "Source: "+mic)
	}

	s.state.Store(int32(StateRecording))
	started := time.Now()
	s.waitForStop(started)
	s.state.Store(int32(StateStopped))
	duration := time.Since(started)
	s.log.Info().Dur("duration", duration).Msg("Recording stopped")

	micCh.Stop()
	if monCh != nil {
		monCh.Stop()
	}

	audioPath, err := s.finish(outDir, micCh.Drain(), drainOrNil(monCh), dual)
	if err != nil {
		return Result{}, err
	}

	return Result{
		ID:        s.id,
		OutputDir: outDir,
		AudioPath: audioPath,
		Duration:  duration,
		DualMode:  dual,
	}, nil
}

func drainOrNil(ch capture.Channel) []int16 {
	if ch == nil {
		return nil
	}
	return ch.Drain()
}

// waitForStop polls the shared stop signal and drives the elapsed
// display when a progress writer is attached.
func (s *Session) waitForStop(started time.Time) {
	lastShown := -1
	for !s.cfg.Stop.Requested() {
		if s.cfg.Progress != nil {
			elapsed := int(time.Since(started).Seconds())
			if elapsed != lastShown {
				fmt.Fprintf(s.cfg.Progress, "\rRecording... %02d:%02d", elapsed/60, elapsed%60)
				lastShown = elapsed
			}
		}
		time.Sleep(stopPollInterval)
	}
	if s.cfg.Progress != nil {
		fmt.Fprint(s.cfg.Progress, "\r                    \r")
	}
}

// finish writes the captured streams and produces the single
// audio.wav the pipeline consumes. Mic validation failures are fatal;
// an unusable monitor stream degrades to mic-only output.
func (s *Session) finish(outDir string, micSamples, monSamples []int16, dual bool) (string, error) {
	audioPath := filepath.Join(outDir, "audio.wav")

	if !dual {
		if err := audiofile.WriteWAV(audioPath, micSamples); err != nil {
			return "", err
		}
		if _, err := audiofile.Validate(audioPath, s.cfg.MinDuration, "Audio"); err != nil {
			return "", err
		}
		return audioPath, nil
	}

	micPath := filepath.Join(outDir, "mic.wav")
	monPath := filepath.Join(outDir, "monitor.wav")
	if err := audiofile.WriteWAV(micPath, micSamples); err != nil {
		return "", err
	}
	if err := audiofile.WriteWAV(monPath, monSamples); err != nil {
		return "", err
	}

	if _, err := audiofile.Validate(micPath, s.cfg.MinDuration, "Mic audio"); err != nil {
		return "", err
	}

	var verr *audiofile.ValidationError
	if _, err := audiofile.Validate(monPath, s.cfg.MinDuration, "Monitor audio"); err != nil {
		if !errors.As(err, &verr) {
			return "", err
		}
		s.log.Warn().Err(err).Msg("Monitor audio unusable, using mic only")
		if err := audiofile.WriteWAV(audioPath, micSamples); err != nil {
			return "", err
		}
	} else {
		if err := audiofile.WriteWAV(audioPath, audiofile.Mix(micSamples, monSamples)); err != nil {
			return "", err
		}
		s.log.Info().Str("path", audioPath).Msg("Mixed audio saved")
	}

	if !s.cfg.KeepRaw {
		os.Remove(micPath)
		os.Remove(monPath)
	}
	return audioPath, nil
}

// createOutputDir makes a timestamped directory under base, suffixing
// _2 through _99 on collision.
func createOutputDir(base string, now time.Time) (string, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("create output base %s: %w", base, err)
	}

	stamp := now.Format("2006-01-02_15-04")
	for i := 1; i <= 99; i++ {
		name := stamp
		if i > 1 {
			name = fmt.Sprintf("%s_%d", stamp, i)
		}
		dir := filepath.Join(base, name)
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}
	return "", fmt.Errorf("too many output directories for %s", stamp)
}
