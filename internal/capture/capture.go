// Package capture owns live audio capture sessions against named
// sources and the coordination primitives shared by them.
package capture

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// Capture format shared by every path in the program: signed 16-bit
// little-endian, mono, 16 kHz.
const (
	SampleRate     = 16000
	NumChannels    = 1
	BytesPerSample = 2
	BytesPerSecond = SampleRate * NumChannels * BytesPerSample
)

const monitorSuffix = ".monitor"

// IsMonitorName reports whether a source name follows the pulse-style
// sink monitor naming convention.
func IsMonitorName(name string) bool {
	return strings.HasSuffix(name, monitorSuffix)
}

// DeviceError reports an unreachable audio host or an unusable source.
// Fatal for the microphone channel; recoverable for the monitor
// channel, where the session falls back to mic-only recording.
type DeviceError struct {
	Source string
	Err    error
}

func (e *DeviceError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("audio device error: %v", e.Err)
	}
	return fmt.Sprintf("audio device %q: %v", e.Source, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// Sink receives captured sample chunks. The capture transport pushes
// into it, which keeps the transport swappable for a synthetic source
// in tests.
type Sink interface {
	Append(samples []int16)
}

// Buffer accumulates mono int16 samples behind a mutex. The lock is
// held only for the append or swap, never across I/O.
type Buffer struct {
	mu      sync.Mutex
	samples []int16
}

func (b *Buffer) Append(samples []int16) {
	b.mu.Lock()
	b.samples = append(b.samples, samples...)
	b.mu.Unlock()
}

// Drain swaps the internal buffer for an empty one and returns the
// prior contents. No sample is ever returned twice; a drain with no
// intervening capture returns nil.
func (b *Buffer) Drain() []int16 {
	b.mu.Lock()
	out := b.samples
	b.samples = nil
	b.mu.Unlock()
	return out
}

// Len returns the number of buffered samples.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples)
}

// StopSignal is a shared flip-flop polled by capture loops, the
// elapsed-time display, and the session stop loop. Any number of
// goroutines may request or observe it.
type StopSignal struct {
	requested atomic.Bool
}

func (s *StopSignal) Request()        { s.requested.Store(true) }
func (s *StopSignal) Requested() bool { return s.requested.Load() }

// Reset returns the signal to clear for reuse across sessions.
func (s *StopSignal) Reset() { s.requested.Store(false) }

// Channel owns one live capture session against one named source.
//
// Start is non-blocking: it returns once the stream is requested, not
// once audio flows. Stop is idempotent and safe after a partially
// failed Start. Drain returns and clears everything accumulated since
// the last drain and may be called running or stopped.
type Channel interface {
	Start() error
	Stop()
	Drain() []int16
	IsRunning() bool
}

// Factory creates an unstarted channel for a named source.
type Factory func(source string) Channel
