package capture

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"
)

// blockingStream is the surface of a blocking-read capture stream.
// The real implementation reads from the audio host; tests substitute
// a synthetic one.
type blockingStream interface {
	Start() error
	Read() error
	Close() error
}

// BlockingCapture is the fallback backend: a blocking-read stream
// serviced by a dedicated goroutine. Sources carrying the ".monitor"
// suffix can only be captured this way — the stream backend does not
// address that naming form. Each Read fills one ~100ms chunk; the
// loop checks the stop signal between reads and exits promptly on
// request.
type BlockingCapture struct {
	source  string
	buf     Buffer
	stop    StopSignal
	running atomic.Bool
	done    chan struct{}

	// open is swapped out by tests; it returns the stream and the
	// frame slice Read fills.
	open func() (blockingStream, []int16, error)
}

// chunkSamples is 100ms of audio per blocking read.
const chunkSamples = SampleRate / 10

// NewBlockingCapture targets the given source name.
func NewBlockingCapture(source string) *BlockingCapture {
	c := &BlockingCapture{source: source}
	c.open = c.openHostStream
	return c
}

func (c *BlockingCapture) openHostStream() (blockingStream, []int16, error) {
	dev, err := findInputDevice(c.source)
	if err != nil {
		return nil, nil, err
	}
	frame := make([]int16, chunkSamples)
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: NumChannels,
			Latency:  dev.DefaultHighInputLatency,
		},
		SampleRate:      SampleRate,
		FramesPerBuffer: chunkSamples,
	}, frame)
	if err != nil {
		return nil, nil, fmt.Errorf("open stream: %w", err)
	}
	return stream, frame, nil
}

func (c *BlockingCapture) Start() error {
	stream, frame, err := c.open()
	if err != nil {
		return &DeviceError{Source: c.source, Err: err}
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return &DeviceError{Source: c.source, Err: fmt.Errorf("start stream: %w", err)}
	}

	c.stop.Reset()
	c.running.Store(true)
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)
		defer c.running.Store(false)
		defer stream.Close()

		for !c.stop.Requested() {
			if err := stream.Read(); err != nil {
				return
			}
			chunk := make([]int16, len(frame))
			copy(chunk, frame)
			c.buf.Append(chunk)
		}
	}()

	return nil
}

// Stop requests the read loop to exit and waits for it. Idempotent;
// safe when Start never succeeded.
func (c *BlockingCapture) Stop() {
	c.stop.Request()
	if c.done != nil {
		select {
		case <-c.done:
		case <-time.After(2 * time.Second):
			// A wedged host read; the goroutine will exit on its
			// next return and the buffer stays consistent.
		}
	}
	c.running.Store(false)
}

func (c *BlockingCapture) Drain() []int16 { return c.buf.Drain() }

func (c *BlockingCapture) IsRunning() bool { return c.running.Load() }
