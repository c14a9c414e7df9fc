package capture

import (
	"fmt"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

// framesPerChunk is ~32ms of audio per host callback.
const framesPerChunk = 512

// Initialize prepares the audio host. Must be called once before any
// capture or enumeration; pair with Terminate.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return &DeviceError{Err: fmt.Errorf("initialize audio host: %w", err)}
	}
	return nil
}

// Terminate releases the audio host.
func Terminate() {
	portaudio.Terminate()
}

func findInputDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" {
		dev, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("default input device: %w", err)
		}
		return dev, nil
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == name && d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("input device not found: %s", name)
}

// StreamCapture is the primary backend: a callback-driven stream
// against a named source. The host invokes the callback per buffer;
// each chunk is copied into the buffer under a short-held lock, so
// the callback never blocks on I/O.
type StreamCapture struct {
	source  string
	buf     Buffer
	stream  *portaudio.Stream
	running atomic.Bool
}

// NewStreamCapture targets the given source name; empty means the
// host's default input.
func NewStreamCapture(source string) *StreamCapture {
	return &StreamCapture{source: source}
}

func (c *StreamCapture) Start() error {
	dev, err := findInputDevice(c.source)
	if err != nil {
		return &DeviceError{Source: c.source, Err: err}
	}

	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: NumChannels,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      SampleRate,
		FramesPerBuffer: framesPerChunk,
	}, func(in []int16) {
		chunk := make([]int16, len(in))
		copy(chunk, in)
		c.buf.Append(chunk)
	})
	if err != nil {
		return &DeviceError{Source: c.source, Err: fmt.Errorf("open stream: %w", err)}
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return &DeviceError{Source: c.source, Err: fmt.Errorf("start stream: %w", err)}
	}

	c.stream = stream
	c.running.Store(true)
	return nil
}

func (c *StreamCapture) Stop() {
	if c.stream != nil {
		c.stream.Stop()
		c.stream.Close()
		c.stream = nil
	}
	c.running.Store(false)
}

func (c *StreamCapture) Drain() []int16 { return c.buf.Drain() }

func (c *StreamCapture) IsRunning() bool { return c.running.Load() }
