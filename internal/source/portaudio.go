package source

import (
	"fmt"
	"strings"

	"github.com/gordonklaus/portaudio"

	"github.com/petems/recmeet/internal/capture"
)

// PortAudio enumerates input-capable devices from the audio host.
// capture.Initialize must have been called.
type PortAudio struct{}

func (PortAudio) Sources() ([]AudioSource, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, &capture.DeviceError{Err: fmt.Errorf("enumerate sources: %w", err)}
	}

	out := make([]AudioSource, 0, len(devices))
	for _, d := range devices {
		if d.MaxInputChannels == 0 {
			continue
		}
		desc := d.Name
		if d.HostApi != nil {
			desc = fmt.Sprintf("%s (%s)", d.Name, d.HostApi.Name)
		}
		out = append(out, AudioSource{
			Name:        d.Name,
			Description: desc,
			IsMonitor:   monitorDevice(d.Name),
		})
	}
	return out, nil
}

func (PortAudio) DefaultSource() (string, error) {
	dev, err := portaudio.DefaultInputDevice()
	if err != nil {
		return "", fmt.Errorf("default source: %w", err)
	}
	return dev.Name, nil
}

// monitorDevice spots loopback sources the host exposes without the
// pulse ".monitor" suffix, e.g. "Monitor of Built-in Audio".
func monitorDevice(name string) bool {
	return strings.Contains(strings.ToLower(name), "monitor of")
}
