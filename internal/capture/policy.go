package capture

import "github.com/rs/zerolog"

// MonitorPolicy selects a backend for the monitor channel. Selection
// is by source shape, not channel identity:
//
//  1. ".monitor"-suffixed sources go straight to the fallback — the
//     stream backend is known not to support that naming form.
//  2. Any other source tries the primary stream backend first and
//     transparently retries with the fallback if the primary fails
//     to start.
type MonitorPolicy struct {
	Primary  Factory
	Fallback Factory
	Log      zerolog.Logger
}

// DefaultMonitorPolicy wires the real backends.
func DefaultMonitorPolicy(log zerolog.Logger) MonitorPolicy {
	return MonitorPolicy{
		Primary:  func(source string) Channel { return NewStreamCapture(source) },
		Fallback: func(source string) Channel { return NewBlockingCapture(source) },
		Log:      log,
	}
}

// Open starts a monitor channel per the selection rules and returns
// the running channel. A failure to start either backend is returned
// to the caller, which degrades to mic-only recording.
func (p MonitorPolicy) Open(source string) (Channel, error) {
	if IsMonitorName(source) {
		ch := p.Fallback(source)
		if err := ch.Start(); err != nil {
			return nil, err
		}
		return ch, nil
	}

	ch := p.Primary(source)
	err := ch.Start()
	if err == nil {
		return ch, nil
	}
	p.Log.Warn().Err(err).Str("source", source).
		Msg("Primary monitor backend failed, retrying with blocking capture")

	fb := p.Fallback(source)
	if err := fb.Start(); err != nil {
		return nil, err
	}
	return fb, nil
}
