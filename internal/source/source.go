// Package source resolves fuzzy device-name patterns against the
// platform's enumerated audio sources.
package source

import (
	"fmt"
	"regexp"

	"github.com/petems/recmeet/internal/capture"
)

// AudioSource describes one enumerated capture source.
type AudioSource struct {
	Name        string
	Description string
	IsMonitor   bool
}

// Detected is the resolver outcome. Empty slots mean no source of
// that class was found; the caller decides whether that is fatal.
type Detected struct {
	Mic     string
	Monitor string
	All     []AudioSource
}

// Enumerator lists capture sources from the platform audio host.
type Enumerator interface {
	Sources() ([]AudioSource, error)
	DefaultSource() (string, error)
}

// monitorClass treats a source as monitor-class when the host reports
// it as a sink monitor or its name carries the ".monitor" suffix.
func monitorClass(s AudioSource) bool {
	return s.IsMonitor || capture.IsMonitorName(s.Name)
}

// Detect assigns mic and monitor slots from the enumeration.
//
// A non-empty pattern is compiled case-insensitively and each slot
// takes the first matching source of its class, in enumeration order.
// An empty pattern resolves the host's default capture source into
// whichever slot its class indicates, then fills any still-empty slot
// with the first available source of that class.
func Detect(enum Enumerator, pattern string) (Detected, error) {
	all, err := enum.Sources()
	if err != nil {
		return Detected{}, err
	}
	d := Detected{All: all}

	if pattern != "" {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return Detected{}, fmt.Errorf("device pattern %q: %w", pattern, err)
		}
		for _, s := range all {
			if !re.MatchString(s.Name) {
				continue
			}
			if monitorClass(s) {
				if d.Monitor == "" {
					d.Monitor = s.Name
				}
			} else if d.Mic == "" {
				d.Mic = s.Name
			}
		}
		return d, nil
	}

	if def, err := enum.DefaultSource(); err == nil && def != "" {
		for _, s := range all {
			if s.Name != def {
				continue
			}
			if monitorClass(s) {
				d.Monitor = s.Name
			} else {
				d.Mic = s.Name
			}
			break
		}
	}

	for _, s := range all {
		if d.Mic == "" && !monitorClass(s) {
			d.Mic = s.Name
		}
		if d.Monitor == "" && monitorClass(s) {
			d.Monitor = s.Name
		}
		if d.Mic != "" && d.Monitor != "" {
			break
		}
	}
	return d, nil
}
