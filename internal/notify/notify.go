// Package notify sends desktop notifications for recording and
// pipeline milestones.
package notify

import (
	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"
)

// Notifier posts desktop notifications. Failures are logged and
// swallowed; notifications are best-effort.
type Notifier struct {
	enabled bool
	log     zerolog.Logger
}

func New(enabled bool, log zerolog.Logger) *Notifier {
	return &Notifier{enabled: enabled, log: log}
}

// Send posts a notification when enabled.
func (n *Notifier) Send(title, body string) {
	if !n.enabled {
		return
	}
	if err := beeep.Notify(title, body, ""); err != nil {
		n.log.Debug().Err(err).Str("title", title).Msg("Notification failed")
	}
}
