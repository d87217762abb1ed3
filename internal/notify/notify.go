// Package notify raises desktop notifications.
package notify

import (
	"fmt"
	"strings"

	"github.com/gen2brain/beeep"
)

// Desktop sends notifications through the OS notification service.
type Desktop struct {
	app  string
	send func(title, message string) error
}

// NewDesktop returns a notifier labelled with app.
func NewDesktop(app string) *Desktop {
	app = strings.TrimSpace(app)
	if app == "" {
		app = "koni"
	}
	return &Desktop{app: app, send: func(title, message string) error {
		return beeep.Notify(title, message, "")
	}}
}

// NoteSaved announces a newly stored note.
func (d *Desktop) NoteSaved(title string) error {
	if err := d.send(d.app, fmt.Sprintf("saved %q", title)); err != nil {
		return fmt.Errorf("desktop notification: %w", err)
	}
	return nil
}
