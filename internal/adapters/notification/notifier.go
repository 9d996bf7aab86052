// Package notification provides desktop notification utilities.
package notification

import (
	"fmt"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/xvierd/flowboard/internal/config"
	"github.com/xvierd/flowboard/internal/ports"
)

// Notifier handles desktop notifications.
type Notifier struct {
	cfg *config.NotificationConfig

	// send and alert default to beeep.Notify and beeep.Alert.
	send  func(title, message string) error
	alert func(title, message string) error
}

// Ensure Notifier implements ports.Notifier.
var _ ports.Notifier = (*Notifier)(nil)

// New creates a new notifier with the given configuration.
func New(cfg *config.NotificationConfig) *Notifier {
	return &Notifier{
		cfg:   cfg,
		send:  func(title, message string) error { return beeep.Notify(title, message, "") },
		alert: func(title, message string) error { return beeep.Alert(title, message, "") },
	}
}

// Notify displays a desktop notification if enabled. With sound on it also beeps.
func (n *Notifier) Notify(title, message string) error {
	if !n.IsEnabled() {
		return nil
	}
	if n.cfg.Sound {
		return n.alert(title, message)
	}
	return n.send(title, message)
}

// NotifyFocusComplete displays a notification when a focus countdown ends.
func (n *Notifier) NotifyFocusComplete(taskTitle string, focus time.Duration) error {
	title := "🍅 Focus Complete!"
	message := fmt.Sprintf("Great job! You completed a %s focus session.", formatMinutes(focus))
	if taskTitle != "" {
		message = fmt.Sprintf("Great job! %s of focus on %q.", formatMinutes(focus), taskTitle)
	}
	return n.Notify(title, message)
}

// NotifyBreakOver displays a notification when a break ends.
func (n *Notifier) NotifyBreakOver() error {
	return n.Notify("☕ Break Over!", "Your break is complete. Ready to focus?")
}

// IsEnabled returns true if notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.cfg != nil && n.cfg.Enabled
}

func formatMinutes(d time.Duration) string {
	return fmt.Sprintf("%d min", int(d.Round(time.Minute)/time.Minute))
}
