package notification

import (
	"strings"
	"testing"
	"time"

	"github.com/xvierd/flowboard/internal/config"
)

type sent struct {
	title, message string
	sound          bool
}

func newRecordingNotifier(cfg *config.NotificationConfig) (*Notifier, *[]sent) {
	var calls []sent
	n := New(cfg)
	n.send = func(title, message string) error {
		calls = append(calls, sent{title, message, false})
		return nil
	}
	n.alert = func(title, message string) error {
		calls = append(calls, sent{title, message, true})
		return nil
	}
	return n, &calls
}

func TestNotifier_Disabled(t *testing.T) {
	for _, cfg := range []*config.NotificationConfig{nil, {Enabled: false, Sound: true}} {
		n, calls := newRecordingNotifier(cfg)
		if n.IsEnabled() {
			t.Error("IsEnabled() = true, want false")
		}
		if err := n.NotifyFocusComplete("Write report", 45*time.Minute); err != nil {
			t.Errorf("NotifyFocusComplete() error = %v", err)
		}
		if err := n.NotifyBreakOver(); err != nil {
			t.Errorf("NotifyBreakOver() error = %v", err)
		}
		if len(*calls) != 0 {
			t.Errorf("expected no notifications, got %v", *calls)
		}
	}
}

func TestNotifier_FocusComplete(t *testing.T) {
	n, calls := newRecordingNotifier(&config.NotificationConfig{Enabled: true})

	if err := n.NotifyFocusComplete("Write report", 45*time.Minute); err != nil {
		t.Fatalf("NotifyFocusComplete() error = %v", err)
	}
	if err := n.NotifyFocusComplete("", 25*time.Minute); err != nil {
		t.Fatalf("NotifyFocusComplete() error = %v", err)
	}

	if len(*calls) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(*calls))
	}
	first := (*calls)[0]
	if !strings.Contains(first.message, "45 min") || !strings.Contains(first.message, "Write report") {
		t.Errorf("message = %q", first.message)
	}
	if first.sound {
		t.Error("expected a silent notification")
	}
	if !strings.Contains((*calls)[1].message, "25 min") {
		t.Errorf("message = %q", (*calls)[1].message)
	}
}

func TestNotifier_SoundUsesAlert(t *testing.T) {
	n, calls := newRecordingNotifier(&config.NotificationConfig{Enabled: true, Sound: true})

	if err := n.NotifyBreakOver(); err != nil {
		t.Fatalf("NotifyBreakOver() error = %v", err)
	}
	if len(*calls) != 1 || !(*calls)[0].sound {
		t.Errorf("calls = %v, want one alert", *calls)
	}
}
