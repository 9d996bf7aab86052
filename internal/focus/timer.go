// Package focus implements the Pomodoro focus timer.
//
// The timer is a three-state machine (idle, running, break) driven by a
// one-second tick. It is not safe for concurrent use: every method, and every
// tick, must run on the application's event loop.
package focus

import (
	"fmt"
	"time"

	"github.com/xvierd/flowboard/internal/domain"
	"github.com/xvierd/flowboard/internal/ports"
)

// Timer counts down focus sessions and breaks.
type Timer struct {
	cfg      domain.TimerConfig
	ticker   ports.Ticker
	dispatch ports.Dispatcher

	status    domain.TimerStatus
	remaining int
	total     int
	task      *domain.Task

	// gen identifies the active tick registration; ticks from older
	// registrations are dropped.
	gen     uint64
	handle  ports.TickHandle
	ticking bool

	onComplete func(task *domain.Task)
	onBreakEnd func()
}

// NewTimer creates an idle timer showing the default session length.
func NewTimer(cfg domain.TimerConfig, ticker ports.Ticker, dispatch ports.Dispatcher) *Timer {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.DefaultSession <= 0 {
		cfg.DefaultSession = domain.DefaultTimerConfig().DefaultSession
	}
	if cfg.Break <= 0 {
		cfg.Break = domain.DefaultTimerConfig().Break
	}
	return &Timer{
		cfg:       cfg,
		ticker:    ticker,
		dispatch:  dispatch,
		status:    domain.TimerIdle,
		remaining: cfg.DefaultSessionSeconds(),
		total:     cfg.DefaultSessionSeconds(),
	}
}

// SetOnComplete sets the callback fired when a focus countdown reaches zero.
// It receives the task that was focused, or nil for a default session, and
// runs before the break begins.
func (t *Timer) SetOnComplete(fn func(task *domain.Task)) {
	t.onComplete = fn
}

// SetOnBreakEnd sets the callback fired when a break countdown reaches zero.
func (t *Timer) SetOnBreakEnd(fn func()) {
	t.onBreakEnd = fn
}

// State returns a read-only view of the timer.
func (t *Timer) State() domain.TimerState {
	s := domain.TimerState{
		Status:           t.status,
		RemainingSeconds: t.remaining,
		TotalSeconds:     t.total,
	}
	if t.task != nil {
		s.TaskID = t.task.ID
	}
	return s
}

// Config returns the session lengths the timer runs with.
func (t *Timer) Config() domain.TimerConfig {
	return t.cfg
}

// Status returns the session status.
func (t *Timer) Status() domain.TimerStatus {
	return t.status
}

// FocusedTask returns a copy of the focused task, or nil.
func (t *Timer) FocusedTask() *domain.Task {
	return t.task.Clone()
}

// Start begins a focus countdown of the given length.
// It is refused while a countdown is already active.
func (t *Timer) Start(minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("%w: %d minutes", domain.ErrInvalidFocusTime, minutes)
	}
	return t.begin(minutes * 60)
}

// StartFocus begins a countdown for the focused task, or a default session.
func (t *Timer) StartFocus() error {
	seconds := t.cfg.DefaultSessionSeconds()
	if t.task != nil && t.task.FocusTime > 0 {
		seconds = t.task.FocusTime * 60
	}
	return t.begin(seconds)
}

func (t *Timer) begin(seconds int) error {
	if t.ticking {
		return domain.ErrTimerActive
	}
	if err := t.startTicking(); err != nil {
		return err
	}
	t.status = domain.TimerRunning
	t.remaining = seconds
	t.total = seconds
	return nil
}

// StartBreak skips to a break. From running no completion is reported.
func (t *Timer) StartBreak() error {
	switch t.status {
	case domain.TimerBreak:
		return domain.ErrTimerActive
	case domain.TimerIdle:
		if err := t.startTicking(); err != nil {
			return err
		}
	}
	t.enterBreak()
	return nil
}

// Stop cancels any countdown and resets the display to the default session.
func (t *Timer) Stop() {
	t.cancelTicking()
	t.status = domain.TimerIdle
	t.remaining = t.cfg.DefaultSessionSeconds()
	t.total = t.remaining
}

// SetFocusedTask attaches task to the timer, or detaches with nil.
//
// While idle, focusing a task shows its focus time without starting.
// Passing the already focused task only refreshes its details, so the
// display is left alone. Clearing the focus stops an active countdown, or
// resets an idle display.
func (t *Timer) SetFocusedTask(task *domain.Task) {
	if task == nil {
		if t.task == nil {
			return
		}
		t.task = nil
		if t.status.IsActive() {
			t.Stop()
			return
		}
		t.remaining = t.cfg.DefaultSessionSeconds()
		t.total = t.remaining
		return
	}

	if t.task != nil && t.task.ID == task.ID {
		t.task = task.Clone()
		return
	}

	t.task = task.Clone()
	if t.status == domain.TimerIdle {
		t.remaining = task.FocusTime * 60
		t.total = t.remaining
	}
}

func (t *Timer) enterBreak() {
	t.status = domain.TimerBreak
	t.remaining = t.cfg.BreakSeconds()
	t.total = t.remaining
}

func (t *Timer) tick(gen uint64) {
	if !t.ticking || gen != t.gen {
		return
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining > 0 {
		return
	}

	switch t.status {
	case domain.TimerRunning:
		if t.onComplete != nil {
			t.onComplete(t.task.Clone())
		}
		t.enterBreak()
	case domain.TimerBreak:
		t.Stop()
		if t.onBreakEnd != nil {
			t.onBreakEnd()
		}
	}
}

func (t *Timer) startTicking() error {
	t.gen++
	gen := t.gen
	handle, err := t.ticker.Every(t.cfg.TickInterval, func() {
		t.dispatch.Post(func() { t.tick(gen) })
	})
	if err != nil {
		return fmt.Errorf("failed to start countdown: %w", err)
	}
	t.handle = handle
	t.ticking = true
	return nil
}

func (t *Timer) cancelTicking() {
	if !t.ticking {
		return
	}
	t.ticker.Cancel(t.handle)
	t.ticking = false
	t.gen++
}
