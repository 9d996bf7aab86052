package domain

import (
	"errors"
	"time"
)

// Timer errors.
var (
	ErrTimerActive = errors.New("timer already active")
	ErrTimerIdle   = errors.New("timer is idle")
)

// TimerStatus represents the current state of the focus timer.
type TimerStatus string

const (
	TimerIdle    TimerStatus = "idle"
	TimerRunning TimerStatus = "running"
	TimerBreak   TimerStatus = "break"
)

// Label returns a human-readable label for the timer status.
func (s TimerStatus) Label() string {
	switch s {
	case TimerIdle:
		return "Ready"
	case TimerRunning:
		return "Focus"
	case TimerBreak:
		return "Break"
	default:
		return "Unknown"
	}
}

// IsActive returns true while a countdown is ticking.
func (s TimerStatus) IsActive() bool {
	return s == TimerRunning || s == TimerBreak
}

// TimerConfig holds configuration for focus sessions.
type TimerConfig struct {
	DefaultSession time.Duration
	Break          time.Duration
	TickInterval   time.Duration
}

// DefaultTimerConfig returns the standard 25/5 configuration.
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		DefaultSession: 25 * time.Minute,
		Break:          5 * time.Minute,
		TickInterval:   time.Second,
	}
}

// DefaultSessionSeconds returns the idle display value.
func (c TimerConfig) DefaultSessionSeconds() int {
	return int(c.DefaultSession / time.Second)
}

// BreakSeconds returns the break countdown length.
func (c TimerConfig) BreakSeconds() int {
	return int(c.Break / time.Second)
}

// TimerState is a read-only view of the focus timer.
type TimerState struct {
	Status           TimerStatus
	RemainingSeconds int
	TotalSeconds     int
	TaskID           string
}

// Remaining returns the remaining time as a duration.
func (s TimerState) Remaining() time.Duration {
	return time.Duration(s.RemainingSeconds) * time.Second
}

// Progress returns the completion fraction (0.0 to 1.0) of the current countdown.
func (s TimerState) Progress() float64 {
	if s.TotalSeconds <= 0 || !s.Status.IsActive() {
		return 0
	}
	p := float64(s.TotalSeconds-s.RemainingSeconds) / float64(s.TotalSeconds)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
