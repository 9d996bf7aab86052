// Package domain contains the core business entities for flowboard.
// These entities represent the fundamental concepts of the task board
// and are independent of any external frameworks or infrastructure.
package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Common domain errors.
var (
	ErrEmptyTaskTitle     = errors.New("task title cannot be empty")
	ErrInvalidFocusTime   = errors.New("invalid focus time")
	ErrInvalidEnergyLevel = errors.New("invalid energy level")
	ErrInvalidTaskType    = errors.New("invalid task type")
	ErrInvalidStatus      = errors.New("invalid task status")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskComplete       = errors.New("task is already complete")
	ErrStoreNotConfigured = errors.New("task store not configured")
)

// TaskStatus represents the current state of a task on the board.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusComplete   TaskStatus = "complete"
)

// ValidStatuses lists the board columns in display order.
var ValidStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusComplete}

// ParseTaskStatus checks if a string is a valid task status.
func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(s)
	for _, valid := range ValidStatuses {
		if st == valid {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w %q: must be one of todo, in-progress, complete", ErrInvalidStatus, s)
}

// Next returns the status that follows s in the todo → in-progress → complete → todo cycle.
func (s TaskStatus) Next() TaskStatus {
	switch s {
	case StatusTodo:
		return StatusInProgress
	case StatusInProgress:
		return StatusComplete
	default:
		return StatusTodo
	}
}

// Label returns a human-readable label.
func (s TaskStatus) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// ValidateTransition reports whether moving from one status to another follows the cycle.
func ValidateTransition(from, to TaskStatus) error {
	switch from {
	case StatusTodo, StatusInProgress, StatusComplete:
		if from.Next() == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
}

// EnergyLevel describes how demanding a task is.
type EnergyLevel string

const (
	EnergyHigh   EnergyLevel = "High"
	EnergyMedium EnergyLevel = "Medium"
	EnergyLow    EnergyLevel = "Low"
)

// ParseEnergyLevel accepts any casing of High, Medium or Low.
func ParseEnergyLevel(s string) (EnergyLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return EnergyHigh, nil
	case "medium":
		return EnergyMedium, nil
	case "low":
		return EnergyLow, nil
	}
	return "", fmt.Errorf("%w %q: must be one of High, Medium, Low", ErrInvalidEnergyLevel, s)
}

// TaskType separates long-running project work from daily chores.
type TaskType string

const (
	TypeProject TaskType = "project"
	TypeDaily   TaskType = "daily"
)

// ParseTaskType checks if a string is a valid task type.
func ParseTaskType(s string) (TaskType, error) {
	switch TaskType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeProject:
		return TypeProject, nil
	case TypeDaily:
		return TypeDaily, nil
	}
	return "", fmt.Errorf("%w %q: must be project or daily", ErrInvalidTaskType, s)
}

// AllowedFocusTimes are the focus lengths in minutes offered when a task is created.
var AllowedFocusTimes = []int{15, 30, 45, 60, 90, 120}

// ValidateFocusTime ensures minutes is one of AllowedFocusTimes.
func ValidateFocusTime(minutes int) error {
	for _, allowed := range AllowedFocusTimes {
		if minutes == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w %d: must be one of %v", ErrInvalidFocusTime, minutes, AllowedFocusTimes)
}

// Task represents a card on the board.
type Task struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	FocusTime   int         `json:"focus_time"`
	EnergyLevel EnergyLevel `json:"energy_level"`
	Type        TaskType    `json:"type"`
	Status      TaskStatus  `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewTask creates a new todo task. ID and CreatedAt are assigned by the store.
func NewTask(title string, focusTime int, energy EnergyLevel, taskType TaskType) (*Task, error) {
	title = strings.TrimSpace(title)
	if err := validateTaskTitle(title); err != nil {
		return nil, err
	}
	if err := ValidateFocusTime(focusTime); err != nil {
		return nil, err
	}
	if _, err := ParseEnergyLevel(string(energy)); err != nil {
		return nil, err
	}
	if _, err := ParseTaskType(string(taskType)); err != nil {
		return nil, err
	}

	return &Task{
		Title:       title,
		FocusTime:   focusTime,
		EnergyLevel: energy,
		Type:        taskType,
		Status:      StatusTodo,
	}, nil
}

// validateTaskTitle ensures the title is not empty.
func validateTaskTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTaskTitle
	}
	return nil
}

// FillDefaults applies the read-side defaults for records written by older clients.
// Records without a type are treated as project tasks.
func (t *Task) FillDefaults() {
	if t.Type == "" {
		t.Type = TypeProject
	}
	if t.Status == "" {
		t.Status = StatusTodo
	}
}

// FocusDuration returns the configured focus time as a duration.
func (t *Task) FocusDuration() time.Duration {
	return time.Duration(t.FocusTime) * time.Minute
}

// CanFocus returns true if the task may be attached to the focus timer.
func (t *Task) CanFocus() bool {
	return t.Status != StatusComplete
}

// Clone returns a copy that can be handed out without sharing the cache entry.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// TaskPatch is a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	FocusTime   *int
	EnergyLevel *EnergyLevel
	Type        *TaskType
	Status      *TaskStatus
}

// StatusPatch builds a patch that only changes the status.
func StatusPatch(status TaskStatus) TaskPatch {
	return TaskPatch{Status: &status}
}

// IsEmpty returns true if the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.FocusTime == nil && p.EnergyLevel == nil && p.Type == nil && p.Status == nil
}

// Apply writes the patch onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.FocusTime != nil {
		t.FocusTime = *p.FocusTime
	}
	if p.EnergyLevel != nil {
		t.EnergyLevel = *p.EnergyLevel
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}

// TaskFilter selects tasks by status and type. Empty fields match everything.
type TaskFilter struct {
	Status TaskStatus
	Type   TaskType
}

// Matches returns true if the task passes the filter.
func (f TaskFilter) Matches(t *Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	return true
}

// FilterTasks returns the tasks matching f, preserving order.
func FilterTasks(tasks []*Task, f TaskFilter) []*Task {
	result := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			result = append(result, t)
		}
	}
	return result
}

// SortByCreated orders tasks oldest first. Ties keep their incoming order.
func SortByCreated(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
}

// FindTask returns the task with the given id, or nil.
func FindTask(tasks []*Task, id string) *Task {
	for _, t := range tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}
