package domain

// BoardSnapshot captures the board and timer state after an event.
// It is built on the event loop and handed to views by value.
type BoardSnapshot struct {
	UserID     string
	Offline    bool
	Submitting bool
	Tasks      []*Task
	Focused    *Task
	Timer      TimerState
	Sessions   map[string]int
	LastError  string
}

// Column returns the tasks in one board column, optionally narrowed to a type.
func (s BoardSnapshot) Column(status TaskStatus, taskType TaskType) []*Task {
	return FilterTasks(s.Tasks, TaskFilter{Status: status, Type: taskType})
}

// IsFocused returns true if id is the focused task.
func (s BoardSnapshot) IsFocused(id string) bool {
	return s.Focused != nil && s.Focused.ID == id
}

// GetTaskTypeLabel returns a human-readable label for the task type.
func GetTaskTypeLabel(t TaskType) string {
	switch t {
	case TypeProject:
		return "Projects"
	case TypeDaily:
		return "Daily"
	default:
		return "All"
	}
}
