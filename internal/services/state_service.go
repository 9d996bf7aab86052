package services

import (
	"context"

	"github.com/xvierd/flowboard/internal/domain"
	"github.com/xvierd/flowboard/internal/ports"
)

// StateService implements the BoardProvider interface for one user.
type StateService struct {
	tasks  *TaskService
	userID string
	scope  string
}

// NewStateService creates a board provider over userID's records.
func NewStateService(tasks *TaskService, scopeID, userID string) *StateService {
	return &StateService{
		tasks:  tasks,
		userID: userID,
		scope:  domain.ScopeKey(scopeID, userID),
	}
}

// UserID implements ports.BoardProvider.
func (s *StateService) UserID() string {
	return s.userID
}

// Scope returns the store key the provider reads and writes.
func (s *StateService) Scope() string {
	return s.scope
}

// ListTasks implements ports.BoardProvider.
func (s *StateService) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	return s.tasks.ListTasks(ctx, s.scope, filter)
}

// SearchTasks implements ports.BoardProvider.
func (s *StateService) SearchTasks(ctx context.Context, query string) ([]*domain.Task, error) {
	return s.tasks.SearchTasks(ctx, s.scope, query)
}

// CreateTask implements ports.BoardProvider.
func (s *StateService) CreateTask(ctx context.Context, title string, focusTime int, energy domain.EnergyLevel, taskType domain.TaskType) (*domain.Task, error) {
	return s.tasks.AddTask(ctx, s.scope, AddTaskRequest{
		Title:       title,
		FocusTime:   focusTime,
		EnergyLevel: energy,
		Type:        taskType,
	})
}

// AdvanceTask implements ports.BoardProvider.
func (s *StateService) AdvanceTask(ctx context.Context, taskID string) (*domain.Task, error) {
	return s.tasks.AdvanceTask(ctx, s.scope, taskID)
}

// DeleteTask implements ports.BoardProvider.
func (s *StateService) DeleteTask(ctx context.Context, taskID string) error {
	return s.tasks.DeleteTask(ctx, s.scope, taskID)
}

// Ensure StateService implements BoardProvider.
var _ ports.BoardProvider = (*StateService)(nil)
