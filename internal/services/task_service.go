// Package services implements the application layer (use cases)
// following hexagonal architecture principles.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/xvierd/flowboard/internal/domain"
	"github.com/xvierd/flowboard/internal/ports"
)

// TaskService handles task-related use cases against one task store.
// Every call names the scope it works in.
type TaskService struct {
	store ports.TaskStore
}

// NewTaskService creates a new task service. A nil store is allowed;
// every operation then fails with domain.ErrStoreNotConfigured.
func NewTaskService(store ports.TaskStore) *TaskService {
	return &TaskService{store: store}
}

// Configured returns true if a store is attached.
func (s *TaskService) Configured() bool {
	return s.store != nil
}

// AddTaskRequest contains the data needed to create a new task.
type AddTaskRequest struct {
	Title       string
	FocusTime   int
	EnergyLevel domain.EnergyLevel
	Type        domain.TaskType
}

// AddTask validates and creates a new todo task.
func (s *TaskService) AddTask(ctx context.Context, scope string, req AddTaskRequest) (*domain.Task, error) {
	task, err := domain.NewTask(req.Title, req.FocusTime, req.EnergyLevel, req.Type)
	if err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}
	if s.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}

	id, err := s.store.Create(ctx, scope, task)
	if err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}
	task.ID = id

	return task, nil
}

// ListTasks retrieves the tasks of scope matching filter, oldest first.
func (s *TaskService) ListTasks(ctx context.Context, scope string, filter domain.TaskFilter) ([]*domain.Task, error) {
	if s.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	tasks, err := s.store.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return domain.FilterTasks(tasks, filter), nil
}

// GetTask retrieves a single task by ID.
func (s *TaskService) GetTask(ctx context.Context, scope, id string) (*domain.Task, error) {
	tasks, err := s.ListTasks(ctx, scope, domain.TaskFilter{})
	if err != nil {
		return nil, err
	}
	task := domain.FindTask(tasks, id)
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// SetStatus moves a task from one column to the next. Only the cycle
// todo → in-progress → complete → todo is accepted.
func (s *TaskService) SetStatus(ctx context.Context, scope, id string, from, to domain.TaskStatus) error {
	if err := domain.ValidateTransition(from, to); err != nil {
		return err
	}
	if s.store == nil {
		return domain.ErrStoreNotConfigured
	}
	if err := s.store.Update(ctx, scope, id, domain.StatusPatch(to)); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// AdvanceTask moves a task to the next status in the cycle and returns it.
func (s *TaskService) AdvanceTask(ctx context.Context, scope, id string) (*domain.Task, error) {
	task, err := s.GetTask(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	next := task.Status.Next()
	if err := s.SetStatus(ctx, scope, id, task.Status, next); err != nil {
		return nil, err
	}

	task.Status = next
	return task, nil
}

// StartTask marks a todo task as in progress. In-progress tasks are left
// as they are; complete tasks are refused.
func (s *TaskService) StartTask(ctx context.Context, scope, id string) (*domain.Task, error) {
	task, err := s.GetTask(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	switch task.Status {
	case domain.StatusComplete:
		return nil, domain.ErrTaskComplete
	case domain.StatusTodo:
		if err := s.SetStatus(ctx, scope, id, domain.StatusTodo, domain.StatusInProgress); err != nil {
			return nil, err
		}
		task.Status = domain.StatusInProgress
	}

	return task, nil
}

// DeleteTask removes a task.
func (s *TaskService) DeleteTask(ctx context.Context, scope, id string) error {
	if s.store == nil {
		return domain.ErrStoreNotConfigured
	}
	if err := s.store.Delete(ctx, scope, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// SearchTasks does a fuzzy search for tasks by title, best match first.
func (s *TaskService) SearchTasks(ctx context.Context, scope, query string) ([]*domain.Task, error) {
	tasks, err := s.ListTasks(ctx, scope, domain.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks for fuzzy search: %w", err)
	}
	return FuzzyFilter(tasks, query), nil
}

// taskTitles adapts a task list to fuzzy.Source.
type taskTitles []*domain.Task

func (t taskTitles) String(i int) string { return t[i].Title }
func (t taskTitles) Len() int            { return len(t) }

// FuzzyFilter returns the tasks whose titles match query, best match first.
// A blank query returns every task in its original order.
func FuzzyFilter(tasks []*domain.Task, query string) []*domain.Task {
	query = strings.TrimSpace(query)
	if query == "" {
		return tasks
	}

	matches := fuzzy.FindFrom(query, taskTitles(tasks))

	result := make([]*domain.Task, 0, len(matches))
	for _, match := range matches {
		result = append(result, tasks[match.Index])
	}
	return result
}
