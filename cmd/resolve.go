package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/xvierd/flowboard/internal/domain"
)

// resolveTask finds a task by full ID or by a unique ID prefix, as printed
// by list.
func resolveTask(ctx context.Context, ref string) (*domain.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.ErrTaskNotFound
	}

	tasks, err := app.board.ListTasks(ctx, domain.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return matchTask(tasks, ref)
}

// matchTask prefers an exact ID match, then a single prefix match.
func matchTask(tasks []*domain.Task, ref string) (*domain.Task, error) {
	if task := domain.FindTask(tasks, ref); task != nil {
		return task, nil
	}

	var found *domain.Task
	for _, t := range tasks {
		if !strings.HasPrefix(t.ID, ref) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("task id %q is ambiguous", ref)
		}
		found = t
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, ref)
	}
	return found, nil
}
