package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/xvierd/flowboard/internal/domain"
)

const taskColumns = `id, title, focus_time, energy_level, type, status, created_at`

// Create persists a new task under scope and returns its ID.
func (s *sqliteStore) Create(ctx context.Context, scope string, task *domain.Task) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := domain.NewID()
	createdAt := time.Now().UTC()

	query := `
		INSERT INTO tasks (scope, id, title, focus_time, energy_level, type, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		scope,
		id,
		task.Title,
		task.FocusTime,
		string(task.EnergyLevel),
		nullableType(task.Type),
		string(task.Status),
		createdAt,
	)
	if isUniqueConstraintError(err) {
		return "", fmt.Errorf("failed to save task: duplicate id %s", id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to save task: %w", err)
	}

	s.hub.publish(ctx, scope)
	return id, nil
}

// Update applies patch to the task with the given id.
func (s *sqliteStore) Update(ctx context.Context, scope, id string, patch domain.TaskPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var setClauses []string
	var args []interface{}

	if patch.Title != nil {
		setClauses = append(setClauses, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.FocusTime != nil {
		setClauses = append(setClauses, "focus_time = ?")
		args = append(args, *patch.FocusTime)
	}
	if patch.EnergyLevel != nil {
		setClauses = append(setClauses, "energy_level = ?")
		args = append(args, string(*patch.EnergyLevel))
	}
	if patch.Type != nil {
		setClauses = append(setClauses, "type = ?")
		args = append(args, nullableType(*patch.Type))
	}
	if patch.Status != nil {
		setClauses = append(setClauses, "status = ?")
		args = append(args, string(*patch.Status))
	}

	if len(setClauses) == 0 {
		var exists int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE scope = ? AND id = ?`, scope, id).Scan(&exists)
		if err == sql.ErrNoRows {
			return domain.ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find task: %w", err)
		}
		return nil
	}

	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE scope = ? AND id = ?`, strings.Join(setClauses, ", "))
	args = append(args, scope, id)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrTaskNotFound
	}

	s.hub.publish(ctx, scope)
	return nil
}

// Delete removes a task from storage.
func (s *sqliteStore) Delete(ctx context.Context, scope, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE scope = ? AND id = ?`, scope, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrTaskNotFound
	}

	s.hub.publish(ctx, scope)
	return nil
}

// List retrieves every task in scope, oldest first.
func (s *sqliteStore) List(ctx context.Context, scope string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE scope = ? ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTasks(rows)
}

// scanTasks scans multiple task rows.
func scanTasks(rows *sql.Rows) ([]*domain.Task, error) {
	tasks := []*domain.Task{}

	for rows.Next() {
		var task domain.Task
		var taskType sql.NullString

		err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.FocusTime,
			&task.EnergyLevel,
			&taskType,
			&task.Status,
			&task.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		if taskType.Valid {
			task.Type = domain.TaskType(taskType.String)
		}
		task.FillDefaults()

		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	domain.SortByCreated(tasks)
	return tasks, nil
}

// nullableType stores an unset type as NULL, like records written before types existed.
func nullableType(t domain.TaskType) interface{} {
	if t == "" {
		return nil
	}
	return string(t)
}
