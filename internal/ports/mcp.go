package ports

import (
	"context"

	"github.com/xvierd/flowboard/internal/domain"
)

// MCPHandler defines the interface for MCP server operations.
// This is a driving port (called by the application layer).
type MCPHandler interface {
	// Start begins serving MCP requests.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the server.
	Stop() error

	// IsRunning returns true if the server is active.
	IsRunning() bool
}

// BoardProvider exposes the signed-in user's board to external tools.
// This is a driven port (implemented by services layer).
type BoardProvider interface {
	// UserID returns the user the provider is scoped to.
	UserID() string

	// ListTasks returns the tasks matching filter, oldest first.
	ListTasks(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)

	// SearchTasks returns tasks whose titles fuzzily match query, best first.
	SearchTasks(ctx context.Context, query string) ([]*domain.Task, error)

	// CreateTask adds a todo task and returns it as stored.
	CreateTask(ctx context.Context, title string, focusTime int, energy domain.EnergyLevel, taskType domain.TaskType) (*domain.Task, error)

	// AdvanceTask moves a task to the next status in the cycle.
	AdvanceTask(ctx context.Context, taskID string) (*domain.Task, error)

	// DeleteTask removes a task.
	DeleteTask(ctx context.Context, taskID string) error
}
