// Package ports defines the interfaces (driven and driving ports)
// for the flowboard application following hexagonal architecture principles.
// These interfaces define the contracts between the domain layer and
// external infrastructure.
package ports

import (
	"context"

	"github.com/xvierd/flowboard/internal/domain"
)

// TaskStore defines the interface for the per-user task document store.
// Every record belongs to exactly one scope, derived from the signed-in user.
// This is a driven port (implemented by adapters).
type TaskStore interface {
	// Create persists a new task and returns the store-assigned ID.
	// The store also assigns the creation time.
	Create(ctx context.Context, scope string, task *domain.Task) (string, error)

	// Update applies a partial update to an existing task.
	Update(ctx context.Context, scope, id string, patch domain.TaskPatch) error

	// Delete removes a task.
	Delete(ctx context.Context, scope, id string) error

	// List returns every task in the scope, oldest first.
	List(ctx context.Context, scope string) ([]*domain.Task, error)

	// Subscribe delivers the full record set of the scope now and after every change.
	// Callbacks run on store goroutines; consumers must hand them to their own loop.
	Subscribe(scope string, onChange func([]*domain.Task), onError func(error)) (Subscription, error)

	// Close releases connections and ends all subscriptions.
	Close() error
}

// Subscription is a live change feed handle.
type Subscription interface {
	// Unsubscribe stops delivery. No callback runs after it returns.
	Unsubscribe()
}
