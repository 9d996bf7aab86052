package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xvierd/flowboard/internal/domain"
	"github.com/xvierd/flowboard/internal/ports"
)

// notifyChannel carries the scope of every committed write.
const notifyChannel = "flowboard_tasks"

// listenRetry is the pause before reconnecting a dropped listener.
const listenRetry = 2 * time.Second

// PgStore is a PostgreSQL-backed task store. Changes made by any client of
// the database reach subscribers through LISTEN/NOTIFY.
type PgStore struct {
	pool *pgxpool.Pool
	hub  *hub

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Ensure PgStore implements ports.TaskStore.
var _ ports.TaskStore = (*PgStore)(nil)

// NewPostgres connects to dsn, creates the schema and starts the change listener.
func NewPostgres(ctx context.Context, dsn string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	s := NewPgStore(pool)
	if err := s.EnsureTable(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.listen(listenCtx)

	return s, nil
}

// NewPgStore wraps an existing pool. The caller owns the listener lifecycle;
// use NewPostgres for a ready-to-use store.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	s := &PgStore{pool: pool}
	s.hub = newHub(s.List)
	return s
}

// EnsureTable creates the tasks table if it doesn't exist.
func (s *PgStore) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			scope        TEXT NOT NULL,
			id           TEXT NOT NULL,
			title        TEXT NOT NULL,
			focus_time   INTEGER NOT NULL,
			energy_level TEXT NOT NULL,
			type         TEXT,
			status       TEXT NOT NULL DEFAULT 'todo',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (scope, id)
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_scope_created ON tasks(scope, created_at)`)
	return err
}

// Create inserts a new task and notifies listeners of its scope.
func (s *PgStore) Create(ctx context.Context, scope string, task *domain.Task) (string, error) {
	id := domain.NewID()
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	err := s.writeTx(ctx, scope, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO tasks (scope, id, title, focus_time, energy_level, type, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			scope, id, task.Title, task.FocusTime, string(task.EnergyLevel), nullableType(task.Type), string(task.Status), createdAt)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	return id, nil
}

// Update modifies the patched fields of a task.
func (s *PgStore) Update(ctx context.Context, scope, id string, patch domain.TaskPatch) error {
	var setClauses []string
	var args []any
	argIdx := 1

	add := func(column string, v any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, v)
		argIdx++
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.FocusTime != nil {
		add("focus_time", *patch.FocusTime)
	}
	if patch.EnergyLevel != nil {
		add("energy_level", string(*patch.EnergyLevel))
	}
	if patch.Type != nil {
		add("type", nullableType(*patch.Type))
	}
	if patch.Status != nil {
		add("status", string(*patch.Status))
	}

	if len(setClauses) == 0 {
		var exists int
		err := s.pool.QueryRow(ctx, `SELECT 1 FROM tasks WHERE scope = $1 AND id = $2`, scope, id).Scan(&exists)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("get task %s: %w", id, err)
		}
		return nil
	}

	args = append(args, scope, id)
	query := fmt.Sprintf("UPDATE tasks SET %s WHERE scope = $%d AND id = $%d",
		strings.Join(setClauses, ", "), argIdx, argIdx+1)

	err := s.writeTx(ctx, scope, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrTaskNotFound
		}
		return nil
	})
	if errors.Is(err, domain.ErrTaskNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	return nil
}

// Delete removes a task.
func (s *PgStore) Delete(ctx context.Context, scope, id string) error {
	err := s.writeTx(ctx, scope, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM tasks WHERE scope = $1 AND id = $2`, scope, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrTaskNotFound
		}
		return nil
	})
	if errors.Is(err, domain.ErrTaskNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

// List returns the tasks of scope, oldest first.
func (s *PgStore) List(ctx context.Context, scope string) ([]*domain.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks WHERE scope = $1
		ORDER BY created_at ASC, id ASC`, scope)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	return scanTaskRows(rows)
}

// Subscribe delivers the scope's records now and after every notified change.
func (s *PgStore) Subscribe(scope string, onChange func([]*domain.Task), onError func(error)) (ports.Subscription, error) {
	sub, err := s.hub.subscribe(context.Background(), scope, onChange, onError)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return sub, nil
}

// Close stops the listener, ends all subscriptions and closes the pool.
func (s *PgStore) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.hub.close()
	s.pool.Close()
	return nil
}

// writeTx runs fn and the scope notification in one transaction,
// so listeners hear about exactly the writes that committed.
func (s *PgStore) writeTx(ctx context.Context, scope string, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, scope); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// listen holds a dedicated connection on LISTEN and republishes each
// notified scope until ctx is cancelled.
func (s *PgStore) listen(ctx context.Context) {
	defer s.wg.Done()

	for ctx.Err() == nil {
		err := s.listenOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		s.hub.fail(fmt.Errorf("task change feed: %w", err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(listenRetry):
		}
	}
}

func (s *PgStore) listenOnce(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return err
	}

	// Writes that landed while the listener was down are caught up here.
	for _, scope := range s.hub.scopes() {
		s.hub.publish(ctx, scope)
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		s.hub.publish(ctx, n.Payload)
	}
}

// scanTaskRows reads task rows and applies read-side defaults.
func scanTaskRows(rows pgx.Rows) ([]*domain.Task, error) {
	tasks := []*domain.Task{}
	for rows.Next() {
		var t domain.Task
		var taskType *string
		if err := rows.Scan(&t.ID, &t.Title, &t.FocusTime, &t.EnergyLevel, &taskType, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if taskType != nil {
			t.Type = domain.TaskType(*taskType)
		}
		t.FillDefaults()
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	domain.SortByCreated(tasks)
	return tasks, nil
}
