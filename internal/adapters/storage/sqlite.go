// Package storage provides SQLite and PostgreSQL implementations of the task store port.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/xvierd/flowboard/internal/domain"
	"github.com/xvierd/flowboard/internal/ports"
	"modernc.org/sqlite"
)

var errStoreClosed = errors.New("task store closed")

// sqliteStore implements ports.TaskStore using SQLite.
type sqliteStore struct {
	db *sql.DB
	// mu serializes each write with its change notification.
	mu  sync.Mutex
	hub *hub
}

// Ensure sqliteStore implements ports.TaskStore.
var _ ports.TaskStore = (*sqliteStore)(nil)

// New creates a new SQLite task store.
func New(dbPath string) (ports.TaskStore, error) {
	return newSQLite(dbPath)
}

// NewMemory creates a new in-memory SQLite task store for testing.
func NewMemory() (ports.TaskStore, error) {
	return newSQLite(":memory:")
}

func newSQLite(dbPath string) (*sqliteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	store := &sqliteStore{db: db}
	store.hub = newHub(store.List)

	if err := store.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Migrate creates the database schema.
func (s *sqliteStore) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		scope TEXT NOT NULL,
		id TEXT NOT NULL,
		title TEXT NOT NULL,
		focus_time INTEGER NOT NULL,
		energy_level TEXT NOT NULL,
		type TEXT,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (scope, id)
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_scope_created ON tasks(scope, created_at);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// Subscribe delivers the scope's records now and after every committed write.
func (s *sqliteStore) Subscribe(scope string, onChange func([]*domain.Task), onError func(error)) (ports.Subscription, error) {
	sub, err := s.hub.subscribe(context.Background(), scope, onChange, onError)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return sub, nil
}

// Close ends all subscriptions and closes the database connection.
func (s *sqliteStore) Close() error {
	s.hub.close()
	return s.db.Close()
}

// isUniqueConstraintError checks if an error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.Code() == 2067 || sqliteErr.Code() == 1555) // SQLITE_CONSTRAINT_UNIQUE, SQLITE_CONSTRAINT_PRIMARYKEY
}
