package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xvierd/flowboard/internal/domain"
	"github.com/xvierd/flowboard/internal/ports"
)

// Backend names the store implementation selected by a credentials string.
type Backend string

const (
	BackendNone     Backend = "none"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// BackendFor reports which store Open would build for credentials.
func BackendFor(credentials string) Backend {
	credentials = strings.TrimSpace(credentials)
	switch {
	case credentials == "":
		return BackendNone
	case strings.HasPrefix(credentials, "postgres://"), strings.HasPrefix(credentials, "postgresql://"):
		return BackendPostgres
	default:
		return BackendSQLite
	}
}

// Open builds the task store described by credentials: a postgres URL, or a
// SQLite database path. Empty credentials yield domain.ErrStoreNotConfigured.
func Open(ctx context.Context, credentials string) (ports.TaskStore, error) {
	credentials = strings.TrimSpace(credentials)

	switch BackendFor(credentials) {
	case BackendNone:
		return nil, domain.ErrStoreNotConfigured
	case BackendPostgres:
		return NewPostgres(ctx, credentials)
	}

	if credentials != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(credentials), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	return New(credentials)
}
