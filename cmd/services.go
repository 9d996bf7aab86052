package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/xvierd/flowboard/internal/adapters/git"
	"github.com/xvierd/flowboard/internal/adapters/identity"
	"github.com/xvierd/flowboard/internal/adapters/notification"
	"github.com/xvierd/flowboard/internal/adapters/storage"
	"github.com/xvierd/flowboard/internal/config"
	"github.com/xvierd/flowboard/internal/domain"
	"github.com/xvierd/flowboard/internal/ports"
	"github.com/xvierd/flowboard/internal/services"
)

// appDeps groups all service-layer dependencies initialized at startup.
type appDeps struct {
	config   *config.Config
	logger   *slog.Logger
	logFile  io.Closer
	identity *identity.Service
	store    ports.TaskStore
	tasks    *services.TaskService
	board    *services.StateService
	notifier *notification.Notifier
}

// app holds all initialized service dependencies.
// Populated by initializeServices() and accessible to all commands.
var app appDeps

// initializeServices sets up all the required services and adapters.
func initializeServices(ctx context.Context) error {
	app = appDeps{}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// If config loading fails, use defaults
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
		cfg = config.DefaultConfig()
	}
	app.config = cfg

	app.logger, app.logFile = openLogger(cfg)
	app.notifier = notification.New(&cfg.Notifications)

	// Sign in before touching the store; every key is scoped to the user.
	token, err := resolveToken(cfg, "")
	if err != nil {
		app.logger.Warn("git identity unavailable", "err", err)
	}
	app.identity = identity.New(token, nil, app.logger,
		identity.WithAnonymousIDFile(config.GetAnonymousIDPath(cfg)))
	userID := app.identity.SignIn(ctx)

	credentials := cfg.Backend.Credentials
	if dbPath != "" {
		credentials = dbPath
	}

	app.store, err = storage.Open(ctx, credentials)
	switch {
	case errors.Is(err, domain.ErrStoreNotConfigured):
		app.logger.Warn("no backend credentials configured, running without a store")
		app.store = nil
	case err != nil:
		return fmt.Errorf("failed to initialize storage: %w", err)
	default:
		app.logger.Debug("store opened", "backend", storage.BackendFor(credentials))
	}

	app.tasks = services.NewTaskService(app.store)
	app.board = services.NewStateService(app.tasks, cfg.Backend.ScopeID, userID)

	return nil
}

// resolveToken returns the configured auth token, or the git identity
// credential when enabled and no token is set.
func resolveToken(cfg *config.Config, workingDir string) (string, error) {
	if cfg.Backend.AuthToken != "" || !cfg.Backend.GitIdentity {
		return cfg.Backend.AuthToken, nil
	}
	return git.NewDetector().Credential(workingDir)
}

// openLogger writes structured logs to the configured file. The terminal
// belongs to the board UI, so nothing is logged to stderr.
func openLogger(cfg *config.Config) (*slog.Logger, io.Closer) {
	level := cfg.LogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	path := config.GetLogPath(cfg)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err == nil {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err == nil {
			return slog.New(slog.NewTextHandler(f, opts)), f
		}
	}
	return slog.New(slog.DiscardHandler), nil
}

// cleanupServices closes all resources.
func cleanupServices() error {
	var err error
	if app.store != nil {
		err = app.store.Close()
		app.store = nil
	}
	if app.logFile != nil {
		_ = app.logFile.Close()
		app.logFile = nil
	}
	return err
}

// requireStore fails one-shot commands early when no store is configured.
func requireStore() error {
	if app.tasks == nil || !app.tasks.Configured() {
		return fmt.Errorf("%w: set backend.credentials in %s or pass --db", domain.ErrStoreNotConfigured, configPathHint())
	}
	return nil
}

func configPathHint() string {
	path, err := config.GetConfigPath()
	if err != nil {
		return "the config file"
	}
	return path
}

// setupSignalHandler sets up a context that cancels on interrupt signals.
func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
