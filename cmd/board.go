package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xvierd/flowboard/internal/adapters/clock"
	"github.com/xvierd/flowboard/internal/adapters/tui"
	"github.com/xvierd/flowboard/internal/board"
	"github.com/xvierd/flowboard/internal/domain"
	"github.com/xvierd/flowboard/internal/focus"
	"github.com/xvierd/flowboard/internal/loop"
	"github.com/xvierd/flowboard/internal/ports"
)

// runBoard opens the interactive board. When focusID is set, that task is
// focused as soon as it appears in the first store snapshot.
func runBoard(ctx context.Context, focusID string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := app.logger
	events := loop.New()
	ticker := clock.NewCronTicker(time.Local)
	defer ticker.Stop()

	timer := focus.NewTimer(app.config.ToTimerConfig(), ticker, events)
	ctrl := board.New(board.Config{
		ScopeID:   app.config.Backend.ScopeID,
		AutoStart: app.config.Timer.AutoStart,
	}, board.Deps{
		Store:    app.store,
		Identity: app.identity,
		Timer:    timer,
		Loop:     events,
		Notifier: app.notifier,
		Logger:   logger,
	})

	model := tui.NewModel(ctrl.Snapshot(), board.NewRemote(ctrl), &app.config.Theme)
	program := tui.NewProgram(model)

	if focusID != "" {
		events.AfterEach(focusOnLoad(events, ctrl, focusID, logger))
	}
	events.AfterEach(func() {
		program.Render(ctrl.Snapshot())
	})

	ctrl.Start()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = events.Run(ctx)
	}()

	logger.Info("board opened", "user_id", app.identity.CurrentUserID(), "offline", app.store == nil)
	err := program.Run(ctx)

	cancel()
	<-loopDone
	ctrl.Close()

	if err != nil {
		return fmt.Errorf("board exited: %w", err)
	}
	return nil
}

// focusOnLoad returns an after-event hook that waits for id to reach the
// board and then posts a single focus request for it.
func focusOnLoad(events ports.Dispatcher, ctrl *board.Controller, id string, logger *slog.Logger) func() {
	pending := id
	return func() {
		if pending == "" || domain.FindTask(ctrl.Tasks(domain.TaskFilter{}), pending) == nil {
			return
		}
		taskID := pending
		pending = ""
		events.Post(func() {
			if err := ctrl.StartFocus(taskID); err != nil {
				logger.Warn("could not focus task", "task_id", taskID, "err", err)
			}
		})
	}
}
