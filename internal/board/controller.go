// Package board implements the task board controller.
//
// The controller owns the cached task list, the focused task and the store
// subscription. It is not safe for concurrent use: construct it, then call
// every method from the event loop. Use Remote to drive it from other goroutines.
package board

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xvierd/flowboard/internal/domain"
	"github.com/xvierd/flowboard/internal/focus"
	"github.com/xvierd/flowboard/internal/ports"
	"github.com/xvierd/flowboard/internal/services"
)

// Config holds the controller settings.
type Config struct {
	// ScopeID namespaces the per-user store keys.
	ScopeID string
	// AutoStart starts the countdown as soon as a task is focused.
	AutoStart bool
}

// Deps are the collaborators the controller drives.
// Store and Notifier may be nil.
type Deps struct {
	Store    ports.TaskStore
	Identity ports.IdentityService
	Timer    *focus.Timer
	Loop     ports.EventLoop
	Notifier ports.Notifier
	Logger   *slog.Logger
}

// Controller coordinates the board, the store and the focus timer.
type Controller struct {
	cfg      Config
	store    ports.TaskStore
	tasks    *services.TaskService
	identity ports.IdentityService
	timer    *focus.Timer
	loop     ports.EventLoop
	notifier ports.Notifier
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	userID     string
	scope      string
	cache      []*domain.Task
	focusedID  string
	submitting int
	sessions   map[string]int
	lastErr    string

	sub          ports.Subscription
	subGen       uint64
	unlistenAuth func()
	closed       bool
}

// New creates a controller. Call Start on the loop to begin following the
// signed-in user.
func New(cfg Config, deps Deps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		cfg:      cfg,
		store:    deps.Store,
		tasks:    services.NewTaskService(deps.Store),
		identity: deps.Identity,
		timer:    deps.Timer,
		loop:     deps.Loop,
		notifier: deps.Notifier,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]int),
	}

	c.timer.SetOnComplete(c.onFocusComplete)
	c.timer.SetOnBreakEnd(c.onBreakEnd)
	return c
}

// Start subscribes to identity changes. The first notification arrives as a
// separate event.
func (c *Controller) Start() {
	if c.store == nil {
		c.logger.Warn("no task store configured, board is read-only")
	}
	c.unlistenAuth = c.identity.OnAuthStateChanged(func(userID string) {
		c.loop.Post(func() { c.onAuthChanged(userID) })
	})
}

// Close tears down the subscription, stops the timer and cancels in-flight work.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	if c.unlistenAuth != nil {
		c.unlistenAuth()
	}
	c.dropSubscription()
	c.timer.Stop()
	c.cancel()
}

// UserID returns the user whose board is shown.
func (c *Controller) UserID() string {
	return c.userID
}

// Tasks returns the cached tasks matching filter, oldest first.
func (c *Controller) Tasks(filter domain.TaskFilter) []*domain.Task {
	return domain.FilterTasks(c.cache, filter)
}

// Focused returns the focused task, or nil.
func (c *Controller) Focused() *domain.Task {
	if c.focusedID == "" {
		return nil
	}
	return domain.FindTask(c.cache, c.focusedID)
}

// Submitting returns true while a store request is in flight.
func (c *Controller) Submitting() bool {
	return c.submitting > 0
}

// Timer returns the focus timer driven by the controller.
func (c *Controller) Timer() *focus.Timer {
	return c.timer
}

// Snapshot returns a copy of the board state for views.
func (c *Controller) Snapshot() domain.BoardSnapshot {
	tasks := make([]*domain.Task, len(c.cache))
	for i, t := range c.cache {
		tasks[i] = t.Clone()
	}
	sessions := make(map[string]int, len(c.sessions))
	for k, v := range c.sessions {
		sessions[k] = v
	}

	return domain.BoardSnapshot{
		UserID:     c.userID,
		Offline:    c.store == nil,
		Submitting: c.Submitting(),
		Tasks:      tasks,
		Focused:    c.Focused().Clone(),
		Timer:      c.timer.State(),
		Sessions:   sessions,
		LastError:  c.lastErr,
	}
}

// AddTask requests creation of a todo task. A blank title is ignored
// without contacting the store.
func (c *Controller) AddTask(req services.AddTaskRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return nil
	}
	if _, err := domain.NewTask(req.Title, req.FocusTime, req.EnergyLevel, req.Type); err != nil {
		return err
	}
	if err := c.writable("add task"); err != nil {
		return err
	}

	scope := c.scope
	c.submit("add task", func(ctx context.Context) error {
		_, err := c.tasks.AddTask(ctx, scope, req)
		return err
	}, nil)
	return nil
}

// AdvanceStatus requests moving a task to next, which must follow its
// current status in the cycle. Completing the focused task clears the focus
// once the store accepts the change.
func (c *Controller) AdvanceStatus(id string, next domain.TaskStatus) error {
	task := domain.FindTask(c.cache, id)
	if task == nil {
		return domain.ErrTaskNotFound
	}
	from := task.Status
	if err := domain.ValidateTransition(from, next); err != nil {
		return err
	}
	if err := c.writable("advance task"); err != nil {
		return err
	}

	scope := c.scope
	c.submit("advance task", func(ctx context.Context) error {
		return c.tasks.SetStatus(ctx, scope, id, from, next)
	}, func() {
		if next == domain.StatusComplete && c.focusedID == id {
			c.setFocus(nil)
		}
	})
	return nil
}

// CycleStatus advances a task to the next status in the cycle.
func (c *Controller) CycleStatus(id string) error {
	task := domain.FindTask(c.cache, id)
	if task == nil {
		return domain.ErrTaskNotFound
	}
	return c.AdvanceStatus(id, task.Status.Next())
}

// StartFocus attaches a task to the timer. A todo task moves to in-progress.
func (c *Controller) StartFocus(id string) error {
	task := domain.FindTask(c.cache, id)
	if task == nil {
		return domain.ErrTaskNotFound
	}
	if !task.CanFocus() {
		return domain.ErrTaskComplete
	}

	c.setFocus(task)
	c.logger.Debug("task focused", "task_id", task.ID, "title", task.Title)

	if task.Status == domain.StatusTodo {
		if err := c.AdvanceStatus(id, domain.StatusInProgress); err != nil {
			c.logger.Warn("could not mark focused task in progress", "task_id", id, "err", err)
		}
	}

	if c.cfg.AutoStart && c.timer.Status() == domain.TimerIdle {
		if err := c.timer.StartFocus(); err != nil {
			return fmt.Errorf("failed to start timer: %w", err)
		}
	}
	return nil
}

// ClearFocus detaches the focused task from the timer.
func (c *Controller) ClearFocus() {
	c.setFocus(nil)
}

// DeleteTask requests deletion. Deleting the focused task clears the focus.
func (c *Controller) DeleteTask(id string) error {
	if err := c.writable("delete task"); err != nil {
		return err
	}

	scope := c.scope
	c.submit("delete task", func(ctx context.Context) error {
		return c.tasks.DeleteTask(ctx, scope, id)
	}, func() {
		if c.focusedID == id {
			c.setFocus(nil)
		}
	})
	return nil
}

// StartTimer starts a countdown for the focused task, or a default session.
func (c *Controller) StartTimer() error {
	return c.timer.StartFocus()
}

// StopTimer cancels any countdown.
func (c *Controller) StopTimer() {
	c.timer.Stop()
}

// StartBreak skips to a break.
func (c *Controller) StartBreak() error {
	return c.timer.StartBreak()
}

// writable reports whether store operations can be attempted right now.
func (c *Controller) writable(op string) error {
	if c.store == nil {
		c.logger.Info("store not configured, skipping", "op", op)
		return domain.ErrStoreNotConfigured
	}
	if c.scope == "" {
		c.logger.Info("no signed-in user, skipping", "op", op)
		return domain.ErrStoreNotConfigured
	}
	return nil
}

// submit runs a store request off the loop. onSuccess runs on the loop if
// the request succeeded.
func (c *Controller) submit(op string, work func(ctx context.Context) error, onSuccess func()) {
	c.submitting++
	ctx := c.ctx
	c.loop.Async(func() error {
		return work(ctx)
	}, func(err error) {
		c.submitting--
		if err != nil {
			c.fail(op, err)
			return
		}
		if onSuccess != nil && !c.closed {
			onSuccess()
		}
	})
}

func (c *Controller) fail(op string, err error) {
	c.lastErr = fmt.Sprintf("%s: %v", op, err)
	c.logger.Error("store operation failed", "op", op, "err", err)
}

func (c *Controller) setFocus(task *domain.Task) {
	if task == nil {
		c.focusedID = ""
		c.timer.SetFocusedTask(nil)
		return
	}
	c.focusedID = task.ID
	c.timer.SetFocusedTask(task)
}

func (c *Controller) onAuthChanged(userID string) {
	if c.closed {
		return
	}
	if userID == c.userID && (c.sub != nil || userID == "") {
		return
	}

	c.dropSubscription()
	c.userID = userID
	c.scope = ""
	c.cache = nil
	c.setFocus(nil)

	if userID == "" {
		c.logger.Info("signed out")
		return
	}
	c.scope = domain.ScopeKey(c.cfg.ScopeID, userID)
	c.logger.Info("signed in", "user_id", userID, "scope", c.scope)

	if c.store == nil {
		return
	}
	c.subscribe()
}

// subscribe opens the change feed for the current scope. Events from an
// older feed are discarded by generation.
func (c *Controller) subscribe() {
	gen := c.subGen
	scope := c.scope

	onChange := func(tasks []*domain.Task) {
		c.loop.Post(func() {
			if gen == c.subGen && !c.closed {
				c.replaceTasks(tasks)
			}
		})
	}
	onError := func(err error) {
		c.loop.Post(func() {
			if gen == c.subGen && !c.closed {
				c.fail("watch tasks", err)
			}
		})
	}

	var sub ports.Subscription
	c.loop.Async(func() error {
		var err error
		sub, err = c.store.Subscribe(scope, onChange, onError)
		return err
	}, func(err error) {
		if err != nil {
			c.fail("subscribe", err)
			return
		}
		if gen != c.subGen || c.closed {
			sub.Unsubscribe()
			return
		}
		c.sub = sub
	})
}

func (c *Controller) dropSubscription() {
	if c.sub != nil {
		c.sub.Unsubscribe()
		c.sub = nil
	}
	c.subGen++
}

// replaceTasks swaps in a store snapshot and re-checks the focus.
func (c *Controller) replaceTasks(tasks []*domain.Task) {
	for _, t := range tasks {
		t.FillDefaults()
	}
	domain.SortByCreated(tasks)
	c.cache = tasks

	if c.focusedID == "" {
		return
	}
	focused := domain.FindTask(tasks, c.focusedID)
	if focused == nil || !focused.CanFocus() {
		c.setFocus(nil)
		return
	}
	c.timer.SetFocusedTask(focused)
}

func (c *Controller) onFocusComplete(task *domain.Task) {
	title := "Focus session"
	length := c.timer.Config().DefaultSession
	key := ""
	if task != nil {
		title = task.Title
		length = task.FocusDuration()
		key = task.ID
	}
	c.sessions[key]++

	c.logger.Info("focus session complete",
		"task_id", key,
		"title", title,
		"minutes", int(length/time.Minute),
		"sessions", c.sessions[key],
	)

	if c.notifier != nil {
		if err := c.notifier.NotifyFocusComplete(title, length); err != nil {
			c.logger.Warn("notification failed", "err", err)
		}
	}
}

func (c *Controller) onBreakEnd() {
	c.logger.Info("break over")
	if c.notifier != nil {
		if err := c.notifier.NotifyBreakOver(); err != nil {
			c.logger.Warn("notification failed", "err", err)
		}
	}
}
