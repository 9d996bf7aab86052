package ports

import (
	"time"

	"github.com/xvierd/flowboard/internal/domain"
)

// TickHandle identifies one repeating tick registration.
type TickHandle int

// Ticker schedules repeating callbacks.
// This is a driven port (implemented by adapters).
type Ticker interface {
	// Every calls fn once per interval until the handle is cancelled.
	// fn runs on a ticker goroutine.
	Every(interval time.Duration, fn func()) (TickHandle, error)

	// Cancel stops the registration. Cancelling an unknown handle is a no-op.
	Cancel(handle TickHandle)
}

// Dispatcher runs functions on the application's single logical thread.
type Dispatcher interface {
	// Post schedules fn. It never blocks and may be called from any goroutine.
	Post(fn func())
}

// EventLoop is a Dispatcher that can also run blocking work off-loop.
type EventLoop interface {
	Dispatcher

	// Async runs work on its own goroutine and posts done(err) back to the loop.
	Async(work func() error, done func(error))
}

// Notifier sends user-facing alerts when sessions end.
// This is a driven port (implemented by adapters).
type Notifier interface {
	// NotifyFocusComplete is called when a focus countdown reaches zero.
	NotifyFocusComplete(taskTitle string, focus time.Duration) error

	// NotifyBreakOver is called when a break countdown reaches zero.
	NotifyBreakOver() error
}

// BoardView renders board snapshots.
// This is a driving port (called by the application layer).
type BoardView interface {
	// Render displays the snapshot. It must not mutate board state.
	Render(snapshot domain.BoardSnapshot)
}
