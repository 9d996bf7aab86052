package board

import (
	"github.com/xvierd/flowboard/internal/domain"
	"github.com/xvierd/flowboard/internal/services"
)

// Remote forwards user actions to a controller through its event loop.
// It is safe for concurrent use.
type Remote struct {
	c *Controller
}

// NewRemote creates a remote for c.
func NewRemote(c *Controller) *Remote {
	return &Remote{c: c}
}

// do runs fn on the loop and records its error on the board.
func (r *Remote) do(action string, fn func() error) {
	r.c.loop.Post(func() {
		if r.c.closed {
			return
		}
		r.c.lastErr = ""
		if err := fn(); err != nil {
			r.c.lastErr = err.Error()
			r.c.logger.Debug("action refused", "action", action, "err", err)
		}
	})
}

// AddTask posts an add request.
func (r *Remote) AddTask(req services.AddTaskRequest) {
	r.do("add", func() error { return r.c.AddTask(req) })
}

// Cycle posts a status advance along the cycle.
func (r *Remote) Cycle(id string) {
	r.do("cycle", func() error { return r.c.CycleStatus(id) })
}

// Advance posts a move to an explicit next status.
func (r *Remote) Advance(id string, next domain.TaskStatus) {
	r.do("advance", func() error { return r.c.AdvanceStatus(id, next) })
}

// Focus posts a focus request.
func (r *Remote) Focus(id string) {
	r.do("focus", func() error { return r.c.StartFocus(id) })
}

// ClearFocus posts a request to detach the focused task.
func (r *Remote) ClearFocus() {
	r.do("unfocus", func() error {
		r.c.ClearFocus()
		return nil
	})
}

// Delete posts a delete request.
func (r *Remote) Delete(id string) {
	r.do("delete", func() error { return r.c.DeleteTask(id) })
}

// StartTimer posts a timer start.
func (r *Remote) StartTimer() {
	r.do("start", r.c.StartTimer)
}

// StopTimer posts a timer stop.
func (r *Remote) StopTimer() {
	r.do("stop", func() error {
		r.c.StopTimer()
		return nil
	})
}

// StartBreak posts a skip to break.
func (r *Remote) StartBreak() {
	r.do("break", r.c.StartBreak)
}
