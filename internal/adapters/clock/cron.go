// Package clock provides tick sources for the focus timer.
package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xvierd/flowboard/internal/ports"
)

// CronTicker schedules repeating ticks on a robfig/cron scheduler.
type CronTicker struct {
	mu      sync.Mutex
	cron    *cron.Cron
	started bool
}

// Ensure CronTicker implements ports.Ticker.
var _ ports.Ticker = (*CronTicker)(nil)

// NewCronTicker creates a ticker in the given location.
func NewCronTicker(loc *time.Location) *CronTicker {
	if loc == nil {
		loc = time.Local
	}
	return &CronTicker{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

// Every registers fn to run once per interval. Intervals below a second are rounded up.
func (c *CronTicker) Every(interval time.Duration, fn func()) (ports.TickHandle, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.cron.Schedule(cron.Every(interval), cron.FuncJob(fn))
	if !c.started {
		c.cron.Start()
		c.started = true
	}
	return ports.TickHandle(id), nil
}

// Cancel removes the registration. A job already running is not interrupted.
func (c *CronTicker) Cancel(handle ports.TickHandle) {
	c.cron.Remove(cron.EntryID(handle))
}

// Stop halts the scheduler and waits for running jobs.
func (c *CronTicker) Stop() {
	c.mu.Lock()
	started := c.started
	c.started = false
	c.mu.Unlock()

	if started {
		ctx := c.cron.Stop()
		<-ctx.Done()
	}
}
