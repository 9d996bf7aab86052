// Package loop runs application events one at a time on a single goroutine.
//
// User actions, timer ticks and store callbacks all arrive on different
// goroutines. They are queued here and executed serially, so the board and
// the focus timer never need locks of their own.
package loop

import (
	"context"
	"sync"

	"github.com/xvierd/flowboard/internal/ports"
)

// Loop is an unbounded FIFO of events.
type Loop struct {
	mu        sync.Mutex
	queue     []func()
	closed    bool
	wake      chan struct{}
	afterEach []func()
	inflight  sync.WaitGroup
}

// Ensure Loop implements ports.EventLoop.
var _ ports.EventLoop = (*Loop)(nil)

// New creates an empty loop.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post queues fn. It never blocks. Events posted after Run returns are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Async runs work on its own goroutine and posts done(err) back to the loop.
func (l *Loop) Async(work func() error, done func(error)) {
	l.inflight.Add(1)
	go func() {
		defer l.inflight.Done()
		err := work()
		l.Post(func() {
			if done != nil {
				done(err)
			}
		})
	}()
}

// AfterEach registers fn to run after every event, on the loop.
// Register hooks before calling Run.
func (l *Loop) AfterEach(fn func()) {
	l.afterEach = append(l.afterEach, fn)
}

// Run processes events until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.drain()

		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.closed = true
			l.queue = nil
			l.mu.Unlock()
			return nil
		case <-l.wake:
		}
	}
}

// Flush processes events on the calling goroutine until nothing is queued
// and no Async work is in flight. It must not be used while Run is active.
func (l *Loop) Flush() {
	for {
		l.drain()
		l.inflight.Wait()

		l.mu.Lock()
		empty := len(l.queue) == 0
		l.mu.Unlock()
		if empty {
			return
		}
	}
}

// Pending returns the number of queued events.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) drain() {
	for {
		fn, ok := l.next()
		if !ok {
			return
		}
		fn()
		for _, hook := range l.afterEach {
			hook()
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}
