package clock

import (
	"sort"
	"sync"
	"time"

	"github.com/xvierd/flowboard/internal/ports"
)

// Manual is a ticker that only fires when told to. It drives the focus timer
// in tests and in headless runs that simulate elapsed time.
type Manual struct {
	mu   sync.Mutex
	next ports.TickHandle
	jobs map[ports.TickHandle]func()
}

// Ensure Manual implements ports.Ticker.
var _ ports.Ticker = (*Manual)(nil)

// NewManual creates a ticker with no registrations.
func NewManual() *Manual {
	return &Manual{jobs: make(map[ports.TickHandle]func())}
}

// Every registers fn. The interval is ignored.
func (m *Manual) Every(_ time.Duration, fn func()) (ports.TickHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.next++
	m.jobs[m.next] = fn
	return m.next, nil
}

// Cancel removes the registration.
func (m *Manual) Cancel(handle ports.TickHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, handle)
}

// Active returns the number of live registrations.
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// Fire runs every live registration once, in registration order.
func (m *Manual) Fire() {
	for _, fn := range m.snapshot() {
		fn()
	}
}

// Advance fires n times.
func (m *Manual) Advance(n int) {
	for i := 0; i < n; i++ {
		m.Fire()
	}
}

func (m *Manual) snapshot() []func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	handles := make([]int, 0, len(m.jobs))
	for h := range m.jobs {
		handles = append(handles, int(h))
	}
	sort.Ints(handles)

	fns := make([]func(), 0, len(handles))
	for _, h := range handles {
		fns = append(fns, m.jobs[ports.TickHandle(h)])
	}
	return fns
}
