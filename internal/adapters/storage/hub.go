package storage

import (
	"context"
	"sync"

	"github.com/xvierd/flowboard/internal/domain"
	"github.com/xvierd/flowboard/internal/ports"
)

// loadFunc reads the full record set of a scope.
type loadFunc func(ctx context.Context, scope string) ([]*domain.Task, error)

// hub fans change notifications out to per-scope subscribers.
// Deliveries happen under the hub lock, so a scope's snapshots reach each
// subscriber in commit order and never after Unsubscribe returns.
type hub struct {
	mu     sync.Mutex
	load   loadFunc
	nextID int
	subs   map[string]map[int]*subscription
	closed bool
}

func newHub(load loadFunc) *hub {
	return &hub{
		load: load,
		subs: make(map[string]map[int]*subscription),
	}
}

type subscription struct {
	hub      *hub
	scope    string
	id       int
	onChange func([]*domain.Task)
	onError  func(error)
}

// Ensure subscription implements ports.Subscription.
var _ ports.Subscription = (*subscription)(nil)

// Unsubscribe stops delivery.
func (s *subscription) Unsubscribe() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	if scoped, ok := s.hub.subs[s.scope]; ok {
		delete(scoped, s.id)
		if len(scoped) == 0 {
			delete(s.hub.subs, s.scope)
		}
	}
}

// subscribe registers a listener and delivers the current record set to it.
func (h *hub) subscribe(ctx context.Context, scope string, onChange func([]*domain.Task), onError func(error)) (*subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, errStoreClosed
	}

	tasks, err := h.load(ctx, scope)
	if err != nil {
		return nil, err
	}

	h.nextID++
	sub := &subscription{
		hub:      h,
		scope:    scope,
		id:       h.nextID,
		onChange: onChange,
		onError:  onError,
	}
	if h.subs[scope] == nil {
		h.subs[scope] = make(map[int]*subscription)
	}
	h.subs[scope][sub.id] = sub

	onChange(tasks)
	return sub, nil
}

// publish reloads the scope and hands the result to its subscribers.
func (h *hub) publish(ctx context.Context, scope string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	scoped := h.subs[scope]
	if len(scoped) == 0 {
		return
	}

	tasks, err := h.load(ctx, scope)
	for _, sub := range scoped {
		if err != nil {
			if sub.onError != nil {
				sub.onError(err)
			}
			continue
		}
		sub.onChange(cloneTasks(tasks))
	}
}

// fail reports err to every subscriber of every scope.
func (h *hub) fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, scoped := range h.subs {
		for _, sub := range scoped {
			if sub.onError != nil {
				sub.onError(err)
			}
		}
	}
}

// scopes returns the scopes that currently have listeners.
func (h *hub) scopes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]string, 0, len(h.subs))
	for scope := range h.subs {
		result = append(result, scope)
	}
	return result
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	h.subs = make(map[string]map[int]*subscription)
}

func cloneTasks(tasks []*domain.Task) []*domain.Task {
	result := make([]*domain.Task, len(tasks))
	for i, t := range tasks {
		result[i] = t.Clone()
	}
	return result
}
