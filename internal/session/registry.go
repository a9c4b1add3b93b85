package session

import (
	"sync"

	"github.com/dmitrijs2005/newsinsight/internal/models"
)

// Registry keeps auth listeners in registration order, keyed by a handle.
type Registry struct {
	mu      sync.RWMutex
	next    uint64
	order   []uint64
	entries map[uint64]*entry
}

// entry guards one listener. Calls hold the read lock; removal takes the
// write lock, so it waits out a call that is already running.
type entry struct {
	listener Listener
	mu       sync.RWMutex
	removed  bool
}

func (e *entry) invoke(event AuthEvent, s *models.Session, onPanic func(any)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.removed {
		return
	}
	defer func() {
		if r := recover(); r != nil && onPanic != nil {
			onPanic(r)
		}
	}()
	e.listener(event, s)
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[uint64]*entry)}
}

// Add registers l and returns its subscription handle.
func (r *Registry) Add(l Listener) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	id := r.next
	r.entries[id] = &entry{listener: l}
	r.order = append(r.order, id)

	return &Subscription{registry: r, id: id}
}

// Dispatch calls the registered listeners, oldest first, on the calling
// goroutine. A listener unsubscribed before its turn is skipped. A panic
// is recovered and handed to onPanic; the remaining listeners still run.
func (r *Registry) Dispatch(event AuthEvent, s *models.Session, onPanic func(any)) {
	for _, e := range r.snapshot() {
		e.invoke(event, s, onPanic)
	}
}

func (r *Registry) snapshot() []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id])
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func (r *Registry) remove(id uint64) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil
	}
	delete(r.entries, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return e
}

// Subscription is returned by OnAuthStateChange.
type Subscription struct {
	registry *Registry
	id       uint64
}

// Unsubscribe removes the listener. Once it returns the listener is not
// running and will not be called again. It blocks while a call is in
// progress, so a listener must not unsubscribe itself synchronously.
// Calling it again is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.registry == nil {
		return
	}
	e := s.registry.remove(s.id)
	if e == nil {
		return
	}
	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()
}
