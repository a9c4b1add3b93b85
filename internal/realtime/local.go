package realtime

import (
	"context"
	"sync"
)

// LocalHub dispatches synchronously on the publishing goroutine, in
// subscription order. A subscriber removed mid-publish is skipped.
type LocalHub struct {
	mu     sync.RWMutex
	nextID uint64
	order  []uint64
	subs   map[uint64]localSub
	closed bool
}

type localSub struct {
	filter  Filter
	handler *guardedHandler
}

func NewLocalHub() *LocalHub {
	return &LocalHub{subs: make(map[uint64]localSub)}
}

func (h *LocalHub) Publish(ctx context.Context, e ChangeEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.RLock()
	targets := make([]*guardedHandler, 0, len(h.order))
	for _, id := range h.order {
		if s, ok := h.subs[id]; ok && s.filter.Matches(e) {
			targets = append(targets, s.handler)
		}
	}
	h.mu.RUnlock()

	for _, g := range targets {
		g.call(e)
	}
	return nil
}

func (h *LocalHub) Subscribe(f Filter, handler Handler) (Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}

	h.nextID++
	id := h.nextID
	h.subs[id] = localSub{filter: f, handler: newGuardedHandler(handler)}
	h.order = append(h.order, id)

	return &localSubscription{hub: h, id: id}, nil
}

// Close drops every subscriber, waiting for running handlers; later
// Subscribe calls fail.
func (h *LocalHub) Close() error {
	h.mu.Lock()
	subs := h.subs
	h.closed = true
	h.subs = make(map[uint64]localSub)
	h.order = nil
	h.mu.Unlock()

	for _, s := range subs {
		s.handler.stop()
	}
	return nil
}

// Len reports the number of live subscriptions.
func (h *LocalHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *LocalHub) remove(id uint64) *guardedHandler {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.subs[id]
	if !ok {
		return nil
	}
	delete(h.subs, id)
	for i, v := range h.order {
		if v == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	return s.handler
}

type localSubscription struct {
	hub *LocalHub
	id  uint64
}

func (s *localSubscription) Unsubscribe() error {
	if g := s.hub.remove(s.id); g != nil {
		g.stop()
	}
	return nil
}
