package realtime

import "sync"

// guardedHandler wraps a subscriber's Handler. Calls hold the read lock and
// stop takes the write lock, so stop returns only once no call is running
// and none will start.
type guardedHandler struct {
	mu      sync.RWMutex
	stopped bool
	handler Handler
}

func newGuardedHandler(h Handler) *guardedHandler {
	return &guardedHandler{handler: h}
}

func (g *guardedHandler) call(e ChangeEvent) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.stopped {
		return
	}
	g.handler(e)
}

func (g *guardedHandler) stop() {
	g.mu.Lock()
	g.stopped = true
	g.mu.Unlock()
}
