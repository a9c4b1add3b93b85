package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/newsinsight/internal/logging"
	"github.com/dmitrijs2005/newsinsight/internal/models"
)

// DefaultDelay is the gap between an auth operation and its notification.
const DefaultDelay = 100 * time.Millisecond

type notification struct {
	event   AuthEvent
	session *models.Session
	due     time.Time
}

// Notifier delivers scheduled auth events on a single goroutine, in the
// order they were scheduled. Each event goes to the listeners registered
// at delivery time, not at scheduling time.
type Notifier struct {
	registry *Registry
	delay    time.Duration
	logger   logging.Logger

	mu      sync.Mutex
	pending []notification
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

// NewNotifier starts the delivery goroutine. Close must be called to stop it.
func NewNotifier(registry *Registry, delay time.Duration, logger logging.Logger) *Notifier {
	if delay < 0 {
		delay = 0
	}
	n := &Notifier{
		registry: registry,
		delay:    delay,
		logger:   logger.With("module", "auth_notifier"),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go n.run()
	return n
}

// Schedule queues event for delivery after the configured delay. It never
// blocks. Events scheduled after Close are dropped.
func (n *Notifier) Schedule(event AuthEvent, s *models.Session) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.pending = append(n.pending, notification{event: event, session: s, due: time.Now().Add(n.delay)})
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// Close stops the goroutine and discards undelivered events. It is safe to
// call more than once.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		<-n.done
		return
	}
	n.closed = true
	n.pending = nil
	n.mu.Unlock()

	close(n.stop)
	<-n.done
}

func (n *Notifier) run() {
	defer close(n.done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		next, ok := n.peek()
		if !ok {
			select {
			case <-n.wake:
				continue
			case <-n.stop:
				return
			}
		}

		if wait := time.Until(next.due); wait > 0 {
			timer.Reset(wait)
			select {
			case <-timer.C:
			case <-n.stop:
				return
			}
		}

		if item, ok := n.pop(); ok {
			n.deliver(item)
		}
	}
}

func (n *Notifier) peek() (notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.pending) == 0 {
		return notification{}, false
	}
	return n.pending[0], true
}

func (n *Notifier) pop() (notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.pending) == 0 {
		return notification{}, false
	}
	item := n.pending[0]
	n.pending = n.pending[1:]
	return item, true
}

func (n *Notifier) deliver(item notification) {
	n.registry.Dispatch(item.event, item.session, func(r any) {
		n.logger.Error(context.Background(), "auth listener panicked", "event", string(item.event), "panic", r)
	})
}
