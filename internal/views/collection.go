package views

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/newsinsight/internal/backend"
	"github.com/dmitrijs2005/newsinsight/internal/logging"
	"github.com/dmitrijs2005/newsinsight/internal/realtime"
)

// Snapshot is a point-in-time copy of a view.
type Snapshot[T any] struct {
	Data    []T
	Loading bool
	Error   string
}

type fetchFunc[T any] func(ctx context.Context, c *backend.Client) ([]T, error)

type subscribeFunc func(c *backend.Client, h realtime.Handler) (realtime.Subscription, error)

type applyFunc[T any] func(data []T, e realtime.ChangeEvent) ([]T, error)

// collection is the shared machinery behind the list views.
type collection[T any] struct {
	client    *backend.Client
	logger    logging.Logger
	fetch     fetchFunc[T]
	subscribe subscribeFunc
	apply     applyFunc[T]

	mu      sync.RWMutex
	data    []T
	loading bool
	err     string

	settled sync.Once
	done    chan struct{}
	changed chan struct{}

	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	sub     realtime.Subscription
}

func newCollection[T any](c *backend.Client, logger logging.Logger, name string, fetch fetchFunc[T], subscribe subscribeFunc, apply applyFunc[T]) *collection[T] {
	return &collection[T]{
		client:    c,
		logger:    logger.With("module", "views", "view", name),
		fetch:     fetch,
		subscribe: subscribe,
		apply:     apply,
		loading:   true,
		done:      make(chan struct{}),
		changed:   make(chan struct{}, 1),
	}
}

// Start subscribes (when the view is live) and fetches in the background.
// Calling it twice has no effect.
func (v *collection[T]) Start(ctx context.Context) {
	v.mu.Lock()
	if v.started {
		v.mu.Unlock()
		return
	}
	v.started = true
	ctx, v.cancel = context.WithCancel(ctx)
	v.mu.Unlock()

	if v.subscribe != nil {
		sub, err := v.subscribe(v.client, v.onEvent)
		if err != nil {
			v.logger.Warn(ctx, "realtime subscription failed", "error", err)
		} else {
			v.mu.Lock()
			v.sub = sub
			v.mu.Unlock()
		}
	}

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		v.load(ctx)
	}()
}

func (v *collection[T]) load(ctx context.Context) {
	data, err := v.fetch(ctx, v.client)

	v.mu.Lock()
	if err != nil {
		v.err = err.Error()
		v.logger.Error(ctx, "initial fetch failed", "error", err)
	} else {
		v.data = data
	}
	v.mu.Unlock()

	v.settle()
}

func (v *collection[T]) settle() {
	v.settled.Do(func() {
		v.mu.Lock()
		v.loading = false
		v.mu.Unlock()
		close(v.done)
		v.notify()
	})
}

func (v *collection[T]) onEvent(e realtime.ChangeEvent) {
	v.mu.Lock()
	next, err := v.apply(v.data, e)
	if err == nil {
		v.data = next
	}
	v.mu.Unlock()

	if err != nil {
		v.logger.Warn(context.Background(), "ignoring change event", "event", string(e.EventType), "error", err)
		return
	}
	v.notify()
}

func (v *collection[T]) notify() {
	select {
	case v.changed <- struct{}{}:
	default:
	}
}

// Snapshot returns a copy of the current state.
func (v *collection[T]) Snapshot() Snapshot[T] {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Snapshot[T]{
		Data:    append([]T(nil), v.data...),
		Loading: v.loading,
		Error:   v.err,
	}
}

// Done is closed once the initial fetch has settled.
func (v *collection[T]) Done() <-chan struct{} {
	return v.done
}

// Changed receives a signal, coalesced, after every state change.
func (v *collection[T]) Changed() <-chan struct{} {
	return v.changed
}

// Close drops the subscription and waits for the initial fetch to finish.
func (v *collection[T]) Close() error {
	v.mu.Lock()
	sub, cancel := v.sub, v.cancel
	v.sub = nil
	v.mu.Unlock()

	var err error
	if sub != nil {
		err = sub.Unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	v.wg.Wait()
	return err
}
