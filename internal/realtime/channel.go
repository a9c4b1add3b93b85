package realtime

import (
	"errors"
	"sync"
)

// Channel is a named group of bindings subscribed together, shaped after
// channel(name).on(event, filter, cb).subscribe().
type Channel struct {
	name     string
	hub      Hub
	bindings []binding
}

type binding struct {
	event   string
	filter  Filter
	handler Handler
}

func NewChannel(name string, hub Hub) *Channel {
	return &Channel{name: name, hub: hub}
}

func (c *Channel) Name() string {
	return c.name
}

// On adds a binding. Only PostgresChanges bindings receive table events;
// other event kinds are accepted and never fire.
func (c *Channel) On(event string, filter Filter, handler Handler) *Channel {
	c.bindings = append(c.bindings, binding{event: event, filter: filter, handler: handler})
	return c
}

// Subscribe registers every binding with the hub. If any registration
// fails the ones already made are released.
func (c *Channel) Subscribe() (Subscription, error) {
	group := &groupSubscription{}
	for _, b := range c.bindings {
		if b.event != PostgresChanges {
			continue
		}
		sub, err := c.hub.Subscribe(b.filter, b.handler)
		if err != nil {
			_ = group.Unsubscribe()
			return nil, err
		}
		group.subs = append(group.subs, sub)
	}
	return group, nil
}

type groupSubscription struct {
	subs []Subscription
	once sync.Once
	err  error
}

func (g *groupSubscription) Unsubscribe() error {
	g.once.Do(func() {
		var errs []error
		for _, s := range g.subs {
			errs = append(errs, s.Unsubscribe())
		}
		g.err = errors.Join(errs...)
	})
	return g.err
}
