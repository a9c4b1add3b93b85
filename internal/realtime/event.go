// Package realtime carries table change events from a backend to channel
// subscribers, either in-process (LocalHub) or over NATS (NATSHub).
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Binding names and defaults used by channel subscribers.
const (
	EventAny        = "*"
	PostgresChanges = "postgres_changes"
	DefaultSchema   = "public"
)

// Channel names used by the dashboard.
const (
	ChannelNewsUpdates  = "news_updates"
	ChannelTrustMetrics = "trust_metrics"
)

// ChangeEvent describes one row change. New is set for INSERT and UPDATE,
// Old for UPDATE and DELETE (at least the primary key).
type ChangeEvent struct {
	EventType       EventType       `json:"eventType"`
	Schema          string          `json:"schema"`
	Table           string          `json:"table"`
	New             json.RawMessage `json:"new,omitempty"`
	Old             json.RawMessage `json:"old,omitempty"`
	CommitTimestamp time.Time       `json:"commit_timestamp"`
}

// NewEvent marshals the row images into a ChangeEvent on the default schema.
// Either image may be nil.
func NewEvent(eventType EventType, table string, newRow, oldRow any) (ChangeEvent, error) {
	e := ChangeEvent{
		EventType:       eventType,
		Schema:          DefaultSchema,
		Table:           table,
		CommitTimestamp: time.Now().UTC(),
	}
	var err error
	if newRow != nil {
		if e.New, err = json.Marshal(newRow); err != nil {
			return ChangeEvent{}, fmt.Errorf("marshal new row: %w", err)
		}
	}
	if oldRow != nil {
		if e.Old, err = json.Marshal(oldRow); err != nil {
			return ChangeEvent{}, fmt.Errorf("marshal old row: %w", err)
		}
	}
	return e, nil
}

// Filter selects events. Empty Schema or Table match anything; Event "*"
// or "" matches every event type.
type Filter struct {
	Event  string `json:"event"`
	Schema string `json:"schema"`
	Table  string `json:"table"`
}

func (f Filter) Matches(e ChangeEvent) bool {
	if f.Event != "" && f.Event != EventAny && f.Event != string(e.EventType) {
		return false
	}
	if f.Schema != "" && f.Schema != e.Schema {
		return false
	}
	if f.Table != "" && f.Table != e.Table {
		return false
	}
	return true
}

type Handler func(ChangeEvent)

// Subscription is returned by every subscribe call. Unsubscribe is
// idempotent. Once it returns the handler is not running and will not be
// called again; it blocks while a call is in progress, so a handler must
// not unsubscribe itself synchronously.
type Subscription interface {
	Unsubscribe() error
}

// Hub fans change events out to subscribers.
type Hub interface {
	Publish(ctx context.Context, e ChangeEvent) error
	Subscribe(f Filter, h Handler) (Subscription, error)
	Close() error
}
