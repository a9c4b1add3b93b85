package realtime

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newsInsert(t *testing.T, id string) ChangeEvent {
	t.Helper()
	e, err := NewEvent(EventInsert, "news_items", map[string]any{"id": id}, nil)
	require.NoError(t, err)
	return e
}

func TestNewEvent(t *testing.T) {
	e, err := NewEvent(EventDelete, "news_items", nil, map[string]any{"id": "1"})
	require.NoError(t, err)

	assert.Equal(t, EventDelete, e.EventType)
	assert.Equal(t, DefaultSchema, e.Schema)
	assert.Equal(t, "news_items", e.Table)
	assert.Nil(t, e.New)
	assert.JSONEq(t, `{"id":"1"}`, string(e.Old))
	assert.False(t, e.CommitTimestamp.IsZero())
}

func TestNewEvent_Unmarshalable(t *testing.T) {
	_, err := NewEvent(EventInsert, "news_items", map[string]any{"ch": make(chan int)}, nil)
	assert.Error(t, err)
}

func TestFilter_Matches(t *testing.T) {
	ins := ChangeEvent{EventType: EventInsert, Schema: "public", Table: "news_items"}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"wildcard", Filter{Event: EventAny, Schema: "public", Table: "news_items"}, true},
		{"empty event", Filter{Table: "news_items"}, true},
		{"exact event", Filter{Event: "INSERT", Table: "news_items"}, true},
		{"other event", Filter{Event: "DELETE", Table: "news_items"}, false},
		{"other table", Filter{Event: EventAny, Table: "trust_metrics"}, false},
		{"other schema", Filter{Schema: "audit"}, false},
		{"everything", Filter{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(ins))
		})
	}
}

func TestLocalHub_DeliversInOrder(t *testing.T) {
	hub := NewLocalHub()
	var got []string

	_, err := hub.Subscribe(Filter{Table: "news_items"}, func(ChangeEvent) { got = append(got, "a") })
	require.NoError(t, err)
	_, err = hub.Subscribe(Filter{Table: "trust_metrics"}, func(ChangeEvent) { got = append(got, "skip") })
	require.NoError(t, err)
	_, err = hub.Subscribe(Filter{Event: EventAny}, func(ChangeEvent) { got = append(got, "b") })
	require.NoError(t, err)

	require.NoError(t, hub.Publish(context.Background(), newsInsert(t, "1")))
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestLocalHub_UnsubscribeIsIdempotent(t *testing.T) {
	hub := NewLocalHub()
	calls := 0
	sub, err := hub.Subscribe(Filter{}, func(ChangeEvent) { calls++ })
	require.NoError(t, err)
	require.Equal(t, 1, hub.Len())

	require.NoError(t, sub.Unsubscribe())
	require.NoError(t, sub.Unsubscribe())
	assert.Equal(t, 0, hub.Len())

	require.NoError(t, hub.Publish(context.Background(), newsInsert(t, "1")))
	assert.Zero(t, calls)
}

func TestLocalHub_HandlerMayUnsubscribeAsync(t *testing.T) {
	hub := NewLocalHub()
	var sub Subscription
	calls := 0
	unsubscribed := make(chan struct{})
	sub, err := hub.Subscribe(Filter{}, func(ChangeEvent) {
		calls++
		go func() {
			defer close(unsubscribed)
			_ = sub.Unsubscribe()
		}()
	})
	require.NoError(t, err)

	require.NoError(t, hub.Publish(context.Background(), newsInsert(t, "1")))
	<-unsubscribed
	require.NoError(t, hub.Publish(context.Background(), newsInsert(t, "2")))
	assert.Equal(t, 1, calls)
}

func TestLocalHub_UnsubscribeDuringPublish(t *testing.T) {
	hub := NewLocalHub()
	running := make(chan struct{})
	release := make(chan struct{})

	_, err := hub.Subscribe(Filter{}, func(ChangeEvent) {
		close(running)
		<-release
	})
	require.NoError(t, err)
	var calls atomic.Int32
	sub, err := hub.Subscribe(Filter{}, func(ChangeEvent) { calls.Add(1) })
	require.NoError(t, err)

	published := make(chan error, 1)
	e := newsInsert(t, "1")
	go func() { published <- hub.Publish(context.Background(), e) }()
	<-running

	require.NoError(t, sub.Unsubscribe())
	close(release)
	require.NoError(t, <-published)
	assert.Zero(t, calls.Load(), "handler called after Unsubscribe returned")
}

func TestLocalHub_UnsubscribeWaitsForRunningHandler(t *testing.T) {
	hub := NewLocalHub()
	running := make(chan struct{})
	release := make(chan struct{})
	sub, err := hub.Subscribe(Filter{}, func(ChangeEvent) {
		close(running)
		<-release
	})
	require.NoError(t, err)

	published := make(chan error, 1)
	e := newsInsert(t, "1")
	go func() { published <- hub.Publish(context.Background(), e) }()
	<-running

	unsubscribed := make(chan struct{})
	go func() {
		defer close(unsubscribed)
		_ = sub.Unsubscribe()
	}()

	select {
	case <-unsubscribed:
		t.Fatal("Unsubscribe returned while the handler was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-unsubscribed
	require.NoError(t, <-published)
	assert.Equal(t, 0, hub.Len())
}

func TestLocalHub_Closed(t *testing.T) {
	hub := NewLocalHub()
	_, err := hub.Subscribe(Filter{}, func(ChangeEvent) {})
	require.NoError(t, err)

	require.NoError(t, hub.Close())
	assert.Equal(t, 0, hub.Len())

	_, err = hub.Subscribe(Filter{}, func(ChangeEvent) {})
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestLocalHub_PublishCancelled(t *testing.T) {
	hub := NewLocalHub()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, hub.Publish(ctx, newsInsert(t, "1")), context.Canceled)
}

func TestChannel_Subscribe(t *testing.T) {
	hub := NewLocalHub()
	var rows []string

	sub, err := NewChannel(ChannelNewsUpdates, hub).
		On(PostgresChanges, Filter{Event: EventAny, Schema: DefaultSchema, Table: "news_items"}, func(e ChangeEvent) {
			var row struct {
				ID string `json:"id"`
			}
			require.NoError(t, json.Unmarshal(e.New, &row))
			rows = append(rows, row.ID)
		}).
		On("broadcast", Filter{}, func(ChangeEvent) { t.Fatal("broadcast bindings never fire") }).
		Subscribe()
	require.NoError(t, err)
	assert.Equal(t, 1, hub.Len())

	require.NoError(t, hub.Publish(context.Background(), newsInsert(t, "7")))
	assert.Equal(t, []string{"7"}, rows)

	require.NoError(t, sub.Unsubscribe())
	require.NoError(t, sub.Unsubscribe())
	assert.Equal(t, 0, hub.Len())
}

func TestChannel_SubscribeOnClosedHub(t *testing.T) {
	hub := NewLocalHub()
	require.NoError(t, hub.Close())

	_, err := NewChannel(ChannelTrustMetrics, hub).
		On(PostgresChanges, Filter{Table: "trust_metrics"}, func(ChangeEvent) {}).
		Subscribe()
	assert.ErrorIs(t, err, ErrHubClosed)
}
