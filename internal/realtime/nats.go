package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/newsinsight/internal/logging"
	"github.com/nats-io/nats.go"
)

// SubjectPrefix is the root of every realtime subject:
// newsinsight.realtime.<schema>.<table>.
const SubjectPrefix = "newsinsight.realtime"

// natsConn is the subset of *nats.Conn used by NATSHub.
type natsConn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
	Drain() error
}

// NATSHub publishes change events as JSON on per-table subjects so every
// process connected to the same NATS server sees them.
type NATSHub struct {
	conn   natsConn
	logger logging.Logger
	closed bool
	mu     sync.Mutex
}

// ConnectNATS dials url and returns a hub owning the connection.
func ConnectNATS(url string, logger logging.Logger) (*NATSHub, error) {
	nc, err := nats.Connect(url,
		nats.Name("newsinsight"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return newNATSHub(nc, logger), nil
}

func newNATSHub(conn natsConn, logger logging.Logger) *NATSHub {
	return &NATSHub{conn: conn, logger: logger.With("module", "nats_hub")}
}

// Subject returns the subject for schema and table; empty parts become the
// single-token wildcard.
func Subject(schema, table string) string {
	if schema == "" {
		schema = "*"
	}
	if table == "" {
		table = "*"
	}
	return strings.Join([]string{SubjectPrefix, schema, table}, ".")
}

func (h *NATSHub) Publish(ctx context.Context, e ChangeEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	if e.Schema == "" {
		e.Schema = DefaultSchema
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	return h.conn.Publish(Subject(e.Schema, e.Table), data)
}

func (h *NATSHub) Subscribe(f Filter, handler Handler) (Subscription, error) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return nil, ErrHubClosed
	}

	subject := Subject(f.Schema, f.Table)
	g := newGuardedHandler(handler)
	sub, err := h.conn.Subscribe(subject, func(msg *nats.Msg) {
		var e ChangeEvent
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			h.logger.Warn(context.Background(), "dropping malformed change event", "subject", msg.Subject, "error", err)
			return
		}
		if f.Matches(e) {
			g.call(e)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", subject, err)
	}
	return &natsSubscription{sub: sub, handler: g}, nil
}

// Close drains the connection, letting in-flight handlers finish.
func (h *NATSHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return h.conn.Drain()
}

type natsSubscription struct {
	sub     *nats.Subscription
	handler *guardedHandler
	once    sync.Once
	err     error
}

// Unsubscribe stops the server-side interest, then waits out a handler
// call already dispatched by the client.
func (s *natsSubscription) Unsubscribe() error {
	s.once.Do(func() {
		if s.sub != nil {
			s.err = s.sub.Unsubscribe()
		}
		if s.handler != nil {
			s.handler.stop()
		}
	})
	return s.err
}
