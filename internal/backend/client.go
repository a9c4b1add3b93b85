package backend

import (
	"errors"
	"io"

	"github.com/dmitrijs2005/newsinsight/internal/query"
)

// Client wraps a Backend with the query entry point and owns any extra
// resources (such as the realtime hub) opened alongside it.
type Client struct {
	Backend
	closers []io.Closer
}

// NewClient wraps b. closers are closed after b, in order.
func NewClient(b Backend, closers ...io.Closer) *Client {
	return &Client{Backend: b, closers: closers}
}

// From starts a query against table.
func (c *Client) From(table string) query.Builder {
	return query.NewBuilder(c.Backend, table)
}

func (c *Client) Close() error {
	errs := []error{c.Backend.Close()}
	for _, cl := range c.closers {
		errs = append(errs, cl.Close())
	}
	return errors.Join(errs...)
}
