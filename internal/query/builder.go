package query

import (
	"context"
	"slices"
)

// Builder is a value type: every method returns a modified copy, so a
// partially built query can be shared and extended independently.
type Builder struct {
	exec Executor
	req  Request
}

// NewBuilder starts a request against table, resolved by exec.
func NewBuilder(exec Executor, table string) Builder {
	return Builder{exec: exec, req: Request{Table: table, Columns: AllColumns}}
}

// Select sets the projection. An empty string selects all columns.
func (b Builder) Select(columns string) Builder {
	if columns == "" {
		columns = AllColumns
	}
	b.req.Columns = columns
	return b
}

// Eq adds an equality filter.
func (b Builder) Eq(column string, value any) Builder {
	b.req.Filters = append(slices.Clone(b.req.Filters), Filter{Column: column, Value: value})
	return b
}

// Order sets the sort column and direction.
func (b Builder) Order(column string, opts OrderOptions) Builder {
	b.req.Order = &Ordering{Column: column, Ascending: opts.Ascending}
	return b
}

// Limit caps the number of rows; n <= 0 means no cap.
func (b Builder) Limit(n int) Builder {
	if n < 0 {
		n = 0
	}
	b.req.Limit = n
	return b
}

// Single asks for exactly one row, returned as an object rather than an array.
func (b Builder) Single() Builder {
	b.req.Single = true
	return b
}

// Request returns a copy of the accumulated request.
func (b Builder) Request() Request {
	req := b.req
	req.Filters = slices.Clone(b.req.Filters)
	if b.req.Order != nil {
		o := *b.req.Order
		req.Order = &o
	}
	return req
}

// Execute resolves the request.
func (b Builder) Execute(ctx context.Context) (Result, error) {
	return b.exec.Execute(ctx, b.Request())
}

// Insert writes values (a slice of records) into the builder's table.
func (b Builder) Insert(ctx context.Context, values any) (Result, error) {
	return b.exec.Insert(ctx, b.req.Table, values)
}
