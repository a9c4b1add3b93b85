// Package query implements the tagged-request builder used to read and write
// backend tables. A Builder accumulates {table, filters, ordering, limit}
// and is resolved by a single Execute call against a pluggable Executor.
package query

import (
	"context"
	"fmt"
)

// AllColumns is the default projection.
const AllColumns = "*"

// Filter is an equality predicate on one column.
type Filter struct {
	Column string
	Value  any
}

// Matches reports whether row holds Value in Column. Filters decoded from
// a query string are always strings, so non-nil values are compared by
// their string form: "2" matches both "2" and 2. nil matches only nil.
func (f Filter) Matches(row map[string]any) bool {
	v, ok := row[f.Column]
	if !ok {
		return false
	}
	if v == nil || f.Value == nil {
		return v == nil && f.Value == nil
	}
	return fmt.Sprint(v) == fmt.Sprint(f.Value)
}

// OrderOptions mirrors the options object accepted by order().
type OrderOptions struct {
	Ascending bool
}

var (
	Asc  = OrderOptions{Ascending: true}
	Desc = OrderOptions{Ascending: false}
)

// Ordering is the sort requested for a read.
type Ordering struct {
	Column    string
	Ascending bool
}

// Request is the accumulated, immutable description of a read.
type Request struct {
	Table   string
	Columns string
	Filters []Filter
	Order   *Ordering
	Limit   int
	Single  bool
}

// Executor resolves requests. Every backend strategy implements it.
type Executor interface {
	Execute(ctx context.Context, req Request) (Result, error)
	Insert(ctx context.Context, table string, values any) (Result, error)
}
