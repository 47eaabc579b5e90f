// Package query defines the query executor that filters compose calls
// into, and the session that provides base queries.
//
// Filters never execute SQL themselves: they build a predicate, joins and
// ordering and hand them to a Query. The sqlexec package provides a
// database/sql implementation.
package query

import (
	"context"

	"github.com/hugr-lab/sqlfilter/expr"
	"github.com/hugr-lab/sqlfilter/model"
)

// Row is a materialised result row keyed by column name.
type Row map[string]any

// Query is an immutable query over a model. Every builder method returns a
// new Query and leaves the receiver unchanged.
// Implementations MUST be goroutine-safe.
type Query interface {
	// Model returns the model the query selects from.
	Model() model.Model

	// Filter adds a predicate. Placeholders are ignored.
	Filter(pred expr.Expression) Query

	// Join adds an inner join.
	Join(j model.Join) Query

	// Joined reports whether target is already joined.
	Joined(target model.Model) bool

	// OrderBy appends ordering terms.
	OrderBy(orders ...expr.Order) Query

	// Limit caps the number of rows returned.
	Limit(n int) Query

	// Offset skips the first n rows.
	Offset(n int) Query

	// Count returns the number of rows All would return.
	Count(ctx context.Context) (int, error)

	// All executes the query.
	All(ctx context.Context) ([]Row, error)
}

// Session provides base queries for models.
type Session interface {
	// Query returns an unfiltered query over m.
	Query(m model.Model) Query
}

// CapabilityReporter is implemented by queries that describe executor
// limits. Queries that do not implement it get expr.Capabilities{}.
type CapabilityReporter interface {
	Capabilities() expr.Capabilities
}

// CapabilitiesOf returns the capabilities reported by q.
func CapabilitiesOf(q Query) expr.Capabilities {
	if r, ok := q.(CapabilityReporter); ok {
		return r.Capabilities()
	}
	return expr.Capabilities{}
}
