package sqlexec

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hugr-lab/sqlfilter/expr"
	"github.com/hugr-lab/sqlfilter/model"
	"github.com/hugr-lab/sqlfilter/query"
)

// Query is an immutable SELECT over a model.
type Query struct {
	session *Session
	model   model.Model
	preds   []expr.Expression
	joins   []model.Join
	orders  []expr.Order
	limit   int
	offset  int
}

var (
	_ query.Query              = (*Query)(nil)
	_ query.CapabilityReporter = (*Query)(nil)
)

func (q *Query) clone() *Query {
	c := *q
	c.preds = append([]expr.Expression(nil), q.preds...)
	c.joins = append([]model.Join(nil), q.joins...)
	c.orders = append([]expr.Order(nil), q.orders...)
	return &c
}

// Model implements query.Query interface.
func (q *Query) Model() model.Model {
	return q.model
}

// Capabilities implements query.CapabilityReporter interface.
func (q *Query) Capabilities() expr.Capabilities {
	return expr.Capabilities{PlaceholderLeftOperand: true}
}

// Filter implements query.Query interface.
func (q *Query) Filter(pred expr.Expression) query.Query {
	c := q.clone()
	if !expr.IsEmpty(pred) {
		c.preds = append(c.preds, pred)
	}
	return c
}

// Join implements query.Query interface.
func (q *Query) Join(j model.Join) query.Query {
	c := q.clone()
	c.joins = append(c.joins, j)
	return c
}

// Joined implements query.Query interface.
func (q *Query) Joined(target model.Model) bool {
	for _, j := range q.joins {
		if model.Same(j.Target, target) {
			return true
		}
	}
	return false
}

// Joins returns the joins of the query in order.
func (q *Query) Joins() []model.Join {
	return q.joins
}

// OrderBy implements query.Query interface.
func (q *Query) OrderBy(orders ...expr.Order) query.Query {
	c := q.clone()
	c.orders = append(c.orders, orders...)
	return c
}

// Orders returns the ordering terms of the query.
func (q *Query) Orders() []expr.Order {
	return q.orders
}

// Limit implements query.Query interface. A negative n removes the limit.
func (q *Query) Limit(n int) query.Query {
	c := q.clone()
	c.limit = n
	return c
}

// Offset implements query.Query interface.
func (q *Query) Offset(n int) query.Query {
	c := q.clone()
	c.offset = n
	return c
}

// Where returns the combined predicate of the query.
func (q *Query) Where() expr.Expression {
	return expr.And(q.preds...)
}

// SQL compiles the query to a statement and its arguments.
func (q *Query) SQL() (string, []any) {
	enc := q.session.enc
	table := expr.QuoteIdentifier(q.model.Name())

	var sb strings.Builder
	var args []any
	sb.WriteString("SELECT " + table + ".* FROM " + table)

	for _, j := range q.joins {
		var on string
		on, args = enc.EncodeArgs(j.On, args)
		sb.WriteString(" JOIN " + expr.QuoteIdentifier(j.Target.Name()))
		if on != "" {
			sb.WriteString(" ON " + on)
		}
	}

	var where string
	where, args = enc.EncodeArgs(q.Where(), args)
	if where != "" {
		sb.WriteString(" WHERE " + where)
	}

	var order string
	order, args = enc.EncodeOrderArgs(q.orders, args)
	if order != "" {
		sb.WriteString(" ORDER BY " + order)
	}

	if q.limit >= 0 {
		sb.WriteString(" LIMIT " + strconv.Itoa(q.limit))
	}
	if q.offset > 0 {
		sb.WriteString(" OFFSET " + strconv.Itoa(q.offset))
	}
	return sb.String(), args
}

// Count implements query.Query interface.
func (q *Query) Count(ctx context.Context) (int, error) {
	stmt, args := q.SQL()
	stmt = "SELECT count(*) FROM (" + stmt + ") AS counted"
	q.session.logger.Debug("Executing count", "table", q.model.Name(), "sql", stmt, "args", len(args))

	var n int64
	if err := q.session.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", q.model.Name(), err)
	}
	return int(n), nil
}

// All implements query.Query interface.
func (q *Query) All(ctx context.Context) ([]query.Row, error) {
	stmt, args := q.SQL()
	q.session.logger.Debug("Executing query", "table", q.model.Name(), "sql", stmt, "args", len(args))

	rows, err := q.session.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.model.Name(), err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.model.Name(), err)
	}

	var result []query.Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", q.model.Name(), err)
		}
		row := make(query.Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", q.model.Name(), err)
	}
	return result, nil
}
