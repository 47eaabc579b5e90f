// Package operator provides the operator algebra that turns a column and a
// list of parameters into a predicate.
//
// Operators are stateless values. Bind one to its operands with New, which
// validates the parameters, and render the predicate with ToSQL:
//
//	b, err := operator.New(operator.Range, "age", []any{18, 65})
//	if err != nil {
//	    return err // *InvalidParamError
//	}
//	pred := b.ToSQL() // age BETWEEN 18 AND 65
package operator

import (
	"errors"
	"fmt"

	"github.com/hugr-lab/sqlfilter/expr"
)

// ErrInvalidParam is matched by every *InvalidParamError.
var ErrInvalidParam = errors.New("invalid operator params")

// InvalidParamError reports parameters an operator cannot accept.
type InvalidParamError struct {
	Operator string
	Message  string
}

func (e *InvalidParamError) Error() string {
	return e.Message
}

func (e *InvalidParamError) Unwrap() error {
	return ErrInvalidParam
}

// Operator builds a predicate from a left operand and parameters.
// Implementations MUST be stateless and goroutine-safe.
type Operator interface {
	// Name identifies the operator in error messages (e.g., "Range").
	Name() string

	// CheckParams validates the parameter list.
	// Returns *InvalidParamError if the operator cannot accept params.
	CheckParams(params []any) error

	// Build returns the predicate for left and params.
	// params MUST have passed CheckParams.
	Build(left expr.Expression, params []any) expr.Expression
}

// Bound is an operator bound to its operands.
type Bound struct {
	op     Operator
	left   expr.Expression
	params []any
}

// New binds op to a left operand and parameters.
//
// left is either an expr.Expression or a column name. params MUST be a
// []any; any other type fails with *InvalidParamError, as do parameters
// rejected by op.CheckParams.
func New(op Operator, left any, params any) (*Bound, error) {
	if op == nil {
		return nil, &InvalidParamError{Message: "operator is required"}
	}

	var l expr.Expression
	switch v := left.(type) {
	case string:
		l = expr.Col(v)
	case expr.Expression:
		l = v
	default:
		return nil, &InvalidParamError{
			Operator: op.Name(),
			Message:  fmt.Sprintf("%s left operand must be a column name or an expression, got %T.", op.Name(), left),
		}
	}

	var list []any
	switch p := params.(type) {
	case nil:
	case []any:
		list = p
	default:
		return nil, &InvalidParamError{
			Operator: op.Name(),
			Message:  fmt.Sprintf("%s.params expected to be a list, got %T.", op.Name(), params),
		}
	}

	if err := op.CheckParams(list); err != nil {
		return nil, err
	}
	return &Bound{op: op, left: l, params: list}, nil
}

// Operator returns the bound operator.
func (b *Bound) Operator() Operator {
	return b.op
}

// Left returns the left operand.
func (b *Bound) Left() expr.Expression {
	return b.left
}

// Params returns the parameters.
func (b *Bound) Params() []any {
	return b.params
}

// ToSQL renders the predicate.
func (b *Bound) ToSQL() expr.Expression {
	return b.op.Build(b.left, b.params)
}

// Apply binds op and renders the predicate in one step.
func Apply(op Operator, left any, params any) (expr.Expression, error) {
	b, err := New(op, left, params)
	if err != nil {
		return nil, err
	}
	return b.ToSQL(), nil
}

// exactly checks that params has n values.
func exactly(name string, params []any, n int) error {
	if len(params) == n {
		return nil
	}
	word := "values"
	if n == 1 {
		word = "value"
	}
	return &InvalidParamError{
		Operator: name,
		Message:  fmt.Sprintf("%s.params should have exactly %d %s, got %d.", name, n, word, len(params)),
	}
}
