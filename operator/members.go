package operator

import (
	"fmt"

	"github.com/hugr-lab/sqlfilter/expr"
)

var (
	// Equals builds column = value. A nil value builds IS NULL.
	Equals Operator = compareOperator{name: "Equals", op: expr.OpEqual}
	// Is builds column IS value.
	Is Operator = compareOperator{name: "Is", op: expr.OpIs}
	// IsNot builds column IS NOT value.
	IsNot Operator = compareOperator{name: "IsNot", op: expr.OpIsNot}
	// LT builds column < value.
	LT Operator = compareOperator{name: "LT", op: expr.OpLess}
	// LTE builds column <= value.
	LTE Operator = compareOperator{name: "LTE", op: expr.OpLessEqual}
	// GT builds column > value.
	GT Operator = compareOperator{name: "GT", op: expr.OpGreater}
	// GTE builds column >= value.
	GTE Operator = compareOperator{name: "GTE", op: expr.OpGreaterEqual}

	// IsEmpty builds column IS NULL. Parameters are ignored.
	IsEmpty Operator = nullOperator{name: "IsEmpty", op: expr.OpIs}
	// IsNotEmpty builds column IS NOT NULL. Parameters are ignored.
	IsNotEmpty Operator = nullOperator{name: "IsNotEmpty", op: expr.OpIsNot}

	// Range builds an inclusive BETWEEN from exactly two parameters.
	Range Operator = rangeOperator{}
	// In builds a membership test against all parameters.
	In Operator = inOperator{}

	// And joins the left operand and all parameters with AND.
	And Operator = logicalOperator{name: "And", op: expr.OpAnd}
	// Or joins the left operand and all parameters with OR.
	Or Operator = logicalOperator{name: "Or", op: expr.OpOr}

	Contains    Operator = matchOperator{name: "Contains", mode: expr.MatchContains}
	IContains   Operator = matchOperator{name: "IContains", mode: expr.MatchContains, fold: true}
	StartsWith  Operator = matchOperator{name: "StartsWith", mode: expr.MatchPrefix}
	IStartsWith Operator = matchOperator{name: "IStartsWith", mode: expr.MatchPrefix, fold: true}
	EndsWith    Operator = matchOperator{name: "EndsWith", mode: expr.MatchSuffix}
	IEndsWith   Operator = matchOperator{name: "IEndsWith", mode: expr.MatchSuffix, fold: true}
)

var registry = map[string]Operator{
	"equals":       Equals,
	"is":           Is,
	"is_not":       IsNot,
	"is_empty":     IsEmpty,
	"is_not_empty": IsNotEmpty,
	"lt":           LT,
	"lte":          LTE,
	"gt":           GT,
	"gte":          GTE,
	"range":        Range,
	"in":           In,
	"and":          And,
	"or":           Or,
	"contains":     Contains,
	"icontains":    IContains,
	"startswith":   StartsWith,
	"istartswith":  IStartsWith,
	"endswith":     EndsWith,
	"iendswith":    IEndsWith,
}

// Lookup returns the built-in operator registered under name
// (e.g., "icontains", "is_not_empty").
func Lookup(name string) (Operator, bool) {
	op, ok := registry[name]
	return op, ok
}

type compareOperator struct {
	name string
	op   expr.CompareOp
}

func (o compareOperator) Name() string { return o.name }

func (o compareOperator) CheckParams(params []any) error {
	return exactly(o.name, params, 1)
}

func (o compareOperator) Build(left expr.Expression, params []any) expr.Expression {
	return expr.Compare(o.op, left, params[0])
}

type nullOperator struct {
	name string
	op   expr.CompareOp
}

func (o nullOperator) Name() string { return o.name }

func (o nullOperator) CheckParams(params []any) error {
	if len(params) > 1 {
		return &InvalidParamError{
			Operator: o.name,
			Message:  fmt.Sprintf("%s.params should have at most 1 value, got %d.", o.name, len(params)),
		}
	}
	return nil
}

func (o nullOperator) Build(left expr.Expression, _ []any) expr.Expression {
	return expr.Compare(o.op, left, nil)
}

type rangeOperator struct{}

func (rangeOperator) Name() string { return "Range" }

func (o rangeOperator) CheckParams(params []any) error {
	return exactly(o.Name(), params, 2)
}

func (rangeOperator) Build(left expr.Expression, params []any) expr.Expression {
	return expr.InRange(left, params[0], params[1])
}

type inOperator struct{}

func (inOperator) Name() string { return "In" }

func (inOperator) CheckParams([]any) error { return nil }

func (inOperator) Build(left expr.Expression, params []any) expr.Expression {
	return expr.In(left, params...)
}

type logicalOperator struct {
	name string
	op   expr.ConjunctionOp
}

func (o logicalOperator) Name() string { return o.name }

func (o logicalOperator) CheckParams(params []any) error {
	if len(params) == 0 {
		return &InvalidParamError{
			Operator: o.name,
			Message:  fmt.Sprintf("%s.params should have at least 1 value, got 0.", o.name),
		}
	}
	return nil
}

func (o logicalOperator) Build(left expr.Expression, params []any) expr.Expression {
	children := make([]expr.Expression, 0, len(params)+1)
	children = append(children, left)
	for _, p := range params {
		children = append(children, expr.Value(p))
	}
	if o.op == expr.OpOr {
		return expr.Or(children...)
	}
	return expr.And(children...)
}

type matchOperator struct {
	name string
	mode expr.MatchMode
	fold bool
}

func (o matchOperator) Name() string { return o.name }

func (o matchOperator) CheckParams(params []any) error {
	return exactly(o.name, params, 1)
}

func (o matchOperator) Build(left expr.Expression, params []any) expr.Expression {
	pattern := expr.Value(params[0])
	if o.fold {
		left = expr.Lower(left)
		pattern = expr.Lower(pattern)
	}
	return &expr.Match{Mode: o.mode, Input: left, Pattern: pattern}
}
