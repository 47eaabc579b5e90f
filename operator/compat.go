package operator

import "github.com/hugr-lab/sqlfilter/expr"

// Combine joins left and right with op, the combinator used for sibling
// predicates.
//
// Some executors cannot take the literal-true placeholder as the left
// operand of a combination. When caps reports so, two placeholders collapse
// to one and a placeholder on the left is swapped to the right. This is the
// only place that accounts for that limitation.
func Combine(caps expr.Capabilities, op Operator, left, right expr.Expression) (expr.Expression, error) {
	if !caps.PlaceholderLeftOperand {
		if expr.IsEmpty(left) && expr.IsEmpty(right) {
			return expr.Empty(), nil
		}
		if expr.IsEmpty(left) {
			left, right = right, left
		}
	}
	if left == nil {
		left = expr.Empty()
	}
	if right == nil {
		right = expr.Empty()
	}
	return Apply(op, left, []any{right})
}
