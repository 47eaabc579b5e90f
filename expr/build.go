package expr

import "reflect"

// Empty returns the literal-true placeholder.
func Empty() Expression {
	return &Placeholder{}
}

// IsEmpty reports whether e is nil or the literal-true placeholder.
func IsEmpty(e Expression) bool {
	if e == nil {
		return true
	}
	_, ok := e.(*Placeholder)
	return ok
}

// Col returns an unqualified column reference.
func Col(name string) *ColumnRef {
	return &ColumnRef{Name: name}
}

// TableCol returns a column reference qualified by table.
func TableCol(table, name string) *ColumnRef {
	return &ColumnRef{Table: table, Name: name}
}

// Lit wraps a value as a bound literal.
func Lit(v any) *Literal {
	return &Literal{Value: v}
}

// Value returns v unchanged if it is already an Expression and a Literal
// otherwise.
func Value(v any) Expression {
	if e, ok := v.(Expression); ok && e != nil {
		return e
	}
	return Lit(v)
}

// Compare builds a binary comparison. Right is passed through Value.
func Compare(op CompareOp, left Expression, right any) Expression {
	return &Comparison{Op: op, Left: left, Right: Value(right)}
}

// Eq builds left = right. A nil right operand encodes as IS NULL.
func Eq(left Expression, right any) Expression { return Compare(OpEqual, left, right) }

// Ne builds left <> right.
func Ne(left Expression, right any) Expression { return Compare(OpNotEqual, left, right) }

// Lt builds left < right.
func Lt(left Expression, right any) Expression { return Compare(OpLess, left, right) }

// Le builds left <= right.
func Le(left Expression, right any) Expression { return Compare(OpLessEqual, left, right) }

// Gt builds left > right.
func Gt(left Expression, right any) Expression { return Compare(OpGreater, left, right) }

// Ge builds left >= right.
func Ge(left Expression, right any) Expression { return Compare(OpGreaterEqual, left, right) }

// Is builds left IS right.
func Is(left Expression, right any) Expression { return Compare(OpIs, left, right) }

// IsNot builds left IS NOT right.
func IsNot(left Expression, right any) Expression { return Compare(OpIsNot, left, right) }

// InRange builds an inclusive BETWEEN.
func InRange(input Expression, lower, upper any) Expression {
	return &Between{Input: input, Lower: Value(lower), Upper: Value(upper)}
}

// In builds a membership test against values.
func In(input Expression, values ...any) Expression {
	list := make([]Expression, 0, len(values))
	for _, v := range values {
		list = append(list, Value(v))
	}
	return &InList{Input: input, Values: list}
}

// Contains builds a substring match.
func Contains(input Expression, pattern any) Expression {
	return &Match{Mode: MatchContains, Input: input, Pattern: Value(pattern)}
}

// StartsWith builds a prefix match.
func StartsWith(input Expression, pattern any) Expression {
	return &Match{Mode: MatchPrefix, Input: input, Pattern: Value(pattern)}
}

// EndsWith builds a suffix match.
func EndsWith(input Expression, pattern any) Expression {
	return &Match{Mode: MatchSuffix, Input: input, Pattern: Value(pattern)}
}

// Func builds a function call.
func Func(name string, args ...Expression) Expression {
	return &Function{Name: name, Args: args}
}

// Lower builds lower(e).
func Lower(e Expression) Expression {
	return Func("lower", e)
}

// SQL builds a raw fragment with '?' argument markers.
func SQL(sql string, args ...any) Expression {
	return &Raw{SQL: sql, Args: args}
}

// And joins predicates with AND. See combine.
func And(children ...Expression) Expression {
	return combine(OpAnd, children)
}

// Or joins predicates with OR. See combine.
func Or(children ...Expression) Expression {
	return combine(OpOr, children)
}

// combine drops placeholders and flattens nested conjunctions of the same
// operator. No survivors yield the placeholder, one survivor is returned
// unchanged.
func combine(op ConjunctionOp, children []Expression) Expression {
	var kept []Expression
	for _, child := range children {
		if IsEmpty(child) {
			continue
		}
		if c, ok := child.(*Conjunction); ok && c.Op == op {
			kept = append(kept, c.Children...)
			continue
		}
		kept = append(kept, child)
	}

	switch len(kept) {
	case 0:
		return Empty()
	case 1:
		return kept[0]
	}
	return &Conjunction{Op: op, Children: kept}
}

// Group marks e as a single operand. Placeholders and already grouped
// expressions are returned unchanged.
func Group(e Expression) Expression {
	if IsEmpty(e) {
		return Empty()
	}
	if _, ok := e.(*Grouping); ok {
		return e
	}
	return &Grouping{Inner: e}
}

// Asc orders by e ascending.
func Asc(e Expression) Order { return Order{Expr: e} }

// Desc orders by e descending.
func Desc(e Expression) Order { return Order{Expr: e, Desc: true} }

// Equal reports whether a and b are structurally identical trees.
// All placeholders are equal to each other.
func Equal(a, b Expression) bool {
	if IsEmpty(a) || IsEmpty(b) {
		return IsEmpty(a) && IsEmpty(b)
	}
	return reflect.DeepEqual(a, b)
}
