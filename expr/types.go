package expr

// Kind identifies the category of an expression node.
type Kind string

const (
	KindPlaceholder Kind = "PLACEHOLDER"
	KindColumnRef   Kind = "COLUMN_REF"
	KindLiteral     Kind = "LITERAL"
	KindComparison  Kind = "COMPARISON"
	KindBetween     Kind = "BETWEEN"
	KindIn          Kind = "IN"
	KindMatch       Kind = "MATCH"
	KindFunction    Kind = "FUNCTION"
	KindConjunction Kind = "CONJUNCTION"
	KindGrouping    Kind = "GROUPING"
	KindRaw         Kind = "RAW"
)

// CompareOp is a binary comparison operator.
type CompareOp string

const (
	OpEqual        CompareOp = "="
	OpNotEqual     CompareOp = "<>"
	OpLess         CompareOp = "<"
	OpLessEqual    CompareOp = "<="
	OpGreater      CompareOp = ">"
	OpGreaterEqual CompareOp = ">="
	OpIs           CompareOp = "IS"
	OpIsNot        CompareOp = "IS NOT"
)

// ConjunctionOp joins the children of a Conjunction.
type ConjunctionOp string

const (
	OpAnd ConjunctionOp = "AND"
	OpOr  ConjunctionOp = "OR"
)

// MatchMode selects where a Match pattern is anchored.
type MatchMode string

const (
	MatchContains MatchMode = "CONTAINS"
	MatchPrefix   MatchMode = "PREFIX"
	MatchSuffix   MatchMode = "SUFFIX"
)

// Expression is a node of a predicate tree.
// The set of implementations is closed; use type switches on the
// concrete pointer types to inspect a tree.
type Expression interface {
	// Kind returns the category of the node.
	Kind() Kind

	isExpression()
}

// Placeholder is the literal-true fragment. It means "no constraint" and
// disappears when combined with any other expression.
type Placeholder struct{}

// ColumnRef references a column, optionally qualified by its table.
type ColumnRef struct {
	Table string
	Name  string
}

// Literal is a bound value. Encoders emit it as a query argument.
type Literal struct {
	Value any
}

// Comparison compares two operands.
type Comparison struct {
	Op    CompareOp
	Left  Expression
	Right Expression
}

// Between is an inclusive range check.
type Between struct {
	Input Expression
	Lower Expression
	Upper Expression
}

// InList is a membership test. An empty Values list never matches.
type InList struct {
	Input  Expression
	Values []Expression
}

// Match is a LIKE pattern test anchored according to Mode. The pattern
// operand is bound as a parameter and not escaped, so '%' and '_' in it
// keep their LIKE meaning.
type Match struct {
	Mode    MatchMode
	Input   Expression
	Pattern Expression
}

// Function is a scalar function call.
type Function struct {
	Name string
	Args []Expression
}

// Conjunction joins two or more predicates.
type Conjunction struct {
	Op       ConjunctionOp
	Children []Expression
}

// Grouping marks a predicate that must be treated as one operand.
type Grouping struct {
	Inner Expression
}

// Raw is a hand-written SQL fragment. Arguments are referenced with '?'
// and renumbered for dialects with positional parameters. A '?' inside a
// quoted string or identifier is not a parameter.
type Raw struct {
	SQL  string
	Args []any
}

// Order is a single ORDER BY term.
type Order struct {
	Expr Expression
	Desc bool
}

// Capabilities describes limits of the query executor that predicates
// are applied to.
type Capabilities struct {
	// PlaceholderLeftOperand reports whether the executor accepts the
	// literal-true placeholder as the left operand of AND/OR.
	PlaceholderLeftOperand bool
}

func (*Placeholder) Kind() Kind { return KindPlaceholder }
func (*ColumnRef) Kind() Kind   { return KindColumnRef }
func (*Literal) Kind() Kind     { return KindLiteral }
func (*Comparison) Kind() Kind  { return KindComparison }
func (*Between) Kind() Kind     { return KindBetween }
func (*InList) Kind() Kind      { return KindIn }
func (*Match) Kind() Kind       { return KindMatch }
func (*Function) Kind() Kind    { return KindFunction }
func (*Conjunction) Kind() Kind { return KindConjunction }
func (*Grouping) Kind() Kind    { return KindGrouping }
func (*Raw) Kind() Kind         { return KindRaw }

func (*Placeholder) isExpression() {}
func (*ColumnRef) isExpression()   {}
func (*Literal) isExpression()     {}
func (*Comparison) isExpression()  {}
func (*Between) isExpression()     {}
func (*InList) isExpression()      {}
func (*Match) isExpression()       {}
func (*Function) isExpression()    {}
func (*Conjunction) isExpression() {}
func (*Grouping) isExpression()    {}
func (*Raw) isExpression()         {}
