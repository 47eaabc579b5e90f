package expr

import (
	"strconv"
	"strings"
)

// SQLEncoder encodes predicate trees to parameterised SQL.
// It is stateless between calls and safe for concurrent use.
type SQLEncoder struct {
	dialect Dialect
	opts    *EncoderOptions
}

// NewSQLEncoder creates a new SQL encoder for the dialect.
// If opts is nil, default options are used.
func NewSQLEncoder(dialect Dialect, opts *EncoderOptions) *SQLEncoder {
	if opts == nil {
		opts = &EncoderOptions{}
	}
	return &SQLEncoder{dialect: dialect, opts: opts}
}

// Dialect returns the dialect the encoder targets.
func (e *SQLEncoder) Dialect() Dialect {
	return e.dialect
}

// Encode converts an expression to SQL.
// Returns empty string if the expression is a placeholder.
func (e *SQLEncoder) Encode(x Expression) (string, []any) {
	return e.EncodeArgs(x, nil)
}

// EncodeArgs encodes x after the arguments already collected in args.
// Positional parameters continue the numbering of args.
func (e *SQLEncoder) EncodeArgs(x Expression, args []any) (string, []any) {
	s := &encodeState{enc: e, args: args}
	return s.encode(x), s.args
}

// EncodeOrder converts ordering terms to the body of an ORDER BY clause.
func (e *SQLEncoder) EncodeOrder(orders []Order) (string, []any) {
	return e.EncodeOrderArgs(orders, nil)
}

// EncodeOrderArgs is EncodeOrder continuing the numbering of args.
func (e *SQLEncoder) EncodeOrderArgs(orders []Order, args []any) (string, []any) {
	s := &encodeState{enc: e, args: args}
	var parts []string
	for _, o := range orders {
		encoded := s.encode(o.Expr)
		if encoded == "" {
			continue
		}
		if o.Desc {
			parts = append(parts, encoded+" DESC")
		} else {
			parts = append(parts, encoded+" ASC")
		}
	}
	return strings.Join(parts, ", "), s.args
}

// encodeState carries the arguments of a single encoding pass.
type encodeState struct {
	enc  *SQLEncoder
	args []any
}

func (s *encodeState) encode(x Expression) string {
	switch ex := x.(type) {
	case nil, *Placeholder:
		return ""
	case *ColumnRef:
		return s.encodeColumnRef(ex)
	case *Literal:
		if ex.Value == nil {
			return "NULL"
		}
		return s.bind(ex.Value)
	case *Comparison:
		return s.encodeComparison(ex)
	case *Between:
		return s.encodeBetween(ex)
	case *InList:
		return s.encodeIn(ex)
	case *Match:
		return s.encodeMatch(ex)
	case *Function:
		return s.encodeFunction(ex)
	case *Conjunction:
		return s.encodeConjunction(ex)
	case *Grouping:
		return s.encodeGrouping(ex)
	case *Raw:
		return s.encodeRaw(ex)
	default:
		return ""
	}
}

// bind records v as an argument and returns its parameter marker.
func (s *encodeState) bind(v any) string {
	s.args = append(s.args, v)
	if s.enc.dialect == PostgreSQL {
		return "$" + strconv.Itoa(len(s.args))
	}
	return "?"
}

func (s *encodeState) encodeColumnRef(c *ColumnRef) string {
	opts := s.enc.opts
	if opts.ColumnExpressions != nil {
		if c.Table != "" {
			if expr, ok := opts.ColumnExpressions[c.Table+"."+c.Name]; ok {
				return expr
			}
		}
		if expr, ok := opts.ColumnExpressions[c.Name]; ok {
			return expr
		}
	}

	name := c.Name
	if opts.ColumnMapping != nil {
		if mapped, ok := opts.ColumnMapping[name]; ok {
			name = mapped
		}
	}

	if c.Table != "" {
		return QuoteIdentifier(c.Table) + "." + QuoteIdentifier(name)
	}
	return QuoteIdentifier(name)
}

func (s *encodeState) encodeComparison(c *Comparison) string {
	left := s.encode(c.Left)
	if left == "" {
		return ""
	}

	if lit, ok := c.Right.(*Literal); ok {
		switch v := lit.Value.(type) {
		case nil:
			switch c.Op {
			case OpEqual, OpIs:
				return left + " IS NULL"
			case OpNotEqual, OpIsNot:
				return left + " IS NOT NULL"
			}
		case bool:
			switch c.Op {
			case OpIs:
				return left + " IS " + strings.ToUpper(strconv.FormatBool(v))
			case OpIsNot:
				return left + " IS NOT " + strings.ToUpper(strconv.FormatBool(v))
			}
		}
	}

	right := s.encode(c.Right)
	if right == "" {
		return ""
	}

	switch c.Op {
	case OpIs:
		return left + " IS NOT DISTINCT FROM " + right
	case OpIsNot:
		return left + " IS DISTINCT FROM " + right
	}
	return left + " " + string(c.Op) + " " + right
}

func (s *encodeState) encodeBetween(b *Between) string {
	input := s.encode(b.Input)
	lower := s.encode(b.Lower)
	upper := s.encode(b.Upper)

	if input == "" || lower == "" || upper == "" {
		return ""
	}
	return input + " BETWEEN " + lower + " AND " + upper
}

func (s *encodeState) encodeIn(in *InList) string {
	input := s.encode(in.Input)
	if input == "" {
		return ""
	}
	if len(in.Values) == 0 {
		return "FALSE"
	}

	values := make([]string, 0, len(in.Values))
	for _, v := range in.Values {
		encoded := s.encode(v)
		if encoded == "" {
			return ""
		}
		values = append(values, encoded)
	}
	return input + " IN (" + strings.Join(values, ", ") + ")"
}

func (s *encodeState) encodeMatch(m *Match) string {
	input := s.encode(m.Input)
	pattern := s.encode(m.Pattern)
	if input == "" || pattern == "" {
		return ""
	}

	switch m.Mode {
	case MatchPrefix:
		return input + " LIKE (" + pattern + " || '%')"
	case MatchSuffix:
		return input + " LIKE ('%' || " + pattern + ")"
	default:
		return input + " LIKE ('%' || " + pattern + " || '%')"
	}
}

func (s *encodeState) encodeFunction(f *Function) string {
	args := make([]string, 0, len(f.Args))
	for _, child := range f.Args {
		encoded := s.encode(child)
		if encoded == "" {
			return ""
		}
		args = append(args, encoded)
	}
	return f.Name + "(" + strings.Join(args, ", ") + ")"
}

func (s *encodeState) encodeConjunction(c *Conjunction) string {
	var parts []string
	for _, child := range c.Children {
		encoded := s.encode(child)
		if encoded != "" {
			parts = append(parts, encoded)
		}
	}

	if len(parts) == 0 {
		return ""
	}

	if len(parts) == 1 {
		return parts[0]
	}

	return "(" + strings.Join(parts, " "+string(c.Op)+" ") + ")"
}

func (s *encodeState) encodeGrouping(g *Grouping) string {
	inner := s.encode(g.Inner)
	if inner == "" {
		return ""
	}
	// Conjunctions carry their own parentheses.
	if _, ok := g.Inner.(*Conjunction); ok {
		return inner
	}
	return "(" + inner + ")"
}

func (s *encodeState) encodeRaw(r *Raw) string {
	base := len(s.args)
	s.args = append(s.args, r.Args...)
	if s.enc.dialect != PostgreSQL || len(r.Args) == 0 {
		return r.SQL
	}

	var sb strings.Builder
	var quote byte
	n := base
	for i := 0; i < len(r.SQL); i++ {
		c := r.SQL[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '?':
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
