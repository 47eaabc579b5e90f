// Package field provides filter field descriptors: value coercion, column
// and foreign-key resolution, and single-field predicate construction.
package field

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/hugr-lab/sqlfilter/expr"
	"github.com/hugr-lab/sqlfilter/model"
	"github.com/hugr-lab/sqlfilter/operator"
)

// Source is the filter instance a field reads its value from.
type Source interface {
	// Name returns the filter name.
	Name() string

	// Data returns the raw input.
	Data() map[string]any

	// ValidatedData returns the coerced input, keyed by data source name.
	ValidatedData() map[string]any

	// Method returns a registered filter method by name.
	Method(name string) (any, bool)

	// Logger returns the filter logger.
	Logger() *slog.Logger
}

// Coerce converts a raw input value to the field's type.
type Coerce func(value any) (any, error)

// Options configures a field. All fields are OPTIONAL.
type Options struct {
	// FieldName is the model column to filter on when it differs from the
	// public name. A single dot names a column reached through a
	// relationship of the model: "user.first_name".
	FieldName string

	// Lookup builds the predicate. Default: operator.Equals.
	Lookup operator.Operator

	// Join names a relationship of the model whose join is applied
	// whenever this field participates in the filter.
	Join string

	// Column overrides the filtered column. A string is an unqualified
	// column name; an expr.Expression is used as is.
	Column any

	// DataSourceName is the input key holding the value.
	// Default: the public name the field is declared with.
	DataSourceName string

	// AllowNone makes an explicit nil input a value instead of "absent".
	AllowNone bool
}

// Field is a filterable attribute.
//
// A Field is created when a filter is declared and bound to its model and
// public name once, when the filter is built. It is immutable after Bind.
type Field struct {
	opts     Options
	typeName string
	coerce   Coerce
	err      error

	name    string
	column  expr.Expression
	joins   []model.Join
	foreign model.Model
	bound   bool
}

// New creates a field that passes values through unchanged.
func New(opts Options) *Field {
	return Typed("", nil, opts)
}

// Typed creates a field that coerces values with fn. typeName is used in
// the default validation message.
func Typed(typeName string, fn Coerce, opts Options) *Field {
	f := &Field{opts: opts, typeName: typeName, coerce: fn}
	if opts.Lookup == nil {
		f.opts.Lookup = operator.Equals
	}
	if strings.Count(opts.FieldName, ".") > 1 {
		f.err = fmt.Errorf("%w: %s", ErrPathTooDeep, opts.FieldName)
	}
	switch opts.Column.(type) {
	case nil, string, expr.Expression:
	default:
		f.err = fmt.Errorf("field column must be a string or an expression, got %T", opts.Column)
	}
	return f
}

// Err returns the construction error of the field, if any.
func (f *Field) Err() error {
	return f.err
}

// Name returns the public name the field is bound with.
func (f *Field) Name() string {
	return f.name
}

// FieldName returns the configured model attribute, possibly dotted.
func (f *Field) FieldName() string {
	return f.opts.FieldName
}

// TypeName returns the name of the coerced type, empty for untyped fields.
func (f *Field) TypeName() string {
	return f.typeName
}

// Lookup returns the predicate operator.
func (f *Field) Lookup() operator.Operator {
	return f.opts.Lookup
}

// AllowNone reports whether nil input is a filter value.
func (f *Field) AllowNone() bool {
	return f.opts.AllowNone
}

// IsForeignKey reports whether the field filters on a related model.
func (f *Field) IsForeignKey() bool {
	return strings.Contains(f.opts.FieldName, ".")
}

// ForeignModel returns the related model of a foreign-key field after Bind.
func (f *Field) ForeignModel() model.Model {
	return f.foreign
}

// Attribute returns the model attribute that must exist for a
// non-foreign-key field.
func (f *Field) Attribute() string {
	if f.opts.FieldName != "" {
		return f.opts.FieldName
	}
	return f.name
}

// DataSourceName returns the input key of the field.
func (f *Field) DataSourceName() string {
	if f.opts.DataSourceName != "" {
		return f.opts.DataSourceName
	}
	return f.name
}

// Column returns the resolved column after Bind.
func (f *Field) Column() expr.Expression {
	return f.column
}

// Joins returns the joins the field needs, in order.
func (f *Field) Joins() []model.Join {
	return f.joins
}

// Bound reports whether Bind succeeded.
func (f *Field) Bound() bool {
	return f.bound
}

// SetName sets the public name without resolving the column. The name is
// used for DataSourceName and Attribute until Bind.
func (f *Field) SetName(name string) {
	f.name = name
}

// Bind resolves the column and joins of the field against m.
//
// Resolution order: a foreign-key path is followed through the named
// relationship of m; otherwise a configured Column is used; otherwise the
// column named FieldName (or the public name) of m.
func (f *Field) Bind(m model.Model, name string) error {
	if f.err != nil {
		return f.err
	}
	if m == nil {
		return fmt.Errorf("%w: no model to bind field '%s' to", ErrUnknownAttribute, name)
	}

	f.name = name
	f.joins = nil
	f.foreign = nil

	if f.opts.Join != "" {
		rel, ok := m.Relationship(f.opts.Join)
		if !ok {
			return fmt.Errorf("%w: %s model has no relationship called '%s'", ErrUnknownAttribute, m.Name(), f.opts.Join)
		}
		f.joins = append(f.joins, rel.Join())
	}

	switch {
	case f.IsForeignKey():
		relName, colName, _ := strings.Cut(f.opts.FieldName, ".")
		rel, ok := m.Relationship(relName)
		if !ok {
			return fmt.Errorf("%w: %s model has no relationship called '%s'", ErrUnknownAttribute, m.Name(), relName)
		}
		col, ok := rel.Target.Column(colName)
		if !ok {
			return fmt.Errorf("%w: %s model has no attribute called '%s'", ErrUnknownAttribute, rel.Target.Name(), colName)
		}
		f.column = col
		f.foreign = rel.Target
		f.joins = append(f.joins, rel.Join())
	case f.opts.Column != nil:
		switch c := f.opts.Column.(type) {
		case string:
			f.column = expr.Col(c)
		case expr.Expression:
			f.column = c
		}
	default:
		col, ok := m.Column(f.Attribute())
		if !ok {
			return fmt.Errorf("%w: %s model has no attribute called '%s'", ErrUnknownAttribute, m.Name(), f.Attribute())
		}
		f.column = col
	}

	f.bound = true
	return nil
}

// Clone returns a copy of f. Binding the copy never affects f.
func (f *Field) Clone() *Field {
	c := *f
	c.joins = append([]model.Join(nil), f.joins...)
	return &c
}

// Value returns the input value of the field from data.
func (f *Field) Value(data map[string]any) (any, bool) {
	v, ok := data[f.DataSourceName()]
	if list, isList := asList(v); isList {
		return list, ok
	}
	return v, ok
}

// asList converts any slice or array other than a byte string to []any.
func asList(v any) ([]any, bool) {
	switch v := v.(type) {
	case nil, []byte:
		return nil, false
	case []any:
		return v, true
	}
	rv := reflect.ValueOf(v)
	if k := rv.Kind(); k != reflect.Slice && k != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Validate coerces value to the field type. Lists are coerced element by
// element. Returns *ValidationError if a value cannot be coerced.
func (f *Field) Validate(value any) (any, error) {
	if f.coerce == nil {
		return value, nil
	}
	if list, ok := asList(value); ok {
		out := make([]any, 0, len(list))
		for _, item := range list {
			v, err := f.validateOne(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	return f.validateOne(value)
}

func (f *Field) validateOne(value any) (any, error) {
	v, err := f.coerce(value)
	if err != nil {
		if verr, ok := err.(*ValidationError); ok {
			return nil, verr
		}
		return nil, &ValidationError{Message: fmt.Sprintf("Expected to be of type %s", f.typeName)}
	}
	return v, nil
}

// Apply builds the predicate of the field from the validated data of src.
//
// An absent value, or a nil value without AllowNone, yields the
// literal-true placeholder. Otherwise the value is wrapped in a list unless
// it already is one and passed to the lookup operator.
func (f *Field) Apply(src Source) (expr.Expression, error) {
	value, ok := f.Value(src.ValidatedData())
	if !ok {
		return expr.Empty(), nil
	}
	if value == nil && !f.opts.AllowNone {
		return expr.Empty(), nil
	}
	if !f.bound {
		return nil, fmt.Errorf("%w: %s.%s", ErrNotBound, src.Name(), f.name)
	}

	params, isList := asList(value)
	if !isList {
		params = []any{value}
	}
	return operator.Apply(f.opts.Lookup, f.column, params)
}
