package field

import (
	"github.com/hugr-lab/sqlfilter/expr"
	"github.com/hugr-lab/sqlfilter/internal/recovery"
)

// MethodFunc is the signature of filter methods that can fail.
type MethodFunc func(value any) (expr.Expression, error)

// MethodOptions configures a method field. All fields are OPTIONAL.
type MethodOptions struct {
	// DataSourceName is the input key holding the value.
	// Default: the public name the field is declared with.
	DataSourceName string
}

// MethodField delegates predicate construction to a filter method or a
// function. Values are passed raw, without validation.
//
// Accepted callables are func(any) expr.Expression, func(any)
// (expr.Expression, error) and MethodFunc.
type MethodField struct {
	method string
	fn     any
	opts   MethodOptions
	name   string
}

// Method creates a method field calling the filter method registered
// under name.
func Method(name string, opts MethodOptions) *MethodField {
	return &MethodField{method: name, opts: opts}
}

// MethodOf creates a method field calling fn directly.
func MethodOf(fn any, opts MethodOptions) *MethodField {
	return &MethodField{fn: fn, opts: opts}
}

// Name returns the public name the field is bound with.
func (f *MethodField) Name() string {
	return f.name
}

// MethodName returns the registered method name, empty for MethodOf fields.
func (f *MethodField) MethodName() string {
	return f.method
}

// Bind sets the public name of the field.
func (f *MethodField) Bind(name string) {
	f.name = name
}

// DataSourceName returns the input key of the field.
func (f *MethodField) DataSourceName() string {
	if f.opts.DataSourceName != "" {
		return f.opts.DataSourceName
	}
	return f.name
}

// Clone returns a copy of f.
func (f *MethodField) Clone() *MethodField {
	c := *f
	return &c
}

// Value returns the input value of the field from data.
func (f *MethodField) Value(data map[string]any) (any, bool) {
	v, ok := data[f.DataSourceName()]
	return v, ok
}

// Resolve returns the callable of the field.
//
// Returns *MissingMethodError if src has no such method and
// *MethodNotFoundError if the method is not a supported callable.
func (f *MethodField) Resolve(src Source) (MethodFunc, error) {
	target := f.fn
	if target == nil {
		m, ok := src.Method(f.method)
		if !ok || m == nil {
			return nil, &MissingMethodError{Filter: src.Name(), Method: f.method}
		}
		target = m
	}

	switch fn := target.(type) {
	case MethodFunc:
		return fn, nil
	case func(any) (expr.Expression, error):
		return fn, nil
	case func(any) expr.Expression:
		return func(v any) (expr.Expression, error) { return fn(v), nil }, nil
	default:
		return nil, &MethodNotFoundError{Filter: src.Name(), Field: f.name, Method: f.label()}
	}
}

// Apply builds the predicate of the field from the raw data of src.
//
// An absent or nil value yields the literal-true placeholder. A callable
// returning no expression fails with *EmptyExpressionError; panics are
// recovered into errors.
func (f *MethodField) Apply(src Source) (expr.Expression, error) {
	value, ok := f.Value(src.Data())
	if !ok || value == nil {
		return expr.Empty(), nil
	}

	fn, err := f.Resolve(src)
	if err != nil {
		return nil, err
	}

	operation := src.Name() + "." + f.label()
	result, err := recovery.RecoverToValue(src.Logger(), operation, func() (expr.Expression, error) {
		return fn(value)
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, &EmptyExpressionError{Filter: src.Name(), Method: f.label()}
	}
	return result, nil
}

func (f *MethodField) label() string {
	if f.method != "" {
		return f.method
	}
	return f.name
}
