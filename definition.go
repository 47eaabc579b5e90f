package sqlfilter

import (
	"fmt"
	"log/slog"

	"github.com/hugr-lab/sqlfilter/expr"
	"github.com/hugr-lab/sqlfilter/field"
	"github.com/hugr-lab/sqlfilter/internal/ordered"
	"github.com/hugr-lab/sqlfilter/internal/token"
	"github.com/hugr-lab/sqlfilter/model"
	"github.com/hugr-lab/sqlfilter/operator"
	"github.com/hugr-lab/sqlfilter/query"
	"github.com/hugr-lab/sqlfilter/schema"
)

// Definition is a built filter type: its model, declarations and options.
// A Definition is immutable and safe for concurrent use; declarations
// returned by its accessors MUST NOT be modified.
type Definition struct {
	name     string
	model    model.Model
	abstract bool

	fields  *ordered.Map[*field.Field]
	nested  *ordered.Map[*NestedFilter]
	methods *ordered.Map[*field.MethodField]
	funcs   map[string]any

	declared []string
	orderBy  any
	pageSize int
	session  query.Session
	schema   schema.Validator
	operator operator.Operator
	logger   *slog.Logger
}

// Name returns the filter name.
func (d *Definition) Name() string { return d.name }

// Model returns the model, nil for abstract definitions without one.
func (d *Definition) Model() model.Model { return d.model }

// Abstract reports whether the definition was started with Abstract.
func (d *Definition) Abstract() bool { return d.abstract }

// Fields returns the names of the fields in declaration order.
func (d *Definition) Fields() []string { return d.fields.Keys() }

// NestedFilters returns the names of the nested filters in declaration order.
func (d *Definition) NestedFilters() []string { return d.nested.Keys() }

// MethodFields returns the names of the method fields in declaration order.
func (d *Definition) MethodFields() []string { return d.methods.Keys() }

// Field returns the field declared as name.
func (d *Definition) Field(name string) (*field.Field, bool) { return d.fields.Get(name) }

// Nested returns the nested filter declared as name.
func (d *Definition) Nested(name string) (*NestedFilter, bool) { return d.nested.Get(name) }

// MethodField returns the method field declared as name.
func (d *Definition) MethodField(name string) (*field.MethodField, bool) { return d.methods.Get(name) }

// Func returns the filter method registered as name.
func (d *Definition) Func(name string) (any, bool) {
	fn, ok := d.funcs[name]
	return fn, ok
}

// DeclaredFields returns the allow-list, empty if every declaration
// participates.
func (d *Definition) DeclaredFields() []string {
	return append([]string(nil), d.declared...)
}

// Session returns the session of the definition.
func (d *Definition) Session() query.Session { return d.session }

// Schema returns the external validator of the definition.
func (d *Definition) Schema() schema.Validator { return d.schema }

// Operator returns the default combinator of filter instances.
func (d *Definition) Operator() operator.Operator { return d.operator }

// OrderBy returns the default ordering.
func (d *Definition) OrderBy() any { return d.orderBy }

// PageSize returns the default page size.
func (d *Definition) PageSize() int { return d.pageSize }

// Logger returns the definition logger.
func (d *Definition) Logger() *slog.Logger { return d.logger }

// allowed reports whether name participates in predicate folding.
func (d *Definition) allowed(name string) bool {
	if len(d.declared) == 0 {
		return true
	}
	for _, n := range d.declared {
		if n == name {
			return true
		}
	}
	return false
}

func (d *Definition) declaredFields() []*field.Field {
	var out []*field.Field
	for name, f := range d.fields.All() {
		if d.allowed(name) {
			out = append(out, f)
		}
	}
	return out
}

func (d *Definition) declaredNested() []*NestedFilter {
	var out []*NestedFilter
	for name, n := range d.nested.All() {
		if d.allowed(name) {
			out = append(out, n)
		}
	}
	return out
}

func (d *Definition) declaredMethods() []*field.MethodField {
	var out []*field.MethodField
	for name, f := range d.methods.All() {
		if d.allowed(name) {
			out = append(out, f)
		}
	}
	return out
}

// Joins returns the joins needed by the participating fields and nested
// filters, transitively, in order. Duplicates are kept.
func (d *Definition) Joins() []model.Join {
	var joins []model.Join
	for _, f := range d.declaredFields() {
		joins = append(joins, f.Joins()...)
	}
	for _, n := range d.declaredNested() {
		joins = append(joins, n.def.Joins()...)
	}
	return joins
}

// New creates a filter instance over data. If opts is nil, default options
// are used.
//
// The base query is opts.Query, else a query of opts.Session, else a
// query of the definition session. Returns an error matching ErrNoSession if
// there is none.
func (d *Definition) New(data map[string]any, opts *InstanceOptions) (*Filter, error) {
	if d.abstract {
		return nil, fmt.Errorf("%w: filter %s is abstract", ErrInvalidDefinition, d.name)
	}
	if opts == nil {
		opts = &InstanceOptions{}
	}
	if data == nil {
		data = map[string]any{}
	}

	q := opts.Query
	if q == nil {
		session := opts.Session
		if session == nil {
			session = d.session
		}
		if session == nil {
			return nil, fmt.Errorf("%w: Can not find session for filter '%s'. Please either define a session "+
				"in the filter options, at instantiation level or provide a query when instantiating the filter",
				ErrNoSession, d.name)
		}
		q = session.Query(d.model)
	}

	op := opts.Operator
	if op == nil {
		op = d.operator
	}
	validator := opts.Schema
	if validator == nil {
		validator = d.schema
	}

	return &Filter{
		def:           d,
		data:          data,
		validatedData: map[string]any{},
		op:            op,
		query:         q,
		schema:        validator,
		logger:        d.logger,
	}, nil
}

// DecodePageToken returns the input encoded in a token produced by
// Filter.NextPageToken. The "page" key holds the page to resume at.
func (d *Definition) DecodePageToken(tok string) (map[string]any, error) {
	p, err := token.Decode(tok)
	if err != nil {
		return nil, err
	}
	if p.Filter != d.name {
		return nil, fmt.Errorf("page token of filter %s used with filter %s", p.Filter, d.name)
	}
	p.Data[pageKey] = p.Page
	return p.Data, nil
}

// sameJoin reports whether a and b join the same target on the same
// condition.
func sameJoin(a, b model.Join) bool {
	return model.Same(a.Target, b.Target) && expr.Equal(a.On, b.On)
}
