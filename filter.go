package sqlfilter

import (
	"errors"
	"log/slog"
	"maps"

	"github.com/hugr-lab/sqlfilter/expr"
	"github.com/hugr-lab/sqlfilter/field"
	"github.com/hugr-lab/sqlfilter/internal/recovery"
	"github.com/hugr-lab/sqlfilter/model"
	"github.com/hugr-lab/sqlfilter/operator"
	"github.com/hugr-lab/sqlfilter/query"
	"github.com/hugr-lab/sqlfilter/schema"
)

// Filter is a definition applied to one input.
// A Filter is created per call and is not safe for concurrent use.
type Filter struct {
	def           *Definition
	data          map[string]any
	validatedData map[string]any
	op            operator.Operator
	query         query.Query
	schema        schema.Validator
	validated     bool
	logger        *slog.Logger
}

var _ field.Source = (*Filter)(nil)

// Definition returns the definition of the filter.
func (f *Filter) Definition() *Definition { return f.def }

// Name implements field.Source interface.
func (f *Filter) Name() string { return f.def.name }

// Data implements field.Source interface.
func (f *Filter) Data() map[string]any { return f.data }

// ValidatedData implements field.Source interface.
func (f *Filter) ValidatedData() map[string]any { return f.validatedData }

// Logger implements field.Source interface.
func (f *Filter) Logger() *slog.Logger { return f.logger }

// Method implements field.Source interface.
func (f *Filter) Method(name string) (any, bool) { return f.def.Func(name) }

// Validated reports whether the last Validate succeeded.
func (f *Filter) Validated() bool { return f.validated }

// Operator returns the combinator of sibling predicates.
func (f *Filter) Operator() operator.Operator { return f.op }

// Query returns the base query.
func (f *Filter) Query() query.Query { return f.query }

// Schema returns the external validator in use, nil for field validation.
func (f *Filter) Schema() schema.Validator { return f.schema }

// Validate coerces the input of every field and validates every nested
// filter.
//
// Field errors do not stop validation: all of them, own fields first, are
// returned in one *ValidationError. With an external schema the schema
// validates the raw input instead and its error is returned as is.
func (f *Filter) Validate() error {
	f.validated = false
	if f.schema != nil {
		return f.validateSchema()
	}

	f.validatedData = make(map[string]any, len(f.data))
	var errs []*field.ValidationError

	for _, fl := range f.def.fields.All() {
		value, ok := fl.Value(f.data)
		if !ok {
			continue
		}
		if value == nil && fl.AllowNone() {
			f.validatedData[fl.DataSourceName()] = nil
			continue
		}
		v, err := fl.Validate(value)
		if err != nil {
			var verr *field.ValidationError
			if !errors.As(err, &verr) {
				return err
			}
			errs = append(errs, &field.ValidationError{Field: fl.DataSourceName(), Message: verr.Message})
			continue
		}
		f.validatedData[fl.DataSourceName()] = v
	}

	for _, n := range f.def.nested.All() {
		err := n.Validate(f)
		if err == nil {
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		for _, fe := range verr.Errors {
			name := fe.Field
			if !n.Flat() {
				name = n.DataSourceName() + "." + name
			}
			errs = append(errs, &field.ValidationError{Field: name, Message: fe.Message})
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	f.validated = true
	return nil
}

// validateSchema validates the raw values of present fields merged with
// the input of every nested filter.
func (f *Filter) validateSchema() error {
	values := make(map[string]any)
	for _, fl := range f.def.fields.All() {
		if v, ok := fl.Value(f.data); ok {
			values[fl.DataSourceName()] = v
		}
	}
	fieldValues := maps.Clone(values)
	for _, n := range f.def.nested.All() {
		data, err := n.Data(f)
		if err != nil {
			return err
		}
		maps.Copy(values, data)
	}

	err := recovery.RecoverToError(f.Logger(), f.def.name+".schema", func() error {
		return f.schema.Validate(values)
	})
	if err != nil {
		return err
	}
	f.validatedData = fieldValues
	f.validated = true
	return nil
}

// ApplyAll validates the input and returns the combined predicate.
//
// Participating fields are combined left to right with the filter
// operator. Each nested predicate is then combined with the running result
// using its outer operator, and each method field using the filter
// operator. Without any constraint the literal-true placeholder is
// returned.
func (f *Filter) ApplyAll() (expr.Expression, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	caps := query.CapabilitiesOf(f.query)

	result, err := f.applyFields(caps)
	if err != nil {
		return nil, err
	}
	if result, err = f.applyNested(caps, result); err != nil {
		return nil, err
	}
	return f.applyMethods(caps, result)
}

func (f *Filter) applyFields(caps expr.Capabilities) (expr.Expression, error) {
	fields := f.def.declaredFields()
	if len(fields) == 0 {
		return expr.Empty(), nil
	}

	result, err := fields[0].Apply(f)
	if err != nil {
		return nil, err
	}
	for _, fl := range fields[1:] {
		pred, err := fl.Apply(f)
		if err != nil {
			return nil, err
		}
		if result, err = operator.Combine(caps, f.op, result, pred); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (f *Filter) applyNested(caps expr.Capabilities, result expr.Expression) (expr.Expression, error) {
	for _, n := range f.def.declaredNested() {
		op := n.OuterOperator()
		if op == nil {
			op = f.op
		}
		pred, err := n.Apply(f)
		if err != nil {
			return nil, err
		}
		if result, err = operator.Combine(caps, op, pred, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (f *Filter) applyMethods(caps expr.Capabilities, result expr.Expression) (expr.Expression, error) {
	for _, m := range f.def.declaredMethods() {
		pred, err := m.Apply(f)
		if err != nil {
			return nil, err
		}
		if result, err = operator.Combine(caps, f.op, pred, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Apply returns the base query filtered by ApplyAll, joined with every
// relationship the participating fields need and ordered.
func (f *Filter) Apply() (query.Query, error) {
	pred, err := f.ApplyAll()
	if err != nil {
		return nil, err
	}
	q := f.applyJoins(f.query.Filter(pred))
	return f.OrderBy(q)
}

// applyJoins joins q with the needed relationships that are not joined
// yet, in order and without duplicates.
func (f *Filter) applyJoins(q query.Query) query.Query {
	var seen []model.Join
	for _, j := range f.def.Joins() {
		duplicate := false
		for _, s := range seen {
			if sameJoin(s, j) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		seen = append(seen, j)
		if q.Joined(j.Target) {
			continue
		}
		f.logger.Debug("Applying join", "filter", f.def.name, "target", j.Target.Name())
		q = q.Join(j)
	}
	return q
}
