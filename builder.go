package sqlfilter

import (
	"fmt"
	"log/slog"

	"github.com/hugr-lab/sqlfilter/field"
	"github.com/hugr-lab/sqlfilter/internal/ordered"
	"github.com/hugr-lab/sqlfilter/model"
	"github.com/hugr-lab/sqlfilter/operator"
)

// Builder builds filter definitions using fluent API.
// Not thread-safe - use only during initialization.
type Builder struct {
	name     string
	model    model.Model
	abstract bool
	base     *Definition

	fields  *ordered.Map[*field.Field]
	nested  *ordered.Map[*NestedFilter]
	methods *ordered.Map[*field.MethodField]
	funcs   map[string]any

	opts  Options
	err   error
	built bool
}

// Define starts a filter definition over model m.
//
// Example:
//
//	users, err := sqlfilter.Define("UserFilter", usersModel).
//	    Field("first_name", field.String(field.Options{Lookup: operator.Contains})).
//	    Field("min_age", field.Integer(field.Options{FieldName: "age", Lookup: operator.GTE})).
//	    Options(sqlfilter.Options{Session: session, OrderBy: "first_name"}).
//	    Build()
func Define(name string, m model.Model) *Builder {
	return newBuilder(name, m, nil)
}

// Abstract starts a definition without a model. Abstract definitions are
// never instantiated; they only carry declarations for Extend.
func Abstract(name string) *Builder {
	b := newBuilder(name, nil, nil)
	b.abstract = true
	return b
}

// Extend starts a definition inheriting every declaration of base.
// Same-named declarations replace the inherited ones. The model of base is
// used unless Model sets one; a different model fails Build.
func Extend(name string, base *Definition) *Builder {
	b := newBuilder(name, nil, base)
	if base != nil {
		b.model = base.model
	} else {
		b.err = fmt.Errorf("%w: filter %s extends a nil definition", ErrInvalidDefinition, name)
	}
	return b
}

func newBuilder(name string, m model.Model, base *Definition) *Builder {
	return &Builder{
		name:    name,
		model:   m,
		base:    base,
		fields:  ordered.New[*field.Field](),
		nested:  ordered.New[*NestedFilter](),
		methods: ordered.New[*field.MethodField](),
		funcs:   make(map[string]any),
	}
}

// Declare adds a declaration by the type of decl: *field.Field,
// *field.MethodField or *NestedFilter. Any other value fails Build.
// A later declaration of name replaces an earlier one of any type.
// Returns self for method chaining.
func (b *Builder) Declare(name string, decl any) *Builder {
	if name == "" {
		b.fail(fmt.Errorf("%w: filter %s declares an empty name", ErrInvalidDefinition, b.name))
		return b
	}
	switch d := decl.(type) {
	case *field.MethodField:
		if d == nil {
			break
		}
		b.forget(name)
		b.methods.Set(name, d)
		return b
	case *field.Field:
		if d == nil {
			break
		}
		b.forget(name)
		b.fields.Set(name, d)
		return b
	case *NestedFilter:
		if d == nil {
			break
		}
		b.forget(name)
		b.nested.Set(name, d)
		return b
	}
	b.fail(fmt.Errorf("%w: filter %s: '%s' is not a field, method field or nested filter (%T)",
		ErrInvalidDefinition, b.name, name, decl))
	return b
}

// Field declares a field. Returns self for method chaining.
func (b *Builder) Field(name string, f *field.Field) *Builder {
	return b.Declare(name, f)
}

// Method declares a method field. Returns self for method chaining.
func (b *Builder) Method(name string, f *field.MethodField) *Builder {
	return b.Declare(name, f)
}

// Nested declares a nested filter. Returns self for method chaining.
func (b *Builder) Nested(name string, n *NestedFilter) *Builder {
	return b.Declare(name, n)
}

// Func registers fn as the filter method name, the target of
// field.Method(name, ...) declarations. Returns self for method chaining.
func (b *Builder) Func(name string, fn any) *Builder {
	b.funcs[name] = fn
	return b
}

// Model sets the model of the definition. Returns self for method chaining.
func (b *Builder) Model(m model.Model) *Builder {
	b.model = m
	return b
}

// Options sets the definition options. Returns self for method chaining.
func (b *Builder) Options(opts Options) *Builder {
	b.opts = opts
	return b
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) forget(name string) {
	b.fields.Delete(name)
	b.nested.Delete(name)
	b.methods.Delete(name)
}

// Build finalizes the definition.
// Can only be called once. Every returned error matches ErrInvalidDefinition.
func (b *Builder) Build() (*Definition, error) {
	if b.built {
		return nil, fmt.Errorf("%w: filter %s already built", ErrInvalidDefinition, b.name)
	}
	if b.err != nil {
		return nil, b.err
	}
	b.built = true

	for name, f := range b.fields.All() {
		if err := f.Err(); err != nil {
			return nil, fmt.Errorf("%w: filter %s field '%s': %w", ErrInvalidDefinition, b.name, name, err)
		}
	}

	if !b.abstract {
		if b.model == nil {
			return nil, fmt.Errorf("%w: Filter '%s' does not define a model", ErrInvalidDefinition, b.name)
		}
		if err := b.checkCompatibility(); err != nil {
			return nil, err
		}
		if err := b.checkFieldNames(); err != nil {
			return nil, err
		}
	} else if len(b.opts.Fields) > 0 && b.model == nil {
		return nil, fmt.Errorf("%w: abstract filter %s cannot declare fields without a model", ErrInvalidDefinition, b.name)
	}

	d := b.merge()

	if err := d.createMissingFields(b.opts.Fields); err != nil {
		return nil, err
	}

	if !d.abstract {
		if err := d.checkNested(); err != nil {
			return nil, err
		}
		for name, f := range d.fields.All() {
			if err := f.Bind(d.model, name); err != nil {
				return nil, fmt.Errorf("%w: Error defining filter %s: %w", ErrInvalidDefinition, d.name, err)
			}
		}
	}
	for name, f := range d.methods.All() {
		f.Bind(name)
	}
	for name, n := range d.nested.All() {
		n.bind(name)
	}

	d.logger.Debug("Filter definition built",
		"filter", d.name,
		"fields", d.fields.Len(),
		"nested", d.nested.Len(),
		"methods", d.methods.Len(),
		"abstract", d.abstract)
	return d, nil
}

// MustBuild is Build that panics on error.
func (b *Builder) MustBuild() *Definition {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}

func (b *Builder) checkCompatibility() error {
	if b.base != nil && b.base.model != nil && !model.Same(b.base.model, b.model) {
		return &NotCompatibleError{
			Filter:    b.name,
			Model:     b.model.Name(),
			Base:      b.base.name,
			BaseModel: b.base.model.Name(),
		}
	}
	return nil
}

// checkNested checks every nested filter, own or inherited, against the
// model of d.
func (d *Definition) checkNested() error {
	for _, n := range d.nested.All() {
		inner := n.def
		if inner == nil {
			return fmt.Errorf("%w: filter %s nests a nil definition", ErrInvalidDefinition, d.name)
		}
		if inner.model == nil || !model.Same(inner.model, d.model) {
			innerModel := "<none>"
			if inner.model != nil {
				innerModel = inner.model.Name()
			}
			return &NotCompatibleError{
				Filter:    d.name,
				Model:     d.model.Name(),
				Base:      inner.name,
				BaseModel: innerModel,
			}
		}
	}
	return nil
}

func (b *Builder) checkFieldNames() error {
	for name, f := range b.fields.All() {
		if f.IsForeignKey() {
			continue
		}
		attr := f.FieldName()
		if attr == "" {
			attr = name
		}
		if err := checkHasAttribute(b.model, attr, b.name); err != nil {
			return err
		}
	}
	return nil
}

func checkHasAttribute(m model.Model, attr, filter string) error {
	if m.HasAttribute(attr) {
		return nil
	}
	return fmt.Errorf("%w: Error defining filter %s: %s model has no attribute called '%s'",
		ErrInvalidDefinition, filter, m.Name(), attr)
}

// merge copies the inherited maps and applies own declarations on top.
// Declarations are cloned so binding never affects the base or the
// builder.
func (b *Builder) merge() *Definition {
	d := &Definition{
		name:     b.name,
		model:    b.model,
		abstract: b.abstract,
		declared: append([]string(nil), b.opts.Fields...),
		orderBy:  b.opts.OrderBy,
		pageSize: b.opts.PageSize,
		session:  b.opts.Session,
		schema:   b.opts.Schema,
		operator: b.opts.Operator,
		logger:   newLogger(b.opts.Logger, b.opts.LogLevel),
		funcs:    make(map[string]any),
	}

	if base := b.base; base != nil {
		d.fields = base.fields.Clone((*field.Field).Clone)
		d.nested = base.nested.Clone((*NestedFilter).clone)
		d.methods = base.methods.Clone((*field.MethodField).Clone)
		for k, v := range base.funcs {
			d.funcs[k] = v
		}
		if d.session == nil {
			d.session = base.session
		}
		if d.operator == nil {
			d.operator = base.operator
		}
		if d.logger == nil {
			d.logger = base.logger
		}
	} else {
		d.fields = ordered.New[*field.Field]()
		d.nested = ordered.New[*NestedFilter]()
		d.methods = ordered.New[*field.MethodField]()
	}

	for _, name := range b.fields.Keys() {
		d.nested.Delete(name)
		d.methods.Delete(name)
	}
	for _, name := range b.nested.Keys() {
		d.fields.Delete(name)
		d.methods.Delete(name)
	}
	for _, name := range b.methods.Keys() {
		d.fields.Delete(name)
		d.nested.Delete(name)
	}
	d.fields.Merge(b.fields.Clone((*field.Field).Clone))
	d.nested.Merge(b.nested.Clone((*NestedFilter).clone))
	d.methods.Merge(b.methods.Clone((*field.MethodField).Clone))
	for k, v := range b.funcs {
		d.funcs[k] = v
	}

	if d.operator == nil {
		d.operator = operator.And
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// createMissingFields adds a default field for every allow-listed name
// that is not declared.
func (d *Definition) createMissingFields(names []string) error {
	for _, name := range names {
		if d.fields.Has(name) || d.nested.Has(name) || d.methods.Has(name) {
			continue
		}
		if err := checkHasAttribute(d.model, name, d.name); err != nil {
			return err
		}

		typeName := "relationship"
		var f *field.Field
		if col, ok := d.model.Field(name); ok {
			typeName = col.Type.String()
			f, _ = field.ForKind(model.KindOf(col), field.Options{FieldName: name})
		}
		if f == nil {
			return fmt.Errorf("%w: could not map type '%s' for field '%s'. "+
				"Please define it as a field in the filter or remove it from the declared fields.",
				ErrInvalidDefinition, typeName, name)
		}
		f.SetName(name)
		d.fields.Set(name, f)
	}
	return nil
}
