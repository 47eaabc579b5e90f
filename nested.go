package sqlfilter

import (
	"fmt"

	"github.com/hugr-lab/sqlfilter/expr"
	"github.com/hugr-lab/sqlfilter/field"
	"github.com/hugr-lab/sqlfilter/operator"
)

// NestedFilter embeds a filter definition as a single declaration of
// another filter over the same model.
type NestedFilter struct {
	def  *Definition
	opts NestedOptions
	name string
}

// Nested creates a nested filter of def.
func Nested(def *Definition, opts NestedOptions) *NestedFilter {
	if opts.Operator == nil {
		opts.Operator = operator.And
	}
	return &NestedFilter{def: def, opts: opts}
}

func (n *NestedFilter) bind(name string) {
	n.name = name
}

func (n *NestedFilter) clone() *NestedFilter {
	c := *n
	return &c
}

// Definition returns the nested definition.
func (n *NestedFilter) Definition() *Definition { return n.def }

// Name returns the name the nested filter is declared with.
func (n *NestedFilter) Name() string { return n.name }

// Operator returns the operator combining the nested fields.
func (n *NestedFilter) Operator() operator.Operator { return n.opts.Operator }

// OuterOperator returns the operator combining the nested predicate with
// its siblings, nil if the parent operator is used.
func (n *NestedFilter) OuterOperator() operator.Operator { return n.opts.OuterOperator }

// Flat reports whether the nested filter reads the parent input.
func (n *NestedFilter) Flat() bool { return n.opts.Flat }

// DataSourceName returns the input key of the nested sub-map.
func (n *NestedFilter) DataSourceName() string {
	if n.opts.DataSourceName != "" {
		return n.opts.DataSourceName
	}
	return n.name
}

// Data returns the input of the nested filter from its parent.
//
// A flat nested filter reads the parent input. Otherwise the sub-map under
// DataSourceName is used; a missing or empty value yields an empty map and
// any other non-map value fails.
func (n *NestedFilter) Data(parent *Filter) (map[string]any, error) {
	if n.opts.Flat {
		return parent.data, nil
	}
	value := parent.data[n.DataSourceName()]
	if m, ok := value.(map[string]any); ok {
		return m, nil
	}
	if !field.Truthy(value) {
		return map[string]any{}, nil
	}
	return nil, fmt.Errorf("the value of the key %s inside %s data is expected to be a map since flat is "+
		"not set, but %T found; check DataSourceName of nested filter %s",
		n.DataSourceName(), parent.def.name, value, n.name)
}

func (n *NestedFilter) instance(parent *Filter, data map[string]any) (*Filter, error) {
	validator := n.opts.Schema
	if validator == nil {
		validator = parent.schema
	}
	return n.def.New(data, &InstanceOptions{
		Operator: n.opts.Operator,
		Query:    parent.query,
		Schema:   validator,
	})
}

// Validate validates the nested input of parent.
func (n *NestedFilter) Validate(parent *Filter) error {
	data, err := n.Data(parent)
	if err != nil {
		return err
	}
	inner, err := n.instance(parent, data)
	if err != nil {
		return err
	}
	return inner.Validate()
}

// Apply returns the grouped predicate of the nested filter. Empty nested
// input yields the literal-true placeholder without building the filter.
func (n *NestedFilter) Apply(parent *Filter) (expr.Expression, error) {
	data, err := n.Data(parent)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return expr.Empty(), nil
	}
	inner, err := n.instance(parent, data)
	if err != nil {
		return nil, err
	}
	pred, err := inner.ApplyAll()
	if err != nil {
		return nil, err
	}
	return expr.Group(pred), nil
}
