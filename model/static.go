package model

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hugr-lab/sqlfilter/expr"
)

// ErrInvalidRelationship is returned by Relate for relationships that
// reference unknown columns or clash with existing attributes.
var ErrInvalidRelationship = errors.New("invalid relationship")

// StaticModel is a Model with a fixed schema.
// Relationships are added during initialisation with Relate; Relate is not
// safe for concurrent use, all read methods are.
type StaticModel struct {
	name          string
	schema        *arrow.Schema
	relationships map[string]*Relationship
	order         []string
}

// New creates a static model.
func New(name string, schema *arrow.Schema) *StaticModel {
	return &StaticModel{
		name:          name,
		schema:        schema,
		relationships: make(map[string]*Relationship),
	}
}

// Name implements Model interface.
func (m *StaticModel) Name() string {
	return m.name
}

// ArrowSchema implements Model interface.
func (m *StaticModel) ArrowSchema() *arrow.Schema {
	return m.schema
}

// Field implements Model interface.
func (m *StaticModel) Field(name string) (arrow.Field, bool) {
	if m.schema == nil {
		return arrow.Field{}, false
	}
	idx := m.schema.FieldIndices(name)
	if len(idx) == 0 {
		return arrow.Field{}, false
	}
	return m.schema.Field(idx[0]), true
}

// Column implements Model interface.
func (m *StaticModel) Column(name string) (*expr.ColumnRef, bool) {
	if _, ok := m.Field(name); !ok {
		return nil, false
	}
	return expr.TableCol(m.name, name), true
}

// Relationship implements Model interface.
func (m *StaticModel) Relationship(name string) (*Relationship, bool) {
	r, ok := m.relationships[name]
	return r, ok
}

// Relationships returns all relationships in declaration order.
func (m *StaticModel) Relationships() []*Relationship {
	result := make([]*Relationship, 0, len(m.order))
	for _, name := range m.order {
		result = append(result, m.relationships[name])
	}
	return result
}

// HasAttribute implements Model interface.
func (m *StaticModel) HasAttribute(name string) bool {
	if _, ok := m.Field(name); ok {
		return true
	}
	_, ok := m.relationships[name]
	return ok
}

// Relate declares a relationship named name from this model to target,
// joined on m.localColumn = target.remoteColumn.
func (m *StaticModel) Relate(name string, target Model, localColumn, remoteColumn string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRelationship)
	}
	if target == nil {
		return fmt.Errorf("%w: %s.%s has no target model", ErrInvalidRelationship, m.name, name)
	}
	if m.HasAttribute(name) {
		return fmt.Errorf("%w: %s already has an attribute called '%s'", ErrInvalidRelationship, m.name, name)
	}
	if _, ok := m.Field(localColumn); !ok {
		return fmt.Errorf("%w: %s has no column '%s'", ErrInvalidRelationship, m.name, localColumn)
	}
	if _, ok := target.Field(remoteColumn); !ok {
		return fmt.Errorf("%w: %s has no column '%s'", ErrInvalidRelationship, target.Name(), remoteColumn)
	}

	m.relationships[name] = &Relationship{
		Name:         name,
		Owner:        m,
		Target:       target,
		LocalColumn:  localColumn,
		RemoteColumn: remoteColumn,
	}
	m.order = append(m.order, name)
	return nil
}

// MustRelate is like Relate but panics on error.
// Intended for package-level model declarations.
func (m *StaticModel) MustRelate(name string, target Model, localColumn, remoteColumn string) *StaticModel {
	if err := m.Relate(name, target, localColumn, remoteColumn); err != nil {
		panic(err)
	}
	return m
}
