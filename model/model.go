// Package model describes the relational entities that filters are defined
// against: their columns, given as Arrow schemas, and the relationships
// used for foreign-key joins.
package model

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hugr-lab/sqlfilter/expr"
)

// Model represents a relational entity (a table or view).
// Implementations MUST be goroutine-safe once built.
type Model interface {
	// Name returns the table name (e.g., "users", "addresses").
	// MUST return non-empty string.
	Name() string

	// ArrowSchema returns the logical schema describing model columns.
	ArrowSchema() *arrow.Schema

	// Field returns the schema field for a column.
	Field(name string) (arrow.Field, bool)

	// Column returns a qualified reference to a column.
	Column(name string) (*expr.ColumnRef, bool)

	// Relationship returns a named relationship to another model.
	Relationship(name string) (*Relationship, bool)

	// HasAttribute reports whether name is a column or a relationship.
	HasAttribute(name string) bool
}

// Relationship links a model to a target model through a column pair.
type Relationship struct {
	// Name is the attribute name on the owning model (e.g., "user").
	Name string

	// Owner is the model the relationship is declared on.
	Owner Model

	// Target is the related model.
	Target Model

	// LocalColumn is the owner column holding the reference.
	LocalColumn string

	// RemoteColumn is the referenced target column.
	RemoteColumn string
}

// Join returns the join that brings the target model into a query on the
// owner model.
func (r *Relationship) Join() Join {
	return Join{
		Target: r.Target,
		On: expr.Eq(
			expr.TableCol(r.Owner.Name(), r.LocalColumn),
			expr.TableCol(r.Target.Name(), r.RemoteColumn),
		),
	}
}

// Join is an inner join onto Target.
type Join struct {
	Target Model
	On     expr.Expression
}

// Same reports whether a and b name the same model.
func Same(a, b Model) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b || a.Name() == b.Name()
}
