package sqlfilter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hugr-lab/sqlfilter/field"
)

// Standard errors returned by sqlfilter package.
var (
	// ErrInvalidDefinition indicates a filter definition could not be built.
	// Every error returned by Builder.Build matches it.
	ErrInvalidDefinition = errors.New("invalid filter definition")

	// ErrNoSession indicates a filter has no query and no session to
	// create one from.
	ErrNoSession = errors.New("no session")
)

// ValidationError aggregates the field errors of a filter validation.
// Errors of the filter's own fields come first, then those of nested
// filters, each in declaration order.
type ValidationError struct {
	Errors []*field.ValidationError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Error())
	}
	return "filter validation failed: " + strings.Join(parts, "; ")
}

// JSON returns one field name to message pair per error.
func (e *ValidationError) JSON() []map[string]string {
	out := make([]map[string]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		out = append(out, fe.JSON())
	}
	return out
}

// OrderByError reports an ordering on a column the model does not have.
type OrderByError struct {
	Model string
	Field string
}

func (e *OrderByError) Error() string {
	return fmt.Sprintf("%s does not have a field called '%s' to use in an ORDER BY clause.", e.Model, e.Field)
}

// NotCompatibleError reports a base or nested filter defined over a
// different model.
type NotCompatibleError struct {
	Filter    string
	Model     string
	Base      string
	BaseModel string
}

func (e *NotCompatibleError) Error() string {
	return fmt.Sprintf("filter %s (model %s) is not compatible with filter %s (model %s)",
		e.Filter, e.Model, e.Base, e.BaseModel)
}

func (e *NotCompatibleError) Unwrap() error {
	return ErrInvalidDefinition
}
