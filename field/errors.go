package field

import (
	"errors"
	"fmt"
)

var (
	// ErrPathTooDeep is returned for foreign-key paths with more than one
	// relationship hop (e.g., "user.address.city").
	ErrPathTooDeep = errors.New("depth greater than 2 not supported yet")

	// ErrUnknownAttribute is returned when a field references a column or
	// relationship the model does not have.
	ErrUnknownAttribute = errors.New("unknown model attribute")

	// ErrNotBound is returned when a field is applied before Bind.
	ErrNotBound = errors.New("field is not bound to a model")
)

// ValidationError reports a value that could not be coerced.
type ValidationError struct {
	// Field is the data source name of the field, set by the filter that
	// validated it. Empty when the field was validated directly.
	Field string

	// Message is the human-readable reason.
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// JSON returns the error as a field name to message pair.
func (e *ValidationError) JSON() map[string]string {
	return map[string]string{e.Field: e.Message}
}

// MissingMethodError is returned when a method field names a method the
// filter does not have.
type MissingMethodError struct {
	Filter string
	Method string
}

func (e *MissingMethodError) Error() string {
	return fmt.Sprintf("%s has no method %s", e.Filter, e.Method)
}

// MethodNotFoundError is returned when a method field resolves to a value
// that is not callable.
type MethodNotFoundError struct {
	Filter string
	Field  string
	Method string
}

func (e *MethodNotFoundError) Error() string {
	return fmt.Sprintf("field %s.%s: %s is not a callable filter method", e.Filter, e.Field, e.Method)
}

// EmptyExpressionError is returned when a method field callable returns no
// expression.
type EmptyExpressionError struct {
	Filter string
	Method string
}

func (e *EmptyExpressionError) Error() string {
	return fmt.Sprintf("%s.%s must return a sql expression.", e.Filter, e.Method)
}
