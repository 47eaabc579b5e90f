// Package recovery converts panics raised by user-supplied callables
// (method fields, validation functions) into errors.
package recovery

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// ErrPanic is matched by every error produced from a recovered panic.
var ErrPanic = errors.New("panic recovered")

// RecoverToError wraps a function call with panic recovery.
// If the function panics, the panic is logged with its stack and returned
// as an error wrapping ErrPanic.
//
// Example:
//
//	err := recovery.RecoverToError(logger, "schema.Validate", func() error {
//	    return validate(values)
//	})
func RecoverToError(logger *slog.Logger, operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(logger, operation, r)
		}
	}()

	return fn()
}

// RecoverToValue wraps a function that returns a value and error.
// If the function panics, returns zero value and an error wrapping ErrPanic.
//
// Example:
//
//	pred, err := recovery.RecoverToValue(logger, "UsersFilter.search", func() (expr.Expression, error) {
//	    return search(value)
//	})
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = recovered(logger, operation, r)
		}
	}()

	return fn()
}

func recovered(logger *slog.Logger, operation string, r any) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("Panic recovered",
		"operation", operation,
		"panic", r,
		"stack", string(debug.Stack()),
	)
	return fmt.Errorf("%w: %s panicked: %v", ErrPanic, operation, r)
}
