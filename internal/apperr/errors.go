// Package apperr defines the error kinds shared across the service.  Every
// failure a caller can act on is one of these four sentinels, wrapped with
// enough context (entity id, attempted transition) to render a precise
// message.  Handlers translate the kinds into HTTP status codes; nothing
// else in the codebase inspects error strings.
package apperr

import (
	"errors"
	"fmt"
)

// ErrValidation marks malformed or out-of-range input: an empty cart, a
// non-positive amount, a missing required field.  Maps to HTTP 422.
var ErrValidation = errors.New("validation failed")

// ErrConflict marks an operation that lost to existing state, such as
// seating a party at a table that already has an active session.  Maps
// to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrInvalidState marks a status transition or mutation attempted outside
// its allowed state set, e.g. removing an item from a cancelled order.
// Maps to HTTP 409 as well, but with the attempted transition in the body.
var ErrInvalidState = errors.New("invalid state")

// ErrNotFound marks an unknown session, table, order or item id.  Maps to
// HTTP 404.
var ErrNotFound = errors.New("not found")

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// Conflictf wraps ErrConflict with a formatted message.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConflict}, args...)...)
}

// InvalidStatef wraps ErrInvalidState with a formatted message.
func InvalidStatef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidState}, args...)...)
}

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}
