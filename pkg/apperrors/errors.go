// Package apperrors defines the engine's error taxonomy. Every failure the
// engine raises wraps one of the four sentinels so callers can map it to a
// transport status with errors.Is instead of string matching.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrBadRequest covers malformed queries/parameters, disallowed SQL
	// constructs, validation failures and unsupported backend types.
	ErrBadRequest = errors.New("bad request")
	// ErrNotFound covers missing data sources, tables, saved queries and schemas.
	ErrNotFound = errors.New("not found")
	// ErrForbidden covers RBAC denials and disabled insert/update flags.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict covers storage-layer uniqueness and foreign-key violations.
	ErrConflict = errors.New("conflict")
)

// BadRequest wraps ErrBadRequest with a message.
func BadRequest(msg string) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, msg)
}

// BadRequestf wraps ErrBadRequest with a formatted message.
func BadRequestf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with a message.
func NotFound(msg string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, msg)
}

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Forbidden wraps ErrForbidden with a message.
func Forbidden(msg string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, msg)
}

// Conflict wraps ErrConflict with a message.
func Conflict(msg string) error {
	return fmt.Errorf("%w: %s", ErrConflict, msg)
}
