// Package apperr defines the error taxonomy shared by the indexing and query paths.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for malformed user input such as a bad date filter.
	ErrInvalidInput = errors.New("invalid input")
	// ErrIndexExists is returned when an index table exists and no rebuild was requested.
	ErrIndexExists = errors.New("index already exists; rebuild required to overwrite")
	// ErrNotFound is returned when an index table or record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCapability is returned when the embedder or the vector store cannot serve a request.
	ErrCapability = errors.New("capability unavailable")
	// ErrDataConsistency is returned for schema or model mismatches such as a wrong
	// embedding dimension or a missing column.
	ErrDataConsistency = errors.New("data consistency error")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Is makes every ValidationError match ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Capability marks err as a capability failure while keeping it in the chain.
func Capability(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrCapability, err)
}

// Inconsistent builds a data consistency error.
func Inconsistent(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDataConsistency, fmt.Sprintf(format, args...))
}
