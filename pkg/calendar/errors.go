package calendar

import "fmt"

// ValidationError indicates an event or search range failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NotFoundError indicates the target event does not exist.
type NotFoundError struct {
	ID int64
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("event %d not found", e.ID)
}

// DeletionError wraps a store failure during delete, preserving the
// original cause for diagnostics.
type DeletionError struct {
	ID    int64
	Cause error
}

// Error implements the error interface.
func (e *DeletionError) Error() string {
	return fmt.Sprintf("delete event %d: %v", e.ID, e.Cause)
}

// Unwrap returns the underlying store error.
func (e *DeletionError) Unwrap() error {
	return e.Cause
}
