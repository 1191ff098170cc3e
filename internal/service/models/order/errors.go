package order

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrOrderNotFound    = errors.New("order not found")
)

// ValidationError is a malformed input refused before any persistence attempt.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InvalidTransitionError is an action attempted against the wrong source state.
type InvalidTransitionError struct {
	From  Status
	Event string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s an order in status %s", e.Event, e.From)
}

// PersistenceError is a failure reported by the backing store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// SyncDegradedError reports a lost change feed; reads and writes keep working.
type SyncDegradedError struct {
	Err error
}

func (e *SyncDegradedError) Error() string {
	if e.Err == nil {
		return "change feed degraded"
	}

	return "change feed degraded: " + e.Err.Error()
}

func (e *SyncDegradedError) Unwrap() error {
	return e.Err
}

// IsValidation helps callers tell rule violations from infrastructure failures.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsInvalidTransition(err error) bool {
	var t *InvalidTransitionError
	return errors.As(err, &t)
}

func IsPersistence(err error) bool {
	var p *PersistenceError
	return errors.As(err, &p)
}
