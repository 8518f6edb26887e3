package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or out-of-policy input. It is never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// ConflictError reports a lost race or stale state. Callers should re-fetch and may retry once.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Retryable reports whether the caller may retry the operation.
func (e *ConflictError) Retryable() bool { return true }

// NewConflictError creates a ConflictError with the given message.
func NewConflictError(message string) error {
	return &ConflictError{Message: message}
}

// PermissionError reports that the actor lacks rights for the requested operation.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string { return e.Message }

// NewPermissionError creates a PermissionError with the given message.
func NewPermissionError(message string) error {
	return &PermissionError{Message: message}
}

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given entity and identifier.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InvalidTransitionError reports a lifecycle rule violation. It signals a usage error, not bad input.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// NewInvalidTransitionError creates an InvalidTransitionError.
func NewInvalidTransitionError(from, to string) error {
	return &InvalidTransitionError{From: from, To: to}
}

// IsRetryable reports whether err (or anything it wraps) may be retried by the caller.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
