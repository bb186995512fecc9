// Package service implements the application's use cases on top of the
// store interfaces: task lifecycle, tag management, filtered listing
// and cached statistics. Services own the business rules; stores own
// persistence.
package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every business-rule failure wraps exactly one of these
// so the API layer can map it to a status code without inspecting
// messages.
var (
	// ErrConflict marks operations rejected because of the entity's
	// current lifecycle state.
	ErrConflict = errors.New("conflict")

	// ErrInvalidArgument marks operations rejected because of bad input
	// that passed transport-level validation.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Lifecycle conflicts. The messages are part of the API contract.
var (
	// ErrTaskDeleted rejects edits and tag changes on soft-deleted tasks.
	ErrTaskDeleted = fmt.Errorf("%w: deleted tasks cannot be edited", ErrConflict)

	// ErrTaskCompleted rejects edits on completed tasks. Completion is
	// terminal: no update, not even one that would keep the status, is
	// accepted afterwards.
	ErrTaskCompleted = fmt.Errorf("%w: completed tasks cannot be edited", ErrConflict)

	// ErrTaskAlreadyCompleted rejects completing a completed task.
	ErrTaskAlreadyCompleted = fmt.Errorf("%w: task is already completed", ErrConflict)

	// ErrTaskAlreadyDeleted rejects deleting a deleted task.
	ErrTaskAlreadyDeleted = fmt.Errorf("%w: task is already deleted", ErrConflict)

	// ErrDeletedTaskCompletion rejects completing a soft-deleted task.
	ErrDeletedTaskCompletion = fmt.Errorf("%w: deleted tasks cannot be completed", ErrConflict)
)

// Argument errors.
var (
	// ErrNoTagIDs rejects attach and detach requests with an empty tag
	// list.
	ErrNoTagIDs = fmt.Errorf("%w: tag_ids cannot be empty", ErrInvalidArgument)

	// ErrUnknownTags rejects attaching tags that do not exist.
	ErrUnknownTags = fmt.Errorf("%w: one or more tags do not exist", ErrInvalidArgument)
)

// IsConflictError checks if the error is any lifecycle conflict.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsInvalidArgumentError checks if the error is any argument error.
func IsInvalidArgumentError(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// ServiceError wraps a lower-level failure with the operation that
// triggered it, for logs and debugging. The wrapped error keeps its
// identity for errors.Is checks.
type ServiceError struct {
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

// Unwrap returns the wrapped error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError for the given operation.
func NewServiceError(operation string, err error) *ServiceError {
	return &ServiceError{Operation: operation, Err: err}
}
