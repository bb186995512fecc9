package store

import (
	"context"
	"database/sql"

	"github.com/mlowery/tasktrack-api/internal/domain"
)

// TaskStore defines the interface for task persistence.
//
// Soft deletion is a tombstone: Delete stamps deleted_at, Restore clears
// it, and no operation ever removes a task row physically. Lookup
// visibility varies per method and is documented on each one.
type TaskStore interface {
	// Create saves a new task and assigns its ID.
	// Returns ErrInvalidEntity if the owning user does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its ID, including soft-deleted tasks,
	// with its tag set loaded. Several lifecycle operations must see
	// deleted rows in order to report the deletion as a conflict.
	// Returns ErrTaskNotFound if no task with that ID exists at all.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// GetDeletedByID retrieves a task by ID only among soft-deleted
	// tasks. Returns ErrTaskNotFound if the task is absent or active.
	GetDeletedByID(ctx context.Context, id int64) (*domain.Task, error)

	// Update writes the task's mutable columns (title, description,
	// status, due date, completion timestamp, audit fields).
	// Returns ErrTaskNotFound if the row no longer exists.
	Update(ctx context.Context, task *domain.Task) error

	// Delete stamps the soft-delete tombstone on an active task.
	// Returns ErrTaskNotFound if no active task with that ID exists.
	Delete(ctx context.Context, id int64) error

	// Restore clears the tombstone on a soft-deleted task.
	// Returns ErrTaskNotFound if no soft-deleted task with that ID exists.
	Restore(ctx context.Context, id int64) error

	// List runs the filter's bounded query plan and returns one page of
	// tasks plus pagination metadata. The filter must be normalized.
	List(ctx context.Context, filter TaskFilter) (*TaskPage, error)

	// AttachTags adds the (task, tag) pairs that are not already
	// present. Existing pairs are left untouched: no duplicate rows, no
	// error, no timestamp refresh.
	AttachTags(ctx context.Context, taskID int64, tagIDs []int64) error

	// DetachTags removes the listed (task, tag) pairs. Pairs that do not
	// exist are silently ignored.
	DetachTags(ctx context.Context, taskID int64, tagIDs []int64) error

	// WithTx returns a TaskStore bound to the given transaction, so
	// multiple operations can run atomically. The transaction is created
	// and managed by the caller, typically via RunInTransaction.
	WithTx(tx *sql.Tx) TaskStore
}
