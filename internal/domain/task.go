package domain

import (
	"errors"
	"time"
	"unicode/utf8"
)

// Task-specific validation errors
var (
	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrTaskTitleTooLong is returned when a task's title exceeds MaxTitleLength.
	ErrTaskTitleTooLong = errors.New("task title cannot exceed 255 characters")

	// ErrTaskUserIDEmpty is returned when a task has no owner.
	ErrTaskUserIDEmpty = errors.New("task user ID cannot be empty")

	// ErrTaskStatusInvalid is returned when a task's status is not one of
	// the legal values (pending, in_progress, completed).
	ErrTaskStatusInvalid = errors.New("task status must be 0 (pending), 1 (in_progress) or 2 (completed)")
)

// MaxTitleLength is the maximum length for task and tag titles/names.
const MaxTitleLength = 255

// TaskStatus represents the lifecycle state of a task.
// The numeric values are part of the storage and API contract.
type TaskStatus int

const (
	// TaskStatusPending means the task has not been started yet.
	TaskStatusPending TaskStatus = 0

	// TaskStatusInProgress means the task is being worked on.
	TaskStatusInProgress TaskStatus = 1

	// TaskStatusCompleted means the task is done. Completed is a trap
	// state: a completed task can only be deleted or restored.
	TaskStatusCompleted TaskStatus = 2
)

// Valid reports whether the status is one of the legal values.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// String returns the public string form of the status as exposed by the API.
func (s TaskStatus) String() string {
	switch s {
	case TaskStatusPending:
		return "pending"
	case TaskStatusInProgress:
		return "in_progress"
	case TaskStatusCompleted:
		return "completed"
	}
	return "unknown"
}

// Task represents a unit of work owned by a single user. Tasks move
// through a small lifecycle (pending -> in_progress -> completed), can be
// soft-deleted and restored, and can carry any number of tags.
//
// CompletedAt is non-nil if and only if Status is TaskStatusCompleted;
// the service layer owns this invariant. DeletedAt is the soft-delete
// tombstone: non-nil means the task is logically deleted but physically
// retained.
type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`
	UpdatedBy   *int64     `json:"updated_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at"`

	// Tags holds the task's tag set when loaded by the store.
	Tags []*Tag `json:"tags,omitempty"`
}

// NewTask creates a new Task owned by userID. The ID is assigned by the
// store on insert. If the task is created directly in the completed
// status, CompletedAt is stamped immediately to keep the completion
// invariant.
// Returns an error if validation fails.
func NewTask(
	userID int64,
	title string,
	description *string,
	status TaskStatus,
	dueDate *time.Time,
) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      status,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if status == TaskStatusCompleted {
		completedAt := now
		task.CompletedAt = &completedAt
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.UserID <= 0 {
		return ErrTaskUserIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	// The limit counts characters, not bytes, matching varchar(255).
	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return ErrTaskTitleTooLong
	}

	if !t.Status.Valid() {
		return ErrTaskStatusInvalid
	}

	return nil
}

// Deleted reports whether the task carries a soft-delete tombstone.
func (t *Task) Deleted() bool {
	return t.DeletedAt != nil
}

// Completed reports whether the task is in the completed trap state.
func (t *Task) Completed() bool {
	return t.Status == TaskStatusCompleted
}
