package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mlowery/tasktrack-api/internal/domain"
	"github.com/mlowery/tasktrack-api/internal/store"
)

// StatsInvalidator evicts cached statistics after a write that changes
// per-user task counts. Invalidation is best-effort: implementations
// log failures and never propagate them.
type StatsInvalidator interface {
	Invalidate(ctx context.Context)
}

// CreateTaskInput carries the fields accepted when creating a task.
type CreateTaskInput struct {
	UserID      int64
	Title       string
	Description *string
	Status      domain.TaskStatus
	DueDate     *time.Time

	// TagIDs optionally attaches tags in the same transaction as the
	// insert.
	TagIDs []int64
}

// TaskPatch is a partial update: nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	DueDate     *time.Time
}

// TaskService implements the task lifecycle: create, read, update,
// complete, soft-delete, restore, tag association and filtered listing.
type TaskService struct {
	tasks  store.TaskStore
	stats  StatsInvalidator
	logger *slog.Logger

	// runTx executes fn against a transaction-bound task store.
	runTx func(ctx context.Context, fn func(ts store.TaskStore) error) error

	// timeFunc is replaceable in tests.
	timeFunc func() time.Time
}

// NewTaskService creates a TaskService. A nil db runs multi-step
// operations directly against the store without a transaction, which is
// how tests wire in-memory stores. A nil stats disables cache
// invalidation.
func NewTaskService(db *sql.DB, tasks store.TaskStore, stats StatsInvalidator, log *slog.Logger) *TaskService {
	if log == nil {
		log = slog.Default()
	}
	s := &TaskService{
		tasks:    tasks,
		stats:    stats,
		logger:   log.With(slog.String("component", "task_service")),
		timeFunc: func() time.Time { return time.Now().UTC() },
	}
	s.runTx = func(ctx context.Context, fn func(ts store.TaskStore) error) error {
		if db == nil {
			return fn(tasks)
		}
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return fn(tasks.WithTx(tx))
		})
	}
	return s
}

// Create validates and stores a new task. When TagIDs are present the
// insert and the attachment happen in one transaction, so a bad tag ID
// never leaves a half-created task behind.
func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	task, err := domain.NewTask(input.UserID, input.Title, input.Description, input.Status, input.DueDate)
	if err != nil {
		return nil, err
	}

	if len(input.TagIDs) == 0 {
		if err := s.tasks.Create(ctx, task); err != nil {
			return nil, NewServiceError("create task", err)
		}
		task.Tags = []*domain.Tag{}
	} else {
		err := s.runTx(ctx, func(ts store.TaskStore) error {
			if err := ts.Create(ctx, task); err != nil {
				return err
			}
			if err := ts.AttachTags(ctx, task.ID, input.TagIDs); err != nil {
				return err
			}
			created, err := ts.GetByID(ctx, task.ID)
			if err != nil {
				return err
			}
			*task = *created
			return nil
		})
		if err != nil {
			if errors.Is(err, store.ErrInvalidEntity) {
				return nil, ErrUnknownTags
			}
			return nil, NewServiceError("create task", err)
		}
	}

	s.invalidateStats(ctx)
	return task, nil
}

// Get retrieves an active task by ID. Soft-deleted tasks report not
// found, the same as absent ones.
func (s *TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Deleted() {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

// Update applies a partial update to an active, non-completed task.
//
// Two lifecycle rules gate every update: soft-deleted tasks are frozen
// until restored, and completed tasks are frozen permanently. The check
// on the stored status runs before the patch is even looked at, so a
// patch that would keep a completed task completed is still rejected.
func (s *TaskService) Update(ctx context.Context, id, actorID int64, patch TaskPatch) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Deleted() {
		return nil, ErrTaskDeleted
	}
	if task.Completed() {
		return nil, ErrTaskCompleted
	}

	now := s.timeFunc()
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = patch.Description
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	if patch.Status != nil {
		task.Status = *patch.Status
		if task.Status == domain.TaskStatusCompleted {
			completedAt := now
			task.CompletedAt = &completedAt
		} else {
			task.CompletedAt = nil
		}
	}
	task.UpdatedBy = &actorID
	task.UpdatedAt = now

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, NewServiceError("update task", err)
	}
	return task, nil
}

// Complete transitions an active task into the completed trap state and
// stamps its completion time.
func (s *TaskService) Complete(ctx context.Context, id, actorID int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Deleted() {
		return nil, ErrDeletedTaskCompletion
	}
	if task.Completed() {
		return nil, ErrTaskAlreadyCompleted
	}

	now := s.timeFunc()
	task.Status = domain.TaskStatusCompleted
	task.CompletedAt = &now
	task.UpdatedBy = &actorID
	task.UpdatedAt = now

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, NewServiceError("complete task", err)
	}
	return task, nil
}

// Delete soft-deletes an active task.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if task.Deleted() {
		return ErrTaskAlreadyDeleted
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		return NewServiceError("delete task", err)
	}

	s.invalidateStats(ctx)
	return nil
}

// Restore clears the tombstone on a soft-deleted task and returns the
// restored task. Restoring an active or absent task reports not found.
func (s *TaskService) Restore(ctx context.Context, id int64) (*domain.Task, error) {
	if _, err := s.tasks.GetDeletedByID(ctx, id); err != nil {
		return nil, err
	}

	if err := s.tasks.Restore(ctx, id); err != nil {
		return nil, NewServiceError("restore task", err)
	}

	s.invalidateStats(ctx)
	return s.tasks.GetByID(ctx, id)
}

// AttachTags adds tags to an active task. Attachment is idempotent:
// tags already present are skipped silently. The attach and the reload
// of the resulting tag set run in one transaction.
func (s *TaskService) AttachTags(ctx context.Context, taskID, actorID int64, tagIDs []int64) (*domain.Task, error) {
	if len(tagIDs) == 0 {
		return nil, ErrNoTagIDs
	}

	var result *domain.Task
	err := s.runTx(ctx, func(ts store.TaskStore) error {
		task, err := ts.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if task.Deleted() {
			return ErrTaskDeleted
		}
		if err := ts.AttachTags(ctx, taskID, tagIDs); err != nil {
			return err
		}
		result, err = ts.GetByID(ctx, taskID)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrInvalidEntity) {
			return nil, ErrUnknownTags
		}
		return nil, err
	}
	return result, nil
}

// DetachTags removes tags from an active task. Detachment is
// idempotent: pairs that do not exist are ignored.
func (s *TaskService) DetachTags(ctx context.Context, taskID, actorID int64, tagIDs []int64) (*domain.Task, error) {
	if len(tagIDs) == 0 {
		return nil, ErrNoTagIDs
	}

	var result *domain.Task
	err := s.runTx(ctx, func(ts store.TaskStore) error {
		task, err := ts.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if task.Deleted() {
			return ErrTaskDeleted
		}
		if err := ts.DetachTags(ctx, taskID, tagIDs); err != nil {
			return err
		}
		result, err = ts.GetByID(ctx, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List returns one page of tasks matching the filter. The filter is
// normalized here, so handlers can pass raw query parameters through.
func (s *TaskService) List(ctx context.Context, filter store.TaskFilter) (*store.TaskPage, error) {
	page, err := s.tasks.List(ctx, filter.Normalize())
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return page, nil
}

// invalidateStats evicts cached statistics after a count-changing
// write. Failures are logged by the invalidator and never surface here.
func (s *TaskService) invalidateStats(ctx context.Context) {
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
}
