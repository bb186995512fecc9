package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mlowery/tasktrack-api/internal/domain"
	"github.com/mlowery/tasktrack-api/internal/platform/logger"
	"github.com/mlowery/tasktrack-api/internal/store"
)

// taskColumns is the canonical column list for task row scans. Every
// SELECT in this file uses it so scanTaskRow stays in sync.
const taskColumns = `id, user_id, title, description, status, due_date, completed_at, updated_by, created_at, updated_at, deleted_at`

// PostgresTaskStore implements store.TaskStore using a PostgreSQL database.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Verify PostgresTaskStore implements store.TaskStore at compile time.
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a new PostgresTaskStore with the given
// database connection or transaction handle.
func NewPostgresTaskStore(db store.DBTX, log *slog.Logger) *PostgresTaskStore {
	if log == nil {
		log = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: log.With(slog.String("component", "task_store")),
	}
}

// WithTx returns a copy of the store bound to the given transaction.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

// Create saves a new task to the database and assigns its generated ID.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO tasks (user_id, title, description, status, due_date, completed_at, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		task.UserID,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
		task.CompletedAt,
		task.UpdatedBy,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			log.WarnContext(ctx, "task insert references missing user",
				slog.Int64("user_id", task.UserID))
			return fmt.Errorf("creating task: %w", store.ErrInvalidEntity)
		}
		log.ErrorContext(ctx, "failed to insert task", slog.String("error", err.Error()))
		return fmt.Errorf("creating task: %w", err)
	}

	log.DebugContext(ctx, "task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("user_id", task.UserID))
	return nil
}

// GetByID retrieves a task by ID regardless of its deletion state and
// loads the task's active tags.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1`, taskColumns)

	task, err := scanTaskRow(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("getting task by id: %w", err)
	}

	if err := s.loadTags(ctx, []*domain.Task{task}); err != nil {
		return nil, err
	}
	return task, nil
}

// GetDeletedByID retrieves a task by ID among soft-deleted tasks only.
func (s *PostgresTaskStore) GetDeletedByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1 AND deleted_at IS NOT NULL`, taskColumns)

	task, err := scanTaskRow(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("getting deleted task by id: %w", err)
	}
	return task, nil
}

// Update writes the task's mutable columns back to its row.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, due_date = $4,
		    completed_at = $5, updated_by = $6, updated_at = $7
		WHERE id = $8`

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
		task.CompletedAt,
		task.UpdatedBy,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.ErrorContext(ctx, "failed to update task",
			slog.Int64("task_id", task.ID),
			slog.String("error", err.Error()))
		return fmt.Errorf("updating task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if rows == 0 {
		return store.ErrTaskNotFound
	}

	log.DebugContext(ctx, "task updated", slog.Int64("task_id", task.ID))
	return nil
}

// Delete stamps the soft-delete tombstone on an active task.
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.ErrorContext(ctx, "failed to soft-delete task",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return fmt.Errorf("deleting task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if rows == 0 {
		return store.ErrTaskNotFound
	}

	log.DebugContext(ctx, "task soft-deleted", slog.Int64("task_id", id))
	return nil
}

// Restore clears the tombstone on a soft-deleted task.
func (s *PostgresTaskStore) Restore(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET deleted_at = NULL, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NOT NULL`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.ErrorContext(ctx, "failed to restore task",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return fmt.Errorf("restoring task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking restore result: %w", err)
	}
	if rows == 0 {
		return store.ErrTaskNotFound
	}

	log.DebugContext(ctx, "task restored", slog.Int64("task_id", id))
	return nil
}

// List runs the filter's query plan: a COUNT over the predicate set
// followed by one bounded page scan, then a batch tag load for the page.
func (s *PostgresTaskStore) List(ctx context.Context, filter store.TaskFilter) (*store.TaskPage, error) {
	filter = filter.Normalize()

	where, args := buildTaskPredicates(filter)

	var total int64
	countQuery := `SELECT COUNT(*) FROM tasks` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting tasks: %w", err)
	}

	pageQuery, pageArgs := buildTaskListQuery(filter, where, args)
	rows, err := s.db.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTaskRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task rows: %w", err)
	}

	if err := s.loadTags(ctx, tasks); err != nil {
		return nil, err
	}

	return store.NewTaskPage(tasks, total, filter.Page, filter.PerPage), nil
}

// AttachTags inserts the (task, tag) pairs that are not already present.
// ON CONFLICT DO NOTHING makes re-attachment a no-op without touching
// the existing rows' timestamps.
func (s *PostgresTaskStore) AttachTags(ctx context.Context, taskID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO task_tag (task_id, tag_id, created_at, updated_at)
		SELECT $1, tag_id, NOW(), NOW()
		FROM unnest($2::bigint[]) AS tag_id
		ON CONFLICT (task_id, tag_id) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, query, taskID, tagIDs); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("attaching tags: %w", store.ErrInvalidEntity)
		}
		log.ErrorContext(ctx, "failed to attach tags",
			slog.Int64("task_id", taskID),
			slog.String("error", err.Error()))
		return fmt.Errorf("attaching tags: %w", err)
	}

	log.DebugContext(ctx, "tags attached",
		slog.Int64("task_id", taskID),
		slog.Int("tag_count", len(tagIDs)))
	return nil
}

// DetachTags removes the listed (task, tag) pairs, ignoring absent ones.
func (s *PostgresTaskStore) DetachTags(ctx context.Context, taskID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM task_tag WHERE task_id = $1 AND tag_id = ANY($2::bigint[])`

	if _, err := s.db.ExecContext(ctx, query, taskID, tagIDs); err != nil {
		log.ErrorContext(ctx, "failed to detach tags",
			slog.Int64("task_id", taskID),
			slog.String("error", err.Error()))
		return fmt.Errorf("detaching tags: %w", err)
	}

	log.DebugContext(ctx, "tags detached",
		slog.Int64("task_id", taskID),
		slog.Int("tag_count", len(tagIDs)))
	return nil
}

// loadTags fetches the active tags for the given tasks in one query and
// distributes them onto the tasks. Tasks with no tags get an empty,
// non-nil slice so JSON renders [] rather than null.
func (s *PostgresTaskStore) loadTags(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Task, len(tasks))
	ids := make([]int64, 0, len(tasks))
	for _, task := range tasks {
		task.Tags = []*domain.Tag{}
		byID[task.ID] = task
		ids = append(ids, task.ID)
	}

	query := `
		SELECT tt.task_id, t.id, t.user_id, t.name, t.updated_by, t.created_at, t.updated_at, t.deleted_at
		FROM task_tag tt
		JOIN tags t ON t.id = tt.tag_id
		WHERE tt.task_id = ANY($1::bigint[]) AND t.deleted_at IS NULL
		ORDER BY t.id`

	rows, err := s.db.QueryContext(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("loading task tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var taskID int64
		var tag domain.Tag
		if err := rows.Scan(
			&taskID,
			&tag.ID,
			&tag.UserID,
			&tag.Name,
			&tag.UpdatedBy,
			&tag.CreatedAt,
			&tag.UpdatedAt,
			&tag.DeletedAt,
		); err != nil {
			return fmt.Errorf("scanning tag row: %w", err)
		}
		if task, ok := byID[taskID]; ok {
			task.Tags = append(task.Tags, &tag)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating tag rows: %w", err)
	}
	return nil
}

// buildTaskPredicates translates the filter into a WHERE clause and its
// positional arguments. All predicates are ANDed; the keyword predicate
// is a case-insensitive disjunction over title and description.
func buildTaskPredicates(f store.TaskFilter) (string, []any) {
	var conds []string
	var args []any

	switch f.Visibility {
	case store.VisibilityDeletedOnly:
		conds = append(conds, "deleted_at IS NOT NULL")
	case store.VisibilityAll:
		// no deletion predicate
	default:
		conds = append(conds, "deleted_at IS NULL")
	}

	if f.UserID != nil {
		args = append(args, *f.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Keyword != "" {
		args = append(args, "%"+f.Keyword+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", n, n))
	}
	if f.DueFrom != nil {
		args = append(args, *f.DueFrom)
		conds = append(conds, fmt.Sprintf("due_date >= $%d", len(args)))
	}
	if f.DueTo != nil {
		args = append(args, *f.DueTo)
		conds = append(conds, fmt.Sprintf("due_date <= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// buildTaskListQuery assembles the page scan for a normalized filter.
// The sort column and direction come from the Normalize whitelist, so
// interpolating them into ORDER BY is safe. Ascending ID breaks ties to
// keep page boundaries stable under equal sort keys.
func buildTaskListQuery(f store.TaskFilter, where string, args []any) (string, []any) {
	args = append(args[:len(args):len(args)], f.PerPage, f.Offset())
	query := fmt.Sprintf(
		`SELECT %s FROM tasks%s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d`,
		taskColumns, where,
		f.SortBy, strings.ToUpper(f.SortDirection),
		len(args)-1, len(args),
	)
	return query, args
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan code.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTaskRow scans one task row in taskColumns order.
func scanTaskRow(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.DueDate,
		&task.CompletedAt,
		&task.UpdatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
		&task.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}
