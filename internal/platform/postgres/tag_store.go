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

const tagColumns = `id, user_id, name, updated_by, created_at, updated_at, deleted_at`

// PostgresTagStore implements store.TagStore using a PostgreSQL database.
type PostgresTagStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Verify PostgresTagStore implements store.TagStore at compile time.
var _ store.TagStore = (*PostgresTagStore)(nil)

// NewPostgresTagStore creates a new PostgresTagStore with the given
// database connection or transaction handle.
func NewPostgresTagStore(db store.DBTX, log *slog.Logger) *PostgresTagStore {
	if log == nil {
		log = slog.Default()
	}
	return &PostgresTagStore{
		db:     db,
		logger: log.With(slog.String("component", "tag_store")),
	}
}

// Create saves a new tag to the database and assigns its generated ID.
func (s *PostgresTagStore) Create(ctx context.Context, tag *domain.Tag) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO tags (user_id, name, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		tag.UserID,
		tag.Name,
		tag.UpdatedBy,
		tag.CreatedAt,
		tag.UpdatedAt,
	).Scan(&tag.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("creating tag: %w", store.ErrInvalidEntity)
		}
		log.ErrorContext(ctx, "failed to insert tag", slog.String("error", err.Error()))
		return fmt.Errorf("creating tag: %w", err)
	}

	log.DebugContext(ctx, "tag created",
		slog.Int64("tag_id", tag.ID),
		slog.Int64("user_id", tag.UserID))
	return nil
}

// GetByID retrieves an active tag by its ID.
func (s *PostgresTagStore) GetByID(ctx context.Context, id int64) (*domain.Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM tags WHERE id = $1 AND deleted_at IS NULL`, tagColumns)

	tag, err := scanTagRow(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTagNotFound
		}
		return nil, fmt.Errorf("getting tag by id: %w", err)
	}
	return tag, nil
}

// List returns all active tags matching the filter.
func (s *PostgresTagStore) List(ctx context.Context, filter store.TagFilter) ([]*domain.Tag, error) {
	filter = filter.Normalize()

	var conds []string
	var args []any
	conds = append(conds, "deleted_at IS NULL")

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Keyword != "" {
		args = append(args, "%"+filter.Keyword+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	query := fmt.Sprintf(
		`SELECT %s FROM tags WHERE %s ORDER BY %s %s, id ASC`,
		tagColumns,
		strings.Join(conds, " AND "),
		filter.SortBy, strings.ToUpper(filter.SortDirection),
	)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tags := []*domain.Tag{}
	for rows.Next() {
		tag, err := scanTagRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tag rows: %w", err)
	}
	return tags, nil
}

// Update writes the tag's mutable columns back to its row.
func (s *PostgresTagStore) Update(ctx context.Context, tag *domain.Tag) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tags
		SET name = $1, updated_by = $2, updated_at = $3
		WHERE id = $4 AND deleted_at IS NULL`

	result, err := s.db.ExecContext(ctx, query,
		tag.Name,
		tag.UpdatedBy,
		tag.UpdatedAt,
		tag.ID,
	)
	if err != nil {
		log.ErrorContext(ctx, "failed to update tag",
			slog.Int64("tag_id", tag.ID),
			slog.String("error", err.Error()))
		return fmt.Errorf("updating tag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if rows == 0 {
		return store.ErrTagNotFound
	}

	log.DebugContext(ctx, "tag updated", slog.Int64("tag_id", tag.ID))
	return nil
}

// Delete stamps the soft-delete tombstone on an active tag.
func (s *PostgresTagStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tags
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.ErrorContext(ctx, "failed to soft-delete tag",
			slog.Int64("tag_id", id),
			slog.String("error", err.Error()))
		return fmt.Errorf("deleting tag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if rows == 0 {
		return store.ErrTagNotFound
	}

	log.DebugContext(ctx, "tag soft-deleted", slog.Int64("tag_id", id))
	return nil
}

// scanTagRow scans one tag row in tagColumns order.
func scanTagRow(row rowScanner) (*domain.Tag, error) {
	var tag domain.Tag
	err := row.Scan(
		&tag.ID,
		&tag.UserID,
		&tag.Name,
		&tag.UpdatedBy,
		&tag.CreatedAt,
		&tag.UpdatedAt,
		&tag.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tag, nil
}
