package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mlowery/tasktrack-api/internal/domain"
	"github.com/mlowery/tasktrack-api/internal/store"
)

// PostgresStatsStore implements store.StatsStore using a PostgreSQL database.
type PostgresStatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Verify PostgresStatsStore implements store.StatsStore at compile time.
var _ store.StatsStore = (*PostgresStatsStore)(nil)

// NewPostgresStatsStore creates a new PostgresStatsStore with the given
// database connection.
func NewPostgresStatsStore(db store.DBTX, log *slog.Logger) *PostgresStatsStore {
	if log == nil {
		log = slog.Default()
	}
	return &PostgresStatsStore{
		db:     db,
		logger: log.With(slog.String("component", "stats_store")),
	}
}

// TaskCountByUser runs the aggregation scan in two queries: a grouped
// count over all tasks (deleted included, so counts reflect everything a
// user ever created), then a windowed fetch of each listed user's most
// recent tasks. Users with no tasks never appear.
func (s *PostgresStatsStore) TaskCountByUser(ctx context.Context, limit int) ([]store.UserTaskCount, error) {
	countQuery := `
		SELECT u.id, u.name, u.email, u.created_at, u.updated_at, COUNT(t.id)
		FROM users u
		JOIN tasks t ON t.user_id = u.id
		GROUP BY u.id, u.name, u.email, u.created_at, u.updated_at
		ORDER BY COUNT(t.id) DESC, u.id ASC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, countQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("counting tasks by user: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []store.UserTaskCount{}
	byUser := make(map[int64]int)
	userIDs := []int64{}
	for rows.Next() {
		var row store.UserTaskCount
		if err := rows.Scan(
			&row.User.ID,
			&row.User.Name,
			&row.User.Email,
			&row.User.CreatedAt,
			&row.User.UpdatedAt,
			&row.Count,
		); err != nil {
			return nil, fmt.Errorf("scanning stats row: %w", err)
		}
		row.RecentTasks = []*domain.Task{}
		byUser[row.User.ID] = len(results)
		userIDs = append(userIDs, row.User.ID)
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stats rows: %w", err)
	}

	if len(results) == 0 {
		return results, nil
	}

	recentQuery := fmt.Sprintf(`
		SELECT %s FROM (
			SELECT %s,
			       ROW_NUMBER() OVER (PARTITION BY user_id ORDER BY created_at DESC, id DESC) AS rn
			FROM tasks
			WHERE user_id = ANY($1::bigint[])
		) ranked
		WHERE rn <= $2
		ORDER BY user_id ASC, rn ASC`, taskColumns, taskColumns)

	taskRows, err := s.db.QueryContext(ctx, recentQuery, userIDs, store.RecentTaskSampleSize)
	if err != nil {
		return nil, fmt.Errorf("fetching recent tasks: %w", err)
	}
	defer func() { _ = taskRows.Close() }()

	for taskRows.Next() {
		task, err := scanTaskRow(taskRows)
		if err != nil {
			return nil, fmt.Errorf("scanning recent task row: %w", err)
		}
		if idx, ok := byUser[task.UserID]; ok {
			results[idx].RecentTasks = append(results[idx].RecentTasks, task)
		}
	}
	if err := taskRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recent task rows: %w", err)
	}

	return results, nil
}
