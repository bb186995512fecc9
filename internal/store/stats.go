package store

import (
	"context"

	"github.com/mlowery/tasktrack-api/internal/domain"
)

// RecentTaskSampleSize bounds the per-user task sample attached to each
// statistics row.
const RecentTaskSampleSize = 5

// UserTaskCount is one row of the per-user task statistics: the owning
// user's public profile, how many tasks they have ever created (deleted
// or not), and a small sample of their most recent tasks.
type UserTaskCount struct {
	User        domain.User    `json:"user"`
	Count       int64          `json:"task_count"`
	RecentTasks []*domain.Task `json:"recent_tasks"`
}

// StatsStore defines the interface for the statistics aggregation scan.
type StatsStore interface {
	// TaskCountByUser groups all tasks by owner, deleted included, and
	// returns the top limit owners by count descending. Equal counts are
	// broken by ascending user ID so the ordering is deterministic.
	TaskCountByUser(ctx context.Context, limit int) ([]UserTaskCount, error)
}
