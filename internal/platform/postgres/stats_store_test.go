//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/mlowery/tasktrack-api/internal/domain"
	"github.com/mlowery/tasktrack-api/internal/store"
	"github.com/mlowery/tasktrack-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPostgresStatsStore_TaskCountByUser(t *testing.T) {
	db := testdb.GetTestDB(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		users := NewPostgresUserStore(tx, nil, bcrypt.MinCost)
		tasks := NewPostgresTaskStore(tx, nil)
		stats := NewPostgresStatsStore(tx, nil)

		seedUser := func(name string) *domain.User {
			u, err := domain.NewUser(name, fmt.Sprintf("%s@example.com", name), "password123")
			require.NoError(t, err)
			require.NoError(t, users.Create(ctx, u))
			return u
		}

		// Created-at timestamps are staggered so the recent-task sample
		// ordering is deterministic without relying on insert order.
		base := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Microsecond)
		seedTasks := func(u *domain.User, n int) []*domain.Task {
			seeded := make([]*domain.Task, 0, n)
			for i := 0; i < n; i++ {
				task, err := domain.NewTask(
					u.ID,
					fmt.Sprintf("%s task %d", u.Name, i),
					nil,
					domain.TaskStatusPending,
					nil,
				)
				require.NoError(t, err)
				task.CreatedAt = base.Add(time.Duration(i) * time.Minute)
				task.UpdatedAt = task.CreatedAt
				require.NoError(t, tasks.Create(ctx, task))
				seeded = append(seeded, task)
			}
			return seeded
		}

		alice := seedUser("stats-alice")
		bob := seedUser("stats-bob")
		carol := seedUser("stats-carol")
		erin := seedUser("stats-erin")
		dave := seedUser("stats-dave")

		seedTasks(alice, 5)
		bobTasks := seedTasks(bob, 10)
		seedTasks(carol, 3)
		seedTasks(erin, 3)

		// Soft-delete two of bob's tasks. The aggregate is deletion
		// agnostic, so his count must stay at 10.
		require.NoError(t, tasks.Delete(ctx, bobTasks[0].ID))
		require.NoError(t, tasks.Delete(ctx, bobTasks[1].ID))

		t.Run("top users ordered by count descending", func(t *testing.T) {
			rows, err := stats.TaskCountByUser(ctx, 2)
			require.NoError(t, err)
			require.Len(t, rows, 2)

			assert.Equal(t, bob.ID, rows[0].User.ID)
			assert.Equal(t, int64(10), rows[0].Count)
			assert.Equal(t, bob.Name, rows[0].User.Name)
			assert.Equal(t, alice.ID, rows[1].User.ID)
			assert.Equal(t, int64(5), rows[1].Count)
		})

		t.Run("equal counts break ties by ascending user id", func(t *testing.T) {
			rows, err := stats.TaskCountByUser(ctx, 10)
			require.NoError(t, err)
			require.Len(t, rows, 4)

			assert.Equal(t, carol.ID, rows[2].User.ID)
			assert.Equal(t, int64(3), rows[2].Count)
			assert.Equal(t, erin.ID, rows[3].User.ID)
			assert.Equal(t, int64(3), rows[3].Count)
		})

		t.Run("users with no tasks never appear", func(t *testing.T) {
			rows, err := stats.TaskCountByUser(ctx, 10)
			require.NoError(t, err)
			for _, row := range rows {
				assert.NotEqual(t, dave.ID, row.User.ID)
			}
		})

		t.Run("recent sample is bounded and newest first", func(t *testing.T) {
			rows, err := stats.TaskCountByUser(ctx, 1)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			require.Equal(t, bob.ID, rows[0].User.ID)

			recent := rows[0].RecentTasks
			require.Len(t, recent, store.RecentTaskSampleSize)
			for i, task := range recent {
				want := bobTasks[len(bobTasks)-1-i]
				assert.Equal(t, want.ID, task.ID)
			}
			for i := 1; i < len(recent); i++ {
				assert.False(t, recent[i].CreatedAt.After(recent[i-1].CreatedAt),
					"recent tasks must be ordered newest first")
			}
		})

		t.Run("sample holds every task of a small owner", func(t *testing.T) {
			rows, err := stats.TaskCountByUser(ctx, 10)
			require.NoError(t, err)
			for _, row := range rows {
				if row.User.ID == carol.ID {
					assert.Len(t, row.RecentTasks, 3)
				}
			}
		})
	})
}
