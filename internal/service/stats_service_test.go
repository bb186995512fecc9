package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlowery/tasktrack-api/internal/domain"
	"github.com/mlowery/tasktrack-api/internal/store"
)

func sampleCounts() []store.UserTaskCount {
	return []store.UserTaskCount{
		{
			User:  domain.User{ID: 1, Name: "ada", Email: "ada@example.com"},
			Count: 12,
			RecentTasks: []*domain.Task{
				{ID: 42, UserID: 1, Title: "latest"},
			},
		},
		{
			User:        domain.User{ID: 2, Name: "grace", Email: "grace@example.com"},
			Count:       7,
			RecentTasks: []*domain.Task{},
		},
	}
}

func TestStatsServiceReadThrough(t *testing.T) {
	ctx := context.Background()

	t.Run("first call scans, second call hits the cache", func(t *testing.T) {
		stats := &fakeStatsStore{results: sampleCounts()}
		cache := newFakeCache()
		svc := NewStatsService(stats, cache, nil)

		first, err := svc.TaskCountByUser(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.count())

		second, err := svc.TaskCountByUser(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.count(), "second call must be served from cache")
		assert.Equal(t, first, second)
	})

	t.Run("different limits cache independently", func(t *testing.T) {
		stats := &fakeStatsStore{results: sampleCounts()}
		cache := newFakeCache()
		svc := NewStatsService(stats, cache, nil)

		_, err := svc.TaskCountByUser(ctx, 3)
		require.NoError(t, err)
		_, err = svc.TaskCountByUser(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.count())
	})

	t.Run("non-positive limit falls back to the default", func(t *testing.T) {
		stats := &fakeStatsStore{results: sampleCounts()}
		cache := newFakeCache()
		svc := NewStatsService(stats, cache, nil)

		_, err := svc.TaskCountByUser(ctx, 0)
		require.NoError(t, err)

		_, hit := cache.data[statsCacheKey(DefaultStatsLimit)]
		assert.True(t, hit)
	})

	t.Run("cache read failure degrades to the store", func(t *testing.T) {
		stats := &fakeStatsStore{results: sampleCounts()}
		cache := newFakeCache()
		cache.getErr = errors.New("redis down")
		svc := NewStatsService(stats, cache, nil)

		got, err := svc.TaskCountByUser(ctx, 5)
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, 1, stats.count())
	})

	t.Run("cache write failure does not fail the request", func(t *testing.T) {
		stats := &fakeStatsStore{results: sampleCounts()}
		cache := newFakeCache()
		cache.setErr = errors.New("redis down")
		svc := NewStatsService(stats, cache, nil)

		got, err := svc.TaskCountByUser(ctx, 5)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("nil cache scans every time", func(t *testing.T) {
		stats := &fakeStatsStore{results: sampleCounts()}
		svc := NewStatsService(stats, nil, nil)

		_, err := svc.TaskCountByUser(ctx, 5)
		require.NoError(t, err)
		_, err = svc.TaskCountByUser(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.count())
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		stats := &fakeStatsStore{err: errors.New("connection refused")}
		svc := NewStatsService(stats, newFakeCache(), nil)

		_, err := svc.TaskCountByUser(ctx, 5)
		assert.Error(t, err)
	})
}

func TestStatsServiceInvalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("evicts the common limits", func(t *testing.T) {
		stats := &fakeStatsStore{results: sampleCounts()}
		cache := newFakeCache()
		svc := NewStatsService(stats, cache, nil)

		svc.Invalidate(ctx)

		assert.Equal(t, []string{
			statsCacheKey(3),
			statsCacheKey(5),
			statsCacheKey(10),
		}, cache.deletedKeys())
	})

	t.Run("a write refreshes the next read", func(t *testing.T) {
		stats := &fakeStatsStore{results: sampleCounts()}
		cache := newFakeCache()
		svc := NewStatsService(stats, cache, nil)

		_, err := svc.TaskCountByUser(ctx, 5)
		require.NoError(t, err)
		svc.Invalidate(ctx)
		_, err = svc.TaskCountByUser(ctx, 5)
		require.NoError(t, err)

		assert.Equal(t, 2, stats.count())
	})

	t.Run("nil cache is a no-op", func(t *testing.T) {
		svc := NewStatsService(&fakeStatsStore{}, nil, nil)
		svc.Invalidate(ctx)
	})
}
