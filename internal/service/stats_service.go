package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mlowery/tasktrack-api/internal/store"
)

// DefaultStatsLimit is the number of users returned when the caller
// does not ask for a specific limit.
const DefaultStatsLimit = 5

// statsCacheTTL bounds how stale the cached aggregation may get even
// when eviction misses a write.
const statsCacheTTL = 10 * time.Minute

// commonStatsLimits are the limits whose cache entries are evicted on
// every count-changing write. Other limits simply age out via the TTL.
var commonStatsLimits = []int{3, 5, 10}

// StatsService serves the per-user task count aggregation through a
// read-through cache. Cache failures never fail a request: a broken
// cache degrades to hitting the database on every call.
type StatsService struct {
	stats  store.StatsStore
	cache  store.Cache
	logger *slog.Logger
	ttl    time.Duration
}

// Verify StatsService satisfies the invalidation hook used by TaskService.
var _ StatsInvalidator = (*StatsService)(nil)

// NewStatsService creates a StatsService. A nil cache disables caching
// entirely; every call runs the aggregation scan.
func NewStatsService(stats store.StatsStore, cache store.Cache, log *slog.Logger) *StatsService {
	if log == nil {
		log = slog.Default()
	}
	return &StatsService{
		stats:  stats,
		cache:  cache,
		logger: log.With(slog.String("component", "stats_service")),
		ttl:    statsCacheTTL,
	}
}

// statsCacheKey names the cache entry for one limit. The limit is part
// of the key because different limits are different result sets.
func statsCacheKey(limit int) string {
	return fmt.Sprintf("stats:task_count_by_user:limit=%d", limit)
}

// TaskCountByUser returns the top users by task count, deleted tasks
// included. A non-positive limit falls back to DefaultStatsLimit.
func (s *StatsService) TaskCountByUser(ctx context.Context, limit int) ([]store.UserTaskCount, error) {
	if limit <= 0 {
		limit = DefaultStatsLimit
	}
	key := statsCacheKey(limit)

	if s.cache != nil {
		var cached []store.UserTaskCount
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.WarnContext(ctx, "stats cache read failed, falling back to store",
				slog.String("key", key),
				slog.String("error", err.Error()))
		} else if hit {
			return cached, nil
		}
	}

	results, err := s.stats.TaskCountByUser(ctx, limit)
	if err != nil {
		return nil, NewServiceError("task count by user", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, results, s.ttl); err != nil {
			s.logger.WarnContext(ctx, "stats cache write failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}
	return results, nil
}

// Invalidate evicts the cache entries for the common limits after a
// write that changes task counts. Eviction is best-effort; a failed
// delete leaves an entry that the TTL will expire.
func (s *StatsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, limit := range commonStatsLimits {
		key := statsCacheKey(limit)
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "stats cache eviction failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}
}
