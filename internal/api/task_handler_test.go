package api

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlowery/tasktrack-api/internal/domain"
	"github.com/mlowery/tasktrack-api/internal/store"
)

func TestParseTaskFilter(t *testing.T) {
	t.Run("empty query yields the zero filter", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/tasks", nil)

		filter, err := parseTaskFilter(r)
		require.NoError(t, err)

		assert.Nil(t, filter.UserID)
		assert.Nil(t, filter.Status)
		assert.Empty(t, filter.Keyword)
		assert.Equal(t, store.VisibilityActive, filter.Visibility)
	})

	t.Run("full query parses", func(t *testing.T) {
		r := httptest.NewRequest("GET",
			"/api/tasks?user_id=7&status=2&keyword=tax&due_from=2026-01-01&due_to=2026-12-31"+
				"&sort_by=due_date&sort_direction=asc&page=3&per_page=25", nil)

		filter, err := parseTaskFilter(r)
		require.NoError(t, err)

		require.NotNil(t, filter.UserID)
		assert.Equal(t, int64(7), *filter.UserID)
		require.NotNil(t, filter.Status)
		assert.Equal(t, domain.TaskStatusCompleted, *filter.Status)
		assert.Equal(t, "tax", filter.Keyword)
		require.NotNil(t, filter.DueFrom)
		require.NotNil(t, filter.DueTo)
		assert.Equal(t, "due_date", filter.SortBy)
		assert.Equal(t, store.SortAsc, filter.SortDirection)
		assert.Equal(t, 3, filter.Page)
		assert.Equal(t, 25, filter.PerPage)
	})

	t.Run("due dates accept RFC 3339", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/tasks?due_from=2026-01-01T09%3A00%3A00Z", nil)

		filter, err := parseTaskFilter(r)
		require.NoError(t, err)
		require.NotNil(t, filter.DueFrom)
		assert.Equal(t, 9, filter.DueFrom.Hour())
	})

	t.Run("only_deleted wins over with_deleted", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/tasks?only_deleted=1&with_deleted=1", nil)

		filter, err := parseTaskFilter(r)
		require.NoError(t, err)
		assert.Equal(t, store.VisibilityDeletedOnly, filter.Visibility)
	})

	t.Run("with_deleted alone widens visibility", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/tasks?with_deleted=true", nil)

		filter, err := parseTaskFilter(r)
		require.NoError(t, err)
		assert.Equal(t, store.VisibilityAll, filter.Visibility)
	})

	t.Run("rejects an unparseable status", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/tasks?status=done", nil)
		_, err := parseTaskFilter(r)
		assert.Error(t, err)
	})

	t.Run("rejects an out-of-range status", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/tasks?status=9", nil)
		_, err := parseTaskFilter(r)
		assert.Error(t, err)
	})

	t.Run("rejects a bad due date", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/tasks?due_from=yesterday", nil)
		_, err := parseTaskFilter(r)
		assert.Error(t, err)
	})

	t.Run("garbage paging falls through to Normalize", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/tasks?page=-2&per_page=9999&sort_by=password", nil)

		filter, err := parseTaskFilter(r)
		require.NoError(t, err)

		normalized := filter.Normalize()
		assert.Equal(t, 1, normalized.Page)
		assert.Equal(t, store.MaxPerPage, normalized.PerPage)
		assert.Equal(t, store.DefaultSortColumn, normalized.SortBy)
	})
}
