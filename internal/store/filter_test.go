package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskFilter_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		filter   TaskFilter
		wantSort string
		wantDir  string
		wantPage int
		wantPer  int
	}{
		{
			name:     "zero value gets defaults",
			filter:   TaskFilter{},
			wantSort: "created_at",
			wantDir:  "desc",
			wantPage: 1,
			wantPer:  15,
		},
		{
			name:     "whitelisted column kept",
			filter:   TaskFilter{SortBy: "due_date", SortDirection: "asc", Page: 3, PerPage: 20},
			wantSort: "due_date",
			wantDir:  "asc",
			wantPage: 3,
			wantPer:  20,
		},
		{
			name:     "unknown column falls back silently",
			filter:   TaskFilter{SortBy: "hashed_password"},
			wantSort: "created_at",
			wantDir:  "desc",
			wantPage: 1,
			wantPer:  15,
		},
		{
			name:     "sql injection attempt falls back",
			filter:   TaskFilter{SortBy: "id; DROP TABLE tasks--"},
			wantSort: "created_at",
			wantDir:  "desc",
			wantPage: 1,
			wantPer:  15,
		},
		{
			name:     "bad direction collapses to desc",
			filter:   TaskFilter{SortBy: "id", SortDirection: "sideways"},
			wantSort: "id",
			wantDir:  "desc",
			wantPage: 1,
			wantPer:  15,
		},
		{
			name:     "page below one floored",
			filter:   TaskFilter{Page: -5},
			wantSort: "created_at",
			wantDir:  "desc",
			wantPage: 1,
			wantPer:  15,
		},
		{
			name:     "per page clamped to max",
			filter:   TaskFilter{PerPage: 10000},
			wantSort: "created_at",
			wantDir:  "desc",
			wantPage: 1,
			wantPer:  100,
		},
		{
			name:     "negative per page clamped to min",
			filter:   TaskFilter{PerPage: -1},
			wantSort: "created_at",
			wantDir:  "desc",
			wantPage: 1,
			wantPer:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Normalize()
			assert.Equal(t, tt.wantSort, got.SortBy)
			assert.Equal(t, tt.wantDir, got.SortDirection)
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantPer, got.PerPage)
		})
	}
}

func TestTaskFilter_Offset(t *testing.T) {
	f := TaskFilter{Page: 3, PerPage: 15}.Normalize()
	assert.Equal(t, 30, f.Offset())

	f = TaskFilter{}.Normalize()
	assert.Equal(t, 0, f.Offset())
}

func TestVisibilityFromFlags(t *testing.T) {
	assert.Equal(t, VisibilityActive, VisibilityFromFlags(false, false))
	assert.Equal(t, VisibilityAll, VisibilityFromFlags(false, true))
	assert.Equal(t, VisibilityDeletedOnly, VisibilityFromFlags(true, false))
	// only_deleted wins when both flags are set
	assert.Equal(t, VisibilityDeletedOnly, VisibilityFromFlags(true, true))
}

func TestTagFilter_Normalize(t *testing.T) {
	got := TagFilter{SortBy: "status", SortDirection: "ASC"}.Normalize()
	assert.Equal(t, "created_at", got.SortBy) // status is not a tag column
	assert.Equal(t, "desc", got.SortDirection)

	got = TagFilter{SortBy: "name", SortDirection: "asc"}.Normalize()
	assert.Equal(t, "name", got.SortBy)
	assert.Equal(t, "asc", got.SortDirection)
}

func TestNewTaskPage(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		page     int
		perPage  int
		wantLast int
	}{
		{name: "exact multiple", total: 30, page: 1, perPage: 15, wantLast: 2},
		{name: "partial last page", total: 31, page: 1, perPage: 15, wantLast: 3},
		{name: "empty result still has one page", total: 0, page: 1, perPage: 15, wantLast: 1},
		{name: "single row", total: 1, page: 1, perPage: 100, wantLast: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewTaskPage(nil, tt.total, tt.page, tt.perPage)
			assert.Equal(t, tt.wantLast, page.LastPage)
			assert.NotNil(t, page.Tasks)
			assert.Equal(t, tt.total, page.Total)
		})
	}
}
