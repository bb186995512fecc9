package store

import (
	"time"

	"github.com/mlowery/tasktrack-api/internal/domain"
)

// Pagination bounds for task listing. Clients can never request an
// unbounded result set.
const (
	DefaultPerPage = 15
	MaxPerPage     = 100
	MinPerPage     = 1
)

// Default sort settings shared by task and tag listing.
const (
	DefaultSortColumn = "created_at"
	SortAsc           = "asc"
	SortDesc          = "desc"
)

// Visibility selects which soft-delete states a listing returns.
type Visibility int

const (
	// VisibilityActive returns only rows whose tombstone is unset. This
	// is the default.
	VisibilityActive Visibility = iota

	// VisibilityDeletedOnly returns only soft-deleted rows.
	VisibilityDeletedOnly

	// VisibilityAll returns rows regardless of deletion state.
	VisibilityAll
)

// VisibilityFromFlags maps the two request flags onto a Visibility.
// only_deleted takes precedence over with_deleted when both are set.
func VisibilityFromFlags(onlyDeleted, withDeleted bool) Visibility {
	switch {
	case onlyDeleted:
		return VisibilityDeletedOnly
	case withDeleted:
		return VisibilityAll
	default:
		return VisibilityActive
	}
}

// taskSortColumns is the whitelist of columns a caller may sort tasks
// by. Anything else silently falls back to the default so arbitrary
// columns are never exposed to ORDER BY.
var taskSortColumns = map[string]bool{
	"id":         true,
	"title":      true,
	"status":     true,
	"due_date":   true,
	"created_at": true,
	"updated_at": true,
}

// tagSortColumns is the whitelist of columns a caller may sort tags by.
var tagSortColumns = map[string]bool{
	"id":         true,
	"name":       true,
	"created_at": true,
	"updated_at": true,
}

// TaskFilter is the bundle of optional predicates plus sort and page
// parameters accepted by task listing. All predicates are conjunctive;
// Keyword alone is a disjunction over title and description.
//
// Filters built from untrusted input must be passed through Normalize
// before reaching a store implementation.
type TaskFilter struct {
	UserID     *int64
	Status     *domain.TaskStatus
	Keyword    string
	DueFrom    *time.Time
	DueTo      *time.Time
	Visibility Visibility

	SortBy        string
	SortDirection string
	Page          int
	PerPage       int
}

// Normalize returns a copy of the filter with every untrusted knob
// forced into its safe range: sort column restricted to the whitelist,
// direction collapsed to asc/desc, page floored at 1 and page size
// clamped to [MinPerPage, MaxPerPage].
func (f TaskFilter) Normalize() TaskFilter {
	if !taskSortColumns[f.SortBy] {
		f.SortBy = DefaultSortColumn
	}
	f.SortDirection = normalizeDirection(f.SortDirection)

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage == 0 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage < MinPerPage {
		f.PerPage = MinPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}

	return f
}

// Offset returns the row offset for the filter's page settings. The
// filter must already be normalized.
func (f TaskFilter) Offset() int {
	return (f.Page - 1) * f.PerPage
}

// TagFilter is the filter bundle for tag listing. Tag listing is not
// paginated; it mirrors the task filter's owner/keyword/sort knobs.
type TagFilter struct {
	UserID  *int64
	Keyword string

	SortBy        string
	SortDirection string
}

// Normalize returns a copy of the filter with the sort settings forced
// into their safe ranges.
func (f TagFilter) Normalize() TagFilter {
	if !tagSortColumns[f.SortBy] {
		f.SortBy = DefaultSortColumn
	}
	f.SortDirection = normalizeDirection(f.SortDirection)
	return f
}

// normalizeDirection collapses any input that is not exactly "asc" into
// "desc", the default sort direction.
func normalizeDirection(dir string) string {
	if dir == SortAsc {
		return SortAsc
	}
	return SortDesc
}

// TaskPage is one page of task results plus the pagination metadata
// computed from the bounded scan.
type TaskPage struct {
	Tasks    []*domain.Task `json:"data"`
	Total    int64          `json:"total"`
	Page     int            `json:"current_page"`
	PerPage  int            `json:"per_page"`
	LastPage int            `json:"last_page"`
}

// NewTaskPage assembles a page and derives LastPage from the total row
// count. An empty result still reports LastPage 1 so that the current
// page is never past the last.
func NewTaskPage(tasks []*domain.Task, total int64, page, perPage int) *TaskPage {
	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}

	if tasks == nil {
		tasks = []*domain.Task{}
	}

	return &TaskPage{
		Tasks:    tasks,
		Total:    total,
		Page:     page,
		PerPage:  perPage,
		LastPage: lastPage,
	}
}
