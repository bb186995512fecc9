package store

import (
	"context"

	"github.com/mlowery/tasktrack-api/internal/domain"
)

// TagStore defines the interface for tag persistence. Unlike tasks,
// tag lookups only resolve active (non-deleted) tags.
type TagStore interface {
	// Create saves a new tag and assigns its ID.
	// Returns ErrInvalidEntity if the owning user does not exist.
	Create(ctx context.Context, tag *domain.Tag) error

	// GetByID retrieves an active tag by its ID.
	// Returns ErrTagNotFound if the tag is absent or soft-deleted.
	GetByID(ctx context.Context, id int64) (*domain.Tag, error)

	// List returns all active tags matching the filter, ordered by its
	// sort settings. The filter must be normalized.
	List(ctx context.Context, filter TagFilter) ([]*domain.Tag, error)

	// Update writes the tag's mutable columns (name, audit fields).
	// Returns ErrTagNotFound if the row no longer exists.
	Update(ctx context.Context, tag *domain.Tag) error

	// Delete stamps the soft-delete tombstone on an active tag.
	// Returns ErrTagNotFound if no active tag with that ID exists.
	Delete(ctx context.Context, id int64) error
}
