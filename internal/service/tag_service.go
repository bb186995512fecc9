package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mlowery/tasktrack-api/internal/domain"
	"github.com/mlowery/tasktrack-api/internal/store"
)

// CreateTagInput carries the fields accepted when creating a tag.
type CreateTagInput struct {
	UserID int64
	Name   string
}

// TagPatch is a partial update: nil fields are left unchanged.
type TagPatch struct {
	Name *string
}

// TagService implements tag management. Tags are simple labels owned by
// a user; the interesting rules (idempotent attach/detach) live on the
// task side.
type TagService struct {
	tags   store.TagStore
	logger *slog.Logger

	// timeFunc is replaceable in tests.
	timeFunc func() time.Time
}

// NewTagService creates a TagService.
func NewTagService(tags store.TagStore, log *slog.Logger) *TagService {
	if log == nil {
		log = slog.Default()
	}
	return &TagService{
		tags:     tags,
		logger:   log.With(slog.String("component", "tag_service")),
		timeFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Create validates and stores a new tag. Duplicate names are allowed,
// matching tasks that legitimately share label text across users.
func (s *TagService) Create(ctx context.Context, input CreateTagInput) (*domain.Tag, error) {
	tag, err := domain.NewTag(input.UserID, input.Name)
	if err != nil {
		return nil, err
	}

	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, NewServiceError("create tag", err)
	}
	return tag, nil
}

// Get retrieves an active tag by ID.
func (s *TagService) Get(ctx context.Context, id int64) (*domain.Tag, error) {
	return s.tags.GetByID(ctx, id)
}

// List returns all active tags matching the filter.
func (s *TagService) List(ctx context.Context, filter store.TagFilter) ([]*domain.Tag, error) {
	return s.tags.List(ctx, filter.Normalize())
}

// Update applies a partial update to an active tag.
func (s *TagService) Update(ctx context.Context, id, actorID int64, patch TagPatch) (*domain.Tag, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		tag.Name = *patch.Name
	}
	tag.UpdatedBy = &actorID
	tag.UpdatedAt = s.timeFunc()

	if err := tag.Validate(); err != nil {
		return nil, err
	}

	if err := s.tags.Update(ctx, tag); err != nil {
		return nil, NewServiceError("update tag", err)
	}
	return tag, nil
}

// Delete soft-deletes an active tag. Existing task associations are
// kept in place; they simply stop resolving while the tag is deleted.
func (s *TagService) Delete(ctx context.Context, id int64) error {
	if err := s.tags.Delete(ctx, id); err != nil {
		return err
	}
	return nil
}
