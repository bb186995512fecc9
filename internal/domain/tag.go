package domain

import (
	"errors"
	"time"
	"unicode/utf8"
)

// Tag-specific validation errors
var (
	// ErrTagNameEmpty is returned when a tag's name is empty.
	ErrTagNameEmpty = errors.New("tag name cannot be empty")

	// ErrTagNameTooLong is returned when a tag's name exceeds MaxTitleLength.
	ErrTagNameTooLong = errors.New("tag name cannot exceed 255 characters")

	// ErrTagUserIDEmpty is returned when a tag has no owner.
	ErrTagUserIDEmpty = errors.New("tag user ID cannot be empty")
)

// Tag is a user-owned label that can be attached to any number of tasks.
// Duplicate names are permitted, both across and within owners. Tags are
// soft-deleted the same way tasks are.
type Tag struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Name      string     `json:"name"`
	UpdatedBy *int64     `json:"updated_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// NewTag creates a new Tag owned by userID. The ID is assigned by the
// store on insert. Returns an error if validation fails.
func NewTag(userID int64, name string) (*Tag, error) {
	now := time.Now().UTC()
	tag := &Tag{
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := tag.Validate(); err != nil {
		return nil, err
	}

	return tag, nil
}

// Validate checks if the Tag has valid data.
func (t *Tag) Validate() error {
	if t.UserID <= 0 {
		return ErrTagUserIDEmpty
	}

	if t.Name == "" {
		return ErrTagNameEmpty
	}

	// The limit counts characters, not bytes, matching varchar(255).
	if utf8.RuneCountInString(t.Name) > MaxTitleLength {
		return ErrTagNameTooLong
	}

	return nil
}

// Deleted reports whether the tag carries a soft-delete tombstone.
func (t *Tag) Deleted() bool {
	return t.DeletedAt != nil
}
