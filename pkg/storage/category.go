package storage

import (
	"context"
	"listkeeper/pkg/domain"
)

// CategoryUpdates describes optional fields applied to an existing category.
type CategoryUpdates struct {
	Name         *string
	Description  *string
	Color        *string
	DisplayOrder *int
}

// CategoryFilter narrows category listings. The zero value selects all
// categories ordered by (display order asc, name asc).
type CategoryFilter struct {
	// System, when set, keeps only system (true) or user (false) categories.
	System *bool
	// WithItems keeps only categories referenced by at least one item and
	// switches ordering to name asc.
	WithItems bool
}

// CategoryStorage defines lookup, existence and mutation operations for
// categories.
type CategoryStorage interface {
	// StoreCategory inserts a category and returns the stored row.
	StoreCategory(ctx context.Context, category domain.Category) (*domain.Category, error)
	// CategoryByID fetches a category by ID. Returns nil when not found.
	CategoryByID(ctx context.Context, id domain.CategoryID) (*domain.Category, error)
	// CategoryNameExists reports whether a category with the given name exists,
	// compared case-insensitively. A non-zero exclude ID is skipped so a
	// category renaming to itself does not conflict.
	CategoryNameExists(ctx context.Context, name string, exclude domain.CategoryID) (bool, error)
	// Categories returns categories matching the filter.
	Categories(ctx context.Context, filter CategoryFilter) ([]domain.Category, error)
	// UpdateCategory applies the field set and returns the updated row, or nil
	// when the category does not exist.
	UpdateCategory(ctx context.Context, id domain.CategoryID, updates CategoryUpdates) (*domain.Category, error)
	// DeleteCategory removes the category row. Reports whether a row was deleted.
	DeleteCategory(ctx context.Context, id domain.CategoryID) (bool, error)
	// CountItemsByCategory returns the live number of items referencing the category.
	CountItemsByCategory(ctx context.Context, id domain.CategoryID) (int, error)
}
