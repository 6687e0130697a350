package service

import (
	"context"
	"fmt"
	"listkeeper/pkg/domain"
	"listkeeper/pkg/serrors"
	"listkeeper/pkg/storage"
	"time"
)

// Categories exposes item category management operations.
type Categories interface {
	Create(ctx context.Context, params CreateCategoryParams) (*domain.CategoryView, error)
	GetByID(ctx context.Context, id domain.CategoryID) (*domain.CategoryView, error)
	List(ctx context.Context) ([]domain.Category, error)
	SystemCategories(ctx context.Context) ([]domain.Category, error)
	UserCategories(ctx context.Context) ([]domain.Category, error)
	CategoriesWithItems(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, id domain.CategoryID, updates storage.CategoryUpdates) (*domain.CategoryView, error)
	Delete(ctx context.Context, id domain.CategoryID) error
}

// CreateCategoryParams carries the caller-supplied fields of a new category.
// Created categories are never system categories.
type CreateCategoryParams struct {
	Name         string
	Description  string
	Color        string
	DisplayOrder int
}

type categories struct {
	storage storage.Storage
}

// NewCategories creates a Categories service backed by the provided storage.
func NewCategories(storage storage.Storage) Categories {
	return &categories{storage: storage}
}

// Create adds a category. Names are unique case-insensitively across all
// categories.
func (s categories) Create(ctx context.Context, params CreateCategoryParams) (*domain.CategoryView, error) {
	var view *domain.CategoryView
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		exists, err := tx.CategoryNameExists(ctx, params.Name, 0)
		if err != nil {
			return fmt.Errorf("could not check category name: %w", err)
		}
		if exists {
			return serrors.With(serrors.ErrConflict, "category with this name already exists")
		}

		category, err := tx.StoreCategory(ctx, domain.Category{
			Name:         params.Name,
			Description:  params.Description,
			Color:        params.Color,
			CreationDate: time.Now(),
			DisplayOrder: params.DisplayOrder,
		})
		if err != nil {
			return fmt.Errorf("could not store category: %w", err)
		}

		view = &domain.CategoryView{Category: *category}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not create category: %w", err)
	}

	return view, nil
}

// GetByID fetches a category with its live item count.
func (s categories) GetByID(ctx context.Context, id domain.CategoryID) (*domain.CategoryView, error) {
	category, err := s.storage.CategoryByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get category: %w", err)
	}
	if category == nil {
		return nil, serrors.With(serrors.ErrNotFound, "category not found")
	}

	count, err := s.storage.CountItemsByCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not count items: %w", err)
	}

	return &domain.CategoryView{Category: *category, ItemCount: count}, nil
}

// List returns all categories ordered by display order, then name.
func (s categories) List(ctx context.Context) ([]domain.Category, error) {
	res, err := s.storage.Categories(ctx, storage.CategoryFilter{})
	if err != nil {
		return nil, fmt.Errorf("could not list categories: %w", err)
	}

	return res, nil
}

// SystemCategories returns only the seeded system categories.
func (s categories) SystemCategories(ctx context.Context) ([]domain.Category, error) {
	system := true
	res, err := s.storage.Categories(ctx, storage.CategoryFilter{System: &system})
	if err != nil {
		return nil, fmt.Errorf("could not list system categories: %w", err)
	}

	return res, nil
}

// UserCategories returns only user-created categories.
func (s categories) UserCategories(ctx context.Context) ([]domain.Category, error) {
	system := false
	res, err := s.storage.Categories(ctx, storage.CategoryFilter{System: &system})
	if err != nil {
		return nil, fmt.Errorf("could not list user categories: %w", err)
	}

	return res, nil
}

// CategoriesWithItems returns categories referenced by at least one item,
// ordered by name.
func (s categories) CategoriesWithItems(ctx context.Context) ([]domain.Category, error) {
	res, err := s.storage.Categories(ctx, storage.CategoryFilter{WithItems: true})
	if err != nil {
		return nil, fmt.Errorf("could not list categories with items: %w", err)
	}

	return res, nil
}

// Update applies a partial field set. Renaming to a name already used by a
// different category conflicts; a category keeping its own name does not.
func (s categories) Update(ctx context.Context,
	id domain.CategoryID,
	updates storage.CategoryUpdates) (*domain.CategoryView, error) {
	var view *domain.CategoryView
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		if updates.Name != nil {
			exists, err := tx.CategoryNameExists(ctx, *updates.Name, id)
			if err != nil {
				return fmt.Errorf("could not check category name: %w", err)
			}
			if exists {
				return serrors.With(serrors.ErrConflict, "category with this name already exists")
			}
		}

		category, err := tx.UpdateCategory(ctx, id, updates)
		if err != nil {
			return fmt.Errorf("could not update category: %w", err)
		}
		if category == nil {
			return serrors.With(serrors.ErrNotFound, "category not found")
		}

		count, err := tx.CountItemsByCategory(ctx, id)
		if err != nil {
			return fmt.Errorf("could not count items: %w", err)
		}

		view = &domain.CategoryView{Category: *category, ItemCount: count}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not update category: %w", err)
	}

	return view, nil
}

// Delete removes a category. System categories and categories still
// referenced by items cannot be deleted; the item count is checked live
// inside the transaction.
func (s categories) Delete(ctx context.Context, id domain.CategoryID) error {
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		category, err := tx.CategoryByID(ctx, id)
		if err != nil {
			return fmt.Errorf("could not get category: %w", err)
		}
		if category == nil {
			return serrors.With(serrors.ErrNotFound, "category not found")
		}
		if category.IsSystemCategory {
			return serrors.With(serrors.ErrValidation, "cannot delete system category")
		}

		count, err := tx.CountItemsByCategory(ctx, id)
		if err != nil {
			return fmt.Errorf("could not count items: %w", err)
		}
		if count > 0 {
			return serrors.With(serrors.ErrValidation, "cannot delete category with existing items")
		}

		if _, err := tx.DeleteCategory(ctx, id); err != nil {
			return fmt.Errorf("could not delete category: %w", err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("could not delete category: %w", err)
	}

	return nil
}
