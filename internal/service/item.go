package service

import (
	"context"
	"fmt"
	"listkeeper/pkg/domain"
	"listkeeper/pkg/serrors"
	"listkeeper/pkg/storage"
	"time"
)

// Items exposes shopping list item operations, including purchase state
// transitions and spend aggregation.
type Items interface {
	Create(ctx context.Context, listID domain.ListID, params CreateItemParams) (*domain.ItemView, error)
	GetByID(ctx context.Context, id domain.ItemID) (*domain.ItemView, error)
	ListByShoppingList(ctx context.Context, listID domain.ListID) ([]domain.Item, error)
	PurchasedByShoppingList(ctx context.Context, listID domain.ListID) ([]domain.Item, error)
	UnpurchasedByShoppingList(ctx context.Context, listID domain.ListID) ([]domain.Item, error)
	ListByCategory(ctx context.Context, categoryID domain.CategoryID) ([]domain.Item, error)
	ListByPriority(ctx context.Context, priority domain.Priority) ([]domain.Item, error)
	ListByOwner(ctx context.Context, ownerID domain.UserID) ([]domain.Item, error)
	Update(ctx context.Context, id domain.ItemID, updates storage.ItemUpdates) (*domain.ItemView, error)
	MarkPurchased(ctx context.Context, id domain.ItemID, actualPrice *float64) (*domain.ItemView, error)
	MarkUnpurchased(ctx context.Context, id domain.ItemID) (*domain.ItemView, error)
	Delete(ctx context.Context, id domain.ItemID) error
	DeleteAllPurchased(ctx context.Context, listID domain.ListID) (int64, error)
	TotalSpent(ctx context.Context, listID domain.ListID) (float64, error)
	EstimatedTotal(ctx context.Context, listID domain.ListID) (float64, error)
}

// CreateItemParams carries the caller-supplied fields of a new item.
// Quantity defaults to 1 and Priority to MEDIUM when left zero.
type CreateItemParams struct {
	Name           string
	Description    string
	Quantity       float64
	UnitOfMeasure  string
	EstimatedPrice *float64
	Priority       domain.Priority
	Notes          string
	CategoryID     domain.CategoryID
}

type items struct {
	storage storage.Storage
}

// NewItems creates an Items service backed by the provided storage.
func NewItems(storage storage.Storage) Items {
	return &items{storage: storage}
}

// Create adds an item to the list. Both the list and the category must
// exist. New items start unpurchased.
func (s items) Create(ctx context.Context, listID domain.ListID, params CreateItemParams) (*domain.ItemView, error) {
	var view *domain.ItemView
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		list, err := tx.ListByID(ctx, listID)
		if err != nil {
			return fmt.Errorf("could not get list: %w", err)
		}
		if list == nil {
			return serrors.With(serrors.ErrNotFound, "shopping list not found")
		}

		category, err := tx.CategoryByID(ctx, params.CategoryID)
		if err != nil {
			return fmt.Errorf("could not get category: %w", err)
		}
		if category == nil {
			return serrors.With(serrors.ErrNotFound, "category not found")
		}

		quantity := params.Quantity
		if quantity == 0 {
			quantity = 1
		}
		priority := params.Priority
		if priority == "" {
			priority = domain.PriorityMedium
		}

		item, err := tx.StoreItem(ctx, domain.Item{
			Name:           params.Name,
			Description:    params.Description,
			Quantity:       quantity,
			UnitOfMeasure:  params.UnitOfMeasure,
			EstimatedPrice: params.EstimatedPrice,
			AddedDate:      time.Now(),
			Priority:       priority,
			Notes:          params.Notes,
			ListID:         listID,
			CategoryID:     params.CategoryID,
		})
		if err != nil {
			return fmt.Errorf("could not store item: %w", err)
		}

		view = &domain.ItemView{Item: *item, CategoryName: category.Name}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not create item: %w", err)
	}

	return view, nil
}

// GetByID fetches an item with its category name.
func (s items) GetByID(ctx context.Context, id domain.ItemID) (*domain.ItemView, error) {
	item, err := s.storage.ItemByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get item: %w", err)
	}
	if item == nil {
		return nil, serrors.With(serrors.ErrNotFound, "item not found")
	}

	return s.view(ctx, s.storage, item)
}

// ListByShoppingList returns all items of the list, most recently added first.
func (s items) ListByShoppingList(ctx context.Context, listID domain.ListID) ([]domain.Item, error) {
	return s.byList(ctx, listID, nil)
}

// PurchasedByShoppingList returns only the purchased items of the list.
func (s items) PurchasedByShoppingList(ctx context.Context, listID domain.ListID) ([]domain.Item, error) {
	purchased := true

	return s.byList(ctx, listID, &purchased)
}

// UnpurchasedByShoppingList returns only the not yet purchased items of the list.
func (s items) UnpurchasedByShoppingList(ctx context.Context, listID domain.ListID) ([]domain.Item, error) {
	purchased := false

	return s.byList(ctx, listID, &purchased)
}

func (s items) byList(ctx context.Context, listID domain.ListID, purchased *bool) ([]domain.Item, error) {
	if err := s.requireList(ctx, listID); err != nil {
		return nil, err
	}

	res, err := s.storage.ItemsByList(ctx, listID, purchased)
	if err != nil {
		return nil, fmt.Errorf("could not list items: %w", err)
	}

	return res, nil
}

// ListByCategory returns items in the category across all lists.
func (s items) ListByCategory(ctx context.Context, categoryID domain.CategoryID) ([]domain.Item, error) {
	res, err := s.storage.ItemsByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("could not list items: %w", err)
	}

	return res, nil
}

// ListByPriority returns items carrying the given priority across all lists.
func (s items) ListByPriority(ctx context.Context, priority domain.Priority) ([]domain.Item, error) {
	res, err := s.storage.ItemsByPriority(ctx, priority)
	if err != nil {
		return nil, fmt.Errorf("could not list items: %w", err)
	}

	return res, nil
}

// ListByOwner returns items across every list the user owns.
func (s items) ListByOwner(ctx context.Context, ownerID domain.UserID) ([]domain.Item, error) {
	res, err := s.storage.ItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("could not list items: %w", err)
	}

	return res, nil
}

// Update applies a partial field set. The item may be repointed to another
// existing category; the owning list never changes. Purchase state is only
// touched when IsPurchased is set: an ActualPrice or PurchasedDate without it
// is ignored, so callers change purchase state via MarkPurchased and
// MarkUnpurchased.
func (s items) Update(ctx context.Context, id domain.ItemID, updates storage.ItemUpdates) (*domain.ItemView, error) {
	var view *domain.ItemView
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		if updates.CategoryID != nil {
			category, err := tx.CategoryByID(ctx, *updates.CategoryID)
			if err != nil {
				return fmt.Errorf("could not get category: %w", err)
			}
			if category == nil {
				return serrors.With(serrors.ErrNotFound, "category not found")
			}
		}

		item, err := tx.UpdateItem(ctx, id, updates)
		if err != nil {
			return fmt.Errorf("could not update item: %w", err)
		}
		if item == nil {
			return serrors.With(serrors.ErrNotFound, "item not found")
		}

		view, err = s.view(ctx, tx, item)

		return err
	}); err != nil {
		return nil, fmt.Errorf("could not update item: %w", err)
	}

	return view, nil
}

// MarkPurchased flags the item as purchased, storing the actual price exactly
// as given and stamping the purchase date. The price is not validated; a nil
// price records a purchase with unknown cost.
func (s items) MarkPurchased(ctx context.Context, id domain.ItemID, actualPrice *float64) (*domain.ItemView, error) {
	purchased := true
	now := time.Now()

	view, err := s.Update(ctx, id, storage.ItemUpdates{
		IsPurchased:   &purchased,
		ActualPrice:   actualPrice,
		PurchasedDate: &now,
	})
	if err != nil {
		return nil, fmt.Errorf("could not mark item purchased: %w", err)
	}

	return view, nil
}

// MarkUnpurchased reverts the purchase, clearing the actual price and the
// purchase date.
func (s items) MarkUnpurchased(ctx context.Context, id domain.ItemID) (*domain.ItemView, error) {
	purchased := false

	view, err := s.Update(ctx, id, storage.ItemUpdates{IsPurchased: &purchased})
	if err != nil {
		return nil, fmt.Errorf("could not mark item unpurchased: %w", err)
	}

	return view, nil
}

// Delete removes a single item.
func (s items) Delete(ctx context.Context, id domain.ItemID) error {
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		deleted, err := tx.DeleteItem(ctx, id)
		if err != nil {
			return fmt.Errorf("could not delete item: %w", err)
		}
		if !deleted {
			return serrors.With(serrors.ErrNotFound, "item not found")
		}

		return nil
	}); err != nil {
		return fmt.Errorf("could not delete item: %w", err)
	}

	return nil
}

// DeleteAllPurchased removes every purchased item of the list in one
// statement and returns the number removed. Calling it when nothing is
// purchased is a no-op.
func (s items) DeleteAllPurchased(ctx context.Context, listID domain.ListID) (int64, error) {
	var count int64
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		list, err := tx.ListByID(ctx, listID)
		if err != nil {
			return fmt.Errorf("could not get list: %w", err)
		}
		if list == nil {
			return serrors.With(serrors.ErrNotFound, "shopping list not found")
		}

		count, err = tx.DeletePurchasedItems(ctx, listID)
		if err != nil {
			return fmt.Errorf("could not delete purchased items: %w", err)
		}

		return nil
	}); err != nil {
		return 0, fmt.Errorf("could not delete purchased items: %w", err)
	}

	return count, nil
}

// TotalSpent returns the sum of actual price times quantity over the list's
// purchased items, 0 when nothing has been purchased.
func (s items) TotalSpent(ctx context.Context, listID domain.ListID) (float64, error) {
	if err := s.requireList(ctx, listID); err != nil {
		return 0, err
	}

	total, err := s.storage.TotalSpent(ctx, listID)
	if err != nil {
		return 0, fmt.Errorf("could not compute total spent: %w", err)
	}

	return total, nil
}

// EstimatedTotal returns the sum of estimated price times quantity over all
// items of the list. Items without an estimate contribute 0.
func (s items) EstimatedTotal(ctx context.Context, listID domain.ListID) (float64, error) {
	if err := s.requireList(ctx, listID); err != nil {
		return 0, err
	}

	total, err := s.storage.EstimatedTotal(ctx, listID)
	if err != nil {
		return 0, fmt.Errorf("could not compute estimated total: %w", err)
	}

	return total, nil
}

func (s items) requireList(ctx context.Context, listID domain.ListID) error {
	list, err := s.storage.ListByID(ctx, listID)
	if err != nil {
		return fmt.Errorf("could not get list: %w", err)
	}
	if list == nil {
		return serrors.With(serrors.ErrNotFound, "shopping list not found")
	}

	return nil
}

func (s items) view(ctx context.Context, st storage.AllStorage, item *domain.Item) (*domain.ItemView, error) {
	category, err := st.CategoryByID(ctx, item.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("could not get category: %w", err)
	}

	view := &domain.ItemView{Item: *item}
	if category != nil {
		view.CategoryName = category.Name
	}

	return view, nil
}
