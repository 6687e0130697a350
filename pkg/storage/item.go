package storage

import (
	"context"
	"listkeeper/pkg/domain"
	"time"
)

// ItemUpdates describes optional fields applied to an existing item. Only
// non-nil fields are written, except the purchase triple (IsPurchased,
// ActualPrice, PurchasedDate) which is written as a unit when IsPurchased is
// set: marking unpurchased clears the price and date to NULL. ActualPrice or
// PurchasedDate supplied without IsPurchased are not applied; purchase state
// changes go through MarkPurchased/MarkUnpurchased.
type ItemUpdates struct {
	Name           *string
	Description    *string
	Quantity       *float64
	UnitOfMeasure  *string
	EstimatedPrice *float64
	Priority       *domain.Priority
	Notes          *string
	CategoryID     *domain.CategoryID

	IsPurchased   *bool
	ActualPrice   *float64
	PurchasedDate *time.Time
}

// ItemStorage defines lookup, aggregation and mutation operations for items.
type ItemStorage interface {
	// StoreItem inserts an item and returns the stored row.
	StoreItem(ctx context.Context, item domain.Item) (*domain.Item, error)
	// ItemByID fetches an item by ID. Returns nil when not found.
	ItemByID(ctx context.Context, id domain.ItemID) (*domain.Item, error)
	// ItemsByList returns the list's items ordered by added date descending.
	// A non-nil purchased filters on the purchase flag.
	ItemsByList(ctx context.Context, listID domain.ListID, purchased *bool) ([]domain.Item, error)
	// ItemsByCategory returns items of the category ordered by added date descending.
	ItemsByCategory(ctx context.Context, categoryID domain.CategoryID) ([]domain.Item, error)
	// ItemsByPriority returns items of the priority ordered by added date descending.
	ItemsByPriority(ctx context.Context, priority domain.Priority) ([]domain.Item, error)
	// ItemsByOwner returns items across all lists of the owner, added date descending.
	ItemsByOwner(ctx context.Context, ownerID domain.UserID) ([]domain.Item, error)
	// UpdateItem applies the field set and returns the updated row, or nil
	// when the item does not exist.
	UpdateItem(ctx context.Context, id domain.ItemID, updates ItemUpdates) (*domain.Item, error)
	// DeleteItem removes the item row. Reports whether a row was deleted.
	DeleteItem(ctx context.Context, id domain.ItemID) (bool, error)
	// DeletePurchasedItems removes every purchased item of the list and
	// returns the number of rows deleted. A no-op when none are purchased.
	DeletePurchasedItems(ctx context.Context, listID domain.ListID) (int64, error)
	// TotalSpent returns the sum of actual price times quantity over the
	// list's purchased items; 0 when there are none.
	TotalSpent(ctx context.Context, listID domain.ListID) (float64, error)
	// EstimatedTotal returns the sum of estimated price times quantity over
	// all items of the list, treating a missing estimate as 0; 0 when the
	// list is empty.
	EstimatedTotal(ctx context.Context, listID domain.ListID) (float64, error)
}
