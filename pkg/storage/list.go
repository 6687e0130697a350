package storage

import (
	"context"
	"listkeeper/pkg/domain"
	"time"
)

// ListUpdates describes optional fields applied to an existing shopping
// list. LastModifiedDate is always supplied by the service on mutation.
type ListUpdates struct {
	Name        *string
	Description *string
	Status      *domain.ListStatus
	Priority    *domain.Priority

	LastModifiedDate *time.Time
}

// ListFilter narrows owner-scoped list queries. The zero value selects all
// lists of the owner ordered by creation date descending.
type ListFilter struct {
	// Status keeps only lists in the given state.
	Status *domain.ListStatus
	// TemplatesOnly keeps only template lists.
	TemplatesOnly bool
	// NameContains keeps lists whose name contains the fragment,
	// case-insensitively.
	NameContains string
}

// ItemCounts pairs the live total and purchased item counts of one list.
type ItemCounts struct {
	Total     int
	Purchased int
}

// ListStorage defines lookup, existence and mutation operations for shopping
// lists.
type ListStorage interface {
	// StoreList inserts a list and returns the stored row.
	StoreList(ctx context.Context, list domain.ShoppingList) (*domain.ShoppingList, error)
	// ListByID fetches a list by ID. Returns nil when not found.
	ListByID(ctx context.Context, id domain.ListID) (*domain.ShoppingList, error)
	// ListNameExists reports whether the owner already has a list with the
	// given name. A non-zero exclude ID is skipped so renaming a list to its
	// current name does not conflict.
	ListNameExists(ctx context.Context, ownerID domain.UserID, name string, exclude domain.ListID) (bool, error)
	// ListsByOwner returns the owner's lists matching the filter, ordered by
	// creation date descending.
	ListsByOwner(ctx context.Context, ownerID domain.UserID, filter ListFilter) ([]domain.ShoppingList, error)
	// AccessibleLists returns the distinct union of lists owned by the user
	// and lists actively shared to the user, ordered by creation date
	// descending.
	AccessibleLists(ctx context.Context, userID domain.UserID) ([]domain.ShoppingList, error)
	// UpdateList applies the field set and returns the updated row, or nil
	// when the list does not exist.
	UpdateList(ctx context.Context, id domain.ListID, updates ListUpdates) (*domain.ShoppingList, error)
	// DeleteList removes the list row. Items, the budget and shares cascade at
	// the schema level. Reports whether a row was deleted.
	DeleteList(ctx context.Context, id domain.ListID) (bool, error)
	// CountListsByOwner returns the live number of lists owned by the user.
	CountListsByOwner(ctx context.Context, ownerID domain.UserID) (int, error)
	// ItemCountsByList returns the live total and purchased item counts for
	// the list in one query.
	ItemCountsByList(ctx context.Context, id domain.ListID) (ItemCounts, error)
}
