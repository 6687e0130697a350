package domain

import "time"

// ListID uniquely identifies a shopping list.
type ListID int64

// ListStatus represents the lifecycle state of a shopping list.
type ListStatus string

const (
	// ListStatusActive indicates the list is in normal use.
	ListStatusActive ListStatus = "ACTIVE"
	// ListStatusArchived indicates the list has been put away but kept.
	ListStatusArchived ListStatus = "ARCHIVED"
)

// Priority orders lists and items by urgency.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// ShoppingList is a named collection of items owned by exactly one user.
// List names are unique per owner. A list owns its items and at most one
// budget; deleting the list deletes those and any shares pointing at it.
type ShoppingList struct {
	ID ListID `json:"id"`

	// Name is unique within the owner's lists.
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	CreationDate     time.Time `json:"creationDate"`
	LastModifiedDate time.Time `json:"lastModifiedDate"`

	Status ListStatus `json:"status"`
	// IsTemplate marks the list as a source for CreateFromTemplate. Template
	// lists are not expected to carry purchase activity.
	IsTemplate bool     `json:"isTemplate"`
	Priority   Priority `json:"priority"`

	OwnerID UserID `json:"ownerId"`
}

// HasID reports whether the list has been assigned a persistent identity.
func (l ShoppingList) HasID() bool { return l.ID != 0 }

// Equal reports identity-based equality between two lists.
func (l ShoppingList) Equal(o ShoppingList) bool { return l.HasID() && o.HasID() && l.ID == o.ID }

// ShoppingListView is the response projection for a shopping list. The item
// counts are recomputed live on every read, never cached on the entity.
type ShoppingListView struct {
	ShoppingList

	OwnerName      string `json:"ownerName"`
	TotalItems     int    `json:"totalItems"`
	PurchasedItems int    `json:"purchasedItems"`
}
