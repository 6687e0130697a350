package domain

import "time"

// ItemID uniquely identifies an item on a shopping list.
type ItemID int64

// Item is a single entry on a shopping list. It belongs to exactly one list
// and one category; the list reference is immutable after creation, the
// category may be repointed on update.
type Item struct {
	ID ItemID `json:"id"`

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Quantity      float64 `json:"quantity"`
	UnitOfMeasure string  `json:"unitOfMeasure,omitempty"`
	// EstimatedPrice is the expected unit price; nil when unknown and treated
	// as zero in estimated-total aggregation.
	EstimatedPrice *float64 `json:"estimatedPrice,omitempty"`
	// ActualPrice is set only once the item is purchased.
	ActualPrice *float64 `json:"actualPrice,omitempty"`

	IsPurchased   bool       `json:"isPurchased"`
	PurchasedDate *time.Time `json:"purchasedDate,omitempty"`
	AddedDate     time.Time  `json:"addedDate"`

	Priority Priority `json:"priority"`
	Notes    string   `json:"notes,omitempty"`

	ListID     ListID     `json:"shoppingListId"`
	CategoryID CategoryID `json:"categoryId"`
}

// HasID reports whether the item has been assigned a persistent identity.
func (i Item) HasID() bool { return i.ID != 0 }

// Equal reports identity-based equality between two items.
func (i Item) Equal(o Item) bool { return i.HasID() && o.HasID() && i.ID == o.ID }

// ItemView is the response projection for an item.
type ItemView struct {
	Item

	CategoryName string `json:"categoryName,omitempty"`
}
