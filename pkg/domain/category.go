package domain

import "time"

// CategoryID uniquely identifies an item category.
type CategoryID int64

// Category groups items. Category names are unique case-insensitively.
// System categories are seeded independently of user action and cannot be
// deleted.
type Category struct {
	ID CategoryID `json:"id"`

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`

	IsSystemCategory bool      `json:"isSystemCategory"`
	CreationDate     time.Time `json:"creationDate"`
	DisplayOrder     int       `json:"displayOrder"`
}

// HasID reports whether the category has been assigned a persistent identity.
func (c Category) HasID() bool { return c.ID != 0 }

// Equal reports identity-based equality between two categories.
func (c Category) Equal(o Category) bool { return c.HasID() && o.HasID() && c.ID == o.ID }

// CategoryView is the response projection for a category. ItemCount is
// computed by a live query on every read.
type CategoryView struct {
	Category

	ItemCount int `json:"itemCount"`
}
