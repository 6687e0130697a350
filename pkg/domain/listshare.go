package domain

import "time"

// ShareID uniquely identifies a list share.
type ShareID int64

// Permission is the access level granted by a share.
type Permission string

const (
	// PermissionView grants read-only access to the shared list.
	PermissionView Permission = "VIEW"
	// PermissionEdit grants read and write access.
	PermissionEdit Permission = "EDIT"
	// PermissionAdmin grants full control short of ownership.
	PermissionAdmin Permission = "ADMIN"
)

// GrantsEdit reports whether the permission allows modifying the list.
func (p Permission) GrantsEdit() bool { return p == PermissionEdit || p == PermissionAdmin }

// ListShare grants a user access to another user's shopping list.
//
// A share is Active while IsActive is true. It leaves that state one of two
// ways: revocation hard-deletes the row, expiry soft-deactivates it (IsActive
// false, ExpirationDate set to the expiry moment). Neither transition can be
// undone; re-sharing creates a fresh share. At most one active share exists
// per (list, shared-to user) pair.
type ListShare struct {
	ID ShareID `json:"id"`

	Permission Permission `json:"permission"`

	SharedDate time.Time `json:"sharedDate"`
	// ExpirationDate, when set, is the moment after which a cleanup sweep
	// deactivates the share. A share past its expiration still answers access
	// checks until the sweep runs.
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	IsActive       bool       `json:"isActive"`

	ListID ListID `json:"shoppingListId"`
	// SharedByID is the sharing user and must be the list owner.
	SharedByID UserID `json:"sharedByUserId"`
	SharedToID UserID `json:"sharedToUserId"`
}

// HasID reports whether the share has been assigned a persistent identity.
func (s ListShare) HasID() bool { return s.ID != 0 }

// Equal reports identity-based equality between two shares.
func (s ListShare) Equal(o ListShare) bool { return s.HasID() && o.HasID() && s.ID == o.ID }

// ListShareView is the response projection for a share.
type ListShareView struct {
	ListShare

	ListName     string `json:"shoppingListName"`
	SharedByName string `json:"sharedByName"`
	SharedToName string `json:"sharedToName"`
}
