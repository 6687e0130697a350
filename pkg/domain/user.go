package domain

import "time"

// UserID uniquely identifies a user within the system.
// The zero value means the user has not been persisted yet.
type UserID int64

// AccountStatus represents the lifecycle state of a user account.
type AccountStatus string

const (
	// AccountStatusActive indicates the account can be used normally.
	AccountStatusActive AccountStatus = "ACTIVE"
	// AccountStatusInactive indicates the account has been deactivated.
	AccountStatusInactive AccountStatus = "INACTIVE"
)

// User represents a registered account. A user owns shopping lists and
// sessions and takes part in list shares as sharer or recipient.
type User struct {
	ID UserID `json:"id"`

	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	// Email is unique across all users (exact, case-sensitive match).
	Email string `json:"email"`
	// Password is the stored credential. It is compared by plain equality,
	// mirroring the system this replaces; see UserService.VerifyPassword.
	Password    string     `json:"-"`
	PhoneNumber string     `json:"phoneNumber,omitempty"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`

	RegistrationDate time.Time  `json:"registrationDate"`
	LastLoginDate    *time.Time `json:"lastLoginDate,omitempty"`

	AccountStatus AccountStatus `json:"accountStatus"`
	IsVerified    bool          `json:"isVerified"`
}

// HasID reports whether the user has been assigned a persistent identity.
func (u User) HasID() bool { return u.ID != 0 }

// Equal reports identity-based equality: two users are equal only when both
// have been persisted and carry the same ID. Unpersisted users are never
// equal to anything, including themselves.
func (u User) Equal(o User) bool { return u.HasID() && o.HasID() && u.ID == o.ID }

// FullName returns the display name used in response projections.
func (u User) FullName() string { return u.FirstName + " " + u.LastName }

// UserView is the response projection for a user. ShoppingListCount is
// computed live at read time, never stored.
type UserView struct {
	User

	ShoppingListCount int `json:"shoppingListCount"`
}
