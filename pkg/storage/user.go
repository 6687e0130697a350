package storage

import (
	"context"
	"listkeeper/pkg/domain"
	"time"
)

// UserUpdates describes optional fields applied to an existing user. Only
// non-nil fields are written.
type UserUpdates struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Password    *string
	PhoneNumber *string
	DateOfBirth *time.Time

	LastLoginDate *time.Time
	AccountStatus *domain.AccountStatus
	IsVerified    *bool
}

// UserStorage defines lookup, existence and mutation operations for users.
type UserStorage interface {
	// StoreUser inserts a user and returns the stored row including the
	// generated identity.
	StoreUser(ctx context.Context, user domain.User) (*domain.User, error)
	// UserByID fetches a user by ID. Returns nil when not found.
	UserByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	// UserByEmail fetches a user by exact email match. Returns nil when not found.
	UserByEmail(ctx context.Context, email string) (*domain.User, error)
	// UserEmailExists reports whether any user carries the exact email.
	UserEmailExists(ctx context.Context, email string) (bool, error)
	// Users returns all users ordered by last name then first name.
	Users(ctx context.Context) ([]domain.User, error)
	// UsersByName returns users whose first or last name contains the given
	// fragment, case-insensitively.
	UsersByName(ctx context.Context, name string) ([]domain.User, error)
	// UpdateUser applies the provided field set and returns the updated row,
	// or nil when the user does not exist.
	UpdateUser(ctx context.Context, id domain.UserID, updates UserUpdates) (*domain.User, error)
	// DeleteUser removes the user row. Owned lists and sessions cascade at
	// the schema level. Reports whether a row was deleted.
	DeleteUser(ctx context.Context, id domain.UserID) (bool, error)
}
