// Package service implements the business operations on top of the storage
// layer. Every mutating operation runs inside a single transaction via
// storage.WithTx so read-check-then-write sequences stay consistent under
// concurrent callers.
package service

import (
	"context"
	"fmt"
	"listkeeper/pkg/domain"
	"listkeeper/pkg/serrors"
	"listkeeper/pkg/storage"
	"time"
)

// Users exposes account management operations.
type Users interface {
	Create(ctx context.Context, params CreateUserParams) (*domain.UserView, error)
	GetByID(ctx context.Context, id domain.UserID) (*domain.UserView, error)
	GetByEmail(ctx context.Context, email string) (*domain.UserView, error)
	List(ctx context.Context) ([]domain.User, error)
	SearchByName(ctx context.Context, name string) ([]domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, id domain.UserID, updates storage.UserUpdates) (*domain.UserView, error)
	Delete(ctx context.Context, id domain.UserID) error
	Activate(ctx context.Context, id domain.UserID) error
	Deactivate(ctx context.Context, id domain.UserID) error
	VerifyPassword(ctx context.Context, id domain.UserID, password string) (bool, error)
	ChangePassword(ctx context.Context, id domain.UserID, newPassword string) error
	ResetPassword(ctx context.Context, email, newPassword string) error
}

// CreateUserParams carries the caller-supplied fields of a new account.
type CreateUserParams struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	PhoneNumber string
	DateOfBirth *time.Time
}

type users struct {
	storage storage.Storage
}

// NewUsers creates a Users service backed by the provided storage.
func NewUsers(storage storage.Storage) Users {
	return &users{storage: storage}
}

// Create registers a new account. The email must not be in use by any other
// account; the match is exact and case-sensitive.
func (s users) Create(ctx context.Context, params CreateUserParams) (*domain.UserView, error) {
	var view *domain.UserView
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		exists, err := tx.UserEmailExists(ctx, params.Email)
		if err != nil {
			return fmt.Errorf("could not check email: %w", err)
		}
		if exists {
			return serrors.With(serrors.ErrConflict, "user with this email already exists")
		}

		user, err := tx.StoreUser(ctx, domain.User{
			FirstName:        params.FirstName,
			LastName:         params.LastName,
			Email:            params.Email,
			Password:         params.Password,
			PhoneNumber:      params.PhoneNumber,
			DateOfBirth:      params.DateOfBirth,
			RegistrationDate: time.Now(),
			AccountStatus:    domain.AccountStatusActive,
		})
		if err != nil {
			return fmt.Errorf("could not store user: %w", err)
		}

		view = &domain.UserView{User: *user}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	return view, nil
}

// GetByID fetches an account with its live shopping list count.
func (s users) GetByID(ctx context.Context, id domain.UserID) (*domain.UserView, error) {
	user, err := s.storage.UserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get user: %w", err)
	}
	if user == nil {
		return nil, serrors.With(serrors.ErrNotFound, "user not found")
	}

	return s.view(ctx, s.storage, user)
}

// GetByEmail fetches an account by its exact email.
func (s users) GetByEmail(ctx context.Context, email string) (*domain.UserView, error) {
	user, err := s.storage.UserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("could not get user: %w", err)
	}
	if user == nil {
		return nil, serrors.With(serrors.ErrNotFound, "user not found")
	}

	return s.view(ctx, s.storage, user)
}

// List returns all accounts ordered by last name then first name.
func (s users) List(ctx context.Context) ([]domain.User, error) {
	res, err := s.storage.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list users: %w", err)
	}

	return res, nil
}

// SearchByName returns accounts whose first or last name contains the
// fragment, case-insensitively.
func (s users) SearchByName(ctx context.Context, name string) ([]domain.User, error) {
	res, err := s.storage.UsersByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("could not search users: %w", err)
	}

	return res, nil
}

// ExistsByEmail reports whether any account uses the exact email.
func (s users) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	exists, err := s.storage.UserEmailExists(ctx, email)
	if err != nil {
		return false, fmt.Errorf("could not check email: %w", err)
	}

	return exists, nil
}

// Update applies a partial field set. Changing the email conflicts when
// another account already uses the new address; keeping the current email is
// always allowed.
func (s users) Update(ctx context.Context, id domain.UserID, updates storage.UserUpdates) (*domain.UserView, error) {
	var view *domain.UserView
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		if updates.Email != nil {
			existing, err := tx.UserByEmail(ctx, *updates.Email)
			if err != nil {
				return fmt.Errorf("could not check email: %w", err)
			}
			if existing != nil && existing.ID != id {
				return serrors.With(serrors.ErrConflict, "user with this email already exists")
			}
		}

		user, err := tx.UpdateUser(ctx, id, updates)
		if err != nil {
			return fmt.Errorf("could not update user: %w", err)
		}
		if user == nil {
			return serrors.With(serrors.ErrNotFound, "user not found")
		}

		view, err = s.view(ctx, tx, user)

		return err
	}); err != nil {
		return nil, fmt.Errorf("could not update user: %w", err)
	}

	return view, nil
}

// Delete removes the account. Owned lists and sessions go with it.
func (s users) Delete(ctx context.Context, id domain.UserID) error {
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		deleted, err := tx.DeleteUser(ctx, id)
		if err != nil {
			return fmt.Errorf("could not delete user: %w", err)
		}
		if !deleted {
			return serrors.With(serrors.ErrNotFound, "user not found")
		}

		return nil
	}); err != nil {
		return fmt.Errorf("could not delete user: %w", err)
	}

	return nil
}

// Activate moves the account into the active state.
func (s users) Activate(ctx context.Context, id domain.UserID) error {
	return s.setStatus(ctx, id, domain.AccountStatusActive)
}

// Deactivate moves the account into the inactive state.
func (s users) Deactivate(ctx context.Context, id domain.UserID) error {
	return s.setStatus(ctx, id, domain.AccountStatusInactive)
}

func (s users) setStatus(ctx context.Context, id domain.UserID, status domain.AccountStatus) error {
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		user, err := tx.UpdateUser(ctx, id, storage.UserUpdates{AccountStatus: &status})
		if err != nil {
			return fmt.Errorf("could not update user: %w", err)
		}
		if user == nil {
			return serrors.With(serrors.ErrNotFound, "user not found")
		}

		return nil
	}); err != nil {
		return fmt.Errorf("could not set account status: %w", err)
	}

	return nil
}

// VerifyPassword reports whether the supplied password matches the stored
// credential. Credentials are compared by plain equality, preserving the
// behavior of the system this replaces.
func (s users) VerifyPassword(ctx context.Context, id domain.UserID, password string) (bool, error) {
	user, err := s.storage.UserByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("could not get user: %w", err)
	}
	if user == nil {
		return false, serrors.With(serrors.ErrNotFound, "user not found")
	}

	return user.Password == password, nil
}

// ChangePassword overwrites the credential unconditionally once the account
// is located; the current password is not checked.
func (s users) ChangePassword(ctx context.Context, id domain.UserID, newPassword string) error {
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		user, err := tx.UpdateUser(ctx, id, storage.UserUpdates{Password: &newPassword})
		if err != nil {
			return fmt.Errorf("could not update user: %w", err)
		}
		if user == nil {
			return serrors.With(serrors.ErrNotFound, "user not found")
		}

		return nil
	}); err != nil {
		return fmt.Errorf("could not change password: %w", err)
	}

	return nil
}

// ResetPassword replaces the credential of the account behind the email
// without checking the current one.
func (s users) ResetPassword(ctx context.Context, email, newPassword string) error {
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		user, err := tx.UserByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("could not get user: %w", err)
		}
		if user == nil {
			return serrors.With(serrors.ErrNotFound, "user not found")
		}

		if _, err := tx.UpdateUser(ctx, user.ID, storage.UserUpdates{Password: &newPassword}); err != nil {
			return fmt.Errorf("could not update user: %w", err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("could not reset password: %w", err)
	}

	return nil
}

func (s users) view(ctx context.Context, st storage.AllStorage, user *domain.User) (*domain.UserView, error) {
	count, err := st.CountListsByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("could not count lists: %w", err)
	}

	return &domain.UserView{User: *user, ShoppingListCount: count}, nil
}
