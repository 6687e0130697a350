package service

import (
	"context"
	"fmt"
	"listkeeper/pkg/domain"
	"listkeeper/pkg/serrors"
	"listkeeper/pkg/storage"
	"time"
)

// Shares exposes the list sharing state machine: granting, revoking,
// expiring and answering access checks.
type Shares interface {
	Create(ctx context.Context, sharedBy domain.UserID, params CreateShareParams) (*domain.ListShareView, error)
	GetByID(ctx context.Context, id domain.ShareID) (*domain.ListShareView, error)
	SharesByList(ctx context.Context, listID domain.ListID) ([]domain.ListShare, error)
	SharesReceived(ctx context.Context, userID domain.UserID) ([]domain.ListShare, error)
	SharesSent(ctx context.Context, userID domain.UserID) ([]domain.ListShare, error)
	SharesByPermission(ctx context.Context, permission domain.Permission) ([]domain.ListShare, error)
	SharedShoppingLists(ctx context.Context, userID domain.UserID) ([]domain.ShoppingListView, error)
	UpdatePermission(ctx context.Context,
		id domain.ShareID,
		permission domain.Permission) (*domain.ListShareView, error)
	Revoke(ctx context.Context, id domain.ShareID) error
	Expire(ctx context.Context, id domain.ShareID) error
	CleanupExpiredShares(ctx context.Context) (int64, error)
	HasAccess(ctx context.Context, listID domain.ListID, userID domain.UserID) (bool, error)
	HasEditAccess(ctx context.Context, listID domain.ListID, userID domain.UserID) (bool, error)
	CountSharedListsBy(ctx context.Context, userID domain.UserID) (int64, error)
}

// CreateShareParams carries the fields of a new share. The recipient is
// addressed by exactly one of UserID or Email; setting both or neither is a
// validation error. Permission defaults to VIEW when left empty.
type CreateShareParams struct {
	ListID domain.ListID

	UserID domain.UserID
	Email  string

	Permission     domain.Permission
	ExpirationDate *time.Time
}

type shares struct {
	storage storage.Storage
}

// NewShares creates a Shares service backed by the provided storage.
func NewShares(storage storage.Storage) Shares {
	return &shares{storage: storage}
}

// Create grants the recipient access to the list. Only the list owner may
// share, self-shares are rejected, and at most one active share may exist
// per (list, recipient) pair. Revoked or expired shares never block a new
// grant.
func (s shares) Create(ctx context.Context,
	sharedBy domain.UserID,
	params CreateShareParams) (*domain.ListShareView, error) {
	if (params.UserID != 0) == (params.Email != "") {
		return nil, serrors.With(serrors.ErrValidation, "exactly one of user id or email must be provided")
	}

	var view *domain.ListShareView
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		list, err := tx.ListByID(ctx, params.ListID)
		if err != nil {
			return fmt.Errorf("could not get list: %w", err)
		}
		if list == nil {
			return serrors.With(serrors.ErrNotFound, "shopping list not found")
		}
		if list.OwnerID != sharedBy {
			return serrors.With(serrors.ErrValidation, "only the owner can share this list")
		}

		target, err := s.resolveTarget(ctx, tx, params)
		if err != nil {
			return err
		}
		if target.ID == sharedBy {
			return serrors.With(serrors.ErrValidation, "cannot share a list with yourself")
		}

		existing, err := tx.ActiveShare(ctx, params.ListID, target.ID)
		if err != nil {
			return fmt.Errorf("could not check existing share: %w", err)
		}
		if existing != nil {
			return serrors.With(serrors.ErrConflict, "list is already shared with this user")
		}

		permission := params.Permission
		if permission == "" {
			permission = domain.PermissionView
		}

		share, err := tx.StoreShare(ctx, domain.ListShare{
			Permission:     permission,
			SharedDate:     time.Now(),
			ExpirationDate: params.ExpirationDate,
			IsActive:       true,
			ListID:         params.ListID,
			SharedByID:     sharedBy,
			SharedToID:     target.ID,
		})
		if err != nil {
			return fmt.Errorf("could not store share: %w", err)
		}

		view, err = s.view(ctx, tx, share)

		return err
	}); err != nil {
		return nil, fmt.Errorf("could not create share: %w", err)
	}

	return view, nil
}

func (s shares) resolveTarget(ctx context.Context,
	tx storage.AllStorage,
	params CreateShareParams) (*domain.User, error) {
	var (
		target *domain.User
		err    error
	)
	if params.UserID != 0 {
		target, err = tx.UserByID(ctx, params.UserID)
	} else {
		target, err = tx.UserByEmail(ctx, params.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get target user: %w", err)
	}
	if target == nil {
		return nil, serrors.With(serrors.ErrNotFound, "user not found")
	}

	return target, nil
}

// GetByID fetches a share with the list and participant names.
func (s shares) GetByID(ctx context.Context, id domain.ShareID) (*domain.ListShareView, error) {
	share, err := s.storage.ShareByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get share: %w", err)
	}
	if share == nil {
		return nil, serrors.With(serrors.ErrNotFound, "share not found")
	}

	return s.view(ctx, s.storage, share)
}

// SharesByList returns the list's active shares, most recent first.
func (s shares) SharesByList(ctx context.Context, listID domain.ListID) ([]domain.ListShare, error) {
	res, err := s.storage.SharesByList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("could not list shares: %w", err)
	}

	return res, nil
}

// SharesReceived returns the active shares granted to the user.
func (s shares) SharesReceived(ctx context.Context, userID domain.UserID) ([]domain.ListShare, error) {
	res, err := s.storage.SharesReceived(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not list received shares: %w", err)
	}

	return res, nil
}

// SharesSent returns the active shares granted by the user.
func (s shares) SharesSent(ctx context.Context, userID domain.UserID) ([]domain.ListShare, error) {
	res, err := s.storage.SharesSent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not list sent shares: %w", err)
	}

	return res, nil
}

// SharesByPermission returns active shares carrying the given permission.
func (s shares) SharesByPermission(ctx context.Context,
	permission domain.Permission) ([]domain.ListShare, error) {
	res, err := s.storage.SharesByPermission(ctx, permission)
	if err != nil {
		return nil, fmt.Errorf("could not list shares: %w", err)
	}

	return res, nil
}

// SharedShoppingLists projects the lists behind the user's active received
// shares, each with live item counts.
func (s shares) SharedShoppingLists(ctx context.Context,
	userID domain.UserID) ([]domain.ShoppingListView, error) {
	received, err := s.storage.SharesReceived(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not list received shares: %w", err)
	}

	views := make([]domain.ShoppingListView, 0, len(received))
	for _, share := range received {
		list, err := s.storage.ListByID(ctx, share.ListID)
		if err != nil {
			return nil, fmt.Errorf("could not get list: %w", err)
		}
		if list == nil {
			continue
		}

		owner, err := s.storage.UserByID(ctx, list.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("could not get owner: %w", err)
		}

		counts, err := s.storage.ItemCountsByList(ctx, list.ID)
		if err != nil {
			return nil, fmt.Errorf("could not count items: %w", err)
		}

		view := domain.ShoppingListView{
			ShoppingList:   *list,
			TotalItems:     counts.Total,
			PurchasedItems: counts.Purchased,
		}
		if owner != nil {
			view.OwnerName = owner.FullName()
		}
		views = append(views, view)
	}

	return views, nil
}

// UpdatePermission changes the access level granted by the share.
func (s shares) UpdatePermission(ctx context.Context,
	id domain.ShareID,
	permission domain.Permission) (*domain.ListShareView, error) {
	var view *domain.ListShareView
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		share, err := tx.UpdateShare(ctx, id, storage.ShareUpdates{Permission: &permission})
		if err != nil {
			return fmt.Errorf("could not update share: %w", err)
		}
		if share == nil {
			return serrors.With(serrors.ErrNotFound, "share not found")
		}

		view, err = s.view(ctx, tx, share)

		return err
	}); err != nil {
		return nil, fmt.Errorf("could not update permission: %w", err)
	}

	return view, nil
}

// Revoke removes the share outright. A revoked share leaves no trace and
// the pair can be shared again immediately.
func (s shares) Revoke(ctx context.Context, id domain.ShareID) error {
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		deleted, err := tx.DeleteShare(ctx, id)
		if err != nil {
			return fmt.Errorf("could not delete share: %w", err)
		}
		if !deleted {
			return serrors.With(serrors.ErrNotFound, "share not found")
		}

		return nil
	}); err != nil {
		return fmt.Errorf("could not revoke share: %w", err)
	}

	return nil
}

// Expire deactivates the share, stamping its expiration with the current
// time. The row stays for audit. Expiring an already inactive share is a
// no-op.
func (s shares) Expire(ctx context.Context, id domain.ShareID) error {
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		share, err := tx.ShareByID(ctx, id)
		if err != nil {
			return fmt.Errorf("could not get share: %w", err)
		}
		if share == nil {
			return serrors.With(serrors.ErrNotFound, "share not found")
		}
		if !share.IsActive {
			return nil
		}

		active := false
		now := time.Now()
		if _, err := tx.UpdateShare(ctx, id, storage.ShareUpdates{
			IsActive:       &active,
			ExpirationDate: &now,
		}); err != nil {
			return fmt.Errorf("could not update share: %w", err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("could not expire share: %w", err)
	}

	return nil
}

// CleanupExpiredShares deactivates every active share whose expiration lies
// in the past and returns how many were affected. Safe to call repeatedly.
func (s shares) CleanupExpiredShares(ctx context.Context) (int64, error) {
	count, err := s.storage.DeactivateExpiredShares(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("could not cleanup expired shares: %w", err)
	}

	return count, nil
}

// HasAccess reports whether an active share grants the user any access to
// the list. Ownership is not considered; callers check that separately.
func (s shares) HasAccess(ctx context.Context, listID domain.ListID, userID domain.UserID) (bool, error) {
	ok, err := s.storage.HasAccess(ctx, listID, userID)
	if err != nil {
		return false, fmt.Errorf("could not check access: %w", err)
	}

	return ok, nil
}

// HasEditAccess reports whether an active share grants the user EDIT or
// ADMIN access to the list.
func (s shares) HasEditAccess(ctx context.Context, listID domain.ListID, userID domain.UserID) (bool, error) {
	ok, err := s.storage.HasEditAccess(ctx, listID, userID)
	if err != nil {
		return false, fmt.Errorf("could not check edit access: %w", err)
	}

	return ok, nil
}

// CountSharedListsBy returns how many distinct lists the user actively
// shares with others.
func (s shares) CountSharedListsBy(ctx context.Context, userID domain.UserID) (int64, error) {
	count, err := s.storage.CountListsSharedBy(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("could not count shared lists: %w", err)
	}

	return count, nil
}

func (s shares) view(ctx context.Context,
	st storage.AllStorage,
	share *domain.ListShare) (*domain.ListShareView, error) {
	view := &domain.ListShareView{ListShare: *share}

	list, err := st.ListByID(ctx, share.ListID)
	if err != nil {
		return nil, fmt.Errorf("could not get list: %w", err)
	}
	if list != nil {
		view.ListName = list.Name
	}

	sharedBy, err := st.UserByID(ctx, share.SharedByID)
	if err != nil {
		return nil, fmt.Errorf("could not get sharer: %w", err)
	}
	if sharedBy != nil {
		view.SharedByName = sharedBy.FullName()
	}

	sharedTo, err := st.UserByID(ctx, share.SharedToID)
	if err != nil {
		return nil, fmt.Errorf("could not get recipient: %w", err)
	}
	if sharedTo != nil {
		view.SharedToName = sharedTo.FullName()
	}

	return view, nil
}
