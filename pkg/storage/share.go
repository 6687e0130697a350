package storage

import (
	"context"
	"listkeeper/pkg/domain"
	"time"
)

// ShareUpdates describes optional fields applied to an existing share.
// Setting IsActive false together with ExpirationDate implements the soft
// expire transition.
type ShareUpdates struct {
	Permission     *domain.Permission
	IsActive       *bool
	ExpirationDate *time.Time
}

// ShareStorage defines lookup, access-check and mutation operations for list
// shares.
type ShareStorage interface {
	// StoreShare inserts a share and returns the stored row.
	StoreShare(ctx context.Context, share domain.ListShare) (*domain.ListShare, error)
	// ShareByID fetches a share by ID. Returns nil when not found.
	ShareByID(ctx context.Context, id domain.ShareID) (*domain.ListShare, error)
	// ActiveShare fetches the single active share for the (list, recipient)
	// pair. Returns nil when none exists.
	ActiveShare(ctx context.Context, listID domain.ListID, sharedToID domain.UserID) (*domain.ListShare, error)
	// SharesByList returns the list's active shares, shared date descending.
	SharesByList(ctx context.Context, listID domain.ListID) ([]domain.ListShare, error)
	// SharesReceived returns the user's active received shares, shared date descending.
	SharesReceived(ctx context.Context, userID domain.UserID) ([]domain.ListShare, error)
	// SharesSent returns the user's active sent shares, shared date descending.
	SharesSent(ctx context.Context, userID domain.UserID) ([]domain.ListShare, error)
	// SharesByPermission returns active shares carrying the permission,
	// shared date descending.
	SharesByPermission(ctx context.Context, permission domain.Permission) ([]domain.ListShare, error)
	// UpdateShare applies the field set and returns the updated row, or nil
	// when the share does not exist.
	UpdateShare(ctx context.Context, id domain.ShareID, updates ShareUpdates) (*domain.ListShare, error)
	// DeleteShare hard-deletes the share row (revocation). Reports whether a
	// row was deleted.
	DeleteShare(ctx context.Context, id domain.ShareID) (bool, error)
	// DeactivateExpiredShares deactivates every active share whose expiration
	// date lies before now, leaving the expiration date untouched, and
	// returns the number of rows affected. Idempotent: already inactive rows
	// are excluded by the active-only predicate.
	DeactivateExpiredShares(ctx context.Context, now time.Time) (int64, error)
	// HasAccess reports whether an active share exists for the pair,
	// regardless of permission level. Ownership is NOT implied.
	HasAccess(ctx context.Context, listID domain.ListID, userID domain.UserID) (bool, error)
	// HasEditAccess reports whether an active share with EDIT or ADMIN
	// permission exists for the pair.
	HasEditAccess(ctx context.Context, listID domain.ListID, userID domain.UserID) (bool, error)
	// CountListsSharedBy returns the number of distinct lists the user
	// actively shares with others.
	CountListsSharedBy(ctx context.Context, userID domain.UserID) (int64, error)
}
