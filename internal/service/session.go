package service

import (
	"context"
	"fmt"
	"listkeeper/pkg/domain"
	"listkeeper/pkg/serrors"
	"listkeeper/pkg/storage"
	"time"

	"github.com/google/uuid"
)

// Sessions exposes login session tracking. Sessions are addressed by their
// opaque token for everything except by-id and by-user lookups.
type Sessions interface {
	Create(ctx context.Context, userID domain.UserID, ipAddress, userAgent string) (*domain.UserSessionView, error)
	GetByID(ctx context.Context, id domain.SessionID) (*domain.UserSessionView, error)
	GetByToken(ctx context.Context, token string) (*domain.UserSessionView, error)
	ActiveSessionsByUser(ctx context.Context, userID domain.UserID) ([]domain.UserSession, error)
	AllSessionsByUser(ctx context.Context, userID domain.UserID) ([]domain.UserSession, error)
	UpdateLastActivity(ctx context.Context, token string) (*domain.UserSessionView, error)
	Logout(ctx context.Context, token string) error
	LogoutAll(ctx context.Context, userID domain.UserID) (int64, error)
	DeactivateExpired(ctx context.Context, cutoff time.Time) (int64, error)
	CountActiveByUser(ctx context.Context, userID domain.UserID) (int64, error)
	UserAgentStats(ctx context.Context) ([]domain.UserAgentStat, error)
}

type sessions struct {
	storage storage.Storage
}

// NewSessions creates a Sessions service backed by the provided storage.
func NewSessions(storage storage.Storage) Sessions {
	return &sessions{storage: storage}
}

// Create records a login: a fresh opaque token, active state, and login and
// activity stamped now. The user's last login date is bumped in the same
// transaction.
func (s sessions) Create(ctx context.Context,
	userID domain.UserID,
	ipAddress, userAgent string) (*domain.UserSessionView, error) {
	var view *domain.UserSessionView
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		user, err := tx.UserByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("could not get user: %w", err)
		}
		if user == nil {
			return serrors.With(serrors.ErrNotFound, "user not found")
		}

		now := time.Now()
		session, err := tx.StoreSession(ctx, domain.UserSession{
			Token:            uuid.NewString(),
			LoginTime:        now,
			LastActivityTime: now,
			IPAddress:        ipAddress,
			UserAgent:        userAgent,
			IsActive:         true,
			UserID:           userID,
		})
		if err != nil {
			return fmt.Errorf("could not store session: %w", err)
		}

		if _, err := tx.UpdateUser(ctx, userID, storage.UserUpdates{LastLoginDate: &now}); err != nil {
			return fmt.Errorf("could not update last login: %w", err)
		}

		view = &domain.UserSessionView{UserSession: *session, UserName: user.FullName()}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not create session: %w", err)
	}

	return view, nil
}

// GetByID fetches a session regardless of its state.
func (s sessions) GetByID(ctx context.Context, id domain.SessionID) (*domain.UserSessionView, error) {
	session, err := s.storage.SessionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get session: %w", err)
	}
	if session == nil {
		return nil, serrors.With(serrors.ErrNotFound, "session not found")
	}

	return s.view(ctx, session)
}

// GetByToken fetches the active session carrying the token. Inactive
// sessions are invisible to token lookups.
func (s sessions) GetByToken(ctx context.Context, token string) (*domain.UserSessionView, error) {
	session, err := s.storage.ActiveSessionByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("could not get session: %w", err)
	}
	if session == nil {
		return nil, serrors.With(serrors.ErrNotFound, "session not found")
	}

	return s.view(ctx, session)
}

// ActiveSessionsByUser returns the user's active sessions, newest login first.
func (s sessions) ActiveSessionsByUser(ctx context.Context,
	userID domain.UserID) ([]domain.UserSession, error) {
	res, err := s.storage.SessionsByUser(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("could not list sessions: %w", err)
	}

	return res, nil
}

// AllSessionsByUser returns every session of the user, active or not.
func (s sessions) AllSessionsByUser(ctx context.Context,
	userID domain.UserID) ([]domain.UserSession, error) {
	res, err := s.storage.SessionsByUser(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("could not list sessions: %w", err)
	}

	return res, nil
}

// UpdateLastActivity bumps the activity timestamp of the active session
// carrying the token.
func (s sessions) UpdateLastActivity(ctx context.Context, token string) (*domain.UserSessionView, error) {
	var updated *domain.UserSession
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		now := time.Now()
		session, err := tx.UpdateActiveSessionByToken(ctx, token, storage.SessionUpdates{
			LastActivityTime: &now,
			LastModifiedDate: &now,
		})
		if err != nil {
			return fmt.Errorf("could not update session: %w", err)
		}
		if session == nil {
			return serrors.With(serrors.ErrNotFound, "session not found")
		}
		updated = session

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not update last activity: %w", err)
	}

	return s.view(ctx, updated)
}

// Logout deactivates the active session carrying the token, stamping the
// logout time. Already logged-out tokens are not found.
func (s sessions) Logout(ctx context.Context, token string) error {
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		active := false
		now := time.Now()
		session, err := tx.UpdateActiveSessionByToken(ctx, token, storage.SessionUpdates{
			IsActive:         &active,
			LogoutTime:       &now,
			LastModifiedDate: &now,
		})
		if err != nil {
			return fmt.Errorf("could not update session: %w", err)
		}
		if session == nil {
			return serrors.With(serrors.ErrNotFound, "session not found")
		}

		return nil
	}); err != nil {
		return fmt.Errorf("could not logout: %w", err)
	}

	return nil
}

// LogoutAll deactivates every active session of the user in one statement,
// stamping all with the same logout time, and returns how many were closed.
func (s sessions) LogoutAll(ctx context.Context, userID domain.UserID) (int64, error) {
	count, err := s.storage.DeactivateUserSessions(ctx, userID, time.Now())
	if err != nil {
		return 0, fmt.Errorf("could not logout all sessions: %w", err)
	}

	return count, nil
}

// DeactivateExpired closes every active session idle since before the
// cutoff and returns how many were affected. Safe to call repeatedly.
func (s sessions) DeactivateExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	count, err := s.storage.DeactivateIdleSessions(ctx, cutoff, time.Now())
	if err != nil {
		return 0, fmt.Errorf("could not deactivate expired sessions: %w", err)
	}

	return count, nil
}

// CountActiveByUser returns the user's live active-session count.
func (s sessions) CountActiveByUser(ctx context.Context, userID domain.UserID) (int64, error) {
	count, err := s.storage.CountActiveSessionsByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("could not count sessions: %w", err)
	}

	return count, nil
}

// UserAgentStats returns the user-agent breakdown across all sessions, most
// used first.
func (s sessions) UserAgentStats(ctx context.Context) ([]domain.UserAgentStat, error) {
	res, err := s.storage.UserAgentStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get user agent stats: %w", err)
	}

	return res, nil
}

func (s sessions) view(ctx context.Context, session *domain.UserSession) (*domain.UserSessionView, error) {
	user, err := s.storage.UserByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("could not get user: %w", err)
	}

	view := &domain.UserSessionView{UserSession: *session}
	if user != nil {
		view.UserName = user.FullName()
	}

	return view, nil
}
