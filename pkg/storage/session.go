package storage

import (
	"context"
	"listkeeper/pkg/domain"
	"time"
)

// SessionUpdates describes optional fields applied to an active session
// located by token.
type SessionUpdates struct {
	LastActivityTime *time.Time
	LastModifiedDate *time.Time
	LogoutTime       *time.Time
	IsActive         *bool
}

// SessionStorage defines lookup and mutation operations for user sessions.
type SessionStorage interface {
	// StoreSession inserts a session and returns the stored row.
	StoreSession(ctx context.Context, session domain.UserSession) (*domain.UserSession, error)
	// SessionByID fetches a session by ID regardless of state. Returns nil
	// when not found.
	SessionByID(ctx context.Context, id domain.SessionID) (*domain.UserSession, error)
	// ActiveSessionByToken fetches the session matching (token, active).
	// Returns nil when no active session carries the token.
	ActiveSessionByToken(ctx context.Context, token string) (*domain.UserSession, error)
	// SessionsByUser returns the user's sessions ordered by login time
	// descending, optionally restricted to active ones.
	SessionsByUser(ctx context.Context, userID domain.UserID, activeOnly bool) ([]domain.UserSession, error)
	// UpdateActiveSessionByToken applies the field set to the session matching
	// (token, active) and returns the updated row, or nil when no active
	// session carries the token.
	UpdateActiveSessionByToken(ctx context.Context, token string, updates SessionUpdates) (*domain.UserSession, error)
	// DeactivateUserSessions deactivates every active session of the user in
	// one statement, stamping all with the same logout time. Returns the
	// number of rows affected.
	DeactivateUserSessions(ctx context.Context, userID domain.UserID, logoutTime time.Time) (int64, error)
	// DeactivateIdleSessions deactivates every active session whose last
	// activity lies before cutoff, stamping logoutTime. Returns the number of
	// rows affected.
	DeactivateIdleSessions(ctx context.Context, cutoff, logoutTime time.Time) (int64, error)
	// CountActiveSessionsByUser returns the user's live active-session count.
	CountActiveSessionsByUser(ctx context.Context, userID domain.UserID) (int64, error)
	// UserAgentStats returns (user agent, session count) rows across all
	// sessions, most used first.
	UserAgentStats(ctx context.Context) ([]domain.UserAgentStat, error)
}
