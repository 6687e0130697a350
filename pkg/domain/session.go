package domain

import "time"

// SessionID uniquely identifies a user session row.
type SessionID int64

// UserSession records one login. The opaque token is the external lookup key
// for all session operations other than by-id and by-user; tokens are
// globally unique by generation entropy.
type UserSession struct {
	ID SessionID `json:"id"`

	Token string `json:"sessionToken"`

	LoginTime        time.Time  `json:"loginTime"`
	LogoutTime       *time.Time `json:"logoutTime,omitempty"`
	LastActivityTime time.Time  `json:"lastActivityTime"`
	LastModifiedDate *time.Time `json:"lastModifiedDate,omitempty"`

	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`

	IsActive bool   `json:"isActive"`
	UserID   UserID `json:"userId"`
}

// HasID reports whether the session has been assigned a persistent identity.
func (s UserSession) HasID() bool { return s.ID != 0 }

// Equal reports identity-based equality between two sessions.
func (s UserSession) Equal(o UserSession) bool { return s.HasID() && o.HasID() && s.ID == o.ID }

// UserSessionView is the response projection for a session.
type UserSessionView struct {
	UserSession

	UserName string `json:"userName"`
}

// UserAgentStat is one row of the user-agent breakdown across all sessions.
type UserAgentStat struct {
	UserAgent string `json:"userAgent"`
	Count     int64  `json:"count"`
}
