package postgres_test

import (
	"context"
	"testing"
	"time"

	"listkeeper/pkg/domain"
	"listkeeper/pkg/storage"
	"listkeeper/pkg/storage/postgres"

	"github.com/stretchr/testify/require"
)

func seedSession(t *testing.T,
	pg *postgres.PgSQL,
	user domain.UserID,
	token, agent string,
	lastActivity time.Time) *domain.UserSession {
	t.Helper()
	s, err := pg.StoreSession(context.Background(), domain.UserSession{
		Token:            token,
		LoginTime:        lastActivity,
		LastActivityTime: lastActivity,
		UserAgent:        agent,
		IsActive:         true,
		UserID:           user,
	})
	require.NoError(t, err)

	return s
}

func TestPgSQL_Sessions_TokenLookup(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	u := seedUser(t, pg, "sess-user@example.com")
	s := seedSession(t, pg, u.ID, "tok-1", "firefox", time.Now())

	found, err := pg.ActiveSessionByToken(ctx, "tok-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, s.ID, found.ID)

	// token uniqueness is backed by the schema
	_, err = pg.StoreSession(ctx, domain.UserSession{
		Token:            "tok-1",
		LoginTime:        time.Now(),
		LastActivityTime: time.Now(),
		IsActive:         true,
		UserID:           u.ID,
	})
	require.Error(t, err)

	// update by token only touches the active session
	inactive := false
	now := time.Now()
	updated, err := pg.UpdateActiveSessionByToken(ctx, "tok-1", storage.SessionUpdates{
		IsActive:   &inactive,
		LogoutTime: &now,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.False(t, updated.IsActive)
	require.NotNil(t, updated.LogoutTime)

	gone, err := pg.ActiveSessionByToken(ctx, "tok-1")
	require.NoError(t, err)
	require.Nil(t, gone)

	missing, err := pg.UpdateActiveSessionByToken(ctx, "tok-1", storage.SessionUpdates{LastActivityTime: &now})
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestPgSQL_Sessions_BulkDeactivation(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	u := seedUser(t, pg, "bulk-user@example.com")
	seedSession(t, pg, u.ID, "tok-a", "firefox", time.Now())
	seedSession(t, pg, u.ID, "tok-b", "firefox", time.Now())

	count, err := pg.CountActiveSessionsByUser(ctx, u.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	logoutTime := time.Now()
	affected, err := pg.DeactivateUserSessions(ctx, u.ID, logoutTime)
	require.NoError(t, err)
	require.EqualValues(t, 2, affected)

	// every closed session carries the bulk logout time
	all, err := pg.SessionsByUser(ctx, u.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, s := range all {
		require.False(t, s.IsActive)
		require.WithinDuration(t, logoutTime, *s.LogoutTime, time.Second)
	}

	active, err := pg.SessionsByUser(ctx, u.ID, true)
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestPgSQL_DeactivateIdleSessions(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	u := seedUser(t, pg, "idle-user@example.com")
	stale := seedSession(t, pg, u.ID, "tok-stale", "firefox", time.Now().Add(-48*time.Hour))
	fresh := seedSession(t, pg, u.ID, "tok-fresh", "chrome", time.Now())

	cutoff := time.Now().Add(-24 * time.Hour)
	affected, err := pg.DeactivateIdleSessions(ctx, cutoff, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	closed, err := pg.SessionByID(ctx, stale.ID)
	require.NoError(t, err)
	require.False(t, closed.IsActive)

	kept, err := pg.SessionByID(ctx, fresh.ID)
	require.NoError(t, err)
	require.True(t, kept.IsActive)

	affected, err = pg.DeactivateIdleSessions(ctx, cutoff, time.Now())
	require.NoError(t, err)
	require.Zero(t, affected)
}

func TestPgSQL_UserAgentStats(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	u := seedUser(t, pg, "stats-user@example.com")
	seedSession(t, pg, u.ID, "tok-s1", "firefox", time.Now())
	seedSession(t, pg, u.ID, "tok-s2", "firefox", time.Now())
	seedSession(t, pg, u.ID, "tok-s3", "chrome", time.Now())

	stats, err := pg.UserAgentStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	require.Equal(t, domain.UserAgentStat{UserAgent: "firefox", Count: 2}, stats[0])
	require.Equal(t, domain.UserAgentStat{UserAgent: "chrome", Count: 1}, stats[1])
}
