package postgres

import (
	"context"
	"fmt"
	"listkeeper/pkg/domain"
	"listkeeper/pkg/storage"
	"time"

	"github.com/doug-martin/goqu/v9"
)

const sessionsTable = "user_sessions"

func (p *PgSQL) StoreSession(ctx context.Context,
	session domain.UserSession) (*domain.UserSession, error) {
	var pgSession PgSession
	pgSession.FromDomain(session)

	var row PgSession
	found, err := p.Builder.Insert(sessionsTable).
		Rows(pgSession).
		Returning(&PgSession{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not store session in pg: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("insert into %s returned no row", sessionsTable)
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) SessionByID(ctx context.Context, id domain.SessionID) (*domain.UserSession, error) {
	var row PgSession
	found, err := p.Builder.From(sessionsTable).
		Where(goqu.I("session_id").Eq(int64(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch session by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) ActiveSessionByToken(ctx context.Context, token string) (*domain.UserSession, error) {
	var row PgSession
	found, err := p.Builder.From(sessionsTable).
		Where(
			goqu.I("session_token").Eq(token),
			goqu.I("is_active").IsTrue(),
		).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch session by token: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) SessionsByUser(ctx context.Context,
	userID domain.UserID,
	activeOnly bool) ([]domain.UserSession, error) {
	w := []goqu.Expression{goqu.I("user_id").Eq(int64(userID))}
	if activeOnly {
		w = append(w, goqu.I("is_active").IsTrue())
	}

	var rows []PgSession
	if err := p.Builder.From(sessionsTable).
		Where(w...).
		Order(goqu.I("login_timestamp").Desc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch sessions by user: %w", err)
	}

	out := make([]domain.UserSession, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}

	return out, nil
}

func (p *PgSQL) UpdateActiveSessionByToken(ctx context.Context,
	token string,
	updates storage.SessionUpdates) (*domain.UserSession, error) {
	rec := goqu.Record{}
	if updates.LastActivityTime != nil {
		rec["last_activity_timestamp"] = *updates.LastActivityTime
	}
	if updates.LastModifiedDate != nil {
		rec["last_modified_date"] = *updates.LastModifiedDate
	}
	if updates.LogoutTime != nil {
		rec["logout_timestamp"] = *updates.LogoutTime
	}
	if updates.IsActive != nil {
		rec["is_active"] = *updates.IsActive
	}
	if len(rec) == 0 {
		return p.ActiveSessionByToken(ctx, token)
	}

	var row PgSession
	found, err := p.Builder.Update(sessionsTable).
		Set(rec).
		Where(
			goqu.I("session_token").Eq(token),
			goqu.I("is_active").IsTrue(),
		).
		Returning(&PgSession{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update session in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) DeactivateUserSessions(ctx context.Context,
	userID domain.UserID,
	logoutTime time.Time) (int64, error) {
	res, err := p.Builder.Update(sessionsTable).
		Set(goqu.Record{
			"is_active":        false,
			"logout_timestamp": logoutTime,
		}).
		Where(
			goqu.I("user_id").Eq(int64(userID)),
			goqu.I("is_active").IsTrue(),
		).
		Executor().ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not deactivate user sessions in pg: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not read affected rows: %w", err)
	}

	return n, nil
}

func (p *PgSQL) DeactivateIdleSessions(ctx context.Context,
	cutoff, logoutTime time.Time) (int64, error) {
	res, err := p.Builder.Update(sessionsTable).
		Set(goqu.Record{
			"is_active":        false,
			"logout_timestamp": logoutTime,
		}).
		Where(
			goqu.I("last_activity_timestamp").Lt(cutoff),
			goqu.I("is_active").IsTrue(),
		).
		Executor().ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not deactivate idle sessions in pg: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not read affected rows: %w", err)
	}

	return n, nil
}

func (p *PgSQL) CountActiveSessionsByUser(ctx context.Context, userID domain.UserID) (int64, error) {
	var count int64
	if _, err := p.Builder.From(sessionsTable).
		Select(goqu.COUNT(goqu.Star())).
		Where(
			goqu.I("user_id").Eq(int64(userID)),
			goqu.I("is_active").IsTrue(),
		).
		Executor().ScanValContext(ctx, &count); err != nil {
		return 0, fmt.Errorf("could not count active sessions: %w", err)
	}

	return count, nil
}

func (p *PgSQL) UserAgentStats(ctx context.Context) ([]domain.UserAgentStat, error) {
	var rows []struct {
		UserAgent string `db:"user_agent"`
		Count     int64  `db:"cnt"`
	}
	if err := p.Builder.From(sessionsTable).
		Select(
			goqu.L("COALESCE(user_agent, '')").As("user_agent"),
			goqu.COUNT(goqu.Star()).As("cnt"),
		).
		GroupBy(goqu.L("COALESCE(user_agent, '')")).
		Order(goqu.I("cnt").Desc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch user agent stats: %w", err)
	}

	out := make([]domain.UserAgentStat, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.UserAgentStat{UserAgent: r.UserAgent, Count: r.Count})
	}

	return out, nil
}
