package postgres

import (
	"context"
	"fmt"
	"listkeeper/pkg/domain"
	"listkeeper/pkg/storage"
	"time"

	"github.com/doug-martin/goqu/v9"
)

const sharesTable = "list_shares"

func (p *PgSQL) StoreShare(ctx context.Context, share domain.ListShare) (*domain.ListShare, error) {
	var pgShare PgShare
	pgShare.FromDomain(share)

	var row PgShare
	found, err := p.Builder.Insert(sharesTable).
		Rows(pgShare).
		Returning(&PgShare{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not store share in pg: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("insert into %s returned no row", sharesTable)
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) ShareByID(ctx context.Context, id domain.ShareID) (*domain.ListShare, error) {
	var row PgShare
	found, err := p.Builder.From(sharesTable).
		Where(goqu.I("share_id").Eq(int64(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch share by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) ActiveShare(ctx context.Context,
	listID domain.ListID,
	sharedToID domain.UserID) (*domain.ListShare, error) {
	var row PgShare
	found, err := p.Builder.From(sharesTable).
		Where(
			goqu.I("list_id").Eq(int64(listID)),
			goqu.I("shared_with_user_id").Eq(int64(sharedToID)),
			goqu.I("is_active").IsTrue(),
		).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch active share: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) SharesByList(ctx context.Context, listID domain.ListID) ([]domain.ListShare, error) {
	return p.activeShares(ctx, goqu.I("list_id").Eq(int64(listID)))
}

func (p *PgSQL) SharesReceived(ctx context.Context, userID domain.UserID) ([]domain.ListShare, error) {
	return p.activeShares(ctx, goqu.I("shared_with_user_id").Eq(int64(userID)))
}

func (p *PgSQL) SharesSent(ctx context.Context, userID domain.UserID) ([]domain.ListShare, error) {
	return p.activeShares(ctx, goqu.I("shared_by_user_id").Eq(int64(userID)))
}

func (p *PgSQL) SharesByPermission(ctx context.Context,
	permission domain.Permission) ([]domain.ListShare, error) {
	return p.activeShares(ctx, goqu.I("permission_type").Eq(string(permission)))
}

func (p *PgSQL) activeShares(ctx context.Context, w goqu.Expression) ([]domain.ListShare, error) {
	var rows []PgShare
	if err := p.Builder.From(sharesTable).
		Where(w, goqu.I("is_active").IsTrue()).
		Order(goqu.I("shared_date").Desc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch shares: %w", err)
	}

	out := make([]domain.ListShare, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}

	return out, nil
}

func (p *PgSQL) UpdateShare(ctx context.Context,
	id domain.ShareID,
	updates storage.ShareUpdates) (*domain.ListShare, error) {
	rec := goqu.Record{}
	if updates.Permission != nil {
		rec["permission_type"] = string(*updates.Permission)
	}
	if updates.IsActive != nil {
		rec["is_active"] = *updates.IsActive
	}
	if updates.ExpirationDate != nil {
		rec["expiration_date"] = *updates.ExpirationDate
	}
	if len(rec) == 0 {
		return p.ShareByID(ctx, id)
	}

	var row PgShare
	found, err := p.Builder.Update(sharesTable).
		Set(rec).
		Where(goqu.I("share_id").Eq(int64(id))).
		Returning(&PgShare{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update share in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) DeleteShare(ctx context.Context, id domain.ShareID) (bool, error) {
	res, err := p.Builder.Delete(sharesTable).
		Where(goqu.I("share_id").Eq(int64(id))).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not delete share in pg: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not read affected rows: %w", err)
	}

	return n > 0, nil
}

// DeactivateExpiredShares leaves expiration_date untouched so the original
// expiry moment stays visible; the active-only predicate makes the statement
// idempotent across repeated sweeps.
func (p *PgSQL) DeactivateExpiredShares(ctx context.Context, now time.Time) (int64, error) {
	res, err := p.Builder.Update(sharesTable).
		Set(goqu.Record{"is_active": false}).
		Where(
			goqu.I("is_active").IsTrue(),
			goqu.I("expiration_date").IsNotNull(),
			goqu.I("expiration_date").Lt(now),
		).
		Executor().ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not deactivate expired shares in pg: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not read affected rows: %w", err)
	}

	return n, nil
}

func (p *PgSQL) HasAccess(ctx context.Context,
	listID domain.ListID,
	userID domain.UserID) (bool, error) {
	var count int64
	if _, err := p.Builder.From(sharesTable).
		Select(goqu.COUNT(goqu.Star())).
		Where(
			goqu.I("list_id").Eq(int64(listID)),
			goqu.I("shared_with_user_id").Eq(int64(userID)),
			goqu.I("is_active").IsTrue(),
		).
		Executor().ScanValContext(ctx, &count); err != nil {
		return false, fmt.Errorf("could not check share access: %w", err)
	}

	return count > 0, nil
}

func (p *PgSQL) HasEditAccess(ctx context.Context,
	listID domain.ListID,
	userID domain.UserID) (bool, error) {
	var count int64
	if _, err := p.Builder.From(sharesTable).
		Select(goqu.COUNT(goqu.Star())).
		Where(
			goqu.I("list_id").Eq(int64(listID)),
			goqu.I("shared_with_user_id").Eq(int64(userID)),
			goqu.I("is_active").IsTrue(),
			goqu.I("permission_type").In(
				string(domain.PermissionEdit),
				string(domain.PermissionAdmin),
			),
		).
		Executor().ScanValContext(ctx, &count); err != nil {
		return false, fmt.Errorf("could not check share edit access: %w", err)
	}

	return count > 0, nil
}

func (p *PgSQL) CountListsSharedBy(ctx context.Context, userID domain.UserID) (int64, error) {
	var count int64
	if _, err := p.Builder.From(sharesTable).
		Select(goqu.L("COUNT(DISTINCT list_id)")).
		Where(
			goqu.I("shared_by_user_id").Eq(int64(userID)),
			goqu.I("is_active").IsTrue(),
		).
		Executor().ScanValContext(ctx, &count); err != nil {
		return 0, fmt.Errorf("could not count lists shared by user: %w", err)
	}

	return count, nil
}
