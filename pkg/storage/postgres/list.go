package postgres

import (
	"context"
	"fmt"
	"listkeeper/pkg/domain"
	"listkeeper/pkg/storage"

	"github.com/doug-martin/goqu/v9"
)

const listsTable = "shopping_lists"

func (p *PgSQL) StoreList(ctx context.Context, list domain.ShoppingList) (*domain.ShoppingList, error) {
	var pgList PgList
	pgList.FromDomain(list)

	var row PgList
	found, err := p.Builder.Insert(listsTable).
		Rows(pgList).
		Returning(&PgList{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not store shopping list in pg: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("insert into %s returned no row", listsTable)
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) ListByID(ctx context.Context, id domain.ListID) (*domain.ShoppingList, error) {
	var row PgList
	found, err := p.Builder.From(listsTable).
		Where(goqu.I("list_id").Eq(int64(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch shopping list by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) ListNameExists(ctx context.Context,
	ownerID domain.UserID,
	name string,
	exclude domain.ListID) (bool, error) {
	w := []goqu.Expression{
		goqu.I("owner_user_id").Eq(int64(ownerID)),
		goqu.I("list_name").Eq(name),
	}
	if exclude != 0 {
		w = append(w, goqu.I("list_id").Neq(int64(exclude)))
	}

	var count int64
	if _, err := p.Builder.From(listsTable).
		Select(goqu.COUNT(goqu.Star())).
		Where(w...).
		Executor().ScanValContext(ctx, &count); err != nil {
		return false, fmt.Errorf("could not check list name existence: %w", err)
	}

	return count > 0, nil
}

func (p *PgSQL) ListsByOwner(ctx context.Context,
	ownerID domain.UserID,
	filter storage.ListFilter) ([]domain.ShoppingList, error) {
	w := []goqu.Expression{goqu.I("owner_user_id").Eq(int64(ownerID))}
	if filter.Status != nil {
		w = append(w, goqu.I("list_status").Eq(string(*filter.Status)))
	}
	if filter.TemplatesOnly {
		w = append(w, goqu.I("is_template").IsTrue())
	}
	if filter.NameContains != "" {
		w = append(w, goqu.I("list_name").ILike("%"+filter.NameContains+"%"))
	}

	var rows []PgList
	if err := p.Builder.From(listsTable).
		Where(w...).
		Order(goqu.I("creation_date").Desc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch lists by owner: %w", err)
	}

	return pgListsToDomain(rows), nil
}

// AccessibleLists is the authorization surface for reads: a list is
// accessible when the user owns it or holds an active share on it.
func (p *PgSQL) AccessibleLists(ctx context.Context, userID domain.UserID) ([]domain.ShoppingList, error) {
	shared := p.Builder.From(sharesTable).
		Select(goqu.I("list_shares.list_id")).
		Where(
			goqu.I("shared_with_user_id").Eq(int64(userID)),
			goqu.I("list_shares.is_active").IsTrue(),
		)

	var rows []PgList
	if err := p.Builder.From(listsTable).
		Where(goqu.Or(
			goqu.I("owner_user_id").Eq(int64(userID)),
			goqu.I("list_id").In(shared),
		)).
		Order(goqu.I("creation_date").Desc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch accessible lists: %w", err)
	}

	return pgListsToDomain(rows), nil
}

func (p *PgSQL) UpdateList(ctx context.Context,
	id domain.ListID,
	updates storage.ListUpdates) (*domain.ShoppingList, error) {
	rec := goqu.Record{}
	if updates.Name != nil {
		rec["list_name"] = *updates.Name
	}
	if updates.Description != nil {
		rec["list_description"] = *updates.Description
	}
	if updates.Status != nil {
		rec["list_status"] = string(*updates.Status)
	}
	if updates.Priority != nil {
		rec["priority_level"] = string(*updates.Priority)
	}
	if updates.LastModifiedDate != nil {
		rec["last_modified_date"] = *updates.LastModifiedDate
	}
	if len(rec) == 0 {
		return p.ListByID(ctx, id)
	}

	var row PgList
	found, err := p.Builder.Update(listsTable).
		Set(rec).
		Where(goqu.I("list_id").Eq(int64(id))).
		Returning(&PgList{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update shopping list in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) DeleteList(ctx context.Context, id domain.ListID) (bool, error) {
	res, err := p.Builder.Delete(listsTable).
		Where(goqu.I("list_id").Eq(int64(id))).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not delete shopping list in pg: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not read affected rows: %w", err)
	}

	return n > 0, nil
}

func (p *PgSQL) CountListsByOwner(ctx context.Context, ownerID domain.UserID) (int, error) {
	var count int64
	if _, err := p.Builder.From(listsTable).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.I("owner_user_id").Eq(int64(ownerID))).
		Executor().ScanValContext(ctx, &count); err != nil {
		return 0, fmt.Errorf("could not count lists by owner: %w", err)
	}

	return int(count), nil
}

func (p *PgSQL) ItemCountsByList(ctx context.Context, id domain.ListID) (storage.ItemCounts, error) {
	var row struct {
		Total     int64 `db:"total"`
		Purchased int64 `db:"purchased"`
	}
	if _, err := p.Builder.From(itemsTable).
		Select(
			goqu.COUNT(goqu.Star()).As("total"),
			goqu.L("COUNT(*) FILTER (WHERE is_purchased)").As("purchased"),
		).
		Where(goqu.I("list_id").Eq(int64(id))).
		Executor().ScanStructContext(ctx, &row); err != nil {
		return storage.ItemCounts{}, fmt.Errorf("could not count items by list: %w", err)
	}

	return storage.ItemCounts{
		Total:     int(row.Total),
		Purchased: int(row.Purchased),
	}, nil
}

func pgListsToDomain(rows []PgList) []domain.ShoppingList {
	out := make([]domain.ShoppingList, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}

	return out
}
