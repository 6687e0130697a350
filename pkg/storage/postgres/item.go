package postgres

import (
	"context"
	"fmt"
	"listkeeper/pkg/domain"
	"listkeeper/pkg/storage"

	"github.com/doug-martin/goqu/v9"
)

const itemsTable = "items"

func (p *PgSQL) StoreItem(ctx context.Context, item domain.Item) (*domain.Item, error) {
	var pgItem PgItem
	pgItem.FromDomain(item)

	var row PgItem
	found, err := p.Builder.Insert(itemsTable).
		Rows(pgItem).
		Returning(&PgItem{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not store item in pg: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("insert into %s returned no row", itemsTable)
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) ItemByID(ctx context.Context, id domain.ItemID) (*domain.Item, error) {
	var row PgItem
	found, err := p.Builder.From(itemsTable).
		Where(goqu.I("item_id").Eq(int64(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch item by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) ItemsByList(ctx context.Context,
	listID domain.ListID,
	purchased *bool) ([]domain.Item, error) {
	w := []goqu.Expression{goqu.I("list_id").Eq(int64(listID))}
	if purchased != nil {
		w = append(w, goqu.I("is_purchased").Eq(*purchased))
	}

	var rows []PgItem
	if err := p.Builder.From(itemsTable).
		Where(w...).
		Order(goqu.I("added_date").Desc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch items by list: %w", err)
	}

	return pgItemsToDomain(rows), nil
}

func (p *PgSQL) ItemsByCategory(ctx context.Context, categoryID domain.CategoryID) ([]domain.Item, error) {
	var rows []PgItem
	if err := p.Builder.From(itemsTable).
		Where(goqu.I("category_id").Eq(int64(categoryID))).
		Order(goqu.I("added_date").Desc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch items by category: %w", err)
	}

	return pgItemsToDomain(rows), nil
}

func (p *PgSQL) ItemsByPriority(ctx context.Context, priority domain.Priority) ([]domain.Item, error) {
	var rows []PgItem
	if err := p.Builder.From(itemsTable).
		Where(goqu.I("priority_level").Eq(string(priority))).
		Order(goqu.I("added_date").Desc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch items by priority: %w", err)
	}

	return pgItemsToDomain(rows), nil
}

func (p *PgSQL) ItemsByOwner(ctx context.Context, ownerID domain.UserID) ([]domain.Item, error) {
	owned := p.Builder.From(listsTable).
		Select(goqu.I("list_id")).
		Where(goqu.I("owner_user_id").Eq(int64(ownerID)))

	var rows []PgItem
	if err := p.Builder.From(itemsTable).
		Where(goqu.I("list_id").In(owned)).
		Order(goqu.I("added_date").Desc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch items by owner: %w", err)
	}

	return pgItemsToDomain(rows), nil
}

func (p *PgSQL) UpdateItem(ctx context.Context,
	id domain.ItemID,
	updates storage.ItemUpdates) (*domain.Item, error) {
	rec := goqu.Record{}
	if updates.Name != nil {
		rec["item_name"] = *updates.Name
	}
	if updates.Description != nil {
		rec["item_description"] = *updates.Description
	}
	if updates.Quantity != nil {
		rec["quantity"] = *updates.Quantity
	}
	if updates.UnitOfMeasure != nil {
		rec["unit_of_measure"] = *updates.UnitOfMeasure
	}
	if updates.EstimatedPrice != nil {
		rec["estimated_price"] = *updates.EstimatedPrice
	}
	if updates.Priority != nil {
		rec["priority_level"] = string(*updates.Priority)
	}
	if updates.Notes != nil {
		rec["notes"] = *updates.Notes
	}
	if updates.CategoryID != nil {
		rec["category_id"] = int64(*updates.CategoryID)
	}
	if updates.IsPurchased != nil {
		// the purchase triple moves as a unit: unpurchasing clears price and
		// date to NULL, purchasing stores whatever was provided
		rec["is_purchased"] = *updates.IsPurchased
		if updates.ActualPrice != nil {
			rec["actual_price"] = *updates.ActualPrice
		} else {
			rec["actual_price"] = goqu.L("NULL")
		}
		if updates.PurchasedDate != nil {
			rec["purchase_date"] = *updates.PurchasedDate
		} else {
			rec["purchase_date"] = goqu.L("NULL")
		}
	}
	if len(rec) == 0 {
		return p.ItemByID(ctx, id)
	}

	var row PgItem
	found, err := p.Builder.Update(itemsTable).
		Set(rec).
		Where(goqu.I("item_id").Eq(int64(id))).
		Returning(&PgItem{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update item in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) DeleteItem(ctx context.Context, id domain.ItemID) (bool, error) {
	res, err := p.Builder.Delete(itemsTable).
		Where(goqu.I("item_id").Eq(int64(id))).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not delete item in pg: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not read affected rows: %w", err)
	}

	return n > 0, nil
}

func (p *PgSQL) DeletePurchasedItems(ctx context.Context, listID domain.ListID) (int64, error) {
	res, err := p.Builder.Delete(itemsTable).
		Where(
			goqu.I("list_id").Eq(int64(listID)),
			goqu.I("is_purchased").IsTrue(),
		).
		Executor().ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not delete purchased items in pg: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not read affected rows: %w", err)
	}

	return n, nil
}

func (p *PgSQL) TotalSpent(ctx context.Context, listID domain.ListID) (float64, error) {
	var total float64
	if _, err := p.Builder.From(itemsTable).
		Select(goqu.L("COALESCE(SUM(actual_price * quantity), 0)")).
		Where(
			goqu.I("list_id").Eq(int64(listID)),
			goqu.I("is_purchased").IsTrue(),
		).
		Executor().ScanValContext(ctx, &total); err != nil {
		return 0, fmt.Errorf("could not calculate total spent: %w", err)
	}

	return total, nil
}

func (p *PgSQL) EstimatedTotal(ctx context.Context, listID domain.ListID) (float64, error) {
	var total float64
	if _, err := p.Builder.From(itemsTable).
		Select(goqu.L("COALESCE(SUM(COALESCE(estimated_price, 0) * quantity), 0)")).
		Where(goqu.I("list_id").Eq(int64(listID))).
		Executor().ScanValContext(ctx, &total); err != nil {
		return 0, fmt.Errorf("could not calculate estimated total: %w", err)
	}

	return total, nil
}

func pgItemsToDomain(rows []PgItem) []domain.Item {
	out := make([]domain.Item, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}

	return out
}
