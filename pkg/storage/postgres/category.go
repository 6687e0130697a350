package postgres

import (
	"context"
	"fmt"
	"listkeeper/pkg/domain"
	"listkeeper/pkg/storage"

	"github.com/doug-martin/goqu/v9"
)

const categoriesTable = "categories"

func (p *PgSQL) StoreCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	var pgCategory PgCategory
	pgCategory.FromDomain(category)

	var row PgCategory
	found, err := p.Builder.Insert(categoriesTable).
		Rows(pgCategory).
		Returning(&PgCategory{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not store category in pg: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("insert into %s returned no row", categoriesTable)
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) CategoryByID(ctx context.Context, id domain.CategoryID) (*domain.Category, error) {
	var row PgCategory
	found, err := p.Builder.From(categoriesTable).
		Where(goqu.I("category_id").Eq(int64(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch category by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) CategoryNameExists(ctx context.Context,
	name string,
	exclude domain.CategoryID) (bool, error) {
	w := []goqu.Expression{
		goqu.L("LOWER(category_name)").Eq(goqu.L("LOWER(?)", name)),
	}
	if exclude != 0 {
		w = append(w, goqu.I("category_id").Neq(int64(exclude)))
	}

	var count int64
	if _, err := p.Builder.From(categoriesTable).
		Select(goqu.COUNT(goqu.Star())).
		Where(w...).
		Executor().ScanValContext(ctx, &count); err != nil {
		return false, fmt.Errorf("could not check category name existence: %w", err)
	}

	return count > 0, nil
}

func (p *PgSQL) Categories(ctx context.Context,
	filter storage.CategoryFilter) ([]domain.Category, error) {
	ds := p.Builder.From(categoriesTable)

	if filter.System != nil {
		ds = ds.Where(goqu.I("is_system_category").Eq(*filter.System))
	}
	if filter.WithItems {
		ds = ds.Where(goqu.L(
			"EXISTS (SELECT 1 FROM items WHERE items.category_id = categories.category_id)",
		)).Order(goqu.I("category_name").Asc())
	} else {
		ds = ds.Order(goqu.I("display_order").Asc(), goqu.I("category_name").Asc())
	}

	var rows []PgCategory
	if err := ds.Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch categories: %w", err)
	}

	out := make([]domain.Category, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}

	return out, nil
}

func (p *PgSQL) UpdateCategory(ctx context.Context,
	id domain.CategoryID,
	updates storage.CategoryUpdates) (*domain.Category, error) {
	rec := goqu.Record{}
	if updates.Name != nil {
		rec["category_name"] = *updates.Name
	}
	if updates.Description != nil {
		rec["category_description"] = *updates.Description
	}
	if updates.Color != nil {
		rec["category_color"] = *updates.Color
	}
	if updates.DisplayOrder != nil {
		rec["display_order"] = *updates.DisplayOrder
	}
	if len(rec) == 0 {
		return p.CategoryByID(ctx, id)
	}

	var row PgCategory
	found, err := p.Builder.Update(categoriesTable).
		Set(rec).
		Where(goqu.I("category_id").Eq(int64(id))).
		Returning(&PgCategory{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update category in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) DeleteCategory(ctx context.Context, id domain.CategoryID) (bool, error) {
	res, err := p.Builder.Delete(categoriesTable).
		Where(goqu.I("category_id").Eq(int64(id))).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not delete category in pg: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not read affected rows: %w", err)
	}

	return n > 0, nil
}

func (p *PgSQL) CountItemsByCategory(ctx context.Context, id domain.CategoryID) (int, error) {
	var count int64
	if _, err := p.Builder.From(itemsTable).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.I("category_id").Eq(int64(id))).
		Executor().ScanValContext(ctx, &count); err != nil {
		return 0, fmt.Errorf("could not count items by category: %w", err)
	}

	return int(count), nil
}
