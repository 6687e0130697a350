package postgres

import (
	"context"
	"fmt"
	"listkeeper/pkg/domain"
	"listkeeper/pkg/storage"

	"github.com/doug-martin/goqu/v9"
)

const budgetsTable = "budgets"

func (p *PgSQL) StoreBudget(ctx context.Context, budget domain.Budget) (*domain.Budget, error) {
	var pgBudget PgBudget
	pgBudget.FromDomain(budget)

	var row PgBudget
	found, err := p.Builder.Insert(budgetsTable).
		Rows(pgBudget).
		Returning(&PgBudget{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not store budget in pg: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("insert into %s returned no row", budgetsTable)
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) BudgetByID(ctx context.Context, id domain.BudgetID) (*domain.Budget, error) {
	var row PgBudget
	found, err := p.Builder.From(budgetsTable).
		Where(goqu.I("budget_id").Eq(int64(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch budget by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) BudgetByList(ctx context.Context, listID domain.ListID) (*domain.Budget, error) {
	var row PgBudget
	found, err := p.Builder.From(budgetsTable).
		Where(goqu.I("list_id").Eq(int64(listID))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch budget by list: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) Budgets(ctx context.Context, filter storage.BudgetFilter) ([]domain.Budget, error) {
	ds := p.Builder.From(budgetsTable)

	if filter.ActiveOnly {
		ds = ds.Where(goqu.I("is_active").IsTrue())
	}
	if filter.Period != nil {
		ds = ds.Where(goqu.I("budget_period").Eq(string(*filter.Period)))
	}
	if filter.Currency != nil {
		ds = ds.Where(goqu.I("budget_currency").Eq(*filter.Currency))
	}
	if filter.OwnerID != 0 {
		owned := p.Builder.From(listsTable).
			Select(goqu.I("list_id")).
			Where(goqu.I("owner_user_id").Eq(int64(filter.OwnerID)))
		ds = ds.Where(goqu.I("list_id").In(owned))
	}

	var rows []PgBudget
	if err := ds.Order(goqu.I("creation_date").Desc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch budgets: %w", err)
	}

	return pgBudgetsToDomain(rows), nil
}

// OverBudgetLists recomputes purchased spend per budgeted list on every call.
// The over-budget condition is never materialized into a stored flag.
func (p *PgSQL) OverBudgetLists(ctx context.Context) ([]domain.Budget, error) {
	var rows []PgBudget
	if err := p.Builder.From(budgetsTable).
		Select(
			goqu.I("budgets.budget_id"),
			goqu.I("budgets.budget_limit"),
			goqu.I("budgets.budget_currency"),
			goqu.I("budgets.budget_period"),
			goqu.I("budgets.creation_date"),
			goqu.I("budgets.is_active"),
			goqu.I("budgets.list_id"),
		).
		Join(goqu.T(itemsTable), goqu.On(goqu.I("items.list_id").Eq(goqu.I("budgets.list_id")))).
		Where(goqu.I("budgets.is_active").IsTrue()).
		GroupBy(
			goqu.I("budgets.budget_id"),
			goqu.I("budgets.budget_limit"),
			goqu.I("budgets.budget_currency"),
			goqu.I("budgets.budget_period"),
			goqu.I("budgets.creation_date"),
			goqu.I("budgets.is_active"),
			goqu.I("budgets.list_id"),
		).
		Having(goqu.L(
			"SUM(CASE WHEN items.is_purchased THEN items.actual_price * items.quantity ELSE 0 END) > budgets.budget_limit",
		)).
		Order(goqu.I("budgets.creation_date").Desc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch over-budget lists: %w", err)
	}

	return pgBudgetsToDomain(rows), nil
}

func (p *PgSQL) UpdateBudget(ctx context.Context,
	id domain.BudgetID,
	updates storage.BudgetUpdates) (*domain.Budget, error) {
	rec := goqu.Record{}
	if updates.Limit != nil {
		rec["budget_limit"] = *updates.Limit
	}
	if updates.Currency != nil {
		rec["budget_currency"] = *updates.Currency
	}
	if updates.Period != nil {
		rec["budget_period"] = string(*updates.Period)
	}
	if updates.IsActive != nil {
		rec["is_active"] = *updates.IsActive
	}
	if len(rec) == 0 {
		return p.BudgetByID(ctx, id)
	}

	var row PgBudget
	found, err := p.Builder.Update(budgetsTable).
		Set(rec).
		Where(goqu.I("budget_id").Eq(int64(id))).
		Returning(&PgBudget{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update budget in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) DeleteBudget(ctx context.Context, id domain.BudgetID) (bool, error) {
	res, err := p.Builder.Delete(budgetsTable).
		Where(goqu.I("budget_id").Eq(int64(id))).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not delete budget in pg: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not read affected rows: %w", err)
	}

	return n > 0, nil
}

func pgBudgetsToDomain(rows []PgBudget) []domain.Budget {
	out := make([]domain.Budget, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}

	return out
}
