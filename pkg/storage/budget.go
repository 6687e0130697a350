package storage

import (
	"context"
	"listkeeper/pkg/domain"
)

// BudgetUpdates describes optional fields applied to an existing budget.
type BudgetUpdates struct {
	Limit    *float64
	Currency *string
	Period   *domain.BudgetPeriod
	IsActive *bool
}

// BudgetFilter narrows budget listings. The zero value selects all budgets
// ordered by creation date descending.
type BudgetFilter struct {
	ActiveOnly bool
	Period     *domain.BudgetPeriod
	Currency   *string
	// OwnerID, when non-zero, keeps budgets on lists owned by the user.
	OwnerID domain.UserID
}

// BudgetStorage defines lookup, aggregation and mutation operations for
// budgets.
type BudgetStorage interface {
	// StoreBudget inserts a budget and returns the stored row.
	StoreBudget(ctx context.Context, budget domain.Budget) (*domain.Budget, error)
	// BudgetByID fetches a budget by ID. Returns nil when not found.
	BudgetByID(ctx context.Context, id domain.BudgetID) (*domain.Budget, error)
	// BudgetByList fetches the budget of a list. Returns nil when the list has
	// no budget.
	BudgetByList(ctx context.Context, listID domain.ListID) (*domain.Budget, error)
	// Budgets returns budgets matching the filter.
	Budgets(ctx context.Context, filter BudgetFilter) ([]domain.Budget, error)
	// OverBudgetLists returns active budgets whose summed purchased spend
	// (actual price times quantity) exceeds the limit. Recomputed by a
	// join-aggregate query on every call, never read from a stored flag.
	OverBudgetLists(ctx context.Context) ([]domain.Budget, error)
	// UpdateBudget applies the field set and returns the updated row, or nil
	// when the budget does not exist.
	UpdateBudget(ctx context.Context, id domain.BudgetID, updates BudgetUpdates) (*domain.Budget, error)
	// DeleteBudget removes the budget row. Reports whether a row was deleted.
	DeleteBudget(ctx context.Context, id domain.BudgetID) (bool, error)
}
