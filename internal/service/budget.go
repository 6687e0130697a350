package service

import (
	"context"
	"fmt"
	"listkeeper/pkg/domain"
	"listkeeper/pkg/serrors"
	"listkeeper/pkg/storage"
	"time"
)

// Budgets exposes per-list budget operations and spend aggregation. Spend is
// always recomputed from purchased items, never cached.
type Budgets interface {
	Create(ctx context.Context, listID domain.ListID, params CreateBudgetParams) (*domain.BudgetView, error)
	GetByID(ctx context.Context, id domain.BudgetID) (*domain.BudgetView, error)
	GetByShoppingList(ctx context.Context, listID domain.ListID) (*domain.BudgetView, error)
	ActiveBudgets(ctx context.Context) ([]domain.Budget, error)
	ByPeriod(ctx context.Context, period domain.BudgetPeriod) ([]domain.Budget, error)
	ByCurrency(ctx context.Context, currency string) ([]domain.Budget, error)
	ByOwner(ctx context.Context, ownerID domain.UserID, activeOnly bool) ([]domain.Budget, error)
	Update(ctx context.Context, id domain.BudgetID, updates storage.BudgetUpdates) (*domain.BudgetView, error)
	Activate(ctx context.Context, id domain.BudgetID) error
	Deactivate(ctx context.Context, id domain.BudgetID) error
	Delete(ctx context.Context, id domain.BudgetID) error
	CurrentSpent(ctx context.Context, id domain.BudgetID) (float64, error)
	Remaining(ctx context.Context, id domain.BudgetID) (float64, error)
	IsOverBudget(ctx context.Context, id domain.BudgetID) (bool, error)
	OverBudgetLists(ctx context.Context) ([]domain.BudgetView, error)
}

// CreateBudgetParams carries the caller-supplied fields of a new budget.
type CreateBudgetParams struct {
	Limit    float64
	Currency string
	Period   domain.BudgetPeriod
}

const maxCurrencyLen = 3

type budgets struct {
	storage storage.Storage
}

// NewBudgets creates a Budgets service backed by the provided storage.
func NewBudgets(storage storage.Storage) Budgets {
	return &budgets{storage: storage}
}

// Create attaches a budget to the list. A list carries at most one budget;
// the check runs inside the transaction and is backed by a unique index.
func (s budgets) Create(ctx context.Context,
	listID domain.ListID,
	params CreateBudgetParams) (*domain.BudgetView, error) {
	if len(params.Currency) > maxCurrencyLen {
		return nil, serrors.With(serrors.ErrValidation, "currency must be at most 3 characters")
	}

	var view *domain.BudgetView
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		list, err := tx.ListByID(ctx, listID)
		if err != nil {
			return fmt.Errorf("could not get list: %w", err)
		}
		if list == nil {
			return serrors.With(serrors.ErrNotFound, "shopping list not found")
		}

		existing, err := tx.BudgetByList(ctx, listID)
		if err != nil {
			return fmt.Errorf("could not check existing budget: %w", err)
		}
		if existing != nil {
			return serrors.With(serrors.ErrConflict, "budget already exists for this shopping list")
		}

		budget, err := tx.StoreBudget(ctx, domain.Budget{
			Limit:        params.Limit,
			Currency:     params.Currency,
			Period:       params.Period,
			CreationDate: time.Now(),
			IsActive:     true,
			ListID:       listID,
		})
		if err != nil {
			return fmt.Errorf("could not store budget: %w", err)
		}

		view = &domain.BudgetView{Budget: *budget, ListName: list.Name, Remaining: budget.Limit}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not create budget: %w", err)
	}

	return view, nil
}

// GetByID fetches a budget with its live spend and remaining amounts.
func (s budgets) GetByID(ctx context.Context, id domain.BudgetID) (*domain.BudgetView, error) {
	budget, err := s.storage.BudgetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get budget: %w", err)
	}
	if budget == nil {
		return nil, serrors.With(serrors.ErrNotFound, "budget not found")
	}

	return s.view(ctx, budget)
}

// GetByShoppingList fetches the list's budget with live aggregation.
func (s budgets) GetByShoppingList(ctx context.Context, listID domain.ListID) (*domain.BudgetView, error) {
	budget, err := s.storage.BudgetByList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("could not get budget: %w", err)
	}
	if budget == nil {
		return nil, serrors.With(serrors.ErrNotFound, "budget not found")
	}

	return s.view(ctx, budget)
}

// ActiveBudgets returns all budgets currently in force.
func (s budgets) ActiveBudgets(ctx context.Context) ([]domain.Budget, error) {
	res, err := s.storage.Budgets(ctx, storage.BudgetFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("could not list budgets: %w", err)
	}

	return res, nil
}

// ByPeriod returns budgets recurring at the given period.
func (s budgets) ByPeriod(ctx context.Context, period domain.BudgetPeriod) ([]domain.Budget, error) {
	res, err := s.storage.Budgets(ctx, storage.BudgetFilter{Period: &period})
	if err != nil {
		return nil, fmt.Errorf("could not list budgets: %w", err)
	}

	return res, nil
}

// ByCurrency returns budgets denominated in the given currency.
func (s budgets) ByCurrency(ctx context.Context, currency string) ([]domain.Budget, error) {
	res, err := s.storage.Budgets(ctx, storage.BudgetFilter{Currency: &currency})
	if err != nil {
		return nil, fmt.Errorf("could not list budgets: %w", err)
	}

	return res, nil
}

// ByOwner returns budgets on lists owned by the user, optionally only the
// active ones.
func (s budgets) ByOwner(ctx context.Context, ownerID domain.UserID, activeOnly bool) ([]domain.Budget, error) {
	res, err := s.storage.Budgets(ctx, storage.BudgetFilter{OwnerID: ownerID, ActiveOnly: activeOnly})
	if err != nil {
		return nil, fmt.Errorf("could not list budgets: %w", err)
	}

	return res, nil
}

// Update applies a partial field set.
func (s budgets) Update(ctx context.Context,
	id domain.BudgetID,
	updates storage.BudgetUpdates) (*domain.BudgetView, error) {
	if updates.Currency != nil && len(*updates.Currency) > maxCurrencyLen {
		return nil, serrors.With(serrors.ErrValidation, "currency must be at most 3 characters")
	}

	var updated *domain.Budget
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		budget, err := tx.UpdateBudget(ctx, id, updates)
		if err != nil {
			return fmt.Errorf("could not update budget: %w", err)
		}
		if budget == nil {
			return serrors.With(serrors.ErrNotFound, "budget not found")
		}
		updated = budget

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not update budget: %w", err)
	}

	return s.view(ctx, updated)
}

// Activate puts the budget back in force.
func (s budgets) Activate(ctx context.Context, id domain.BudgetID) error {
	return s.setActive(ctx, id, true)
}

// Deactivate suspends the budget without deleting it.
func (s budgets) Deactivate(ctx context.Context, id domain.BudgetID) error {
	return s.setActive(ctx, id, false)
}

func (s budgets) setActive(ctx context.Context, id domain.BudgetID, active bool) error {
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		budget, err := tx.UpdateBudget(ctx, id, storage.BudgetUpdates{IsActive: &active})
		if err != nil {
			return fmt.Errorf("could not update budget: %w", err)
		}
		if budget == nil {
			return serrors.With(serrors.ErrNotFound, "budget not found")
		}

		return nil
	}); err != nil {
		return fmt.Errorf("could not set budget active state: %w", err)
	}

	return nil
}

// Delete removes the budget.
func (s budgets) Delete(ctx context.Context, id domain.BudgetID) error {
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		deleted, err := tx.DeleteBudget(ctx, id)
		if err != nil {
			return fmt.Errorf("could not delete budget: %w", err)
		}
		if !deleted {
			return serrors.With(serrors.ErrNotFound, "budget not found")
		}

		return nil
	}); err != nil {
		return fmt.Errorf("could not delete budget: %w", err)
	}

	return nil
}

// CurrentSpent returns the live spend on the budget's list.
func (s budgets) CurrentSpent(ctx context.Context, id domain.BudgetID) (float64, error) {
	budget, err := s.require(ctx, id)
	if err != nil {
		return 0, err
	}

	spent, err := s.storage.TotalSpent(ctx, budget.ListID)
	if err != nil {
		return 0, fmt.Errorf("could not compute spent: %w", err)
	}

	return spent, nil
}

// Remaining returns the limit minus the live spend. Negative when the list
// is over budget.
func (s budgets) Remaining(ctx context.Context, id domain.BudgetID) (float64, error) {
	budget, err := s.require(ctx, id)
	if err != nil {
		return 0, err
	}

	spent, err := s.storage.TotalSpent(ctx, budget.ListID)
	if err != nil {
		return 0, fmt.Errorf("could not compute spent: %w", err)
	}

	return budget.Limit - spent, nil
}

// IsOverBudget reports whether spend strictly exceeds the limit. Spending
// exactly the limit is not over budget.
func (s budgets) IsOverBudget(ctx context.Context, id domain.BudgetID) (bool, error) {
	remaining, err := s.Remaining(ctx, id)
	if err != nil {
		return false, err
	}

	return remaining < 0, nil
}

// OverBudgetLists returns every active budget whose list has spent past its
// limit, recomputed by a join-aggregate query on each call.
func (s budgets) OverBudgetLists(ctx context.Context) ([]domain.BudgetView, error) {
	res, err := s.storage.OverBudgetLists(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get over-budget lists: %w", err)
	}

	views := make([]domain.BudgetView, 0, len(res))
	for i := range res {
		view, err := s.view(ctx, &res[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	return views, nil
}

func (s budgets) require(ctx context.Context, id domain.BudgetID) (*domain.Budget, error) {
	budget, err := s.storage.BudgetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get budget: %w", err)
	}
	if budget == nil {
		return nil, serrors.With(serrors.ErrNotFound, "budget not found")
	}

	return budget, nil
}

func (s budgets) view(ctx context.Context, budget *domain.Budget) (*domain.BudgetView, error) {
	list, err := s.storage.ListByID(ctx, budget.ListID)
	if err != nil {
		return nil, fmt.Errorf("could not get list: %w", err)
	}

	spent, err := s.storage.TotalSpent(ctx, budget.ListID)
	if err != nil {
		return nil, fmt.Errorf("could not compute spent: %w", err)
	}

	view := &domain.BudgetView{
		Budget:       *budget,
		CurrentSpent: spent,
		Remaining:    budget.Limit - spent,
	}
	if list != nil {
		view.ListName = list.Name
	}

	return view, nil
}
