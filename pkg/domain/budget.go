package domain

import "time"

// BudgetID uniquely identifies a budget.
type BudgetID int64

// BudgetPeriod is the recurrence period a budget limit applies to.
type BudgetPeriod string

const (
	BudgetPeriodWeekly  BudgetPeriod = "WEEKLY"
	BudgetPeriodMonthly BudgetPeriod = "MONTHLY"
	BudgetPeriodYearly  BudgetPeriod = "YEARLY"
)

// Budget caps spending on a single shopping list. At most one budget exists
// per list; the invariant is enforced at creation time and backed by a unique
// index on the list reference.
type Budget struct {
	ID BudgetID `json:"id"`

	Limit    float64      `json:"limit"`
	Currency string       `json:"currency,omitempty"`
	Period   BudgetPeriod `json:"period,omitempty"`

	CreationDate time.Time `json:"creationDate"`
	IsActive     bool      `json:"isActive"`

	ListID ListID `json:"shoppingListId"`
}

// HasID reports whether the budget has been assigned a persistent identity.
func (b Budget) HasID() bool { return b.ID != 0 }

// Equal reports identity-based equality between two budgets.
func (b Budget) Equal(o Budget) bool { return b.HasID() && o.HasID() && b.ID == o.ID }

// BudgetView is the response projection for a budget. CurrentSpent and
// Remaining are recomputed from purchased items on every read.
type BudgetView struct {
	Budget

	ListName     string  `json:"shoppingListName"`
	CurrentSpent float64 `json:"currentSpent"`
	Remaining    float64 `json:"remainingBudget"`
}
