package service_test

import (
	"context"
	"testing"

	"listkeeper/internal/service"
	"listkeeper/pkg/domain"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	st *memStorage

	users      service.Users
	categories service.Categories
	lists      service.Lists
	items      service.Items
	budgets    service.Budgets
	shares     service.Shares
	sessions   service.Sessions
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := newMemStorage()

	return &fixture{
		st:         st,
		users:      service.NewUsers(st),
		categories: service.NewCategories(st),
		lists:      service.NewLists(st),
		items:      service.NewItems(st),
		budgets:    service.NewBudgets(st),
		shares:     service.NewShares(st),
		sessions:   service.NewSessions(st),
	}
}

func (f *fixture) user(t *testing.T, email string) *domain.UserView {
	t.Helper()
	u, err := f.users.Create(context.Background(), service.CreateUserParams{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "secret",
	})
	require.NoError(t, err)

	return u
}

func (f *fixture) category(t *testing.T, name string) *domain.CategoryView {
	t.Helper()
	c, err := f.categories.Create(context.Background(), service.CreateCategoryParams{Name: name})
	require.NoError(t, err)

	return c
}

func (f *fixture) list(t *testing.T, owner domain.UserID, name string) *domain.ShoppingListView {
	t.Helper()
	l, err := f.lists.Create(context.Background(), owner, service.CreateListParams{Name: name})
	require.NoError(t, err)

	return l
}

func (f *fixture) item(t *testing.T,
	list domain.ListID,
	category domain.CategoryID,
	name string,
	quantity float64) *domain.ItemView {
	t.Helper()
	i, err := f.items.Create(context.Background(), list, service.CreateItemParams{
		Name:       name,
		Quantity:   quantity,
		CategoryID: category,
	})
	require.NoError(t, err)

	return i
}

func ptr[T any](v T) *T { return &v }
