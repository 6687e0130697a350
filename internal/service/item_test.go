package service_test

import (
	"context"
	"testing"
	"time"

	"listkeeper/internal/service"
	"listkeeper/pkg/domain"
	"listkeeper/pkg/serrors"
	"listkeeper/pkg/storage"

	"github.com/stretchr/testify/require"
)

func TestItems_Create_Defaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "items@example.com")
	l := f.list(t, u.ID, "weekly")
	c := f.category(t, "Produce")

	item, err := f.items.Create(ctx, l.ID, service.CreateItemParams{Name: "apples", CategoryID: c.ID})
	require.NoError(t, err)
	require.Equal(t, 1.0, item.Quantity)
	require.Equal(t, domain.PriorityMedium, item.Priority)
	require.False(t, item.IsPurchased)
	require.Nil(t, item.ActualPrice)
	require.Nil(t, item.PurchasedDate)
	require.Equal(t, "Produce", item.CategoryName)
}

func TestItems_Create_MissingListOrCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "missing@example.com")
	l := f.list(t, u.ID, "real")
	c := f.category(t, "Real")

	_, err := f.items.Create(ctx, 9999, service.CreateItemParams{Name: "x", CategoryID: c.ID})
	require.ErrorIs(t, err, serrors.ErrNotFound)

	_, err = f.items.Create(ctx, l.ID, service.CreateItemParams{Name: "x", CategoryID: 9999})
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestItems_PurchaseRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "buy@example.com")
	l := f.list(t, u.ID, "trip")
	c := f.category(t, "Dairy")
	item := f.item(t, l.ID, c.ID, "milk", 2)

	bought, err := f.items.MarkPurchased(ctx, item.ID, ptr(3.5))
	require.NoError(t, err)
	require.True(t, bought.IsPurchased)
	require.NotNil(t, bought.ActualPrice)
	require.Equal(t, 3.5, *bought.ActualPrice)
	require.NotNil(t, bought.PurchasedDate)

	reverted, err := f.items.MarkUnpurchased(ctx, item.ID)
	require.NoError(t, err)
	require.False(t, reverted.IsPurchased)
	require.Nil(t, reverted.ActualPrice)
	require.Nil(t, reverted.PurchasedDate)
}

func TestItems_MarkPurchased_AcceptsNonPositivePrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "zero@example.com")
	l := f.list(t, u.ID, "freebies")
	c := f.category(t, "Promo")
	item := f.item(t, l.ID, c.ID, "sample", 1)

	// the price is stored exactly as given, zero and negative included
	bought, err := f.items.MarkPurchased(ctx, item.ID, ptr(-1.0))
	require.NoError(t, err)
	require.Equal(t, -1.0, *bought.ActualPrice)
}

func TestItems_TotalSpent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "spend@example.com")
	l := f.list(t, u.ID, "ledger")
	c := f.category(t, "Mixed")

	a := f.item(t, l.ID, c.ID, "a", 2) // 2 x 3.00 = 6.00
	b := f.item(t, l.ID, c.ID, "b", 1) // 1 x 4.50 = 4.50
	f.item(t, l.ID, c.ID, "c", 5)      // unpurchased, ignored

	_, err := f.items.MarkPurchased(ctx, a.ID, ptr(3.0))
	require.NoError(t, err)
	_, err = f.items.MarkPurchased(ctx, b.ID, ptr(4.5))
	require.NoError(t, err)

	total, err := f.items.TotalSpent(ctx, l.ID)
	require.NoError(t, err)
	require.InDelta(t, 10.5, total, 1e-9)
}

func TestItems_TotalSpent_EmptyListIsZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "empty@example.com")
	l := f.list(t, u.ID, "nothing")

	total, err := f.items.TotalSpent(ctx, l.ID)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestItems_EstimatedTotal_MissingEstimateCountsZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "estimate@example.com")
	l := f.list(t, u.ID, "plan")
	c := f.category(t, "Plan")

	_, err := f.items.Create(ctx, l.ID, service.CreateItemParams{
		Name: "estimated", Quantity: 3, EstimatedPrice: ptr(2.0), CategoryID: c.ID,
	})
	require.NoError(t, err)
	f.item(t, l.ID, c.ID, "unknown-price", 10)

	total, err := f.items.EstimatedTotal(ctx, l.ID)
	require.NoError(t, err)
	require.InDelta(t, 6.0, total, 1e-9)
}

func TestItems_DeleteAllPurchased_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "clear@example.com")
	l := f.list(t, u.ID, "cleanup")
	c := f.category(t, "Any")

	a := f.item(t, l.ID, c.ID, "bought", 1)
	f.item(t, l.ID, c.ID, "kept", 1)
	_, err := f.items.MarkPurchased(ctx, a.ID, ptr(1.0))
	require.NoError(t, err)

	count, err := f.items.DeleteAllPurchased(ctx, l.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	// nothing left to delete; still succeeds
	count, err = f.items.DeleteAllPurchased(ctx, l.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	remaining, err := f.items.ListByShoppingList(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, "kept", remaining[0].Name)
}

func TestItems_Update_RepointsCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "repoint@example.com")
	l := f.list(t, u.ID, "movable")
	oldCat := f.category(t, "Old")
	newCat := f.category(t, "New")
	item := f.item(t, l.ID, oldCat.ID, "thing", 1)

	updated, err := f.items.Update(ctx, item.ID, storage.ItemUpdates{CategoryID: &newCat.ID})
	require.NoError(t, err)
	require.Equal(t, newCat.ID, updated.CategoryID)
	require.Equal(t, "New", updated.CategoryName)

	_, err = f.items.Update(ctx, item.ID, storage.ItemUpdates{CategoryID: ptr(domain.CategoryID(9999))})
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestItems_Update_PurchaseFieldsNeedFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "flag@example.com")
	l := f.list(t, u.ID, "guarded")
	c := f.category(t, "Guard")
	item := f.item(t, l.ID, c.ID, "thing", 1)

	// without IsPurchased the triple stays untouched: the price and date in
	// the update are ignored and the item remains unpurchased
	now := time.Now()
	updated, err := f.items.Update(ctx, item.ID, storage.ItemUpdates{
		ActualPrice:   ptr(9.99),
		PurchasedDate: &now,
	})
	require.NoError(t, err)
	require.False(t, updated.IsPurchased)
	require.Nil(t, updated.ActualPrice)
	require.Nil(t, updated.PurchasedDate)

	_, err = f.items.MarkPurchased(ctx, item.ID, ptr(2.5))
	require.NoError(t, err)

	// same again on a purchased item: the stored price survives
	updated, err = f.items.Update(ctx, item.ID, storage.ItemUpdates{ActualPrice: ptr(9.99)})
	require.NoError(t, err)
	require.True(t, updated.IsPurchased)
	require.Equal(t, 2.5, *updated.ActualPrice)
}

func TestItems_PurchasedFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "filter@example.com")
	l := f.list(t, u.ID, "filtered")
	c := f.category(t, "Filter")

	a := f.item(t, l.ID, c.ID, "bought", 1)
	f.item(t, l.ID, c.ID, "open", 1)
	_, err := f.items.MarkPurchased(ctx, a.ID, nil)
	require.NoError(t, err)

	purchased, err := f.items.PurchasedByShoppingList(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, purchased, 1)
	require.Equal(t, "bought", purchased[0].Name)

	open, err := f.items.UnpurchasedByShoppingList(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, "open", open[0].Name)
}
