package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/store"
	"github.com/roach88/storefront/internal/testutil"
)

func newTestCart(t *testing.T) (*Cart, *store.Store) {
	t.Helper()
	s := testutil.NewSeededStore(t)
	return NewCart(s, testutil.NewStepClock(time.Second)), s
}

func activeLists(t *testing.T, s *store.Store, userID int64) int {
	t.Helper()
	var n int
	err := s.DB().QueryRow(
		"SELECT COUNT(*) FROM shopping_lists WHERE user_id = ? AND status = 'active'", userID,
	).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestCart_AddThenItems(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	require.NoError(t, cart.Add(ctx, 1, 2))

	items := first(t, cart.Items(1))
	assert.Equal(t, []store.LineItem{
		{ProductID: 2, Name: "Γιαούρτι Στραγγιστό", Price: 0.90, Quantity: 1},
	}, items)

	summary := first(t, cart.Summary(1))
	assert.Equal(t, "0.90", summary.Total.StringFixed(2))
}

func TestCart_ItemsEmptyWithoutActiveList(t *testing.T) {
	cart, _ := newTestCart(t)

	items := first(t, cart.Items(1))
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCart_SingleActiveList(t *testing.T) {
	cart, s := newTestCart(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 23)
	for p := int64(1); p <= 23; p++ {
		wg.Add(1)
		go func(p int64) {
			defer wg.Done()
			errs <- cart.Add(ctx, 1, p)
		}(p)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 1, activeLists(t, s, 1))
	assert.Len(t, first(t, cart.Items(1)), 23)
}

func TestCart_AddReplacesQuantity(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	require.NoError(t, cart.Add(ctx, 1, 5))
	require.NoError(t, cart.Add(ctx, 1, 5))

	items := first(t, cart.Items(1))
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestCart_LiveItemsFollowAddAndRemove(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	sub := subscribe(t, cart.Items(1))
	assert.Empty(t, waitFor(t, sub, func([]store.LineItem) bool { return true }))

	require.NoError(t, cart.Add(ctx, 1, 10))
	waitFor(t, sub, func(items []store.LineItem) bool {
		return len(items) == 1 && items[0].ProductID == 10
	})

	require.NoError(t, cart.Add(ctx, 1, 3))
	items := waitFor(t, sub, func(items []store.LineItem) bool { return len(items) == 2 })
	assert.Equal(t, int64(3), items[0].ProductID)
	assert.Equal(t, int64(10), items[1].ProductID)

	require.NoError(t, cart.Remove(ctx, 1, 10))
	waitFor(t, sub, func(items []store.LineItem) bool {
		return len(items) == 1 && items[0].ProductID == 3
	})
}

func TestCart_RemoveWithoutListIsNoop(t *testing.T) {
	cart, s := newTestCart(t)
	ctx := context.Background()

	require.NoError(t, cart.Remove(ctx, 1, 4))
	assert.Equal(t, 0, activeLists(t, s, 1))

	require.NoError(t, cart.Add(ctx, 1, 2))
	require.NoError(t, cart.Remove(ctx, 1, 4))
	assert.Len(t, first(t, cart.Items(1)), 1)
}

func TestCart_NewListUsesClock(t *testing.T) {
	cart, s := newTestCart(t)
	ctx := context.Background()

	require.NoError(t, cart.Add(ctx, 1, 2))

	list := first(t, s.ShoppingLists().Active(1))
	require.NotNil(t, list)
	assert.True(t, list.CreationDate.Equal(testutil.Epoch))
}

func TestCart_SummaryFollowsProductReplace(t *testing.T) {
	cart, s := newTestCart(t)
	ctx := context.Background()

	require.NoError(t, cart.Add(ctx, 1, 1))
	sub := subscribe(t, cart.Summary(1))
	waitFor(t, sub, func(sm Summary) bool { return sm.Total.Equal(decimal.RequireFromString("1.50")) })

	_, err := s.Products().Upsert(ctx, store.Product{ID: 1, Name: "Γάλα Φρέσκο", Description: "1.5L Πλήρες", Price: 1.70, CategoryID: 1})
	require.NoError(t, err)

	// Replacing a product cascades its cart line away.
	sm := waitFor(t, sub, func(sm Summary) bool { return len(sm.Items) == 0 })
	assert.True(t, sm.Total.IsZero())
}

func TestTotal(t *testing.T) {
	tests := []struct {
		name  string
		items []store.LineItem
		want  string
	}{
		{"empty", nil, "0.00"},
		{"two lines", []store.LineItem{{Price: 1.50, Quantity: 2}, {Price: 5.20, Quantity: 1}}, "8.20"},
		{"no float drift", []store.LineItem{{Price: 0.10, Quantity: 3}, {Price: 0.20, Quantity: 1}}, "0.50"},
		{"single", []store.LineItem{{Price: 0.90, Quantity: 1}}, "0.90"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Total(tt.items).StringFixed(2))
		})
	}
}
