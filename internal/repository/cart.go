package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/roach88/storefront/internal/live"
	"github.com/roach88/storefront/internal/store"
)

// Summary is a cart's lines together with their total.
type Summary struct {
	Items []store.LineItem `json:"items"`
	Total decimal.Decimal  `json:"total"`
}

// Cart manages each user's active shopping list.
type Cart struct {
	lists store.ShoppingLists
	items store.ListItems
	clock Clock
}

// NewCart creates a Cart backed by s. A nil clock uses SystemClock.
func NewCart(s *store.Store, clock Clock) *Cart {
	if clock == nil {
		clock = SystemClock
	}
	return &Cart{
		lists: s.ShoppingLists(),
		items: s.ListItems(),
		clock: clock,
	}
}

// Add puts productID in the user's active list with quantity 1, creating
// the list first if the user has none. Adding a product already in the cart
// resets its quantity to 1.
func (c *Cart) Add(ctx context.Context, userID, productID int64) error {
	list, err := c.lists.FindOrCreateActive(ctx, userID, c.clock.Now())
	if err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}

	item := store.ShoppingListItem{ListID: list.ID, ProductID: productID, Quantity: 1}
	if err := c.items.Upsert(ctx, item); err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	return nil
}

// Remove takes productID out of the user's active list. It is a no-op when
// the user has no active list or the product is not in it.
func (c *Cart) Remove(ctx context.Context, userID, productID int64) error {
	list, err := live.First(ctx, c.lists.Active(userID))
	if err != nil {
		return fmt.Errorf("remove from cart: %w", err)
	}
	if list == nil {
		return nil
	}
	if err := c.items.Delete(ctx, list.ID, productID); err != nil {
		return fmt.Errorf("remove from cart: %w", err)
	}
	return nil
}

// Items returns the lines of the user's active list. The read follows the
// active list: when a list appears the result switches to its lines, and
// while there is none the result is empty.
func (c *Cart) Items(userID int64) live.Query[[]store.LineItem] {
	return live.SwitchMap(c.lists.Active(userID),
		func(list *store.ShoppingList) int64 {
			if list == nil {
				return 0
			}
			return list.ID
		},
		func(list *store.ShoppingList) live.Query[[]store.LineItem] {
			if list == nil {
				return live.Just([]store.LineItem{})
			}
			return c.items.Details(list.ID)
		},
	)
}

// Summary returns the user's cart lines with their total.
func (c *Cart) Summary(userID int64) live.Query[Summary] {
	return live.Map(c.Items(userID), func(items []store.LineItem) Summary {
		return Summary{Items: items, Total: Total(items)}
	})
}

// Total sums price × quantity over items, rounded to cents.
func Total(items []store.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(line)
	}
	return total.Round(2)
}
