package repository

import (
	"context"
	"fmt"

	"github.com/roach88/storefront/internal/live"
	"github.com/roach88/storefront/internal/store"
)

// Wishlist manages the products each user has saved for later.
type Wishlist struct {
	items store.Wishlist
}

// NewWishlist creates a Wishlist backed by s.
func NewWishlist(s *store.Store) *Wishlist {
	return &Wishlist{items: s.Wishlist()}
}

// Contains reports, live, whether productID is on the user's wishlist.
func (w *Wishlist) Contains(userID, productID int64) live.Query[bool] {
	return live.Map(w.items.Find(userID, productID), func(item *store.WishlistItem) bool {
		return item != nil
	})
}

// Add saves productID for the user. Adding a saved product again is a no-op.
func (w *Wishlist) Add(ctx context.Context, userID, productID int64) error {
	if _, err := w.items.Add(ctx, store.WishlistItem{UserID: userID, ProductID: productID}); err != nil {
		return fmt.Errorf("add to wishlist: %w", err)
	}
	return nil
}

// Remove drops productID from the user's wishlist, if present.
func (w *Wishlist) Remove(ctx context.Context, userID, productID int64) error {
	if err := w.items.Remove(ctx, userID, productID); err != nil {
		return fmt.Errorf("remove from wishlist: %w", err)
	}
	return nil
}

// Items returns the user's wishlist in product id order.
func (w *Wishlist) Items(userID int64) live.Query[[]store.WishlistItem] {
	return w.items.ForUser(userID)
}
