package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/storefront/internal/live"
)

// Wishlist is the access object for the wishlist_items table.
type Wishlist struct {
	s *Store
}

// Wishlist returns the wishlist access object.
func (s *Store) Wishlist() Wishlist {
	return Wishlist{s: s}
}

// Add inserts item unless the (user, product) pair is already present.
// Reports whether a row was inserted; a duplicate is not an error.
func (w Wishlist) Add(ctx context.Context, item WishlistItem) (bool, error) {
	var inserted bool
	err := w.s.write(ctx, "add wishlist item", func(tx *sql.Tx) ([]string, error) {
		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO wishlist_items (user_id, product_id)
			VALUES (?, ?)
		`, item.UserID, item.ProductID)
		if err != nil {
			return nil, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return nil, nil
		}
		inserted = true
		return []string{TableWishlistItems}, nil
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

// Remove deletes the (userID, productID) pair. Removing an absent pair is a
// no-op.
func (w Wishlist) Remove(ctx context.Context, userID, productID int64) error {
	return w.s.write(ctx, "remove wishlist item", func(tx *sql.Tx) ([]string, error) {
		return deleteByKey(ctx, tx, TableWishlistItems, `
			DELETE FROM wishlist_items
			WHERE user_id = ? AND product_id = ?
		`, userID, productID)
	})
}

// ForUser returns the user's wishlist ordered by product id.
func (w Wishlist) ForUser(userID int64) live.Query[[]WishlistItem] {
	return live.Observe(w.s.notifier, []string{TableWishlistItems}, func(ctx context.Context) ([]WishlistItem, error) {
		rows, err := w.s.db.QueryContext(ctx, `
			SELECT user_id, product_id
			FROM wishlist_items
			WHERE user_id = ?
			ORDER BY product_id ASC
		`, userID)
		if err != nil {
			return nil, fmt.Errorf("query wishlist: %w", err)
		}
		defer rows.Close()

		items := []WishlistItem{}
		for rows.Next() {
			var item WishlistItem
			if err := rows.Scan(&item.UserID, &item.ProductID); err != nil {
				return nil, fmt.Errorf("scan wishlist item: %w", err)
			}
			items = append(items, item)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate wishlist: %w", err)
		}
		return items, nil
	})
}

// Find returns the (userID, productID) wishlist entry, or nil while it is
// absent.
func (w Wishlist) Find(userID, productID int64) live.Query[*WishlistItem] {
	return live.Observe(w.s.notifier, []string{TableWishlistItems}, func(ctx context.Context) (*WishlistItem, error) {
		var item WishlistItem
		err := w.s.db.QueryRowContext(ctx, `
			SELECT user_id, product_id
			FROM wishlist_items
			WHERE user_id = ? AND product_id = ?
		`, userID, productID).Scan(&item.UserID, &item.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("query wishlist item: %w", err)
		}
		return &item, nil
	})
}
