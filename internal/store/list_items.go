package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/storefront/internal/live"
)

// ListItems is the access object for the shopping_list_items table.
type ListItems struct {
	s *Store
}

// ListItems returns the shopping list items access object.
func (s *Store) ListItems() ListItems {
	return ListItems{s: s}
}

// Upsert inserts item. An existing row for the same (list, product) is
// replaced, so its quantity is overwritten rather than added to.
func (li ListItems) Upsert(ctx context.Context, item ShoppingListItem) error {
	return li.s.write(ctx, "upsert list item", func(tx *sql.Tx) ([]string, error) {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO shopping_list_items (list_id, product_id, quantity)
			VALUES (?, ?, ?)
		`, item.ListID, item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		return deleteReach(TableShoppingListItems), nil
	})
}

// Delete removes the (listID, productID) line. Deleting an absent line is a
// no-op.
func (li ListItems) Delete(ctx context.Context, listID, productID int64) error {
	return li.s.write(ctx, "delete list item", func(tx *sql.Tx) ([]string, error) {
		return deleteByKey(ctx, tx, TableShoppingListItems, `
			DELETE FROM shopping_list_items
			WHERE list_id = ? AND product_id = ?
		`, listID, productID)
	})
}

// ForList returns the raw items of one list ordered by product id.
func (li ListItems) ForList(listID int64) live.Query[[]ShoppingListItem] {
	return live.Observe(li.s.notifier, []string{TableShoppingListItems}, func(ctx context.Context) ([]ShoppingListItem, error) {
		rows, err := li.s.db.QueryContext(ctx, `
			SELECT list_id, product_id, quantity
			FROM shopping_list_items
			WHERE list_id = ?
			ORDER BY product_id ASC
		`, listID)
		if err != nil {
			return nil, fmt.Errorf("query list items: %w", err)
		}
		defer rows.Close()

		items := []ShoppingListItem{}
		for rows.Next() {
			var item ShoppingListItem
			if err := rows.Scan(&item.ListID, &item.ProductID, &item.Quantity); err != nil {
				return nil, fmt.Errorf("scan list item: %w", err)
			}
			items = append(items, item)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate list items: %w", err)
		}
		return items, nil
	})
}

// Details returns the lines of one list joined with product name and price.
// The join runs as a single statement, so each result is one consistent
// snapshot of both tables.
func (li ListItems) Details(listID int64) live.Query[[]LineItem] {
	tables := []string{TableShoppingListItems, TableProducts}
	return live.Observe(li.s.notifier, tables, func(ctx context.Context) ([]LineItem, error) {
		rows, err := li.s.db.QueryContext(ctx, `
			SELECT p.id, p.name, p.price, sli.quantity
			FROM shopping_list_items AS sli
			INNER JOIN products AS p ON sli.product_id = p.id
			WHERE sli.list_id = ?
			ORDER BY sli.product_id ASC
		`, listID)
		if err != nil {
			return nil, fmt.Errorf("query line items: %w", err)
		}
		defer rows.Close()

		lines := []LineItem{}
		for rows.Next() {
			var line LineItem
			if err := rows.Scan(&line.ProductID, &line.Name, &line.Price, &line.Quantity); err != nil {
				return nil, fmt.Errorf("scan line item: %w", err)
			}
			lines = append(lines, line)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate line items: %w", err)
		}
		return lines, nil
	})
}
