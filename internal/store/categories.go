package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/storefront/internal/live"
)

// Categories is the access object for the categories table.
type Categories struct {
	s *Store
}

// Categories returns the categories access object.
func (s *Store) Categories() Categories {
	return Categories{s: s}
}

// Upsert inserts c, replacing any existing row with the same id, and returns
// the row id. Replacing a category cascades its products away.
func (c Categories) Upsert(ctx context.Context, cat Category) (int64, error) {
	var id int64
	err := c.s.write(ctx, "upsert category", func(tx *sql.Tx) ([]string, error) {
		res, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO categories (id, name)
			VALUES (?, ?)
		`, nullableID(cat.ID), cat.Name)
		if err != nil {
			return nil, err
		}
		if id, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		return deleteReach(TableCategories), nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Delete removes the category with id together with all of its products.
func (c Categories) Delete(ctx context.Context, id int64) error {
	return c.s.write(ctx, "delete category", func(tx *sql.Tx) ([]string, error) {
		return deleteByKey(ctx, tx, TableCategories, `DELETE FROM categories WHERE id = ?`, id)
	})
}

// All returns every category sorted alphabetically by name.
func (c Categories) All() live.Query[[]Category] {
	return live.Observe(c.s.notifier, []string{TableCategories}, func(ctx context.Context) ([]Category, error) {
		rows, err := c.s.db.QueryContext(ctx, `
			SELECT id, name
			FROM categories
			ORDER BY name ASC, id ASC
		`)
		if err != nil {
			return nil, fmt.Errorf("query categories: %w", err)
		}
		defer rows.Close()

		categories := []Category{}
		for rows.Next() {
			var cat Category
			if err := rows.Scan(&cat.ID, &cat.Name); err != nil {
				return nil, fmt.Errorf("scan category: %w", err)
			}
			categories = append(categories, cat)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate categories: %w", err)
		}
		return categories, nil
	})
}
