package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/storefront/internal/live"
)

// Products is the access object for the products table.
type Products struct {
	s *Store
}

// Products returns the products access object.
func (s *Store) Products() Products {
	return Products{s: s}
}

const productColumns = `id, name, description, image_url, price, category_id, on_offer`

// Upsert inserts p, replacing any existing row with the same id, and returns
// the row id. The category must exist.
func (p Products) Upsert(ctx context.Context, prod Product) (int64, error) {
	var id int64
	err := p.s.write(ctx, "upsert product", func(tx *sql.Tx) ([]string, error) {
		res, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO products (`+productColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			nullableID(prod.ID),
			prod.Name,
			prod.Description,
			prod.ImageURL,
			prod.Price,
			prod.CategoryID,
			prod.OnOffer,
		)
		if err != nil {
			return nil, err
		}
		if id, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		return deleteReach(TableProducts), nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Delete removes the product with id and every shopping list item and
// wishlist item referencing it.
func (p Products) Delete(ctx context.Context, id int64) error {
	return p.s.write(ctx, "delete product", func(tx *sql.Tx) ([]string, error) {
		return deleteByKey(ctx, tx, TableProducts, `DELETE FROM products WHERE id = ?`, id)
	})
}

// All returns every product in id order.
func (p Products) All() live.Query[[]Product] {
	return live.Observe(p.s.notifier, []string{TableProducts}, func(ctx context.Context) ([]Product, error) {
		return p.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id ASC`)
	})
}

// ByCategory returns the products of one category, in the same relative
// order as All.
func (p Products) ByCategory(categoryID int64) live.Query[[]Product] {
	return live.Observe(p.s.notifier, []string{TableProducts}, func(ctx context.Context) ([]Product, error) {
		return p.query(ctx, `
			SELECT `+productColumns+`
			FROM products
			WHERE category_id = ?
			ORDER BY id ASC
		`, categoryID)
	})
}

// ByID returns the product with id, or nil while no such product exists.
func (p Products) ByID(id int64) live.Query[*Product] {
	return live.Observe(p.s.notifier, []string{TableProducts}, func(ctx context.Context) (*Product, error) {
		row := p.s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
		prod, err := scanProduct(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("query product %d: %w", id, err)
		}
		return &prod, nil
	})
}

func (p Products) query(ctx context.Context, query string, args ...any) ([]Product, error) {
	rows, err := p.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		prod, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, prod)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (Product, error) {
	var prod Product
	err := row.Scan(
		&prod.ID,
		&prod.Name,
		&prod.Description,
		&prod.ImageURL,
		&prod.Price,
		&prod.CategoryID,
		&prod.OnOffer,
	)
	return prod, err
}
