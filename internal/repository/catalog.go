package repository

import (
	"time"

	"github.com/roach88/storefront/internal/live"
	"github.com/roach88/storefront/internal/store"
)

// Catalog exposes categories and products as live reads.
//
// The unfiltered category and product lists are shared: every subscriber
// observes one upstream query, which stays subscribed for grace after the
// last subscriber leaves.
type Catalog struct {
	products   store.Products
	categories live.Query[[]store.Category]
	all        live.Query[[]store.Product]
}

// NewCatalog creates a Catalog backed by s.
func NewCatalog(s *store.Store, grace time.Duration) *Catalog {
	return &Catalog{
		products:   s.Products(),
		categories: live.Share(s.Categories().All(), grace),
		all:        live.Share(s.Products().All(), grace),
	}
}

// Categories returns every category sorted by name.
func (c *Catalog) Categories() live.Query[[]store.Category] {
	return c.categories
}

// Products returns every product in id order.
func (c *Catalog) Products() live.Query[[]store.Product] {
	return c.all
}

// ProductsByCategory returns the products of one category. An unknown
// category yields an empty list.
func (c *Catalog) ProductsByCategory(categoryID int64) live.Query[[]store.Product] {
	return c.products.ByCategory(categoryID)
}

// Product returns one product, or nil while it does not exist.
func (c *Catalog) Product(id int64) live.Query[*store.Product] {
	return c.products.ByID(id)
}
