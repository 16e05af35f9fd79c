package repository

import (
	"time"

	"github.com/roach88/storefront/internal/store"
)

// Set bundles the repositories of one store.
type Set struct {
	Auth     *Auth
	Catalog  *Catalog
	Cart     *Cart
	Wishlist *Wishlist
}

// New wires every repository to s. grace is the sharing grace period of the
// catalogue's unfiltered reads.
func New(s *store.Store, clock Clock, grace time.Duration) *Set {
	return &Set{
		Auth:     NewAuth(s),
		Catalog:  NewCatalog(s, grace),
		Cart:     NewCart(s, clock),
		Wishlist: NewWishlist(s),
	}
}
