// Package repository composes the store's access objects into the
// operations the storefront exposes: sign-in, catalogue browsing, the cart
// and the wishlist.
//
// Repositories hold no state of their own beyond their collaborators. Live
// results come straight from the store, so a write through any repository
// is observed by every subscriber of every repository.
//
// Absent rows are reported as defaults (false, nil, empty slice). Every
// other failure is returned wrapped with the operation that hit it.
package repository
