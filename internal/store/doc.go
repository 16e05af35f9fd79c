// Package store provides the SQLite-backed local store for the storefront.
//
// The store holds six tables:
//   - users
//   - categories
//   - products (category_id → categories, ON DELETE CASCADE)
//   - shopping_lists (user_id → users, ON DELETE CASCADE)
//   - shopping_list_items (list_id → shopping_lists, product_id → products, both CASCADE)
//   - wishlist_items (user_id → users, product_id → products, both CASCADE)
//
// Each table has one access object (Users, Categories, Products,
// ShoppingLists, ListItems, Wishlist) exposing upserts with the table's
// conflict policy, deletes by full key, and reads.
//
// # Live Reads
//
// List and detail reads return live.Query values. Every committed write
// notifies the tables it touched, including tables reached through ON DELETE
// CASCADE, and every live read watching one of those tables re-runs.
// Notifications are sent only after commit.
//
// # Not Found
//
// An absent row is never an error: single-row reads return nil or false,
// list reads return an empty (non-nil) slice.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity and cascades
//   - One connection: all reads and writes are serialized through it
package store
