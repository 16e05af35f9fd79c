package store

import "sync"

// Table names, used as notification topics.
const (
	TableUsers             = "users"
	TableCategories        = "categories"
	TableProducts          = "products"
	TableShoppingLists     = "shopping_lists"
	TableShoppingListItems = "shopping_list_items"
	TableWishlistItems     = "wishlist_items"
)

// cascades mirrors the ON DELETE CASCADE clauses in schema.sql: deleting a
// row of the key table may delete rows of the listed tables.
var cascades = map[string][]string{
	TableUsers:         {TableShoppingLists, TableWishlistItems},
	TableCategories:    {TableProducts},
	TableProducts:      {TableShoppingListItems, TableWishlistItems},
	TableShoppingLists: {TableShoppingListItems},
}

// deleteReach returns table and every table a delete on it can cascade into.
// REPLACE upserts delete the conflicting row, so they reach the same tables.
func deleteReach(table string) []string {
	seen := map[string]bool{table: true}
	out := []string{table}
	for i := 0; i < len(out); i++ {
		for _, child := range cascades[out[i]] {
			if !seen[child] {
				seen[child] = true
				out = append(out, child)
			}
		}
	}
	return out
}

type watcher struct {
	tables map[string]struct{}
	signal chan struct{} // Signals a change (buffered, size 1)
}

// Notifier fans table-change signals out to live reads.
//
// Each watcher owns a buffer-1 signal channel: a pending signal coalesces any
// further changes until the watcher receives it, so Notify never blocks.
//
// Thread-safety: all methods are safe for concurrent use.
type Notifier struct {
	mu       sync.Mutex
	watchers map[uint64]*watcher
	next     uint64
}

// NewNotifier creates a notifier with no watchers.
func NewNotifier() *Notifier {
	return &Notifier{watchers: make(map[uint64]*watcher)}
}

// Watch registers interest in tables. The returned cancel function removes
// the registration; it is safe to call more than once.
func (n *Notifier) Watch(tables ...string) (<-chan struct{}, func()) {
	w := &watcher{
		tables: make(map[string]struct{}, len(tables)),
		signal: make(chan struct{}, 1),
	}
	for _, t := range tables {
		w.tables[t] = struct{}{}
	}

	n.mu.Lock()
	id := n.next
	n.next++
	n.watchers[id] = w
	n.mu.Unlock()

	return w.signal, func() {
		n.mu.Lock()
		delete(n.watchers, id)
		n.mu.Unlock()
	}
}

// Notify signals every watcher registered for at least one of tables.
func (n *Notifier) Notify(tables ...string) {
	if len(tables) == 0 {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	for _, w := range n.watchers {
		for _, t := range tables {
			if _, ok := w.tables[t]; ok {
				// Non-blocking: buffer of 1 coalesces multiple signals
				select {
				case w.signal <- struct{}{}:
				default:
				}
				break
			}
		}
	}
}

// Watching returns the number of registered watchers.
func (n *Notifier) Watching() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.watchers)
}
