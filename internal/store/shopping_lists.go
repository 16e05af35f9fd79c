package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/storefront/internal/live"
)

// ShoppingLists is the access object for the shopping_lists table.
type ShoppingLists struct {
	s *Store
}

// ShoppingLists returns the shopping lists access object.
func (s *Store) ShoppingLists() ShoppingLists {
	return ShoppingLists{s: s}
}

const activeListQuery = `
	SELECT id, user_id, creation_date, status
	FROM shopping_lists
	WHERE user_id = ? AND status = 'active'
	ORDER BY id ASC
	LIMIT 1
`

// Upsert inserts l, replacing any existing row with the same id, and returns
// the row id. The user must exist.
func (sl ShoppingLists) Upsert(ctx context.Context, list ShoppingList) (int64, error) {
	var id int64
	err := sl.s.write(ctx, "upsert shopping list", func(tx *sql.Tx) ([]string, error) {
		var err error
		id, err = insertList(ctx, tx, `INSERT OR REPLACE`, list)
		if err != nil {
			return nil, err
		}
		return deleteReach(TableShoppingLists), nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Delete removes the list with id and all of its items.
func (sl ShoppingLists) Delete(ctx context.Context, id int64) error {
	return sl.s.write(ctx, "delete shopping list", func(tx *sql.Tx) ([]string, error) {
		return deleteByKey(ctx, tx, TableShoppingLists, `DELETE FROM shopping_lists WHERE id = ?`, id)
	})
}

// Active returns the user's active list, or nil while the user has none.
func (sl ShoppingLists) Active(userID int64) live.Query[*ShoppingList] {
	return live.Observe(sl.s.notifier, []string{TableShoppingLists}, func(ctx context.Context) (*ShoppingList, error) {
		list, err := scanList(sl.s.db.QueryRowContext(ctx, activeListQuery, userID))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("query active list for user %d: %w", userID, err)
		}
		return &list, nil
	})
}

// FindOrCreateActive returns the user's active list, creating one stamped
// with now if the user has none. Lookup and creation share one IMMEDIATE
// transaction, so concurrent callers never create two active lists for the
// same user.
func (sl ShoppingLists) FindOrCreateActive(ctx context.Context, userID int64, now time.Time) (ShoppingList, error) {
	var list ShoppingList
	err := sl.s.write(ctx, "find or create active list", func(tx *sql.Tx) ([]string, error) {
		found, err := scanList(tx.QueryRowContext(ctx, activeListQuery, userID))
		if err == nil {
			list = found
			return nil, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("query active list: %w", err)
		}

		list = ShoppingList{
			UserID:       userID,
			CreationDate: now,
			Status:       StatusActive,
		}
		if list.ID, err = insertList(ctx, tx, `INSERT`, list); err != nil {
			return nil, err
		}
		// Normalise through the storage representation so the caller sees
		// what a later read returns.
		list.CreationDate = fromEpochMillis(toEpochMillis(now))
		return []string{TableShoppingLists}, nil
	})
	if err != nil {
		return ShoppingList{}, err
	}
	return list, nil
}

func insertList(ctx context.Context, tx *sql.Tx, verb string, list ShoppingList) (int64, error) {
	res, err := tx.ExecContext(ctx, verb+` INTO shopping_lists (id, user_id, creation_date, status)
		VALUES (?, ?, ?, ?)
	`,
		nullableID(list.ID),
		list.UserID,
		toEpochMillis(list.CreationDate),
		string(list.Status),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func scanList(row scanner) (ShoppingList, error) {
	var (
		list    ShoppingList
		created int64
		status  string
	)
	if err := row.Scan(&list.ID, &list.UserID, &created, &status); err != nil {
		return ShoppingList{}, err
	}
	list.CreationDate = fromEpochMillis(created)
	list.Status = ListStatus(status)
	return list, nil
}
