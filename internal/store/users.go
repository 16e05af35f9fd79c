package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Users is the access object for the users table.
type Users struct {
	s *Store
}

// Users returns the users access object.
func (s *Store) Users() Users {
	return Users{s: s}
}

// Upsert inserts u, replacing any existing row with the same id, and returns
// the row id. A zero ID lets the database assign one.
//
// Replacing a user deletes the old row first, so its shopping lists and
// wishlist items cascade away.
func (u Users) Upsert(ctx context.Context, user User) (int64, error) {
	var id int64
	err := u.s.write(ctx, "upsert user", func(tx *sql.Tx) ([]string, error) {
		res, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO users (id, username, password)
			VALUES (?, ?, ?)
		`, nullableID(user.ID), user.Username, user.Password)
		if err != nil {
			return nil, err
		}
		if id, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		return deleteReach(TableUsers), nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Delete removes the user with id and, by cascade, their shopping lists,
// list items and wishlist items. Deleting an absent user is a no-op.
func (u Users) Delete(ctx context.Context, id int64) error {
	return u.s.write(ctx, "delete user", func(tx *sql.Tx) ([]string, error) {
		return deleteByKey(ctx, tx, TableUsers, `DELETE FROM users WHERE id = ?`, id)
	})
}

// FindByUsername looks up a user for a one-time credential check.
// Returns ok=false if no user has that username.
func (u Users) FindByUsername(ctx context.Context, username string) (User, bool, error) {
	var user User
	err := u.s.db.QueryRowContext(ctx, `
		SELECT id, username, password
		FROM users
		WHERE username = ?
		ORDER BY id ASC
		LIMIT 1
	`, username).Scan(&user.ID, &user.Username, &user.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, fmt.Errorf("find user by username: %w", err)
	}
	return user, true, nil
}

// deleteByKey executes a single-row delete and reports the tables to notify:
// none if nothing matched, otherwise table and its cascade reach.
func deleteByKey(ctx context.Context, tx *sql.Tx, table, query string, args ...any) ([]string, error) {
	res, err := tx.ExecContext(ctx, query, args...)
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
	return deleteReach(table), nil
}
