package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// ErrUnavailable wraps every failure to open or prepare the database file.
var ErrUnavailable = errors.New("store unavailable")

// IsConstraintViolation reports whether err was caused by a foreign-key,
// uniqueness, NOT NULL or CHECK rule rejecting a write.
// Uses errors.As to handle wrapped errors.
func IsConstraintViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint
	}
	return false
}
