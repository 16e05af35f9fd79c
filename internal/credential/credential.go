// Package credential hashes and verifies user passwords.
//
// Passwords are stored as bcrypt hashes; the plaintext never reaches the
// database.
package credential

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hash returns the bcrypt hash of plain at the given cost. A cost outside
// bcrypt's accepted range falls back to bcrypt.DefaultCost.
func Hash(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plain matches hashed. A mismatch is not an error;
// a hash that bcrypt cannot parse is.
func Verify(hashed, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("verify password: %w", err)
	}
}
