package repository

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/storefront/internal/credential"
	"github.com/roach88/storefront/internal/store"
)

// ErrInvalidCredentials is returned by Login when the username is unknown or
// the password does not match. The two cases are not distinguished.
var ErrInvalidCredentials = errors.New("invalid credentials")

// LoginFailedMessage is the user-facing text for a rejected sign-in.
const LoginFailedMessage = "Λάθος όνομα χρήστη ή κωδικός."

// Auth checks user credentials.
type Auth struct {
	users store.Users
}

// NewAuth creates an Auth backed by s.
func NewAuth(s *store.Store) *Auth {
	return &Auth{users: s.Users()}
}

// Validate reports whether password is correct for username. An unknown
// username yields false without error. Usernames are compared in NFC form.
func (a *Auth) Validate(ctx context.Context, username, password string) (bool, error) {
	_, ok, err := a.check(ctx, username, password)
	return ok, err
}

// Login returns the user identified by username and password, or
// ErrInvalidCredentials.
func (a *Auth) Login(ctx context.Context, username, password string) (store.User, error) {
	user, ok, err := a.check(ctx, username, password)
	if err != nil {
		return store.User{}, err
	}
	if !ok {
		return store.User{}, ErrInvalidCredentials
	}
	user.Password = ""
	return user, nil
}

func (a *Auth) check(ctx context.Context, username, password string) (store.User, bool, error) {
	user, found, err := a.users.FindByUsername(ctx, norm.NFC.String(username))
	if err != nil {
		return store.User{}, false, fmt.Errorf("validate user: %w", err)
	}
	if !found {
		return store.User{}, false, nil
	}

	ok, err := credential.Verify(user.Password, password)
	if err != nil {
		return store.User{}, false, fmt.Errorf("validate user %d: %w", user.ID, err)
	}
	return user, ok, nil
}
