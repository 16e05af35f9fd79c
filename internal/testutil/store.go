package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/storefront/internal/seed"
	"github.com/roach88/storefront/internal/store"
)

// NewSeededStore opens a store in a temporary directory, waits for the demo
// catalogue to be inserted and closes the store when the test ends.
func NewSeededStore(t testing.TB) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"),
		store.WithCreateHook(seed.Hook(bcrypt.MinCost)))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.WaitBootstrap(ctx); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return s
}
