package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/storefront/internal/live"
)

// createTestStore opens a fresh store in a temporary directory.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedFixture inserts user 1, category 1 and products 1 and 2.
func seedFixture(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Users().Upsert(ctx, User{ID: 1, Username: "user123", Password: "hash"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := s.Categories().Upsert(ctx, Category{ID: 1, Name: "Dairy"}); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	products := []Product{
		{ID: 1, Name: "Milk", Description: "1.5L", Price: 1.50, CategoryID: 1},
		{ID: 2, Name: "Yoghurt", Description: "200g", Price: 0.90, CategoryID: 1, OnOffer: true},
	}
	for _, p := range products {
		if _, err := s.Products().Upsert(ctx, p); err != nil {
			t.Fatalf("seed product %d: %v", p.ID, err)
		}
	}
}

// subscribe starts q and closes the subscription when the test ends.
func subscribe[T any](t *testing.T, q live.Query[T]) *live.Subscription[T] {
	t.Helper()
	sub := q.Subscribe(context.Background())
	t.Cleanup(sub.Close)
	return sub
}

// next waits for the next result of sub.
func next[T any](t *testing.T, sub *live.Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-sub.Updates():
		if !ok {
			t.Fatalf("subscription ended: %v", sub.Err())
		}
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for live result")
	}
	var zero T
	return zero
}

// first reads one result of q.
func first[T any](t *testing.T, q live.Query[T]) T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	v, err := live.First(ctx, q)
	if err != nil {
		t.Fatalf("First() failed: %v", err)
	}
	return v
}
