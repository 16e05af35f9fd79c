package repository

import (
	"context"
	"testing"
	"time"

	"github.com/roach88/storefront/internal/live"
)

const waitTimeout = 3 * time.Second

func subscribe[T any](t *testing.T, q live.Query[T]) *live.Subscription[T] {
	t.Helper()
	sub := q.Subscribe(context.Background())
	t.Cleanup(sub.Close)
	return sub
}

// waitFor reads results until match accepts one. Intermediate results, such
// as an empty cart between list creation and the first line, are skipped.
func waitFor[T any](t *testing.T, sub *live.Subscription[T], match func(T) bool) T {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case v, ok := <-sub.Updates():
			if !ok {
				t.Fatalf("subscription ended: %v", sub.Err())
			}
			if match(v) {
				return v
			}
		case <-deadline:
			t.Fatal("timed out waiting for matching live result")
		}
	}
}

func first[T any](t *testing.T, q live.Query[T]) T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	v, err := live.First(ctx, q)
	if err != nil {
		t.Fatalf("First() failed: %v", err)
	}
	return v
}
