package live

import "context"

// Just emits v once and completes.
func Just[T any](v T) Query[T] {
	return FromFunc(func(ctx context.Context, emit func(T) bool) error {
		emit(v)
		return nil
	})
}

// Map applies f to every result of q.
func Map[A, B any](q Query[A], f func(A) B) Query[B] {
	return FromFunc(func(ctx context.Context, emit func(B) bool) error {
		sub := q.Subscribe(ctx)
		defer sub.Close()

		for v := range sub.Updates() {
			if !emit(f(v)) {
				return nil
			}
		}
		return sub.Err()
	})
}

// SwitchMap subscribes to the query inner(a) for the latest outer result a.
//
// The inner subscription is replaced only when key(a) differs from the key it
// was created for; the replaced subscription is closed before the new one
// starts. An inner query that completes leaves the output idle until the
// outer key changes again.
func SwitchMap[A any, K comparable, B any](outer Query[A], key func(A) K, inner func(A) Query[B]) Query[B] {
	return FromFunc(func(ctx context.Context, emit func(B) bool) error {
		up := outer.Subscribe(ctx)
		defer up.Close()

		var (
			cur     *Subscription[B]
			curC    <-chan B
			curKey  K
			started bool
		)
		defer func() {
			if cur != nil {
				cur.Close()
			}
		}()

		for {
			select {
			case a, ok := <-up.Updates():
				if !ok {
					return up.Err()
				}
				k := key(a)
				if started && k == curKey {
					continue
				}
				if cur != nil {
					cur.Close()
				}
				cur = inner(a).Subscribe(ctx)
				curC = cur.Updates()
				curKey = k
				started = true

			case b, ok := <-curC:
				if !ok {
					if err := cur.Err(); err != nil {
						return err
					}
					curC = nil
					continue
				}
				if !emit(b) {
					return nil
				}

			case <-ctx.Done():
				return nil
			}
		}
	})
}

// First returns the first result of q and releases the subscription.
// It is the one-shot form of a live query.
func First[T any](ctx context.Context, q Query[T]) (T, error) {
	sub := q.Subscribe(ctx)
	defer sub.Close()

	v, ok := <-sub.Updates()
	if ok {
		return v, nil
	}

	var zero T
	if err := sub.Err(); err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	return zero, ErrClosed
}
