package live

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// ErrClosed is returned by First when a query completes without producing a
// result.
var ErrClosed = errors.New("live: query completed without a result")

// Query is a subscribable read.
type Query[T any] interface {
	Subscribe(ctx context.Context) *Subscription[T]
}

// Watcher delivers change signals for named topics (table names for the store).
//
// The returned channel must coalesce: a pending signal absorbs further
// notifications until it is received.
type Watcher interface {
	Watch(topics ...string) (signal <-chan struct{}, cancel func())
}

// Subscription is a running query.
type Subscription[T any] struct {
	id      string
	updates chan T
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

// Updates returns the channel results are delivered on. It is closed when the
// subscription ends for any reason.
func (s *Subscription[T]) Updates() <-chan T {
	return s.updates
}

// Close stops the subscription and waits for its producer to exit.
// No value is delivered after Close returns. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.cancel()
	<-s.done
}

// Err reports the error that ended the subscription, or nil if it is still
// running, was closed, or completed normally.
func (s *Subscription[T]) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// RunFunc produces results for one subscription. emit blocks until the
// subscriber receives the value and returns false once the subscription is
// stopping; RunFunc should return promptly after that.
type RunFunc[T any] func(ctx context.Context, emit func(T) bool) error

type funcQuery[T any] struct {
	run RunFunc[T]
}

// FromFunc builds a Query whose subscriptions each execute run on their own
// goroutine.
func FromFunc[T any](run RunFunc[T]) Query[T] {
	return funcQuery[T]{run: run}
}

func (q funcQuery[T]) Subscribe(parent context.Context) *Subscription[T] {
	ctx, cancel := context.WithCancel(parent)
	s := &Subscription[T]{
		id:      uuid.NewString(),
		updates: make(chan T),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	emit := func(v T) bool {
		select {
		case s.updates <- v:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		err := q.run(ctx, emit)
		if err != nil && ctx.Err() != nil {
			// Cancellation raced the producer; the subscriber asked to stop.
			err = nil
		}
		if err != nil {
			slog.Debug("live query ended with error", "subscription", s.id, "error", err)
		}
		s.err = err
		cancel()
		close(s.done)
		close(s.updates)
	}()

	return s
}

// Observe builds a Query that runs fetch once per subscription and again
// after every signal on topics.
//
// The watch is registered before the first fetch so a change committed while
// the initial result is being read is not lost.
func Observe[T any](w Watcher, topics []string, fetch func(ctx context.Context) (T, error)) Query[T] {
	return FromFunc(func(ctx context.Context, emit func(T) bool) error {
		signal, unwatch := w.Watch(topics...)
		defer unwatch()

		for {
			v, err := fetch(ctx)
			if err != nil {
				return err
			}
			if !emit(v) {
				return nil
			}
			select {
			case <-signal:
			case <-ctx.Done():
				return nil
			}
		}
	})
}
