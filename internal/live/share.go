package live

import (
	"context"
	"sync"
	"time"
)

// Share returns a Query whose subscribers all read from a single upstream
// subscription to q.
//
// The upstream starts with the first subscriber. Late subscribers receive the
// most recent result immediately. When the last subscriber leaves, the
// upstream keeps running for grace so that a quick resubscribe reuses it;
// after that it is closed and the cached result dropped. A grace of zero
// releases the upstream immediately.
func Share[T any](q Query[T], grace time.Duration) Query[T] {
	sh := &shared[T]{
		src:       q,
		grace:     grace,
		listeners: make(map[*listener[T]]struct{}),
	}
	return FromFunc(sh.run)
}

type listener[T any] struct {
	ch  chan T
	end chan struct{}
	err error
}

type shared[T any] struct {
	src   Query[T]
	grace time.Duration

	mu        sync.Mutex
	upstream  *Subscription[T]
	gen       uint64
	latest    T
	hasLatest bool
	listeners map[*listener[T]]struct{}
	idle      *time.Timer
	idleSeq   uint64
}

func (sh *shared[T]) run(ctx context.Context, emit func(T) bool) error {
	l := sh.attach()
	defer sh.detach(l)

	for {
		select {
		case v := <-l.ch:
			if !emit(v) {
				return nil
			}
		case <-l.end:
			select {
			case v := <-l.ch:
				emit(v)
			default:
			}
			return l.err
		case <-ctx.Done():
			return nil
		}
	}
}

func (sh *shared[T]) attach() *listener[T] {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	l := &listener[T]{ch: make(chan T, 1), end: make(chan struct{})}
	sh.listeners[l] = struct{}{}

	if sh.idle != nil {
		sh.idle.Stop()
		sh.idle = nil
	}

	if sh.upstream == nil {
		sh.gen++
		up := sh.src.Subscribe(context.Background())
		sh.upstream = up
		go sh.pump(up, sh.gen)
	} else if sh.hasLatest {
		l.ch <- sh.latest
	}
	return l
}

func (sh *shared[T]) detach(l *listener[T]) {
	sh.mu.Lock()
	delete(sh.listeners, l)
	if len(sh.listeners) > 0 || sh.upstream == nil {
		sh.mu.Unlock()
		return
	}

	if sh.grace > 0 {
		sh.idleSeq++
		seq := sh.idleSeq
		sh.idle = time.AfterFunc(sh.grace, func() { sh.release(seq) })
		sh.mu.Unlock()
		return
	}

	up := sh.takeUpstreamLocked()
	sh.mu.Unlock()
	up.Close()
}

// release closes the upstream if nobody resubscribed during the grace period
// armed as seq.
func (sh *shared[T]) release(seq uint64) {
	sh.mu.Lock()
	if seq != sh.idleSeq || sh.idle == nil || len(sh.listeners) > 0 || sh.upstream == nil {
		sh.mu.Unlock()
		return
	}
	sh.idle = nil
	up := sh.takeUpstreamLocked()
	sh.mu.Unlock()
	up.Close()
}

func (sh *shared[T]) takeUpstreamLocked() *Subscription[T] {
	up := sh.upstream
	sh.upstream = nil
	sh.gen++
	var zero T
	sh.latest, sh.hasLatest = zero, false
	return up
}

func (sh *shared[T]) pump(up *Subscription[T], gen uint64) {
	for v := range up.Updates() {
		sh.mu.Lock()
		if sh.gen == gen {
			sh.latest, sh.hasLatest = v, true
			for l := range sh.listeners {
				offer(l.ch, v)
			}
		}
		sh.mu.Unlock()
	}

	err := up.Err()

	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.gen != gen {
		return
	}
	// The upstream ended on its own. End the current subscribers and let the
	// next one start a fresh upstream.
	for l := range sh.listeners {
		l.err = err
		close(l.end)
		delete(sh.listeners, l)
	}
	sh.takeUpstreamLocked()
}

// offer replaces any undelivered value in ch with v. Callers must be the only
// writers to ch.
func offer[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}
