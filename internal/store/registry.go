package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
)

// Registry hands out one Store per database name within a directory.
//
// The first Open of a name constructs the store (and creates its schema if
// the file is new); later calls return the same instance. Concurrent first
// calls are serialized so exactly one store is constructed.
type Registry struct {
	dir  string
	opts []Option

	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry creates a registry for databases stored in dir. opts apply to
// every store it opens.
func NewRegistry(dir string, opts ...Option) *Registry {
	return &Registry{
		dir:    dir,
		opts:   opts,
		stores: make(map[string]*Store),
	}
}

// Open returns the store named name, opening it on first use.
func (r *Registry) Open(name string) (*Store, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty database name", ErrUnavailable)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[name]; ok {
		return s, nil
	}

	s, err := Open(filepath.Join(r.dir, name), r.opts...)
	if err != nil {
		return nil, err
	}
	r.stores[name] = s
	return s, nil
}

// Close closes every store the registry opened.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, s := range r.stores {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
		delete(r.stores, name)
	}
	return errors.Join(errs...)
}
