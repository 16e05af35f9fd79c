package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Empty database, schema not yet created
// 1 - Six-table storefront schema
const currentSchemaVersion = 1

// CreateHook runs once, after Open has created the schema of a new database.
type CreateHook func(ctx context.Context, s *Store) error

type options struct {
	createHooks []CreateHook
}

// Option configures Open.
type Option func(*options)

// WithCreateHook registers a hook that runs on a background goroutine when
// Open creates the schema. It never runs when an existing database is
// reopened.
func WithCreateHook(h CreateHook) Option {
	return func(o *options) {
		o.createHooks = append(o.createHooks, h)
	}
}

// Store is the local storefront database.
type Store struct {
	db       *sql.DB
	path     string
	notifier *Notifier
	created  bool

	hookCtx    context.Context
	hookCancel context.CancelFunc
	hooks      sync.WaitGroup
	hooksDone  chan struct{}
	hookErr    error
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and creates the schema if the database is new.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//   - IMMEDIATE transactions
//
// This function is idempotent - safe to call multiple times on the same path.
// Failures are reported wrapped in ErrUnavailable.
func Open(path string, opts ...Option) (*Store, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", ErrUnavailable, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connect to database: %w", ErrUnavailable, err)
	}

	// SQLite only supports one writer at a time. A single connection is the
	// store's write pathway and keeps per-connection pragmas in effect.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: apply pragmas: %w", ErrUnavailable, err)
	}

	created, err := applySchema(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: apply schema: %w", ErrUnavailable, err)
	}

	hookCtx, hookCancel := context.WithCancel(context.Background())
	s := &Store{
		db:         db,
		path:       path,
		notifier:   NewNotifier(),
		created:    created,
		hookCtx:    hookCtx,
		hookCancel: hookCancel,
		hooksDone:  make(chan struct{}),
	}
	slog.Info("store opened", "path", path, "created", created)

	if created && len(o.createHooks) > 0 {
		s.runCreateHooks(o.createHooks)
	} else {
		close(s.hooksDone)
	}

	return s, nil
}

// runCreateHooks starts the hooks in registration order on one background
// goroutine so Open never blocks on them.
func (s *Store) runCreateHooks(hooks []CreateHook) {
	s.hooks.Add(1)
	go func() {
		defer s.hooks.Done()
		defer close(s.hooksDone)

		var errs []error
		for _, h := range hooks {
			if err := h(s.hookCtx, s); err != nil {
				slog.Error("create hook failed", "path", s.path, "error", err)
				errs = append(errs, err)
			}
		}
		s.hookErr = errors.Join(errs...)
	}()
}

// Created reports whether this Open created the schema.
func (s *Store) Created() bool {
	return s.created
}

// WaitBootstrap blocks until the create hooks started by Open have finished
// and returns their combined error. It returns immediately when no hooks ran.
func (s *Store) WaitBootstrap(ctx context.Context) error {
	select {
	case <-s.hooksDone:
		return s.hookErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops running create hooks and closes the database connection.
// Should be called when the store is no longer needed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if s.hookCancel != nil {
		s.hookCancel()
	}
	s.hooks.Wait()
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Writes made through it bypass change notification.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Notifier returns the table-change notifier live reads are registered with.
func (s *Store) Notifier() *Notifier {
	return s.notifier
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates the tables when the database is new and reports whether
// it did. The version check and creation share one IMMEDIATE transaction, so
// two processes racing on a fresh file create the schema exactly once.
func applySchema(db *sql.DB) (bool, error) {
	tx, err := db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var version int
	if err := tx.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return false, fmt.Errorf("get user_version: %w", err)
	}

	switch {
	case version == currentSchemaVersion:
		return false, nil
	case version > currentSchemaVersion:
		return false, fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	case version != 0:
		return false, fmt.Errorf("no migration from schema version %d", version)
	}

	if _, err := tx.Exec(schemaSQL); err != nil {
		return false, fmt.Errorf("execute schema: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return false, fmt.Errorf("set user_version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit schema: %w", err)
	}
	return true, nil
}

// write runs fn in a transaction and, after a successful commit, notifies the
// tables fn reports as touched.
func (s *Store) write(ctx context.Context, op string, fn func(tx *sql.Tx) ([]string, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback() // No-op if committed

	touched, err := fn(tx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	s.notifier.Notify(touched...)
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
