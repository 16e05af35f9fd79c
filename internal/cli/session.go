package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/roach88/storefront/internal/config"
	"github.com/roach88/storefront/internal/repository"
	"github.com/roach88/storefront/internal/seed"
	"github.com/roach88/storefront/internal/store"
)

// bootstrapTimeout bounds the wait for the seed of a new database.
const bootstrapTimeout = 30 * time.Second

// session is one command's view of the configured database.
type session struct {
	cfg      *config.Config
	registry *store.Registry
	store    *store.Store
	repos    *repository.Set
}

// openSession resolves the config, opens the database through a registry
// and waits for the seed when the database was just created.
func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create data directory", err)
	}

	reg := store.NewRegistry(cfg.DataDir, store.WithCreateHook(seed.Hook(cfg.BcryptCost)))
	st, err := reg.Open(cfg.DBName)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
	defer cancel()
	if err := st.WaitBootstrap(waitCtx); err != nil {
		_ = reg.Close()
		return nil, WrapExitError(ExitCommandError, "failed to seed database", err)
	}

	slog.Debug("session opened", "data_dir", cfg.DataDir, "db", cfg.DBName, "created", st.Created())
	return &session{
		cfg:      cfg,
		registry: reg,
		store:    st,
		repos:    repository.New(st, nil, cfg.ShareGrace),
	}, nil
}

func (s *session) Close() {
	if err := s.registry.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// storeError maps a repository error to an exit error. Constraint
// violations mean the referenced row does not exist.
func storeError(f *OutputFormatter, message string, err error) error {
	if store.IsConstraintViolation(err) {
		_ = f.Error(CodeNotFound, message, err.Error())
		return WrapExitError(ExitFailure, message, err)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	_ = f.Error(CodeStore, message, err.Error())
	return WrapExitError(ExitCommandError, message, err)
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd interface{ Context() context.Context }) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
