package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/kimberlite-group/matprofile/internal/profile"
	"github.com/kimberlite-group/matprofile/internal/store"
	"github.com/kimberlite-group/matprofile/pkg/anthropic"
)

// appEnv holds the initialized store and profile service shared by the
// lookup/bulk/serve commands.
type appEnv struct {
	Store   store.Store
	Service *profile.Service
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DSN
		if dsn == "" {
			dsn = "matprofile.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DSN, cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEnv sets up the store and the profile service. forceMock skips the
// Anthropic client so every profile comes from the mock generator. Callers
// should defer env.Close().
func initEnv(ctx context.Context, forceMock bool) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	var client anthropic.Client
	if !forceMock && !cfg.Anthropic.Disabled && cfg.Anthropic.Key != "" {
		client = anthropic.NewClient(cfg.Anthropic.Key, cfg.Anthropic.RPS, cfg.Anthropic.Burst)
	}

	return &appEnv{
		Store:   st,
		Service: profile.New(client, st, cfg),
	}, nil
}
