package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/tapway/valuation-engine/internal/config"
	"github.com/tapway/valuation-engine/internal/refdata"
	"github.com/tapway/valuation-engine/internal/valuation"
)

// builtinProvider serves the snapshot embedded in the binary.
type builtinProvider struct{}

func (builtinProvider) Load(context.Context) (*refdata.Snapshot, error) {
	return refdata.Default()
}

// newRefdataProvider maps the refdata config to a provider. The returned
// cleanup releases any connection pool and is safe to call unconditionally.
func newRefdataProvider(ctx context.Context, rc config.RefdataConfig) (refdata.Provider, func(), error) {
	var (
		inner   refdata.Provider
		cleanup = func() {}
	)

	switch rc.Source {
	case "", "builtin":
		inner = builtinProvider{}
	case "yaml":
		if rc.Path == "" {
			return nil, cleanup, eris.New("refdata: yaml source requires refdata.path")
		}
		inner = refdata.NewYAML(rc.Path)
	case "sqlite":
		if rc.Path == "" {
			return nil, cleanup, eris.New("refdata: sqlite source requires refdata.path")
		}
		inner = refdata.NewSQLite(rc.Path, rc.Version)
	case "postgres":
		if rc.DatabaseURL == "" {
			return nil, cleanup, eris.New("refdata: postgres source requires refdata.database_url")
		}
		pool, err := pgxpool.New(ctx, rc.DatabaseURL)
		if err != nil {
			return nil, cleanup, eris.Wrap(err, "refdata: connect postgres")
		}
		inner = refdata.NewPostgres(pool, rc.Version)
		cleanup = pool.Close
	default:
		return nil, cleanup, eris.Errorf("refdata: unknown source %q (want builtin, yaml, sqlite, or postgres)", rc.Source)
	}

	if rc.CacheTTLMinutes > 0 {
		inner = refdata.NewCached(inner, time.Duration(rc.CacheTTLMinutes)*time.Minute)
	}
	return inner, cleanup, nil
}

// newEngine loads a snapshot via the configured provider and builds the
// valuation engine over it.
func newEngine(ctx context.Context, c *config.Config) (*valuation.Engine, func(), error) {
	provider, cleanup, err := newRefdataProvider(ctx, c.Refdata)
	if err != nil {
		return nil, cleanup, err
	}

	snap, err := provider.Load(ctx)
	if err != nil {
		return nil, cleanup, err
	}

	eng, err := valuation.New(snap, c.Engine)
	if err != nil {
		return nil, cleanup, err
	}
	return eng, cleanup, nil
}
