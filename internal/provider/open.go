package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emilianohg/dashone/internal/config"
	"github.com/emilianohg/dashone/internal/db"
	"github.com/emilianohg/dashone/internal/provider/fixture"
	"github.com/emilianohg/dashone/internal/provider/postgres"
	"github.com/emilianohg/dashone/internal/provider/rest"
	"github.com/emilianohg/dashone/internal/repository"
	"github.com/emilianohg/dashone/internal/seed"
)

// Backend is an opened data source plus what the UI needs to know about it.
type Backend struct {
	Source

	// Name is the resolved backend, one of the config.Backend* values.
	Name string
	// Demo is true when the data is the built-in fixture set.
	Demo bool
	// Store is non-nil for backends that can be seeded.
	Store seed.Store

	closer func()
}

var backendTitles = map[string]string{
	config.BackendREST:     "Supabase PostgreSQL",
	config.BackendPostgres: "PostgreSQL",
	config.BackendSQLite:   "SQLite",
}

// Label is the connection badge text.
func (b *Backend) Label() string {
	if b.Demo {
		return "Demo Mode (Using Mock Data)"
	}
	if title, ok := backendTitles[b.Name]; ok {
		return "Connected to " + title
	}
	return "Connected to " + b.Name
}

func (b *Backend) Close() {
	if b.closer != nil {
		b.closer()
		b.closer = nil
	}
}

// Open connects to the backend cfg resolves to. The returned Source always
// reports failures as *FetchError.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	name := cfg.ResolvedBackend()
	b := &Backend{Name: name}

	switch name {
	case config.BackendFixture:
		p, err := fixture.New(
			fixture.WithDelays(cfg.FixtureRosterDelay, cfg.FixtureSessionDelay),
			fixture.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		b.Source = p
		b.Demo = true

	case config.BackendREST:
		b.Source = rest.New(cfg.SupabaseURL, cfg.SupabaseAnonKey)

	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		p := postgres.New(pool)
		b.Source = p
		b.Store = p
		b.closer = pool.Close

	case config.BackendSQLite:
		database, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := db.MigrateSQLite(database); err != nil {
			database.Close()
			return nil, err
		}
		store := repository.NewStore(database)
		b.Source = store
		b.Store = store
		b.closer = func() { database.Close() }

	default:
		return nil, fmt.Errorf("%w %q", config.ErrUnknownBackend, name)
	}

	b.Source = Guard(b.Source)
	logger.Info("backend opened", "backend", name, "demo", b.Demo)
	return b, nil
}
