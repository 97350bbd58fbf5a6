// Package commands holds the triviactl subcommands.
package commands

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gokatarajesh/trivia-api/internal/config"
)

// DB lazily opens the Postgres pool so --help never needs a database.
type DB struct {
	pool *pgxpool.Pool
}

// Pool connects on first use using the same environment as the API.
func (d *DB) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	if d.pool != nil {
		return d.pool, nil
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Trivia.StoreDriver != config.DriverPostgres {
		return nil, fmt.Errorf("STORE_DRIVER is %q; triviactl only manages the %s store", cfg.Trivia.StoreDriver, config.DriverPostgres)
	}
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	d.pool = pool
	return pool, nil
}

func (d *DB) Close() {
	if d.pool != nil {
		d.pool.Close()
		d.pool = nil
	}
}
