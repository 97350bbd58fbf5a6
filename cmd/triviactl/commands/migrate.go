package commands

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gokatarajesh/trivia-api/internal/db/migrations"
)

// MigrateCommands returns the schema migration commands.
func MigrateCommands(db *DB, logger zerolog.Logger) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the embedded schema migrations",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: withSQLDB(db, func(ctx context.Context, sqlDB *sql.DB) error {
			if err := migrations.Up(ctx, sqlDB); err != nil {
				return err
			}
			logger.Info().Msg("migrations applied successfully")
			return nil
		}),
	})
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: withSQLDB(db, func(ctx context.Context, sqlDB *sql.DB) error {
			if err := migrations.Down(ctx, sqlDB); err != nil {
				return err
			}
			logger.Info().Msg("migration rolled back successfully")
			return nil
		}),
	})
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the applied state of each migration",
		Args:  cobra.NoArgs,
		RunE: withSQLDB(db, func(ctx context.Context, sqlDB *sql.DB) error {
			return migrations.Status(ctx, sqlDB)
		}),
	})

	return migrateCmd
}

// goose drives database/sql, so the pool is exposed through pgx's stdlib adapter.
func withSQLDB(db *DB, fn func(context.Context, *sql.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		pool, err := db.Pool(ctx)
		if err != nil {
			return err
		}
		sqlDB := stdlib.OpenDBFromPool(pool)
		defer sqlDB.Close()
		return fn(ctx, sqlDB)
	}
}
