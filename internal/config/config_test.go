package config

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMemoryDriverDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", DriverMemory)

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "trivia-api", cfg.Name)
	assert.Equal(t, 8, cfg.Trivia.QuestionsPerPage)
	assert.Equal(t, 20*time.Second, cfg.GracefulShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"GET", "POST", "DELETE", "OPTIONS"}, cfg.CORS.AllowedMethods)
	assert.Equal(t, "trivia:questions", cfg.Events.Channel)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadPostgresRequiresConnectionInfo(t *testing.T) {
	t.Setenv("STORE_DRIVER", DriverPostgres)
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_USER", "trivia")
	t.Setenv("PG_PASSWORD", "")
	t.Setenv("PG_DATABASE", "trivia")

	_, err := Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PG_PASSWORD")

	t.Setenv("PG_PASSWORD", "secret")
	t.Setenv("PG_MAX_CONNS", "4")
	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=trivia password=secret dbname=trivia sslmode=disable pool_max_conns=4", cfg.PostgresDSN())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := &App{Trivia: Trivia{QuestionsPerPage: 0, StoreDriver: DriverMemory}}
	assert.Error(t, cfg.Validate())

	cfg = &App{Trivia: Trivia{QuestionsPerPage: 10, StoreDriver: "sqlite"}}
	assert.Error(t, cfg.Validate())
}

func TestPostgresDSNEscapesCredentials(t *testing.T) {
	cfg := &App{Postgres: Postgres{
		Host:     "db.internal",
		Port:     6543,
		User:     "trivia app",
		Password: "p@ss word's/#?=x",
		Database: "trivia",
		SSLMode:  "require",
		MaxConns: 7,
	}}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresDSN())
	require.NoError(t, err)
	assert.Equal(t, "db.internal", poolCfg.ConnConfig.Host)
	assert.Equal(t, uint16(6543), poolCfg.ConnConfig.Port)
	assert.Equal(t, "trivia app", poolCfg.ConnConfig.User)
	assert.Equal(t, "p@ss word's/#?=x", poolCfg.ConnConfig.Password)
	assert.Equal(t, "trivia", poolCfg.ConnConfig.Database)
	assert.Equal(t, int32(7), poolCfg.MaxConns)
	assert.NotNil(t, poolCfg.ConnConfig.TLSConfig)
}
