package config

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v10"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"trivia-api"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres Postgres
	Redis    Redis
	Trivia   Trivia
	Events   Events
	CORS     CORS
}

// Postgres captures connection info for the SQL database. Only required
// when the postgres store driver is selected.
type Postgres struct {
	Host     string `env:"PG_HOST"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER"`
	Password string `env:"PG_PASSWORD"`
	Database string `env:"PG_DATABASE"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10"`
}

// Redis configures the Pub/Sub connection behind the question event feed.
// An empty address disables the feed.
type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Trivia groups question bank behavior.
type Trivia struct {
	QuestionsPerPage int    `env:"QUESTIONS_PER_PAGE" envDefault:"8"`
	StoreDriver      string `env:"STORE_DRIVER" envDefault:"postgres"`
	SeedFile         string `env:"SEED_FILE"`
	AutoMigrate      bool   `env:"DB_AUTO_MIGRATE" envDefault:"false"`
}

// Events configures question change broadcasting.
type Events struct {
	Channel string `env:"EVENTS_CHANNEL" envDefault:"trivia:questions"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	AllowedMethods []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization"`
	MaxAge         int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the requirements that depend on the selected driver.
func (c *App) Validate() error {
	if c.Trivia.QuestionsPerPage < 1 {
		return fmt.Errorf("QUESTIONS_PER_PAGE must be positive, got %d", c.Trivia.QuestionsPerPage)
	}
	switch c.Trivia.StoreDriver {
	case DriverMemory:
		return nil
	case DriverPostgres:
		required := map[string]string{
			"PG_HOST":     c.Postgres.Host,
			"PG_USER":     c.Postgres.User,
			"PG_PASSWORD": c.Postgres.Password,
			"PG_DATABASE": c.Postgres.Database,
		}
		for _, key := range []string{"PG_HOST", "PG_USER", "PG_PASSWORD", "PG_DATABASE"} {
			if required[key] == "" {
				return fmt.Errorf("%s is required for the %s store driver", key, DriverPostgres)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want %s or %s)", c.Trivia.StoreDriver, DriverPostgres, DriverMemory)
	}
}

// PostgresDSN renders the pgx connection string.
func (c *App) PostgresDSN() string {
	p := c.Postgres
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:   "/" + p.Database,
		RawQuery: url.Values{
			"sslmode":        {p.SSLMode},
			"pool_max_conns": {strconv.Itoa(p.MaxConns)},
		}.Encode(),
	}
	return u.String()
}
