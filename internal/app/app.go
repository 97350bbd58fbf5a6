package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-api/internal/api"
	"github.com/gokatarajesh/trivia-api/internal/config"
	"github.com/gokatarajesh/trivia-api/internal/db/migrations"
	"github.com/gokatarajesh/trivia-api/internal/db/repository"
	"github.com/gokatarajesh/trivia-api/internal/db/seed"
	"github.com/gokatarajesh/trivia-api/internal/events"
	"github.com/gokatarajesh/trivia-api/internal/logging"
	"github.com/gokatarajesh/trivia-api/internal/metrics"
	"github.com/gokatarajesh/trivia-api/internal/server"
	"github.com/gokatarajesh/trivia-api/internal/trivia"
	ws "github.com/gokatarajesh/trivia-api/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, event bus, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	broadcaster *events.Broadcaster
	bgCancels   []context.CancelFunc
}

// New bootstraps logger, question store, event feed and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Str("store", cfg.Trivia.StoreDriver).Msg("starting application bootstrap")

	a := &Application{
		cfg:       cfg,
		logger:    logger,
		bgCancels: make([]context.CancelFunc, 0, 1),
	}

	var readiness []server.ReadinessCheck

	store, err := a.openStore(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	if a.pool != nil {
		readiness = append(readiness, server.ReadinessCheck{Name: "postgres", Check: a.pool.Ping})
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	var (
		publisher trivia.EventPublisher
		hub       *ws.Hub
	)
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		readiness = append(readiness, server.ReadinessCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return a.redis.Ping(ctx).Err() },
		})
		hub = ws.NewHub(logger)
		publisher = events.NewPublisher(a.redis, cfg.Events.Channel)
		a.broadcaster = events.NewBroadcaster(a.redis, hub, cfg.Events.Channel, logger)
	} else {
		logger.Warn().Msg("REDIS_ADDR not set; question event feed disabled")
	}

	svc := trivia.NewService(store, trivia.ServiceOptions{
		PageSize: cfg.Trivia.QuestionsPerPage,
		Events:   publisher,
		Metrics:  appMetrics,
	}, logger)

	questionHandlers, err := api.NewHTTPHandlers(svc, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("build handlers: %w", err)
	}

	a.http = server.NewHTTPServer(cfg, logger, server.Dependencies{
		Questions: questionHandlers,
		Hub:       hub,
		Gatherer:  registry,
		Observe:   appMetrics.ObserveRequest,
		Ready:     readiness,
	})
	return a, nil
}

func (a *Application) openStore(ctx context.Context) (trivia.Store, error) {
	switch a.cfg.Trivia.StoreDriver {
	case config.DriverMemory:
		store := trivia.NewMemoryStore()
		if a.cfg.Trivia.SeedFile != "" {
			ds, err := seed.Load(a.cfg.Trivia.SeedFile)
			if err != nil {
				return nil, err
			}
			res, err := seed.Apply(ctx, store, ds)
			if err != nil {
				return nil, fmt.Errorf("seed memory store: %w", err)
			}
			a.logger.Info().
				Int("categories", res.Categories).
				Int("questions", res.Questions).
				Str("file", a.cfg.Trivia.SeedFile).
				Msg("memory store seeded")
		}
		return store, nil

	case config.DriverPostgres:
		poolCfg, err := pgxpool.ParseConfig(a.cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("parse postgres config: %w", err)
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.pool = pool

		if a.cfg.Trivia.AutoMigrate {
			db := stdlib.OpenDBFromPool(pool)
			err := migrations.Up(ctx, db)
			_ = db.Close()
			if err != nil {
				return nil, err
			}
			a.logger.Info().Msg("database migrations applied")
		}
		return repository.NewQuestionRepository(pool), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", a.cfg.Trivia.StoreDriver)
	}
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}
	a.close()

	a.logger.Info().Msg("shutdown complete")
	return runErr
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.broadcaster == nil {
		return
	}
	bgCtx, cancel := context.WithCancel(ctx)
	a.bgCancels = append(a.bgCancels, cancel)
	go func() {
		if err := a.broadcaster.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn().Err(err).Msg("question event broadcaster stopped")
		}
	}()
}

func (a *Application) close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}
}
