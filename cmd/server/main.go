package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/binp/internal/adapter/httpserver"
	"github.com/pscheid92/binp/internal/adapter/metrics"
	"github.com/pscheid92/binp/internal/adapter/postgres"
	"github.com/pscheid92/binp/internal/adapter/redis"
	"github.com/pscheid92/binp/internal/adapter/sqlite"
	"github.com/pscheid92/binp/internal/app"
	"github.com/pscheid92/binp/internal/domain"
	"github.com/pscheid92/binp/internal/highlight"
	"github.com/pscheid92/binp/internal/platform/config"
	"github.com/pscheid92/binp/internal/platform/logging"
	"github.com/pscheid92/binp/internal/platform/retry"
	"github.com/pscheid92/binp/internal/platform/version"
	"github.com/pscheid92/binp/internal/style"
)

const (
	startupTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// storage is the snippet repository plus what main needs to manage it.
type storage struct {
	repo   domain.SnippetRepository
	health httpserver.HealthCheck
	close  func()
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func retryPolicy(what string) retry.Policy {
	p := retry.DefaultPolicy()
	p.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.Warn("Connection attempt failed, retrying", "target", what, "attempt", attempt, "backoff", backoff, "error", err)
	}
	return p
}

func setupStorage(ctx context.Context, cfg *config.Config, dbMetrics *metrics.DatabaseMetrics) storage {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	switch cfg.StorageDriver {
	case config.DriverPostgres:
		tracer := postgres.NewMetricsTracer(dbMetrics)
		pool, err := retry.Do(ctx, retryPolicy("postgres"), func(ctx context.Context) (*pgxpool.Pool, error) {
			return postgres.Connect(ctx, cfg.DatabaseURL, tracer)
		})
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			pool.Close()
			os.Exit(1)
		}
		return storage{
			repo:   postgres.NewSnippetRepo(pool),
			health: httpserver.HealthCheck{Name: "postgres", Check: pool.Ping},
			close:  pool.Close,
		}

	default:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			slog.Error("Failed to open database", "error", err)
			os.Exit(1)
		}
		return storage{
			repo:   sqlite.NewSnippetRepo(db, dbMetrics),
			health: httpserver.HealthCheck{Name: "sqlite", Check: db.PingContext},
			close:  func() { _ = db.Close() },
		}
	}
}

// setupRedis returns nil when no REDIS_URL is configured. An unreachable
// Redis is not fatal: the cache degrades to its in-memory layer.
func setupRedis(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) *redis.Client {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL not set, using in-memory cache only")
		return nil
	}

	redisMetrics := metrics.NewRedisMetrics(reg)
	client, err := redis.NewClient(cfg.RedisURL,
		redis.NewMetricsHook(redisMetrics),
		redis.NewCircuitBreakerHook(redis.BreakerSettings(), redisMetrics),
	)
	if err != nil {
		slog.Error("Failed to create Redis client", "error", err)
		os.Exit(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		slog.Warn("Redis not reachable at startup", "error", err)
	} else {
		slog.Info("Redis connected")
	}
	return client
}

func setupStyle(cfg *config.Config) *style.StyleConfig {
	if cfg.StyleConfig == "" {
		return style.Default()
	}
	styleCfg, err := style.Load(cfg.StyleConfig)
	if err != nil {
		slog.Error("Failed to load style config", "path", cfg.StyleConfig, "error", err)
		os.Exit(1)
	}
	return styleCfg
}

func instanceID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Version, "storage", cfg.StorageDriver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	dbMetrics := metrics.NewDatabaseMetrics(reg)

	store := setupStorage(ctx, cfg, dbMetrics)
	defer store.close()

	healthChecks := []httpserver.HealthCheck{store.health}

	cacheOpts := []redis.CacheOption{redis.WithCacheMetrics(metrics.NewCacheMetrics(reg))}
	var janitorOpts []app.JanitorOption
	if redisClient := setupRedis(ctx, cfg, reg); redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		cacheOpts = append(cacheOpts, redis.WithRedis(redisClient.Underlying()))
		janitorOpts = append(janitorOpts, app.WithSweepLock(redis.NewSweepLock(redisClient.Underlying(), instanceID(), cfg.JanitorInterval/2)))
		healthChecks = append(healthChecks, httpserver.HealthCheck{Name: "redis", Check: redisClient.Ping})
	}
	repo := redis.NewSnippetCache(store.repo, clock, cfg.CacheTTL, cfg.CacheSize, cacheOpts...)

	chroma := highlight.New(cfg.HighlightStyle)
	svc := app.NewService(repo, chroma, clock, app.WithMetrics(metrics.NewSnippetMetrics(reg)))

	srv, err := httpserver.NewServer(cfg, svc, chroma, setupStyle(cfg),
		httpserver.WithHealthChecks(healthChecks...),
		httpserver.WithMetrics(metrics.Handler(reg), metrics.NewHTTPMetrics(reg)),
	)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	var wg sync.WaitGroup
	wg.Go(func() {
		app.NewJanitor(svc, clock, cfg.JanitorInterval, janitorOpts...).Run(ctx)
	})
	if cfg.StyleConfig != "" {
		wg.Go(func() {
			err := style.Watch(ctx, cfg.StyleConfig, func(styleCfg *style.StyleConfig) {
				if err := srv.UpdateStyle(styleCfg); err != nil {
					slog.Error("Failed to apply style config", "error", err)
					return
				}
				slog.Info("Style config reloaded", "path", cfg.StyleConfig)
			})
			if err != nil {
				slog.Error("Style watcher failed", "error", err)
			}
		})
	}

	go func() {
		<-ctx.Done()
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		stop()
		wg.Wait()
		os.Exit(1)
	}

	wg.Wait()
	slog.Info("Shutdown complete")
}
