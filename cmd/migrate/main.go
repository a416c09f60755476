package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pscheid92/binp/internal/adapter/postgres"
	"github.com/pscheid92/binp/internal/platform/logging"
)

const connectTimeout = 30 * time.Second

func main() {
	var (
		databaseURL = flag.String("database", os.Getenv("DATABASE_URL"), "Postgres URL (or set DATABASE_URL env)")
		status      = flag.Bool("status", false, "Report the schema version without migrating")
		verbose     = flag.Bool("verbose", false, "Verbose logging")
	)
	flag.Parse()

	if *databaseURL == "" {
		log.Fatal("Database URL required (--database or DATABASE_URL env)")
	}

	level := "info"
	if *verbose {
		level = "debug"
	}
	slog.SetDefault(logging.New(os.Stdout, level, "text"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	pool, err := postgres.Connect(connectCtx, *databaseURL, nil)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if *status {
		current, latest, err := postgres.MigrationStatus(ctx, pool)
		if err != nil {
			log.Fatalf("Failed to read migration status: %v", err)
		}
		slog.Info("Schema version", "current", current, "latest", latest, "pending", latest-current)
		return
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	slog.Info("Migration complete")
}
