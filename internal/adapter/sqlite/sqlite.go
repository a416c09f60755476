package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	defaultBusyTimeout = 5 * time.Second
	// MemoryPath opens a private in-memory database.
	MemoryPath = ":memory:"
)

const schema = `
CREATE TABLE IF NOT EXISTS snippets (
    id              TEXT PRIMARY KEY,
    text            TEXT NOT NULL,
    burn_after_read INTEGER NOT NULL DEFAULT 0,
    language        TEXT NOT NULL,
    created_at      INTEGER NOT NULL,
    expires_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS snippets_expires_at_idx ON snippets (expires_at);
`

// Open opens the database at path with WAL journaling and a busy timeout
// applied to every pooled connection, then creates the schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if path == MemoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create sqlite schema: %w", err)
	}

	slog.Info("Database connected", "driver", "sqlite", "path", path)
	return db, nil
}

func dsn(path string) string {
	pragmas := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", defaultBusyTimeout.Milliseconds()),
		"_pragma=foreign_keys(ON)",
	}
	if path != MemoryPath {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)", "_pragma=synchronous(NORMAL)")
	}
	return "file:" + path + "?" + strings.Join(pragmas, "&")
}
