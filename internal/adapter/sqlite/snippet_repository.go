package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/pscheid92/binp/internal/domain"
)

// QueryObserver records query timings. *metrics.DatabaseMetrics satisfies it.
type QueryObserver interface {
	ObserveQuery(driver, operation string, d time.Duration, err error)
}

type noopObserver struct{}

func (noopObserver) ObserveQuery(string, string, time.Duration, error) {}

// SnippetRepo stores snippets in SQLite. Timestamps are unix nanoseconds so
// expiry comparisons happen on integers.
type SnippetRepo struct {
	db       *sql.DB
	observer QueryObserver
}

var _ domain.SnippetRepository = (*SnippetRepo)(nil)

// NewSnippetRepo wraps db. observer may be nil.
func NewSnippetRepo(db *sql.DB, observer QueryObserver) *SnippetRepo {
	if observer == nil {
		observer = noopObserver{}
	}
	return &SnippetRepo{db: db, observer: observer}
}

func (r *SnippetRepo) Create(ctx context.Context, snippet *domain.Snippet) (err error) {
	defer r.observe("insert", time.Now(), &err)

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO snippets (id, text, burn_after_read, language, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		snippet.ID, snippet.Text, snippet.BurnAfterRead, string(snippet.Language),
		snippet.CreatedAt.UnixNano(), snippet.ExpiresAt.UnixNano(),
	)
	if isUniqueViolation(err) {
		return domain.ErrSnippetExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert snippet: %w", err)
	}
	return nil
}

func (r *SnippetRepo) GetByID(ctx context.Context, id string) (_ *domain.Snippet, err error) {
	defer r.observe("select", time.Now(), &err)

	var s domain.Snippet
	var language string
	var createdAt, expiresAt int64
	err = r.db.QueryRowContext(ctx, `
		SELECT id, text, burn_after_read, language, created_at, expires_at
		FROM snippets WHERE id = ?`, id,
	).Scan(&s.ID, &s.Text, &s.BurnAfterRead, &language, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSnippetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snippet by ID: %w", err)
	}

	s.Language = domain.Language(language)
	s.CreatedAt = time.Unix(0, createdAt).UTC()
	s.ExpiresAt = time.Unix(0, expiresAt).UTC()
	return &s, nil
}

func (r *SnippetRepo) Delete(ctx context.Context, id string) (err error) {
	defer r.observe("delete", time.Now(), &err)

	res, err := r.db.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snippet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read deleted row count: %w", err)
	}
	if n == 0 {
		return domain.ErrSnippetNotFound
	}
	return nil
}

func (r *SnippetRepo) DeleteExpired(ctx context.Context, now time.Time) (_ []string, err error) {
	defer r.observe("delete", time.Now(), &err)

	rows, err := r.db.QueryContext(ctx, `DELETE FROM snippets WHERE expires_at <= ? RETURNING id`, now.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to delete expired snippets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan expired snippet ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to delete expired snippets: %w", err)
	}
	return ids, nil
}

func (r *SnippetRepo) observe(operation string, start time.Time, err *error) {
	queryErr := *err
	if errors.Is(queryErr, domain.ErrSnippetNotFound) || errors.Is(queryErr, domain.ErrSnippetExists) {
		queryErr = nil
	}
	r.observer.ObserveQuery("sqlite", operation, time.Since(start), queryErr)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlitedriver.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
