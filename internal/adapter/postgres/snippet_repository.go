package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pscheid92/binp/internal/domain"
)

const uniqueViolation = "23505"

type SnippetRepo struct {
	pool *pgxpool.Pool
}

var _ domain.SnippetRepository = (*SnippetRepo)(nil)

func NewSnippetRepo(pool *pgxpool.Pool) *SnippetRepo {
	return &SnippetRepo{pool: pool}
}

func (r *SnippetRepo) Create(ctx context.Context, snippet *domain.Snippet) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO snippets (id, text, burn_after_read, language, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		snippet.ID, snippet.Text, snippet.BurnAfterRead, string(snippet.Language), snippet.CreatedAt, snippet.ExpiresAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrSnippetExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert snippet: %w", err)
	}
	return nil
}

func (r *SnippetRepo) GetByID(ctx context.Context, id string) (*domain.Snippet, error) {
	var s domain.Snippet
	var language string
	err := r.pool.QueryRow(ctx, `
		SELECT id, text, burn_after_read, language, created_at, expires_at
		FROM snippets WHERE id = $1`, id,
	).Scan(&s.ID, &s.Text, &s.BurnAfterRead, &language, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSnippetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snippet by ID: %w", err)
	}

	s.Language = domain.Language(language)
	s.CreatedAt = s.CreatedAt.UTC()
	s.ExpiresAt = s.ExpiresAt.UTC()
	return &s, nil
}

func (r *SnippetRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM snippets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snippet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSnippetNotFound
	}
	return nil
}

func (r *SnippetRepo) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, `DELETE FROM snippets WHERE expires_at <= $1 RETURNING id`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to delete expired snippets: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect expired snippet IDs: %w", err)
	}
	return ids, nil
}
