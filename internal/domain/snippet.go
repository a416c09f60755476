package domain

import (
	"context"
	"time"
)

const (
	// MaxTextLength is the upper bound for snippet text, in characters.
	MaxTextLength = 10000
	// IDLength is the length of generated snippet IDs.
	IDLength = 10
)

type Snippet struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	BurnAfterRead bool      `json:"burn_after_read"`
	Language      Language  `json:"language"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// IsExpired reports whether the snippet is past its expiry at now.
func (s *Snippet) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// SnippetRepository persists snippets.
type SnippetRepository interface {
	// Create returns ErrSnippetExists when the ID is taken.
	Create(ctx context.Context, snippet *Snippet) error
	// GetByID returns ErrSnippetNotFound when no snippet has the ID.
	GetByID(ctx context.Context, id string) (*Snippet, error)
	// Delete returns ErrSnippetNotFound when nothing was deleted, which lets
	// concurrent burn-after-read requests agree on a single winner.
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes every snippet that expired at or before now and
	// returns the removed IDs.
	DeleteExpired(ctx context.Context, now time.Time) ([]string, error)
}

// Highlighter renders snippet text as HTML.
type Highlighter interface {
	Highlight(text, language string) (string, error)
}
