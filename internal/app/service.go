package app

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/pscheid92/binp/internal/domain"
	"github.com/pscheid92/binp/internal/platform/correlation"
)

const maxIDAttempts = 3

// Metrics receives snippet lifecycle events.
type Metrics interface {
	SnippetCreated(language string)
	SnippetRead()
	SnippetBurned()
	SnippetsExpired(n int)
}

type noopMetrics struct{}

func (noopMetrics) SnippetCreated(string) {}
func (noopMetrics) SnippetRead() {}
func (noopMetrics) SnippetBurned() {}
func (noopMetrics) SnippetsExpired(int) {}

type CreateSnippetRequest struct {
	Text          string          `json:"text" form:"text"`
	Language      domain.Language `json:"language" form:"language"`
	Expiry        domain.Expiry   `json:"expiry" form:"expiry"`
	BurnAfterRead bool            `json:"burn_after_read" form:"burn_after_read"`
}

// Service is the application layer. It orchestrates all snippet use cases.
type Service struct {
	snippets    domain.SnippetRepository
	highlighter domain.Highlighter
	clock       clockwork.Clock
	metrics     Metrics
	newID       func() (string, error)
}

type Option func(*Service)

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithIDGenerator replaces the nanoid generator, for tests.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.newID = gen }
}

func NewService(snippets domain.SnippetRepository, highlighter domain.Highlighter, clock clockwork.Clock, opts ...Option) *Service {
	s := &Service{
		snippets:    snippets,
		highlighter: highlighter,
		clock:       clock,
		metrics:     noopMetrics{},
		newID:       func() (string, error) { return gonanoid.New(domain.IDLength) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSnippet validates req and stores a new snippet. Empty language and
// expiry fall back to plain text and one day.
func (s *Service) CreateSnippet(ctx context.Context, req CreateSnippetRequest) (*domain.Snippet, error) {
	if req.Language == "" {
		req.Language = domain.DefaultLanguage
	}
	if req.Expiry == "" {
		req.Expiry = domain.DefaultExpiry
	}

	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrInvalidText)
	}
	if n := utf8.RuneCountInString(req.Text); n > domain.MaxTextLength {
		return nil, fmt.Errorf("%w: text is %d characters, the limit is %d", domain.ErrInvalidText, n, domain.MaxTextLength)
	}
	if !req.Language.Valid() {
		return nil, fmt.Errorf("%w %q, options: %s", domain.ErrInvalidLanguage, req.Language, strings.Join(domain.Values(domain.Languages()), ", "))
	}
	lifetime, ok := req.Expiry.Duration()
	if !ok {
		return nil, fmt.Errorf("%w %q, options: %s", domain.ErrInvalidExpiry, req.Expiry, strings.Join(domain.Values(domain.Expiries()), ", "))
	}

	// Postgres keeps microseconds. Cached copies must match what reads return.
	now := s.clock.Now().UTC().Truncate(time.Microsecond)
	snippet := &domain.Snippet{
		Text:          req.Text,
		BurnAfterRead: req.BurnAfterRead,
		Language:      req.Language,
		CreatedAt:     now,
		ExpiresAt:     now.Add(lifetime),
	}

	for attempt := 1; ; attempt++ {
		id, err := s.newID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate snippet id: %w", err)
		}
		snippet.ID = id

		err = s.snippets.Create(ctx, snippet)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrSnippetExists) || attempt == maxIDAttempts {
			return nil, fmt.Errorf("failed to store snippet: %w", err)
		}
		slog.WarnContext(ctx, "Snippet ID collision, regenerating", "snippet_id", id, "attempt", attempt)
	}

	s.metrics.SnippetCreated(string(snippet.Language))
	slog.InfoContext(ctx, "Snippet created",
		"snippet_id", snippet.ID,
		"language", snippet.Language,
		"expires_at", snippet.ExpiresAt,
		"burn_after_read", snippet.BurnAfterRead)
	return snippet, nil
}

// GetSnippet returns the snippet with id. Expired snippets are deleted and
// reported as not found. Burn-after-read snippets are deleted before they
// are returned; of concurrent readers only the one whose delete succeeds
// gets the snippet.
func (s *Service) GetSnippet(ctx context.Context, id string) (*domain.Snippet, error) {
	ctx = correlation.WithAttrs(ctx, slog.String("snippet_id", id))

	snippet, err := s.snippets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if snippet.IsExpired(s.clock.Now()) {
		slog.InfoContext(ctx, "Snippet expired on read")
		if err := s.snippets.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrSnippetNotFound) {
			return nil, fmt.Errorf("failed to delete expired snippet: %w", err)
		}
		s.metrics.SnippetsExpired(1)
		return nil, fmt.Errorf("%w: %w", domain.ErrSnippetNotFound, domain.ErrSnippetExpired)
	}

	if snippet.BurnAfterRead {
		if err := s.snippets.Delete(ctx, id); err != nil {
			if errors.Is(err, domain.ErrSnippetNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to burn snippet: %w", err)
		}
		s.metrics.SnippetBurned()
		slog.InfoContext(ctx, "Snippet burned after read")
	}

	s.metrics.SnippetRead()
	return snippet, nil
}

// Highlight renders the snippet as HTML. Highlighter failures degrade to
// escaped plain text.
func (s *Service) Highlight(ctx context.Context, snippet *domain.Snippet) string {
	out, err := s.highlighter.Highlight(snippet.Text, string(snippet.Language))
	if err != nil {
		slog.WarnContext(ctx, "Highlighting failed, serving plain text", "snippet_id", snippet.ID, "language", snippet.Language, "error", err)
		return `<pre class="chroma">` + html.EscapeString(snippet.Text) + `</pre>`
	}
	return out
}

// DeleteExpired removes all expired snippets and returns how many were removed.
func (s *Service) DeleteExpired(ctx context.Context) (int, error) {
	ids, err := s.snippets.DeleteExpired(ctx, s.clock.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired snippets: %w", err)
	}
	if len(ids) > 0 {
		s.metrics.SnippetsExpired(len(ids))
	}
	return len(ids), nil
}
