package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pscheid92/binp/internal/app"
	"github.com/pscheid92/binp/internal/domain"
	"github.com/pscheid92/binp/internal/platform/config"
	"github.com/pscheid92/binp/internal/style"
)

// --- Mock implementations ---

type mockSnippetService struct {
	createSnippetFn func(ctx context.Context, req app.CreateSnippetRequest) (*domain.Snippet, error)
	getSnippetFn    func(ctx context.Context, id string) (*domain.Snippet, error)
}

func (m *mockSnippetService) CreateSnippet(ctx context.Context, req app.CreateSnippetRequest) (*domain.Snippet, error) {
	if m.createSnippetFn != nil {
		return m.createSnippetFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSnippetService) GetSnippet(ctx context.Context, id string) (*domain.Snippet, error) {
	if m.getSnippetFn != nil {
		return m.getSnippetFn(ctx, id)
	}
	return nil, domain.ErrSnippetNotFound
}

func (m *mockSnippetService) Highlight(_ context.Context, snippet *domain.Snippet) string {
	return `<pre class="chroma">` + snippet.Text + `</pre>`
}

type stubStylesheet struct {
	css string
}

func (s stubStylesheet) WriteCSS(w io.Writer) error {
	_, err := io.WriteString(w, s.css)
	return err
}

// --- Test helpers ---

var testCreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testSnippet(id string) *domain.Snippet {
	return &domain.Snippet{
		ID:        id,
		Text:      "fmt.Println(42)",
		Language:  "go",
		CreatedAt: testCreatedAt,
		ExpiresAt: testCreatedAt.Add(24 * time.Hour),
	}
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:    "development",
		Port:      "8080",
		RateLimit: 1000,
	}
}

func newTestServer(t *testing.T, svc snippetService, opts ...Option) *Server {
	t.Helper()
	srv, err := NewServer(testConfig(), svc, stubStylesheet{css: ".chroma { color: #c0caf5; }\n"}, style.Default(), opts...)
	require.NoError(t, err)
	return srv
}

// do sends a request through the full middleware stack.
func do(srv *Server, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

var (
	acceptJSON = map[string]string{"Accept": "application/json"}
	jsonBody   = map[string]string{"Accept": "application/json", "Content-Type": "application/json"}
	htmxForm   = map[string]string{"Content-Type": "application/x-www-form-urlencoded", "HX-Request": "true"}
)

func okHealthCheck(name string) HealthCheck {
	return HealthCheck{Name: name, Check: func(context.Context) error { return nil }}
}

func failingHealthCheck(name, msg string) HealthCheck {
	return HealthCheck{Name: name, Check: func(context.Context) error { return errors.New(msg) }}
}
