package httpserver

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/binp/internal/adapter/metrics"
	"github.com/pscheid92/binp/internal/app"
	"github.com/pscheid92/binp/internal/domain"
	"github.com/pscheid92/binp/internal/platform/config"
	"github.com/pscheid92/binp/internal/style"
	"github.com/pscheid92/binp/web"
)

type snippetService interface {
	CreateSnippet(ctx context.Context, req app.CreateSnippetRequest) (*domain.Snippet, error)
	GetSnippet(ctx context.Context, id string) (*domain.Snippet, error)
	Highlight(ctx context.Context, snippet *domain.Snippet) string
}

// stylesheet writes the syntax-highlighting CSS.
type stylesheet interface {
	WriteCSS(w io.Writer) error
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	snippets  snippetService
	chroma    stylesheet
	templates *template.Template
	assets    atomic.Pointer[styleAssets]

	healthChecks   []HealthCheck
	metricsHandler http.Handler
	httpMetrics    *metrics.HTTPMetrics
	startTime      time.Time
}

type Option func(*Server)

func WithHealthChecks(checks ...HealthCheck) Option {
	return func(s *Server) { s.healthChecks = append(s.healthChecks, checks...) }
}

// WithMetrics serves handler on /metrics and records requests on m.
func WithMetrics(handler http.Handler, m *metrics.HTTPMetrics) Option {
	return func(s *Server) {
		s.metricsHandler = handler
		s.httpMetrics = m
	}
}

func NewServer(cfg *config.Config, snippets snippetService, chroma stylesheet, styleCfg *style.StyleConfig, opts ...Option) (*Server, error) {
	templates, err := template.ParseFS(web.TemplateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:      e,
		config:    cfg,
		snippets:  snippets,
		chroma:    chroma,
		templates: templates,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(srv)
	}

	if err := srv.UpdateStyle(styleCfg); err != nil {
		return nil, err
	}

	e.HTTPErrorHandler = srv.handleHTTPError
	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP lets tests drive the full middleware stack.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) renderTemplate(c echo.Context, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(c.Request().Context(), "Template execution failed", "template", name, "path", c.Request().URL.Path, "error", err)
		if err := c.String(http.StatusInternalServerError, "Failed to render page"); err != nil {
			return fmt.Errorf("failed to send error response: %w", err)
		}
		return nil
	}
	if err := c.HTMLBlob(status, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send HTML response: %w", err)
	}
	return nil
}

func (s *Server) getBaseURL(c echo.Context) string {
	if s.config.IsProduction() && s.config.PublicURL != "" {
		return s.config.PublicURL
	}
	scheme := "http"
	if c.Request().TLS != nil {
		scheme = "https"
	}
	if fwdProto := c.Request().Header.Get("X-Forwarded-Proto"); fwdProto == "http" || fwdProto == "https" {
		scheme = fwdProto
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request().Host)
}
