package httpserver

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/binp/internal/app"
	"github.com/pscheid92/binp/internal/domain"
	"github.com/pscheid92/binp/internal/platform/version"
)

// Page data. Every page embeds pageData for the shared layout.

type pageData struct {
	Title   string
	Version string
}

type indexPage struct {
	pageData
	MaxLength       int
	Languages       []domain.Option
	Expiries        []domain.Option
	DefaultLanguage string
	DefaultExpiry   string
}

type snippetPage struct {
	pageData
	Snippet     *domain.Snippet
	Highlighted template.HTML
	URL         string
}

type messagePage struct {
	pageData
	Message string
}

func newPageData(title string) pageData {
	return pageData{Title: title, Version: version.Version}
}

func (s *Server) registerSnippetRoutes() {
	s.echo.GET("/", s.handleIndex)
	s.echo.POST("/snippet", s.handlePostSnippet)
	s.echo.GET("/:id", s.handleGetSnippet)
}

// wantsJSON reports whether the client negotiated JSON through Accept or,
// like the CLI, through Content-Type.
func wantsJSON(c echo.Context) bool {
	req := c.Request()
	if strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		return true
	}
	return strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

func (s *Server) handleIndex(c echo.Context) error {
	return s.renderTemplate(c, http.StatusOK, "index.html", indexPage{
		pageData:        newPageData(""),
		MaxLength:       domain.MaxTextLength,
		Languages:       domain.Languages(),
		Expiries:        domain.Expiries(),
		DefaultLanguage: string(domain.DefaultLanguage),
		DefaultExpiry:   string(domain.DefaultExpiry),
	})
}

func (s *Server) handleGetSnippet(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	snippet, err := s.snippets.GetSnippet(ctx, id)
	if err != nil {
		if wantsJSON(c) {
			return err
		}
		if errors.Is(err, domain.ErrSnippetNotFound) {
			return s.renderTemplate(c, http.StatusNotFound, "not_found.html", newPageData("Not found"))
		}
		slog.ErrorContext(ctx, "Failed to load snippet", "snippet_id", id, "error", err)
		return s.renderTemplate(c, http.StatusInternalServerError, "error.html", messagePage{
			pageData: newPageData("Error"),
			Message:  "The snippet could not be loaded. Please try again later.",
		})
	}

	if wantsJSON(c) {
		if err := c.JSON(http.StatusOK, snippet); err != nil {
			return fmt.Errorf("failed to write snippet response: %w", err)
		}
		return nil
	}

	return s.renderTemplate(c, http.StatusOK, "snippet.html", snippetPage{
		pageData:    newPageData(snippet.ID),
		Snippet:     snippet,
		Highlighted: template.HTML(s.snippets.Highlight(ctx, snippet)), //nolint:gosec // chroma escapes the snippet text
		URL:         s.snippetURL(c, snippet.ID),
	})
}

func (s *Server) handlePostSnippet(c echo.Context) error {
	ctx := c.Request().Context()
	asJSON := wantsJSON(c)

	var req app.CreateSnippetRequest
	if err := c.Bind(&req); err != nil {
		slog.InfoContext(ctx, "Invalid snippet request", "error", err)
		if asJSON {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
		}
		return s.renderAlert(c, http.StatusBadRequest, "Invalid request data")
	}

	snippet, err := s.snippets.CreateSnippet(ctx, req)
	if err != nil {
		if asJSON {
			return err
		}
		if isValidationError(err) {
			return s.renderAlert(c, http.StatusBadRequest, validationMessage(err))
		}
		slog.ErrorContext(ctx, "Failed to create snippet", "error", err)
		return s.renderAlert(c, http.StatusInternalServerError, "Failed to create snippet")
	}

	url := s.snippetURL(c, snippet.ID)
	if asJSON {
		c.Response().Header().Set(echo.HeaderLocation, url)
		if err := c.JSON(http.StatusCreated, snippet); err != nil {
			return fmt.Errorf("failed to write snippet response: %w", err)
		}
		return nil
	}

	c.Response().Header().Set("Hx-Push-Url", "/"+snippet.ID)
	return s.renderTemplate(c, http.StatusCreated, "snippet_created.html", snippetPage{
		Snippet:     snippet,
		Highlighted: template.HTML(s.snippets.Highlight(ctx, snippet)), //nolint:gosec // chroma escapes the snippet text
		URL:         url,
	})
}

func (s *Server) renderAlert(c echo.Context, status int, message string) error {
	return s.renderTemplate(c, status, "error_alert.html", messagePage{Message: message})
}

func (s *Server) snippetURL(c echo.Context, id string) string {
	return strings.TrimSuffix(s.getBaseURL(c), "/") + "/" + id
}
