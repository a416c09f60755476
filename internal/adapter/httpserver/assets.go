package httpserver

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/binp/internal/domain"
	"github.com/pscheid92/binp/internal/style"
	"github.com/pscheid92/binp/web"
)

const (
	assetCacheControl = "public, max-age=300"
	mimeJavaScript    = "text/javascript; charset=utf-8"
	mimeCSS           = "text/css; charset=utf-8"
)

type asset struct {
	body []byte
	etag string
}

// styleAssets is everything rendered from one StyleConfig. It is replaced
// as a whole when the style file changes.
type styleAssets struct {
	config   *style.StyleConfig
	themeCSS asset
	chroma   asset
	tailwind asset
}

func renderAsset(render func(io.Writer) error) (asset, error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return asset{}, err
	}
	sum := sha256.Sum256(buf.Bytes())
	return asset{body: buf.Bytes(), etag: `"` + hex.EncodeToString(sum[:8]) + `"`}, nil
}

// UpdateStyle re-renders the style assets from cfg and swaps them in.
func (s *Server) UpdateStyle(cfg *style.StyleConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid style config: %w", err)
	}
	themeCSS, err := renderAsset(cfg.RenderCSSVariables)
	if err != nil {
		return fmt.Errorf("failed to render theme stylesheet: %w", err)
	}
	chroma, err := renderAsset(s.chroma.WriteCSS)
	if err != nil {
		return fmt.Errorf("failed to render chroma stylesheet: %w", err)
	}
	tailwind, err := renderAsset(cfg.RenderTailwind)
	if err != nil {
		return fmt.Errorf("failed to render tailwind config: %w", err)
	}

	s.assets.Store(&styleAssets{
		config:   cfg,
		themeCSS: themeCSS,
		chroma:   chroma,
		tailwind: tailwind,
	})
	slog.Info("Style assets rendered", "palettes", len(cfg.Palettes()), "plugins", len(cfg.Plugins))
	return nil
}

func (s *Server) registerAssetRoutes() {
	s.echo.GET("/css/theme.css", s.serveAsset(func(a *styleAssets) asset { return a.themeCSS }, mimeCSS))
	s.echo.GET("/css/chroma.css", s.serveAsset(func(a *styleAssets) asset { return a.chroma }, mimeCSS))
	s.echo.GET("/tailwind.config.js", s.serveAsset(func(a *styleAssets) asset { return a.tailwind }, mimeJavaScript))
	s.echo.StaticFS("/css", echo.MustSubFS(web.StaticFiles, "static/css"))

	s.echo.GET("/api/style", s.handleGetStyle)
	s.echo.GET("/api/options", s.handleGetOptions)
}

func (s *Server) serveAsset(pick func(*styleAssets) asset, contentType string) echo.HandlerFunc {
	return func(c echo.Context) error {
		a := pick(s.assets.Load())

		header := c.Response().Header()
		header.Set(echo.HeaderCacheControl, assetCacheControl)
		header.Set("ETag", a.etag)
		if c.Request().Header.Get("If-None-Match") == a.etag {
			return c.NoContent(http.StatusNotModified)
		}
		if err := c.Blob(http.StatusOK, contentType, a.body); err != nil {
			return fmt.Errorf("failed to write asset: %w", err)
		}
		return nil
	}
}

func (s *Server) handleGetStyle(c echo.Context) error {
	if err := c.JSON(http.StatusOK, s.assets.Load().config); err != nil {
		return fmt.Errorf("failed to write style response: %w", err)
	}
	return nil
}

type optionsResponse struct {
	Languages       []domain.Option `json:"languages"`
	Expiries        []domain.Option `json:"expiries"`
	DefaultLanguage domain.Language `json:"default_language"`
	DefaultExpiry   domain.Expiry   `json:"default_expiry"`
	MaxTextLength   int             `json:"max_text_length"`
}

func (s *Server) handleGetOptions(c echo.Context) error {
	response := optionsResponse{
		Languages:       domain.Languages(),
		Expiries:        domain.Expiries(),
		DefaultLanguage: domain.DefaultLanguage,
		DefaultExpiry:   domain.DefaultExpiry,
		MaxTextLength:   domain.MaxTextLength,
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write options response: %w", err)
	}
	return nil
}
