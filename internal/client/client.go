// Package client talks to a binp server over its JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pscheid92/binp/internal/app"
	"github.com/pscheid92/binp/internal/domain"
	"github.com/pscheid92/binp/internal/platform/correlation"
	apperrors "github.com/pscheid92/binp/internal/platform/errors"
	"github.com/pscheid92/binp/internal/platform/version"
)

const defaultTimeout = 15 * time.Second

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize = 1 << 20

var ErrNotFound = errors.New("snippet not found")

// APIError is a non-2xx response other than 404.
type APIError struct {
	StatusCode int
	Type       apperrors.ErrorType
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("server returned %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after 15s.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create stores a new snippet and returns it as the server saw it.
func (c *Client) Create(ctx context.Context, req app.CreateSnippetRequest) (*domain.Snippet, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var snippet domain.Snippet
	if err := c.do(ctx, http.MethodPost, "/snippet", bytes.NewReader(body), http.StatusCreated, &snippet); err != nil {
		return nil, err
	}
	return &snippet, nil
}

// Get fetches a snippet. Reading a burn-after-read snippet deletes it.
func (c *Client) Get(ctx context.Context, id string) (*domain.Snippet, error) {
	if id == "" || strings.ContainsAny(id, "/?#") {
		return nil, fmt.Errorf("invalid snippet id %q", id)
	}

	var snippet domain.Snippet
	if err := c.do(ctx, http.MethodGet, "/"+id, nil, http.StatusOK, &snippet); err != nil {
		return nil, err
	}
	return &snippet, nil
}

// Options lists the languages and expiries the server accepts.
func (c *Client) Options(ctx context.Context) (*Options, error) {
	var opts Options
	if err := c.do(ctx, http.MethodGet, "/api/options", nil, http.StatusOK, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// Options mirrors the server's /api/options response.
type Options struct {
	Languages       []domain.Option `json:"languages"`
	Expiries        []domain.Option `json:"expiries"`
	DefaultLanguage domain.Language `json:"default_language"`
	DefaultExpiry   domain.Expiry   `json:"default_expiry"`
	MaxTextLength   int             `json:"max_text_length"`
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, wantStatus int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set(correlation.Header, correlation.NewID())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != wantStatus {
		return decodeAPIError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, data []byte) error {
	apiErr := &APIError{StatusCode: status}
	var body apperrors.Response
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		apiErr.Type = body.Type
		apiErr.Message = body.Error
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(data))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
