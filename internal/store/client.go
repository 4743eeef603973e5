package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sakif/moodtrack/internal/apperror"
)

// DefaultTimeout bounds every request. The app issues calls sequentially
// from interactive flows, so a hung request means a spinning screen — fail
// fast and let the user retry.
const DefaultTimeout = 5 * time.Second

// apiKeyLength is the length of the hosted service's API keys. Checking it
// at construction catches a truncated or misquoted key before the first
// request goes out with it.
const apiKeyLength = 24

// Config holds the connection settings for the hosted store.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration // zero means DefaultTimeout
}

// Client talks to the hosted document database. It is safe for concurrent
// use; the zero value is not usable — construct with New.
type Client struct {
	base   *url.URL
	apiKey string
	httpc  *http.Client
	logger *slog.Logger
}

// New validates cfg and returns a Client. The API key is required and must
// be the exact key length the service issues.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("store: base URL is required")
	}
	if len(cfg.APIKey) != apiKeyLength {
		return nil, fmt.Errorf("store: invalid API key configuration")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: parsing base URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base:   base,
		apiKey: cfg.APIKey,
		httpc:  &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

// do performs one request and decodes a 2xx JSON body into out (when out is
// non-nil). It is the single choke point for header injection and status
// mapping; the typed collection methods are thin wrappers over it.
func (c *Client) do(ctx context.Context, method, path string, q Query, body, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if q != nil {
		encoded, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("store: encoding query: %w", err)
		}
		vals := url.Values{}
		vals.Set("q", string(encoded))
		u.RawQuery = vals.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("store: encoding body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("store: building request: %w", err)
	}
	req.Header.Set("x-apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		// Network failure, DNS, timeout, cancelled context — all of them
		// present to the caller as "unavailable now". One attempt only.
		c.logger.Warn("store request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return apperror.Unavailable(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("store request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return apperror.Unauthorized("invalid API key or unauthorized access")
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperror.RateLimited()
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return apperror.RequestFailed(resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("store: decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// status extracts the HTTP status from an error produced by do, or 0.
func status(err error) int {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return 0
}

// Typed helpers shared by the collection wrappers. Generics keep each
// collection down to naming its endpoint and filter shapes.

func list[T any](ctx context.Context, c *Client, path string, q Query) ([]T, error) {
	var out []T
	if err := c.do(ctx, http.MethodGet, path, q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func getByID[T any](ctx context.Context, c *Client, path, resource, id string) (*T, error) {
	var out T
	if err := c.do(ctx, http.MethodGet, path+"/"+id, nil, nil, &out); err != nil {
		if status(err) == http.StatusNotFound {
			return nil, apperror.NotFound(resource, id)
		}
		return nil, err
	}
	return &out, nil
}

func create[T any](ctx context.Context, c *Client, path string, record *T) (*T, error) {
	var out T
	if err := c.do(ctx, http.MethodPost, path, nil, record, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func put(ctx context.Context, c *Client, path, id string, record any) error {
	return c.do(ctx, http.MethodPut, path+"/"+id, nil, record, nil)
}

func patch(ctx context.Context, c *Client, path, id string, fields map[string]any) error {
	return c.do(ctx, http.MethodPatch, path+"/"+id, nil, fields, nil)
}

func del(ctx context.Context, c *Client, path, id string) error {
	return c.do(ctx, http.MethodDelete, path+"/"+id, nil, nil, nil)
}
