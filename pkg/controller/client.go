// Package controller is a thin client for the EDA Controller REST API. It
// covers the resources the automation glue manages: projects, credentials,
// decision environments and rulebook activations. Idempotency is delegated
// to the server; the client only implements lookup-then-create-or-update.
package controller

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const apiPrefix = "/api/eda/v1"

// newTransport clones the default transport so the insecure flag does not
// leak into other clients in the process.
func newTransport(insecureSkipVerify bool) http.RoundTripper {
	if !insecureSkipVerify {
		return http.DefaultTransport
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	}
	transport.TLSClientConfig.InsecureSkipVerify = true
	return transport
}

// Config holds the connection settings for the EDA Controller API.
type Config struct {
	// URL is the base URL of the controller, e.g. "https://eda.example.com".
	URL string `yaml:"url"`
	// Username for basic authentication.
	Username string `yaml:"username"`
	// Password for basic authentication.
	Password string `yaml:"password"`
	// InsecureSkipVerify skips TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
	// Timeout bounds each request. Defaults to 15 seconds.
	Timeout time.Duration `yaml:"timeout"`
}

// Client is the EDA Controller API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	cache      LookupCache
	logger     zerolog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithLookupCache installs a cache for name-to-ID lookups. Lookups fall back
// to the API on a miss and write the result back in the background.
func WithLookupCache(cache LookupCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new controller client.
func NewClient(cfg *Config, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("controller URL is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: newTransport(cfg.InsecureSkipVerify),
		},
		logger: logger.With().Str("component", "ControllerClient").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// do performs one JSON request against the API. A non-2xx response is
// returned as an *APIError carrying the status code and body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().Str("method", method).Str("url", endpoint).Msg("Controller API request.")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
		}
	}
	return nil
}

// resultPage is the paginated list envelope the controller wraps collection
// responses in.
type resultPage[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

// listByName fetches a collection filtered by name and returns the first
// match, or ErrNotFound.
func listByName[T any](ctx context.Context, c *Client, path, name string) (*T, error) {
	query := url.Values{"name": []string{name}}
	var page resultPage[T]
	if err := c.do(ctx, http.MethodGet, path, query, nil, &page); err != nil {
		return nil, err
	}
	if len(page.Results) == 0 {
		return nil, fmt.Errorf("%w: %s with name %q", ErrNotFound, strings.Trim(path, "/"), name)
	}
	return &page.Results[0], nil
}

// cachedID resolves a name-to-ID lookup through the configured cache, falling
// back to fetch on a miss and writing the result back in the background.
func (c *Client) cachedID(ctx context.Context, key string, fetch func(context.Context) (int, error)) (int, error) {
	if c.cache != nil {
		id, err := c.cache.Fetch(ctx, key)
		if err == nil {
			c.logger.Debug().Str("key", key).Msg("Lookup cache hit.")
			return id, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("key", key).Msg("Lookup cache error, falling back to API.")
		}
	}

	id, err := fetch(ctx)
	if err != nil {
		return 0, err
	}

	if c.cache != nil {
		go func() {
			writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if writeErr := c.cache.Write(writeCtx, key, id); writeErr != nil {
				c.logger.Warn().Err(writeErr).Str("key", key).Msg("Failed to write lookup cache in background.")
			}
		}()
	}
	return id, nil
}
