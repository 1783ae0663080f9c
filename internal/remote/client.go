// Package remote implements the primary-backend tier of the source cascade:
// plain GET calls with a fixed timeout, bounded transport-level retries, and
// per-call error classification for the selector.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/scoutlabs/retail-pulse/internal/source"
)

const (
	// DefaultTimeout bounds every outbound call at the transport layer.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxRetries is how many times a failed idempotent GET is retried
	// on top of the initial attempt. Only NetworkError and ServerError are
	// retried; a 4xx is final.
	DefaultMaxRetries = 3

	defaultBackoff = 500 * time.Millisecond

	// errorBodyLimit caps how much of an error response body is kept for
	// diagnostics.
	errorBodyLimit = 2048
)

// envelope is the backend's uniform response shape.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// Client talks to the primary analytics backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	platform   string
	version    string
	log        zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client (for testing).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetries overrides the retry count and base backoff.
func WithRetries(maxRetries int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// WithMetadata sets the deployment metadata sent with every request.
func WithMetadata(platform, version string) ClientOption {
	return func(c *Client) {
		c.platform = platform
		c.version = version
	}
}

// WithClientLogger sets the client's logger.
func WithClientLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates a remote client for the given backend base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		backoff:    defaultBackoff,
		log:        zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Name implements source.Provider.
func (c *Client) Name() string { return source.NameAzureAPI }

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Fetch implements source.Provider. Retries are transport-level only: a 4xx
// response is returned immediately as a ClientError.
func (c *Client) Fetch(ctx context.Context, resource source.Resource, params source.Params) (json.RawMessage, error) {
	u, err := endpointURL(c.baseURL, resource, params)
	if err != nil {
		return nil, &source.ClientError{Status: http.StatusBadRequest, Body: err.Error()}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		payload, err := c.doOnce(ctx, u)
		if err == nil {
			return payload, nil
		}
		lastErr = err

		if source.IsClientError(err) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, lastErr
		}
		if attempt < c.maxRetries {
			wait := c.backoff * (1 << uint(attempt))
			c.log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Int("max_retries", c.maxRetries).
				Str("url", u).
				Msg("Retrying backend call")
			select {
			case <-ctx.Done():
				return nil, lastErr
			case <-time.After(wait):
			}
		}
	}
	return nil, lastErr
}

// doOnce issues a single GET and classifies the outcome.
func (c *Client) doOnce(ctx context.Context, u string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("doOnce: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.platform != "" {
		req.Header.Set("X-Client-Platform", c.platform)
	}
	if c.version != "" {
		req.Header.Set("X-Client-Version", c.version)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &source.NetworkError{Op: "GET " + u, Cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, &source.ServerError{Status: resp.StatusCode, Body: readErrorBody(resp.Body)}
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, &source.ClientError{Status: resp.StatusCode, Body: readErrorBody(resp.Body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &source.NetworkError{Op: "GET " + u, Cause: err}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("doOnce: decoding response envelope: %w", err)
	}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		return env.Data, nil
	}
	// Some routes (notably /health) answer without a data envelope.
	return json.RawMessage(body), nil
}

func readErrorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, errorBodyLimit))
	if err != nil {
		return ""
	}
	return string(b)
}
