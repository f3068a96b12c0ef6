// Package api is the authorized HTTP client for the CrowJourney backend.
//
// Every component that talks to a protected endpoint goes through Client:
// it is the single place the bearer header is attached, and the only
// component allowed to force the session back to unauthenticated purely
// from request-layer observation (a 401 on any call).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crowjourney/bookshelf/internal/logger"
	"github.com/crowjourney/bookshelf/internal/tokenstore"
)

// Client executes authorized requests against the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     tokenstore.Store

	mu           sync.Mutex
	invalidated  string // last token we fired the invalidation event for
	onInvalidate func()
}

// New creates an API client. The token is read from the persistent store
// on every request rather than from the session store, which keeps this
// package free of a dependency cycle with the session core.
func New(baseURL string, tokens tokenstore.Store) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens: tokens,
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// OnSessionInvalidated registers the handler fired when a request is
// rejected with 401. The handler runs at most once per credential, even
// when several in-flight requests are rejected together.
func (c *Client) OnSessionInvalidated(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onInvalidate = fn
}

// Option tweaks a single request.
type Option func(*http.Request)

// WithHeader sets a header on the request. Explicit headers win over the
// Content-Type default.
func WithHeader(key, value string) Option {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

// Do executes an authorized request. A non-nil body is JSON-encoded.
// It returns the raw response body for 2xx responses; non-2xx responses
// become *Error carrying the backend's message, and a 401 short-circuits
// into ErrSessionInvalidated after the token has been torn down.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any, opts ...Option) ([]byte, error) {
	var payload io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	token, err := c.tokens.Load()
	if err != nil && !errors.Is(err, tokenstore.ErrNotFound) {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	lg := logger.GetLogger()
	lg.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Msg("api request")

	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidate(token)
		return nil, ErrSessionInvalidated
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.failure(resp, raw)
	}

	return raw, nil
}

// DoJSON executes an authorized request and decodes the JSON response
// into out. A body that fails to decode on an otherwise-successful
// response is an error, not silently swallowed.
func (c *Client) DoJSON(ctx context.Context, method, endpoint string, body, out any, opts ...Option) error {
	raw, err := c.Do(ctx, method, endpoint, body, opts...)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// invalidate tears down the credential after a 401. The persisted token
// is always deleted; the event handler fires only once per token so that
// concurrent rejected requests do not stack forced logouts.
func (c *Client) invalidate(token string) {
	if err := c.tokens.Delete(); err != nil {
		lg := logger.GetLogger()
		lg.Warn().Err(err).Msg("failed to delete rejected token")
	}

	c.mu.Lock()
	fire := token != "" && c.invalidated != token
	if fire {
		c.invalidated = token
	}
	fn := c.onInvalidate
	c.mu.Unlock()

	if fire && fn != nil {
		fn()
	}
}

// failure converts a non-2xx response into *Error. Structured bodies
// contribute their {"error": ...} field; unstructured bodies contribute
// their text.
func (c *Client) failure(resp *http.Response, raw []byte) error {
	apiErr := &Error{Status: resp.StatusCode}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			return apiErr
		}
	} else if text := strings.TrimSpace(string(raw)); text != "" {
		apiErr.Message = text
		return apiErr
	}

	apiErr.Message = fmt.Sprintf("request failed (status %d)", resp.StatusCode)
	return apiErr
}
