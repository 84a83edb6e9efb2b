package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultTimeout bounds a single backend call.
	DefaultTimeout = 15 * time.Second

	// maxErrorBody caps how much of a failed response body is kept.
	maxErrorBody = 64 << 10

	maxRedirects = 10
)

// Session is the credential context the client reads and, on 401, clears.
type Session interface {
	TokenReader
	SignIn(ctx context.Context, token string) error
	SignOut(ctx context.Context) error
}

// UnauthorizedHandler is called after a 401 evicted the token.
type UnauthorizedHandler func(ctx context.Context)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	baseTransport  http.RoundTripper
	timeout        time.Duration
	onUnauthorized UnauthorizedHandler
}

// WithTransport sets the base transport beneath the bearer transport.
// If not provided, http.DefaultTransport is used.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *clientConfig) {
		c.baseTransport = transport
	}
}

// WithTimeout sets the per-call timeout. Zero keeps DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithUnauthorizedHandler registers a hook run after a 401 signed the session out.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *clientConfig) {
		c.onUnauthorized = h
	}
}

// Client is a JSON client for the task backend.
type Client struct {
	baseURL        string
	http           *http.Client
	session        Session
	onUnauthorized UnauthorizedHandler
	validate       *validator.Validate
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, session Session, opts ...Option) (*Client, error) {
	if session == nil {
		return nil, fmt.Errorf("missing session")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	cfg := &clientConfig{
		baseTransport: http.DefaultTransport,
		timeout:       DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http: &http.Client{
			Timeout: cfg.timeout,
			Transport: &bearerTransport{
				tokens: session,
				base:   cfg.baseTransport,
			},
			CheckRedirect: sameHostRedirects,
		},
		session:        session,
		onUnauthorized: cfg.onUnauthorized,
		validate:       validator.New(),
	}, nil
}

// sameHostRedirects follows redirects only within the backend's host.
// bearerTransport sets the token on every hop, so a redirect elsewhere is
// handed back to the caller as a non-2xx response instead.
func sameHostRedirects(req *http.Request, via []*http.Request) error {
	if req.URL.Host != via[0].URL.Host {
		return http.ErrUseLastResponse
	}
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return nil
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		respErr := &ResponseError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       errBody,
		}
		if resp.StatusCode == http.StatusUnauthorized {
			c.evict(ctx)
		}
		return respErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// evict clears the rejected token and notifies the unauthorized hook.
func (c *Client) evict(ctx context.Context) {
	slog.InfoContext(ctx, "backend rejected credentials, signing out")

	// The session is cleared even when the request context is already done.
	if err := c.session.SignOut(context.WithoutCancel(ctx)); err != nil {
		slog.ErrorContext(ctx, "failed to clear rejected token", "error", err)
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}
