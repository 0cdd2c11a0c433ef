// Package fetch is a small JSON-over-HTTP GET client shared by the admin,
// DNS and retail lookups. It maps status codes to sentinel errors and
// retries transient failures.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"admin-exporter/utils"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	}
	return nil
}

// retryable reports whether a later attempt could succeed.
func (e *StatusError) retryable() bool {
	return e.Status == http.StatusConflict ||
		e.Status == http.StatusTooManyRequests ||
		e.Status >= 500
}

// Client issues GET requests with default headers, a per-attempt timeout
// and retry.
type Client struct {
	http    *http.Client
	headers http.Header
	timeout time.Duration
	retry   *utils.RetryConfig
	logger  *utils.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each attempt. Zero disables the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHeader sets a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// WithRetry sets the attempt count and base back-off delay.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(c *Client) {
		c.retry.MaxAttempts = attempts
		c.retry.BaseDelay = baseDelay
	}
}

func WithLogger(logger *utils.Logger) Option {
	return func(c *Client) {
		c.logger = logger
		c.retry.Logger = logger
	}
}

// New builds a Client. Defaults: 30s timeout, 3 attempts from 1s,
// Accept: application/json.
func New(opts ...Option) *Client {
	logger := utils.NewDiscardLogger()
	c := &Client{
		http:    newHTTPClient(),
		headers: make(http.Header),
		timeout: 30 * time.Second,
		retry:   &utils.RetryConfig{MaxAttempts: 3, BaseDelay: time.Second, Logger: logger},
		logger:  logger,
	}
	c.headers.Set("Accept", "application/json")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   20,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
	}
}

// Get returns the body of a successful GET to url.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := c.retry.Do(ctx, "GET "+url, func() error {
		b, err := c.once(ctx, url)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) && !se.retryable() {
				return utils.Permanent(err)
			}
			if ctx.Err() != nil {
				return utils.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	})
	return body, err
}

// GetJSON decodes the JSON body of a GET to url into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (c *Client) once(ctx context.Context, url string) ([]byte, error) {
	reqCtx := ctx
	cancel := func() {}
	if c.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
	}
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, utils.Permanent(fmt.Errorf("build request: %w", err))
	}
	for k, v := range c.headers {
		req.Header[k] = append([]string(nil), v...)
	}

	c.logger.Debug("[fetch] GET %s", url)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{URL: url, Status: resp.StatusCode, Body: snippet}
	}
	return body, nil
}
