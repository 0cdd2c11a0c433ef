package admin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"admin-exporter/config"
	"admin-exporter/fetch"
	"admin-exporter/utils"
)

var (
	ErrNotFound     = fetch.ErrNotFound
	ErrUnauthorized = fetch.ErrUnauthorized
	ErrConflict     = fetch.ErrConflict
)

// UnknownShop is used in file names when the shop ID cannot be resolved.
const UnknownShop = "unknown"

// Client reads the admin JSON endpoints of one shop.
type Client struct {
	base   *url.URL
	logger *utils.Logger
	http   *fetch.Client
}

// NewClient builds a client for cfg.BaseURL. The session cookie comes from
// cfg.Cookie, or else from the saved session file. Extra options are applied
// after the defaults derived from cfg.
func NewClient(cfg *config.Config, logger *utils.Logger, opts ...fetch.Option) (*Client, error) {
	if err := cfg.RequireBaseURL(); err != nil {
		return nil, err
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("admin: invalid base url %q", cfg.BaseURL)
	}

	cookie := cfg.Cookie
	if cookie == "" {
		session, err := LoadSession(cfg.SessionFile)
		switch {
		case err == nil:
			cookie = session.CookieHeader(base.Hostname())
			logger.Debug("[admin] Using session captured %s", session.CapturedAt.Format("2006-01-02 15:04"))
		case errors.Is(err, os.ErrNotExist):
			logger.Warn("[admin] No cookie configured and no session at %s, run `admin-exporter login` first", cfg.SessionFile)
		default:
			return nil, err
		}
	}

	defaults := []fetch.Option{
		fetch.WithLogger(logger),
		fetch.WithTimeout(cfg.RequestTimeout()),
		fetch.WithRetry(cfg.MaxRetries, cfg.RetryDelay()),
		fetch.WithHeader("X-Requested-With", "XMLHttpRequest"),
	}
	if cookie != "" {
		defaults = append(defaults, fetch.WithHeader("Cookie", cookie))
	}

	return &Client{
		base:   base,
		logger: logger,
		http:   fetch.New(append(defaults, opts...)...),
	}, nil
}

func (c *Client) BaseURL() string { return strings.TrimRight(c.base.String(), "/") }

// Host is the admin host name, e.g. "shop.webshopapp.com".
func (c *Client) Host() string { return c.base.Hostname() }

// URL resolves an admin path with an optional query against the base URL.
func (c *Client) URL(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = query.Encode()
	return u.String()
}

// GetJSON fetches path and decodes it into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.http.GetJSON(ctx, c.URL(path, query), out); err != nil {
		return fmt.Errorf("admin: %w", err)
	}
	return nil
}

// GetRaw fetches path and returns the undecoded body.
func (c *Client) GetRaw(ctx context.Context, path string, query url.Values) ([]byte, error) {
	body, err := c.http.Get(ctx, c.URL(path, query))
	if err != nil {
		return nil, fmt.Errorf("admin: %w", err)
	}
	return body, nil
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	return q
}

// merge copies extra into q without overriding keys already set.
func merge(q, extra url.Values) url.Values {
	for k, vs := range extra {
		if _, ok := q[k]; ok {
			continue
		}
		q[k] = append([]string(nil), vs...)
	}
	return q
}
