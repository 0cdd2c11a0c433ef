package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"admin-exporter/config"
	"admin-exporter/utils"
)

// Session is a saved set of admin cookies.
type Session struct {
	BaseURL    string    `json:"base_url"`
	CapturedAt time.Time `json:"captured_at"`
	Cookies    []Cookie  `json:"cookies"`
}

type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"http_only,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
}

func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("admin: read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("admin: decode session %s: %w", path, err)
	}
	return &s, nil
}

// Save writes the session with owner-only permissions.
func (s *Session) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("admin: create session dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("admin: encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("admin: write session: %w", err)
	}
	return nil
}

// CookieHeader joins the cookies that apply to host into a Cookie header.
func (s *Session) CookieHeader(host string) string {
	var parts []string
	for _, c := range s.Cookies {
		if !domainMatches(host, c.Domain) {
			continue
		}
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

func domainMatches(host, domain string) bool {
	domain = strings.TrimPrefix(strings.ToLower(domain), ".")
	host = strings.ToLower(host)
	return domain == "" || host == domain || strings.HasSuffix(host, "."+domain)
}

// CaptureSession opens a visible browser on the admin login page, waits for
// the user to sign in, and returns the resulting cookies.
func CaptureSession(ctx context.Context, cfg *config.Config, logger *utils.Logger, wait time.Duration) (*Session, error) {
	if err := cfg.RequireBaseURL(); err != nil {
		return nil, err
	}
	adminURL := cfg.BaseURL + "/admin/"

	browserCtx, cancel := newBrowser(ctx, cfg, false)
	defer cancel()

	logger.Info("[admin] Opening %s, sign in within %v", adminURL, wait)
	if err := chromedp.Run(browserCtx, chromedp.Navigate(adminURL)); err != nil {
		return nil, fmt.Errorf("admin: open login page: %w", err)
	}

	waitCtx, cancelWait := context.WithTimeout(browserCtx, wait)
	defer cancelWait()
	if err := waitForAdmin(waitCtx, logger); err != nil {
		return nil, err
	}

	var cookies []*network.Cookie
	err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().WithUrls([]string{cfg.BaseURL}).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("admin: read cookies: %w", err)
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("admin: browser returned no cookies for %s", cfg.BaseURL)
	}

	s := &Session{BaseURL: cfg.BaseURL, CapturedAt: time.Now().UTC()}
	for _, c := range cookies {
		s.Cookies = append(s.Cookies, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		})
	}
	logger.Info("[admin] Captured %d cookies", len(s.Cookies))
	return s, nil
}

// waitForAdmin polls until the page is an admin page rather than a login
// form.
func waitForAdmin(ctx context.Context, logger *utils.Logger) error {
	for {
		var ready bool
		err := chromedp.Run(ctx, chromedp.Evaluate(`
			location.pathname.indexOf('/admin') !== -1 &&
			location.pathname.indexOf('login') === -1 &&
			document.querySelector('input[type="password"]') === null &&
			document.readyState === 'complete'
		`, &ready))
		if err != nil && ctx.Err() == nil {
			logger.Debug("[admin] Waiting for login: %v", err)
		}
		if ready {
			return nil
		}
		if err := utils.Sleep(ctx, 2*time.Second); err != nil {
			return fmt.Errorf("admin: login not completed: %w", err)
		}
	}
}

// SessionFromCookieHeader builds a session from a raw "a=1; b=2" header,
// scoped to host.
func SessionFromCookieHeader(baseURL, host, header string) *Session {
	s := &Session{BaseURL: baseURL, CapturedAt: time.Now().UTC()}
	for _, part := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || name == "" {
			continue
		}
		s.Cookies = append(s.Cookies, Cookie{Name: name, Value: value, Domain: host, Path: "/"})
	}
	return s
}
