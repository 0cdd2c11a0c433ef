package admin

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"admin-exporter/config"
	"admin-exporter/utils"
)

const saveButton = `button[type="submit"].primary`

// newBrowser starts a Chrome allocator and browser context.
func newBrowser(ctx context.Context, cfg *config.Config, headless bool) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if bin := findChromeBinary(cfg.ChromeBin); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	return browserCtx, func() {
		cancelBrowser()
		cancelAlloc()
	}
}

func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// InvoiceSaver re-submits invoice forms in a headless browser carrying the
// saved admin session.
type InvoiceSaver struct {
	cfg     *config.Config
	logger  *utils.Logger
	session *Session
	retry   *utils.RetryConfig

	browserCtx context.Context
	cancel     context.CancelFunc
}

func NewInvoiceSaver(ctx context.Context, cfg *config.Config, logger *utils.Logger, session *Session) *InvoiceSaver {
	browserCtx, cancel := newBrowser(ctx, cfg, true)
	return &InvoiceSaver{
		cfg:     cfg,
		logger:  logger,
		session: session,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   cfg.RetryDelay(),
			Logger:      logger,
		},
		browserCtx: browserCtx,
		cancel:     cancel,
	}
}

// Resave opens /admin/invoices/{id}, clicks the primary submit button and
// waits two seconds for the save to land. Loading the form is retried; the
// click is sent at most once.
func (s *InvoiceSaver) Resave(ctx context.Context, invoiceID string) error {
	invoiceURL := fmt.Sprintf("%s/admin/invoices/%s", s.cfg.BaseURL, invoiceID)

	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, 2*time.Minute)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	load := func() error {
		err := chromedp.Run(tabCtx,
			chromedp.ActionFunc(s.setCookies),
			chromedp.Navigate(invoiceURL),
			chromedp.WaitVisible(saveButton, chromedp.ByQuery),
		)
		if err != nil {
			return fmt.Errorf("chromedp load invoice: %w", err)
		}
		return nil
	}
	save := func() error {
		err := chromedp.Run(tabCtx,
			chromedp.Click(saveButton, chromedp.ByQuery),
			chromedp.Sleep(2*time.Second),
		)
		if err != nil {
			return fmt.Errorf("chromedp save invoice: %w", err)
		}
		return nil
	}

	if err := loadThenSave(ctx, s.retry, "load-invoice-"+invoiceID, load, save); err != nil {
		return err
	}
	s.logger.Debug("[admin] Invoice %s saved", invoiceID)
	return nil
}

// loadThenSave retries load until it succeeds, then runs save exactly once.
func loadThenSave(ctx context.Context, retry *utils.RetryConfig, name string, load, save func() error) error {
	if err := retry.Do(ctx, name, load); err != nil {
		return err
	}
	return save()
}

func (s *InvoiceSaver) setCookies(ctx context.Context) error {
	if s.session == nil || len(s.session.Cookies) == 0 {
		return nil
	}
	params := make([]*network.CookieParam, 0, len(s.session.Cookies))
	for _, c := range s.session.Cookies {
		params = append(params, &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		})
	}
	return network.SetCookies(params).Do(ctx)
}

func (s *InvoiceSaver) Close() {
	s.cancel()
}
