package cmd

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"admin-exporter/admin"
	"admin-exporter/dns"
	"admin-exporter/fetch"
	"admin-exporter/models"
	"admin-exporter/services"
	"admin-exporter/storage"
	"admin-exporter/utils"
)

// commandContext is cancelled on Ctrl-C or SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func trimBaseURL(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	return strings.TrimSuffix(s, "/admin")
}

// newExporter builds the admin client and the exporter around it.
func newExporter() (*services.Exporter, *admin.Client, error) {
	client, err := admin.NewClient(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return services.NewExporter(client, cfg, logger, utils.NewProgress(logger, quiet)), client, nil
}

func newResolver() *dns.Resolver {
	return dns.NewResolver(cfg.DNSResolverURL,
		fetch.WithLogger(logger),
		fetch.WithTimeout(cfg.RequestTimeout()),
		fetch.WithRetry(cfg.MaxRetries, cfg.RetryDelay()),
	)
}

// sinks writes every table to CSV and to the configured databases.
type sinks struct {
	writers []storage.TableWriter
	printer *services.Printer
}

func openSinks(ctx context.Context) (*sinks, error) {
	csvWriter, err := storage.NewCSVWriter(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	s := &sinks{writers: []storage.TableWriter{csvWriter}, printer: services.NewPrinter(os.Stdout)}

	if cfg.PostgresDSN != "" {
		pg, err := storage.NewPostgresWriter(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.writers = append(s.writers, pg)
	}
	if cfg.SQLitePath != "" {
		lite, err := storage.NewSQLiteWriter(ctx, cfg.SQLitePath)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.writers = append(s.writers, lite)
	}
	return s, nil
}

// save writes the tables and prints a short preview of each. A database
// failure is logged; a CSV failure is returned.
func (s *sinks) save(ctx context.Context, shopID string, tables ...*models.Table) error {
	for _, t := range tables {
		run := storage.NewRun(t.Name, shopID)
		dest := ""
		for i, w := range s.writers {
			where, err := w.WriteTable(ctx, run, t)
			if err != nil {
				if i == 0 {
					return err
				}
				logger.Error("[storage] %s: %v", t.Name, err)
				continue
			}
			if i == 0 {
				dest = where
			} else {
				logger.Info("[storage] %s stored as run %s", t.Name, where)
			}
		}
		s.printer.Table(t, dest, 5)
	}
	return nil
}

func (s *sinks) Close() {
	for _, w := range s.writers {
		if err := w.Close(); err != nil {
			logger.Warn("[storage] close: %v", err)
		}
	}
}

// readInputs combines positional arguments with the lines of file, if
// given. Blank lines are dropped.
func readInputs(args []string, file string) ([]string, error) {
	out := append([]string(nil), args...)
	if file == "" {
		return out, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}

// parseFilter accepts the query string of a filtered admin list page,
// with or without the leading "?".
func parseFilter(raw string) (url.Values, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "?")
	if raw == "" {
		return nil, nil
	}
	if u, err := url.Parse(raw); err == nil && u.RawQuery != "" {
		raw = u.RawQuery
	}
	q, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", raw, err)
	}
	q.Del("page")
	return q, nil
}
