package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment overrides: ADMINX_BASE_URL -> base_url.
const EnvPrefix = "ADMINX_"

// Config holds all application configuration.
type Config struct {
	BaseURL     string `koanf:"base_url"`
	SessionFile string `koanf:"session_file"`
	Cookie      string `koanf:"cookie"`
	OutputDir   string `koanf:"output_dir"`

	MaxConcurrency  int `koanf:"max_concurrency"`
	RateLimitMs     int `koanf:"rate_limit_ms"`
	MaxRetries      int `koanf:"max_retries"`
	RetryDelayMs    int `koanf:"retry_delay_ms"`
	PageDelayMs     int `koanf:"page_delay_ms"`
	RequestTimeoutS int `koanf:"request_timeout_s"`

	Languages       []string `koanf:"languages"`
	ReviewLanguages []string `koanf:"review_languages"`

	DNSResolverURL string `koanf:"dns_resolver"`
	RetailBaseURL  string `koanf:"retail_base_url"`
	ChromeBin      string `koanf:"chrome_bin"`

	PostgresDSN string `koanf:"postgres_dsn"`
	SQLitePath  string `koanf:"sqlite_path"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		SessionFile: ".admin-session.json",
		OutputDir:   "./output",

		MaxConcurrency:  5,
		RateLimitMs:     0,
		MaxRetries:      3,
		RetryDelayMs:    1000,
		PageDelayMs:     1000,
		RequestTimeoutS: 30,

		DNSResolverURL: "https://dns.google/resolve",
		RetailBaseURL:  "https://us.merchantos.com",

		Languages:       DefaultLanguages(),
		ReviewLanguages: DefaultReviewLanguages(),
	}
}

// DefaultLanguages are the shop languages exported per product.
func DefaultLanguages() []string { return []string{"us", "en", "de", "nl"} }

// DefaultReviewLanguages is the fallback order for review product names.
func DefaultReviewLanguages() []string {
	return []string{"us", "en", "fc", "fr", "be", "nl", "de"}
}

// Load reads the .env file (if any) into the process environment, then the
// YAML config file at path (if it exists), then ADMINX_* overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}

	k := koanf.New(".")
	cfg := Default()
	// Lists are filled after unmarshalling so a shorter file value does not
	// decode on top of the default backing array.
	cfg.Languages, cfg.ReviewLanguages = nil, nil

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: access %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.Languages = splitList(cfg.Languages)
	if len(cfg.Languages) == 0 {
		cfg.Languages = DefaultLanguages()
	}
	cfg.ReviewLanguages = splitList(cfg.ReviewLanguages)
	if len(cfg.ReviewLanguages) == 0 {
		cfg.ReviewLanguages = DefaultReviewLanguages()
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	return cfg, cfg.Validate()
}

// Validate checks numeric bounds. BaseURL is checked by the commands that
// need it.
func (c *Config) Validate() error {
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("config: max_concurrency must be at least 1")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("config: max_retries must be at least 1")
	}
	if c.RateLimitMs < 0 || c.PageDelayMs < 0 || c.RetryDelayMs < 0 {
		return fmt.Errorf("config: delays must be non-negative")
	}
	if c.RequestTimeoutS < 1 {
		return fmt.Errorf("config: request_timeout_s must be at least 1")
	}
	if len(c.Languages) == 0 {
		return fmt.Errorf("config: languages must not be empty")
	}
	return nil
}

// RequireBaseURL returns an error when no admin base URL is configured.
func (c *Config) RequireBaseURL() error {
	if c.BaseURL == "" {
		return fmt.Errorf("config: base_url is required (flag --base-url or %sBASE_URL)", EnvPrefix)
	}
	return nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutS) * time.Second
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

func (c *Config) PageDelay() time.Duration {
	return time.Duration(c.PageDelayMs) * time.Millisecond
}

// splitList accepts either a proper list or a single comma/space separated
// value, which is what an environment override produces.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.FieldsFunc(item, func(r rune) bool {
			return r == ',' || r == ' '
		}) {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
