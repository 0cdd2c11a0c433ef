package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"admin-exporter/config"
	"admin-exporter/utils"
)

var (
	cfgFile string
	verbose bool
	quiet   bool

	flagBaseURL  string
	flagOutDir   string
	flagCookie   string
	flagPostgres string
	flagSQLite   string

	cfg    *config.Config
	logger *utils.Logger
)

var rootCmd = &cobra.Command{
	Use:   "admin-exporter",
	Short: "Export and check webshop admin data",
	Long: `admin-exporter reads a webshop's admin JSON endpoints with a saved
browser session and flattens products, categories, discounts, reviews,
tax classes, orders and customers into CSV files. It also checks the
shop's domain and email DNS records, looks up invoices and retail sales,
and compares two text datasets.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "admin-exporter.yml", "config file path")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.BoolVarP(&quiet, "quiet", "q", false, "log progress lines instead of drawing a bar")
	pf.StringVar(&flagBaseURL, "base-url", "", "admin base URL, e.g. https://shop.webshopapp.com")
	pf.StringVarP(&flagOutDir, "out", "o", "", "output directory")
	pf.StringVar(&flagCookie, "cookie", "", "raw Cookie header, overrides the saved session")
	pf.StringVar(&flagPostgres, "postgres", "", "also store tables in this PostgreSQL DSN")
	pf.StringVar(&flagSQLite, "sqlite", "", "also store tables in this SQLite file")
}

// setup loads the config for every subcommand and applies flag overrides.
func setup(cmd *cobra.Command, args []string) error {
	logger = utils.NewLogger()
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded
	// .env is read by Load, so LOG_LEVEL may come from there.
	logger.SetDebug(verbose || strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug"))

	overrides := []struct {
		flag  string
		value string
		dst   *string
	}{
		{"base-url", flagBaseURL, &cfg.BaseURL},
		{"out", flagOutDir, &cfg.OutputDir},
		{"cookie", flagCookie, &cfg.Cookie},
		{"postgres", flagPostgres, &cfg.PostgresDSN},
		{"sqlite", flagSQLite, &cfg.SQLitePath},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.dst = o.value
		}
	}
	cfg.BaseURL = trimBaseURL(cfg.BaseURL)
	logger.Debug("[config] base_url=%s output_dir=%s concurrency=%d", cfg.BaseURL, cfg.OutputDir, cfg.MaxConcurrency)
	return nil
}
