package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"admin-exporter/admin"
	"admin-exporter/fetch"
	"admin-exporter/retail"
	"admin-exporter/services"
	"admin-exporter/storage"
)

var (
	lookupFilter  string
	lookupSave    bool
	lookupFile    string
	lookupYes     bool
	retailAccount string
	retailPage    string
	retailCookie  string
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Ad-hoc lookups against the admin and retail APIs",
}

var taxClassMemberCmd = &cobra.Command{
	Use:   "taxclass-member <collection-id> <product-id>",
	Short: "Explain whether a product belongs to a tax class",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()
		e, _, err := newExporter()
		if err != nil {
			return err
		}
		m, err := e.TaxClassMembership(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		services.NewPrinter(os.Stdout).Membership(m)
		return nil
	},
}

var searchOrdersCmd = &cobra.Command{
	Use:   "search-orders <product-title>",
	Short: "Find orders containing a product title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()
		e, _, err := newExporter()
		if err != nil {
			return err
		}
		filter, err := parseFilter(lookupFilter)
		if err != nil {
			return err
		}
		matches, err := e.SearchOrdersByProduct(ctx, args[0], filter)
		if err != nil {
			return err
		}
		services.NewPrinter(os.Stdout).Lines("ORDERS WITH "+args[0], matches, "No orders found")
		return saveLines("order_search_result.txt", matches)
	},
}

var resaveInvoicesCmd = &cobra.Command{
	Use:   "resave-invoices [invoice-number...]",
	Short: "Re-save invoices in the browser so they are regenerated",
	RunE: func(cmd *cobra.Command, args []string) error {
		numbers, err := readInputs(args, lookupFile)
		if err != nil {
			return err
		}
		if len(numbers) == 0 {
			return errors.New("no invoice numbers given")
		}
		if !lookupYes {
			prompt := promptui.Prompt{
				Label:     fmt.Sprintf("Resave %d invoices", len(numbers)),
				IsConfirm: true,
			}
			if _, err := prompt.Run(); err != nil {
				logger.Info("[invoices] Cancelled")
				return nil
			}
		}

		ctx, cancel := commandContext()
		defer cancel()
		e, client, err := newExporter()
		if err != nil {
			return err
		}
		session, err := browserSession(client)
		if err != nil {
			return err
		}
		saver := admin.NewInvoiceSaver(ctx, cfg, logger, session)
		defer saver.Close()

		var lines []string
		failed := 0
		for _, r := range e.ResaveInvoices(ctx, saver, numbers) {
			status := "Resaved (ID " + r.InvoiceID + ")"
			if r.Err != nil {
				failed++
				status = "Failed: " + r.Err.Error()
			}
			lines = append(lines, r.Number+" - "+status)
		}
		services.NewPrinter(os.Stdout).Lines("INVOICE RESAVE", lines, "Nothing to do")
		if failed > 0 {
			return fmt.Errorf("%d of %d invoices failed", failed, len(lines))
		}
		return nil
	},
}

var retailSalesCmd = &cobra.Command{
	Use:   "retail-sales [order-reference...]",
	Short: "Find the retail sale ID synced for each web order",
	RunE: func(cmd *cobra.Command, args []string) error {
		refs, err := readInputs(args, lookupFile)
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			return errors.New("no order references given")
		}

		ctx, cancel := commandContext()
		defer cancel()
		opts := []fetch.Option{
			fetch.WithTimeout(cfg.RequestTimeout()),
			fetch.WithRetry(cfg.MaxRetries, cfg.RetryDelay()),
		}
		if retailCookie != "" {
			opts = append(opts, fetch.WithHeader("Cookie", retailCookie))
		}
		client := retail.NewClient(cfg.RetailBaseURL, logger, opts...)

		account := retailAccount
		if account == "" {
			if retailPage == "" {
				return errors.New("--account or --account-page is required")
			}
			if account, err = client.ResolveAccountID(ctx, retailPage); err != nil {
				return err
			}
			logger.Info("[retail] Account ID %s", account)
		}

		var lines []string
		for _, r := range client.LookupSales(ctx, account, refs) {
			lines = append(lines, retail.FormatLookup(r))
		}
		services.NewPrinter(os.Stdout).Lines("RETAIL SALES", lines, "No references")
		return saveLines("retail_sales.txt", lines)
	},
}

func init() {
	searchOrdersCmd.Flags().StringVar(&lookupFilter, "filter", "", "query string of the filtered orders list")
	searchOrdersCmd.Flags().BoolVar(&lookupSave, "save", false, "also write the matches to a text file")

	resaveInvoicesCmd.Flags().StringVarP(&lookupFile, "file", "f", "", "file with one invoice number per line")
	resaveInvoicesCmd.Flags().BoolVarP(&lookupYes, "yes", "y", false, "skip the confirmation prompt")

	retailSalesCmd.Flags().StringVarP(&lookupFile, "file", "f", "", "file with one order reference per line")
	retailSalesCmd.Flags().StringVar(&retailAccount, "account", "", "retail account ID")
	retailSalesCmd.Flags().StringVar(&retailPage, "account-page", "", "retail page URL showing the account ID")
	retailSalesCmd.Flags().StringVar(&retailCookie, "retail-cookie", "", "Cookie header for the retail back office")
	retailSalesCmd.Flags().BoolVar(&lookupSave, "save", false, "also write the results to a text file")

	lookupCmd.AddCommand(taxClassMemberCmd, searchOrdersCmd, resaveInvoicesCmd, retailSalesCmd)
	rootCmd.AddCommand(lookupCmd)
}

// browserSession is the saved session, or one built from the configured
// cookie header.
func browserSession(client *admin.Client) (*admin.Session, error) {
	if cfg.Cookie != "" {
		return admin.SessionFromCookieHeader(client.BaseURL(), client.Host(), cfg.Cookie), nil
	}
	return admin.LoadSession(cfg.SessionFile)
}

func saveLines(filename string, lines []string) error {
	if !lookupSave {
		return nil
	}
	w, err := storage.NewTXTWriter(cfg.OutputDir)
	if err != nil {
		return err
	}
	path, err := w.WriteLines(filename, lines)
	if err != nil {
		return err
	}
	logger.Info("Saved to %s", path)
	return nil
}
