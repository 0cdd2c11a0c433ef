package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"admin-exporter/admin"
	"admin-exporter/models"
	"admin-exporter/services"
)

var (
	exportPage       int
	exportFilter     string
	exportLang       string
	exportDefinition string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export admin data to CSV",
}

// exporter produces the tables of one export subcommand.
type exporter func(ctx context.Context, e *services.Exporter, args []string) ([]*models.Table, error)

func single(fn func(*services.Exporter, context.Context) (*models.Table, error)) exporter {
	return func(ctx context.Context, e *services.Exporter, args []string) ([]*models.Table, error) {
		t, err := fn(e, ctx)
		if err != nil {
			return nil, err
		}
		return []*models.Table{t}, nil
	}
}

var exportCommands = []struct {
	use   string
	short string
	args  cobra.PositionalArgs
	run   exporter
}{
	{"categories", "Category tree with children and grandchildren", cobra.NoArgs, single((*services.Exporter).Categories)},
	{"product-categories", "Categories of every product per language", cobra.NoArgs, single((*services.Exporter).ProductCategories)},
	{"custom-fields", "Custom fields of every product", cobra.NoArgs, single((*services.Exporter).CustomFields)},
	{"quantity-discounts", "Quantity discounts of every product", cobra.NoArgs, single((*services.Exporter).QuantityDiscounts)},
	{"related-products", "Related products of every product", cobra.NoArgs, single((*services.Exporter).RelatedProducts)},
	{"discount-codes", "All discount codes", cobra.NoArgs, single((*services.Exporter).DiscountCodes)},
	{"reviews", "All product reviews", cobra.NoArgs, single((*services.Exporter).Reviews)},
	{"taxclass <collection-id>", "Product and filter lists of a tax class collection", cobra.ExactArgs(1),
		func(ctx context.Context, e *services.Exporter, args []string) ([]*models.Table, error) {
			t, err := e.ExportTaxClass(ctx, args[0])
			return []*models.Table{t}, err
		}},
	{"orders", "Payment and region columns of one orders page", cobra.NoArgs,
		func(ctx context.Context, e *services.Exporter, args []string) ([]*models.Table, error) {
			filter, err := parseFilter(exportFilter)
			if err != nil {
				return nil, err
			}
			t, err := e.OrderColumns(ctx, exportPage, filter)
			return []*models.Table{t}, err
		}},
	{"customers", "Billing and shipping regions of one customers page", cobra.NoArgs,
		func(ctx context.Context, e *services.Exporter, args []string) ([]*models.Table, error) {
			filter, err := parseFilter(exportFilter)
			if err != nil {
				return nil, err
			}
			t, err := e.CustomerAddresses(ctx, exportPage, filter)
			return []*models.Table{t}, err
		}},
	{"checkout", "Products, discount rules and shipment of the current checkout", cobra.NoArgs,
		func(ctx context.Context, e *services.Exporter, args []string) ([]*models.Table, error) {
			return e.Checkout(ctx, exportLang)
		}},
	{"custom", "Any list endpoint described by a YAML dataset definition", cobra.NoArgs,
		func(ctx context.Context, e *services.Exporter, args []string) ([]*models.Table, error) {
			if exportDefinition == "" {
				return nil, errors.New("--definition is required")
			}
			def, err := services.LoadDatasetDefinition(exportDefinition)
			if err != nil {
				return nil, err
			}
			t, err := e.CustomDataset(ctx, def)
			return []*models.Table{t}, err
		}},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	for _, ec := range exportCommands {
		run := ec.run
		sub := &cobra.Command{
			Use:   ec.use,
			Short: ec.short,
			Args:  ec.args,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runExport(cmd, args, run)
			},
		}
		switch sub.Name() {
		case "orders", "customers":
			sub.Flags().IntVar(&exportPage, "page", 1, "list page to export")
			sub.Flags().StringVar(&exportFilter, "filter", "", "query string of the filtered admin list, e.g. status=paid")
		case "checkout":
			sub.Flags().StringVar(&exportLang, "lang", "", "storefront language prefix, e.g. nl")
		case "custom":
			sub.Flags().StringVarP(&exportDefinition, "definition", "d", "", "dataset definition YAML file")
		}
		exportCmd.AddCommand(sub)
	}
}

func runExport(cmd *cobra.Command, args []string, run exporter) error {
	ctx, cancel := commandContext()
	defer cancel()

	e, client, err := newExporter()
	if err != nil {
		return err
	}
	out, err := openSinks(ctx)
	if err != nil {
		return err
	}
	defer out.Close()

	tables, err := run(ctx, e, args)
	if err != nil {
		if errors.Is(err, admin.ErrUnauthorized) {
			return fmt.Errorf("%w\nRun `admin-exporter login` to refresh the session", err)
		}
		return err
	}

	shopID := ""
	if len(out.writers) > 1 {
		shopID = client.ShopID(ctx)
	}
	return out.save(ctx, shopID, tables...)
}
