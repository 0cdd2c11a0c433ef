package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"admin-exporter/models"
	"admin-exporter/services"
)

var dnsCSV bool

var dnsCmd = &cobra.Command{
	Use:   "dns",
	Short: "Check the shop's DNS records over DNS-over-HTTPS",
}

var dnsDomainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "Check subdomain CNAMEs and root domain A records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()
		checker, err := newDNSChecker()
		if err != nil {
			return err
		}
		checks, err := checker.CheckDomains(ctx)
		if err != nil {
			return err
		}
		services.NewPrinter(os.Stdout).Domains(checks)
		return saveDNSTable(services.DomainTable(checks))
	},
}

var dnsEmailCmd = &cobra.Command{
	Use:   "email",
	Short: "Check email DNS records and the DMARC and SPF policies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()
		checker, err := newDNSChecker()
		if err != nil {
			return err
		}
		report, err := checker.CheckEmail(ctx)
		if err != nil {
			return err
		}
		services.NewPrinter(os.Stdout).Email(report)
		return saveDNSTable(services.EmailTable(report))
	},
}

func init() {
	dnsCmd.PersistentFlags().BoolVar(&dnsCSV, "csv", false, "also export the results as CSV")
	dnsCmd.AddCommand(dnsDomainsCmd, dnsEmailCmd)
	rootCmd.AddCommand(dnsCmd)
}

func newDNSChecker() (*services.DNSChecker, error) {
	_, client, err := newExporter()
	if err != nil {
		return nil, err
	}
	return services.NewDNSChecker(client, newResolver(), logger), nil
}

func saveDNSTable(t *models.Table) error {
	if !dnsCSV {
		return nil
	}
	ctx, cancel := commandContext()
	defer cancel()
	out, err := openSinks(ctx)
	if err != nil {
		return err
	}
	defer out.Close()
	return out.save(ctx, "", t)
}
