package services

import (
	"fmt"
	"io"
	"strings"

	"admin-exporter/models"
)

const (
	okMark  = "\033[1;32m✔\033[0m"
	badMark = "\033[1;31m✘\033[0m"
)

// Printer writes the lookup reports to a terminal.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) banner(title string) {
	sep := strings.Repeat("═", 54)
	fmt.Fprintf(p.w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(p.w, "\033[1;35m  %s\033[0m\n", title)
	fmt.Fprintf(p.w, "\033[1;35m%s\033[0m\n\n", sep)
}

func (p *Printer) section(title string) {
	fmt.Fprintf(p.w, "\033[1;33m  %s\033[0m\n", title)
	fmt.Fprintf(p.w, "  %s\n", strings.Repeat("─", 54))
}

func (p *Printer) footer() {
	fmt.Fprintf(p.w, "\n\033[1;35m%s\033[0m\n\n", strings.Repeat("═", 54))
}

func mark(ok bool) string {
	if ok {
		return okMark
	}
	return badMark
}

// Domains prints the subdomain CNAME and root domain A record checks.
func (p *Printer) Domains(checks []DomainCheck) {
	p.banner("DOMAIN DNS CHECK")
	if len(checks) == 0 {
		fmt.Fprintf(p.w, "  No subdomains with a shop ID found\n")
	}
	for _, c := range checks {
		p.section(c.Subdomain)
		fmt.Fprintf(p.w, "  CNAME    : %s %s\n", c.CNAME, mark(c.CNAMEMatch))
		if !c.CNAMEMatch && c.ExpectedCNAME != "" {
			fmt.Fprintf(p.w, "  Required CNAME Record: %s\n", c.ExpectedCNAME)
		}
		fmt.Fprintf(p.w, "  Query    : %s\n", c.CNAMEQuery)
		fmt.Fprintf(p.w, "  Domain   : %s\n", c.Domain)
		fmt.Fprintf(p.w, "  A Record : %s %s\n", c.ARecords, mark(c.AOK()))
		if !c.AOK() && len(c.ExpectedA) > 0 {
			fmt.Fprintf(p.w, "  Required A Records: %s\n", strings.Join(c.ExpectedA, ", "))
		}
		if len(c.UnexpectedA) > 0 {
			fmt.Fprintf(p.w, "  Conflict: Unexpected A Records found - %s\n", strings.Join(c.UnexpectedA, ", "))
		}
		fmt.Fprintf(p.w, "  Query    : %s\n\n", c.AQuery)
	}
	p.footer()
}

// Email prints the email DNS records and the DMARC and SPF policies.
func (p *Printer) Email(c *EmailCheck) {
	p.banner("EMAIL DNS CHECK: " + c.Domain)
	p.section("Records")
	for _, r := range c.Records {
		fmt.Fprintf(p.w, "  %-40s %-6s %s %s\n", truncate(r.Host, 40), r.Type, r.CNAME, mark(r.Match))
		if !r.Match {
			fmt.Fprintf(p.w, "      Required CNAME: %s\n", r.Required)
		}
		if r.DKIMQuery != "" {
			fmt.Fprintf(p.w, "      Check DKIM: %s\n", r.DKIMQuery)
		}
		fmt.Fprintf(p.w, "      TTL: %s\n", r.TTL)
	}
	fmt.Fprintln(p.w)

	p.section("DMARC Policy")
	fmt.Fprintf(p.w, "  Domain: %s\n", c.RootDomain)
	fmt.Fprintf(p.w, "  %s %s\n", c.DMARC, mark(c.DMARCFound))
	fmt.Fprintf(p.w, "  Query: %s\n", c.DMARCQuery)
	if len(c.Suggestions) > 0 {
		fmt.Fprintf(p.w, "\n  Example of how to add the DMARC policy:\n")
		fmt.Fprintf(p.w, "  %-12s %-8s %s\n", "Record Type", "Name", "Value")
		for _, s := range c.Suggestions {
			fmt.Fprintf(p.w, "  %-12s %-8s %s\n", "TXT", "_dmarc", s)
		}
	}
	fmt.Fprintln(p.w)

	p.section("SPF Policy")
	fmt.Fprintf(p.w, "  %s %s\n", c.SPF, mark(c.SPFFound))
	fmt.Fprintf(p.w, "  Query: %s\n", c.SPFQuery)
	p.footer()
}

// Membership prints why a product is, or is not, in a tax class.
func (p *Printer) Membership(m *Membership) {
	p.banner(fmt.Sprintf("TAX CLASS %s", m.CollectionID))
	if !m.Member() {
		fmt.Fprintf(p.w, "  Product ID: %s is not part of this tax class %s\n", m.ProductID, badMark)
	} else {
		fmt.Fprintf(p.w, "  Product ID: %s is part of this tax class %s\n", m.ProductID, okMark)
		for _, r := range m.Reasons {
			fmt.Fprintf(p.w, "  • %s\n", r)
		}
	}
	p.footer()
}

// Lines prints a titled list, or empty when there is nothing to show.
func (p *Printer) Lines(title string, lines []string, empty string) {
	p.banner(title)
	if len(lines) == 0 {
		fmt.Fprintf(p.w, "  %s\n", empty)
	}
	for i, l := range lines {
		fmt.Fprintf(p.w, "  \033[1m%d.\033[0m %s\n", i+1, l)
	}
	p.footer()
}

// Table prints a short preview of a table followed by where it was written.
func (p *Printer) Table(t *models.Table, dest string, preview int) {
	p.section(fmt.Sprintf("%s (%d rows)", t.Name, t.Len()))
	fmt.Fprintf(p.w, "  %s\n", truncate(strings.Join(t.Header, " | "), 100))
	for i, row := range t.Rows {
		if i == preview {
			fmt.Fprintf(p.w, "  ... %d more\n", t.Len()-preview)
			break
		}
		fmt.Fprintf(p.w, "  %s\n", truncate(strings.Join(row, " | "), 100))
	}
	if dest != "" {
		fmt.Fprintf(p.w, "  Saved to %s\n", dest)
	}
	fmt.Fprintln(p.w)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
