package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"admin-exporter/admin"
	"admin-exporter/dns"
	"admin-exporter/models"
	"admin-exporter/utils"
)

// DNSLookup resolves DNS records. *dns.Resolver implements it.
type DNSLookup interface {
	Resolve(ctx context.Context, name, recordType string) ([]models.DNSAnswer, error)
	QueryURL(name, recordType string) string
}

const (
	noCNAME       = "No CNAME record found"
	errCNAME      = "Error fetching CNAME record"
	noARecord     = "No A record found"
	errARecord    = "Error fetching A record"
	noDMARC       = "No DMARC record found"
	noSPF         = "No SPF record found"
	errDMARC      = "Error fetching DMARC policy"
	errSPF        = "Error fetching SPF policy"
	errTTL        = "Error fetching TTL"
	ttlNotPresent = "N/A"
)

// platformRecords are the A records and CNAME target each hosting platform
// expects, keyed by the second label of the admin host.
var platformRecords = map[string]struct {
	A     []string
	CNAME func(shopID string) string
}{
	"shoplightspeed": {
		A:     []string{"162.159.129.85", "162.159.130.85"},
		CNAME: func(id string) string { return id + ".shoplightspeed.com" },
	},
	"webshopapp": {
		A:     []string{"104.16.8.49", "104.17.156.30"},
		CNAME: func(id string) string { return id + ".shops.webshopapp.com" },
	},
}

// DMARCSuggestions are the example records offered when no DMARC policy
// is published.
var DMARCSuggestions = []string{"v=DMARC1; p=none;", "v=DMARC1; p=reject;", "v=DMARC1; p=quarantine;"}

// DomainCheck is the DNS state of one shop subdomain and its root domain.
type DomainCheck struct {
	Subdomain     string
	ShopID        string
	CNAME         string
	ExpectedCNAME string
	CNAMEMatch    bool
	CNAMEQuery    string

	Domain      string
	ARecords    string
	ExpectedA   []string
	MissingA    []string
	UnexpectedA []string
	AQuery      string
}

// AOK reports whether the root domain has exactly the expected A records.
func (c DomainCheck) AOK() bool { return len(c.MissingA) == 0 && len(c.UnexpectedA) == 0 }

// DNSChecker compares live DNS with what the shop's domains and email
// settings require.
type DNSChecker struct {
	client   *admin.Client
	resolver DNSLookup
	logger   *utils.Logger
	platform string
}

func NewDNSChecker(client *admin.Client, resolver DNSLookup, logger *utils.Logger) *DNSChecker {
	return &DNSChecker{client: client, resolver: resolver, logger: logger, platform: Platform(client.Host())}
}

// Platform returns the second label of host ("webshopapp" for
// shop.webshopapp.com).
func Platform(host string) string {
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// CheckDomains checks every subdomain with both a host name and a shop ID.
func (d *DNSChecker) CheckDomains(ctx context.Context) ([]DomainCheck, error) {
	subs, err := d.client.Domains(ctx)
	if err != nil {
		return nil, fmt.Errorf("services: domains: %w", err)
	}
	expected, known := platformRecords[d.platform]
	if !known {
		d.logger.Warn("[dns] Unknown platform %q, expected records are not checked", d.platform)
	}

	var checks []DomainCheck
	for _, sub := range subs {
		if sub.HostName == "" || sub.ShopID == "" {
			continue
		}
		if ctx.Err() != nil {
			return checks, ctx.Err()
		}
		c := DomainCheck{
			Subdomain: string(sub.HostName),
			ShopID:    string(sub.ShopID),
			Domain:    dns.RootDomain(string(sub.HostName)),
		}
		if known {
			c.ExpectedCNAME = expected.CNAME(c.ShopID)
			c.ExpectedA = expected.A
		}
		c.CNAMEQuery = d.resolver.QueryURL(c.Subdomain, "CNAME")
		c.AQuery = d.resolver.QueryURL(c.Domain, "A")

		c.CNAME = d.firstCNAME(ctx, c.Subdomain)
		c.CNAMEMatch = known && dns.TrimDot(c.CNAME) == dns.TrimDot(c.ExpectedCNAME)

		var live []string
		c.ARecords, live = d.aRecords(ctx, c.Domain)
		for _, want := range c.ExpectedA {
			if !slices.Contains(live, want) {
				c.MissingA = append(c.MissingA, want)
			}
		}
		if known {
			for _, got := range live {
				if !slices.Contains(c.ExpectedA, got) {
					c.UnexpectedA = append(c.UnexpectedA, got)
				}
			}
		}
		checks = append(checks, c)
	}
	d.logger.Info("[dns] Checked %d subdomains", len(checks))
	return checks, nil
}

func (d *DNSChecker) firstCNAME(ctx context.Context, host string) string {
	answers, err := d.resolver.Resolve(ctx, host, "CNAME")
	if err != nil {
		d.logger.Warn("[dns] CNAME lookup for %s failed: %v", host, err)
		return errCNAME
	}
	if len(answers) == 0 {
		return noCNAME
	}
	return answers[0].Data
}

// aRecords returns the display text of the A lookup and the live
// addresses. No answer, or a failed lookup, yields no addresses.
func (d *DNSChecker) aRecords(ctx context.Context, domain string) (string, []string) {
	answers, err := d.resolver.Resolve(ctx, domain, "A")
	if err != nil {
		d.logger.Warn("[dns] A lookup for %s failed: %v", domain, err)
		return errARecord, nil
	}
	if len(answers) == 0 {
		return noARecord, nil
	}
	live := make([]string, 0, len(answers))
	for _, a := range answers {
		live = append(live, strings.TrimSpace(a.Data))
	}
	return strings.Join(live, ", "), live
}

// DomainTable flattens domain checks for export.
func DomainTable(checks []DomainCheck) *models.Table {
	t := models.NewTable("domain_dns", "domain_dns_check.csv",
		"Subdomain", "Shop_ID", "CNAME", "CNAME_OK", "Required_CNAME",
		"Domain", "A_Records", "A_OK", "Missing_A", "Unexpected_A")
	for _, c := range checks {
		t.AddRow(c.Subdomain, c.ShopID, c.CNAME, yesNo(c.CNAMEMatch), c.ExpectedCNAME,
			c.Domain, c.ARecords, yesNo(c.AOK()), strings.Join(c.MissingA, ", "), strings.Join(c.UnexpectedA, ", "))
	}
	return t
}

// EmailRecordCheck is one required email DNS record against live DNS.
type EmailRecordCheck struct {
	Host      string
	Type      string
	Required  string
	CNAME     string
	Match     bool
	TTL       string
	DKIMQuery string
	Query     string
}

// EmailCheck is the email DNS report of the last configured domain.
type EmailCheck struct {
	Domain      string
	Records     []EmailRecordCheck
	RootDomain  string
	DMARC       string
	DMARCFound  bool
	DMARCQuery  string
	SPF         string
	SPFFound    bool
	SPFQuery    string
	Suggestions []string
}

// CheckEmail checks the records of the last email domain plus the DMARC
// and SPF policies of its root domain.
func (d *DNSChecker) CheckEmail(ctx context.Context) (*EmailCheck, error) {
	settings, err := d.client.EmailDNS(ctx)
	if err != nil {
		return nil, fmt.Errorf("services: email dns: %w", err)
	}
	domain, records, err := settings.LastDomain()
	if err != nil {
		return nil, fmt.Errorf("services: email dns: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("services: email dns: no records for %s", domain)
	}

	report := &EmailCheck{Domain: domain}
	for i, r := range records {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		rc := EmailRecordCheck{
			Host:     r.Host,
			Type:     r.Type,
			Required: r.Data,
			Query:    d.resolver.QueryURL(r.Host, "CNAME"),
		}
		rc.CNAME = d.joinedCNAME(ctx, r.Host)
		rc.Match = dns.TrimDot(r.Data) == dns.TrimDot(rc.CNAME)
		if i > 0 {
			rc.DKIMQuery = d.resolver.QueryURL(r.Host, "TXT")
		}
		rc.TTL = d.ttl(ctx, r.Host, r.Type)
		report.Records = append(report.Records, rc)
	}

	report.RootDomain = dns.RootDomain(records[0].Host)
	dmarcHost := "_dmarc." + report.RootDomain
	report.DMARCQuery = d.resolver.QueryURL(dmarcHost, "TXT")
	dmarc, err := d.policy(ctx, dmarcHost, "v=DMARC1")
	switch {
	case err != nil:
		report.DMARC = errDMARC
	case dmarc == "":
		report.DMARC = noDMARC
		report.Suggestions = DMARCSuggestions
	default:
		report.DMARC, report.DMARCFound = dmarc, true
	}

	report.SPFQuery = d.resolver.QueryURL(report.RootDomain, "TXT")
	spf, err := d.policy(ctx, report.RootDomain, "v=spf1")
	switch {
	case err != nil:
		report.SPF = errSPF
	case spf == "":
		report.SPF = noSPF
	default:
		report.SPF, report.SPFFound = spf, true
	}
	return report, nil
}

func (d *DNSChecker) joinedCNAME(ctx context.Context, host string) string {
	answers, err := d.resolver.Resolve(ctx, host, "CNAME")
	if err != nil {
		d.logger.Warn("[dns] CNAME lookup for %s failed: %v", host, err)
		return errCNAME
	}
	if len(answers) == 0 {
		return noCNAME
	}
	out := make([]string, 0, len(answers))
	for _, a := range answers {
		out = append(out, dns.TrimDot(a.Data))
	}
	return strings.Join(out, ", ")
}

func (d *DNSChecker) ttl(ctx context.Context, host, recordType string) string {
	answers, err := d.resolver.Resolve(ctx, host, recordType)
	if err != nil {
		return errTTL
	}
	if len(answers) == 0 || answers[0].TTL == 0 {
		return ttlNotPresent
	}
	return fmt.Sprint(answers[0].TTL)
}

// policy returns the first TXT record of name starting with prefix, or ""
// when there is none. TXT data may come back quoted.
func (d *DNSChecker) policy(ctx context.Context, name, prefix string) (string, error) {
	answers, err := d.resolver.Resolve(ctx, name, "TXT")
	if err != nil {
		d.logger.Warn("[dns] TXT lookup for %s failed: %v", name, err)
		return "", err
	}
	for _, a := range answers {
		data := strings.Trim(a.Data, `"`)
		if strings.HasPrefix(data, prefix) {
			return data, nil
		}
	}
	return "", nil
}

// EmailTable flattens the email record checks for export.
func EmailTable(c *EmailCheck) *models.Table {
	t := models.NewTable("email_dns", "email_dns_check.csv",
		"Host", "Type", "CNAME_Record", "Match", "Required_CNAME", "DKIM_Query", "TTL")
	for _, r := range c.Records {
		t.AddRow(r.Host, r.Type, r.CNAME, yesNo(r.Match), r.Required, r.DKIMQuery, r.TTL)
	}
	return t
}

func yesNo(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
