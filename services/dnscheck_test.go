package services

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"

	"admin-exporter/models"
	"admin-exporter/utils"
)

type fakeDNS struct {
	answers map[string][]models.DNSAnswer
	fail    map[string]bool
}

func (f *fakeDNS) Resolve(ctx context.Context, name, recordType string) ([]models.DNSAnswer, error) {
	key := recordType + " " + name
	if f.fail[key] {
		return nil, errors.New("resolver unavailable")
	}
	return f.answers[key], nil
}

func (f *fakeDNS) QueryURL(name, recordType string) string {
	return "https://dns.test/resolve?name=" + name + "&type=" + recordType
}

func newTestChecker(t *testing.T, mux *http.ServeMux, resolver DNSLookup) *DNSChecker {
	t.Helper()
	e := newTestExporter(t, mux)
	c := NewDNSChecker(e.client, resolver, utils.NewDiscardLogger())
	c.platform = "webshopapp"
	return c
}

func TestCheckDomains(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/domains.json", serveJSON(`{"sub_domains": [
		{"host_name": "www.example.com", "shop_id": 42},
		{"host_name": "shop.example.co.uk", "shop_id": 43},
		{"host_name": "", "shop_id": 44},
		{"host_name": "old.example.com", "shop_id": null}
	]}`))
	resolver := &fakeDNS{
		answers: map[string][]models.DNSAnswer{
			"CNAME www.example.com":    {{Data: "42.shops.webshopapp.com."}},
			"A example.com":            {{Data: "104.16.8.49"}, {Data: "104.17.156.30"}},
			"CNAME shop.example.co.uk": {{Data: "other.host.net."}},
			"A example.co.uk":          {{Data: "104.16.8.49"}, {Data: "1.2.3.4"}},
		},
	}
	checks, err := newTestChecker(t, mux, resolver).CheckDomains(context.Background())
	if err != nil {
		t.Fatalf("CheckDomains: %v", err)
	}
	if len(checks) != 2 {
		t.Fatalf("checks = %+v; want 2", checks)
	}

	www := checks[0]
	if !www.CNAMEMatch || !www.AOK() || www.Domain != "example.com" {
		t.Errorf("www = %+v", www)
	}
	shop := checks[1]
	if shop.CNAMEMatch || shop.ExpectedCNAME != "43.shops.webshopapp.com" {
		t.Errorf("shop CNAME = %+v", shop)
	}
	if !reflect.DeepEqual(shop.MissingA, []string{"104.17.156.30"}) ||
		!reflect.DeepEqual(shop.UnexpectedA, []string{"1.2.3.4"}) {
		t.Errorf("shop A = missing %v unexpected %v", shop.MissingA, shop.UnexpectedA)
	}

	table := DomainTable(checks)
	if table.Filename != "domain_dns_check.csv" || table.Rows[1][7] != "no" {
		t.Errorf("table = %q %v", table.Filename, table.Rows)
	}
}

func TestCheckDomainsFailedLookup(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/domains.json", serveJSON(`{"sub_domains": {"1": {"host_name": "www.example.com", "shop_id": 42}}}`))
	resolver := &fakeDNS{fail: map[string]bool{"CNAME www.example.com": true, "A example.com": true}}

	checks, err := newTestChecker(t, mux, resolver).CheckDomains(context.Background())
	if err != nil {
		t.Fatalf("CheckDomains: %v", err)
	}
	c := checks[0]
	if c.CNAME != errCNAME || c.ARecords != errARecord {
		t.Errorf("texts = %q, %q", c.CNAME, c.ARecords)
	}
	if len(c.MissingA) != 2 || len(c.UnexpectedA) != 0 {
		t.Errorf("missing %v unexpected %v", c.MissingA, c.UnexpectedA)
	}
}

func TestCheckDomainsUnknownPlatform(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/domains.json", serveJSON(`{"sub_domains": [{"host_name": "www.example.com", "shop_id": 42}]}`))
	resolver := &fakeDNS{answers: map[string][]models.DNSAnswer{"A example.com": {{Data: "9.9.9.9"}}}}
	checker := newTestChecker(t, mux, resolver)
	checker.platform = "localhost"

	checks, err := checker.CheckDomains(context.Background())
	if err != nil {
		t.Fatalf("CheckDomains: %v", err)
	}
	if c := checks[0]; c.ExpectedCNAME != "" || !c.AOK() || c.CNAMEMatch {
		t.Errorf("check = %+v", c)
	}
}

func emailMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/settings/company/email_dns.json", serveJSON(`{"shop": {"data": {"email_validation": {"domains": {
		"old.com": {"dns": []},
		"example.com": {"dns": [
			{"host": "em.example.com", "type": "CNAME", "data": "u1.wl.sendgrid.net"},
			{"host": "s1._domainkey.example.com", "type": "CNAME", "data": "s1.domainkey.u1.wl.sendgrid.net."}
		]}}}}}}`))
	return mux
}

func TestCheckEmail(t *testing.T) {
	resolver := &fakeDNS{
		answers: map[string][]models.DNSAnswer{
			"CNAME em.example.com":            {{Data: "u1.wl.sendgrid.net.", TTL: 300}},
			"CNAME s1._domainkey.example.com": {{Data: "wrong.example.net."}},
			"TXT example.com":                 {{Data: `"google-site-verification=abc"`}, {Data: `"v=spf1 include:sendgrid.net ~all"`}},
		},
	}
	report, err := newTestChecker(t, emailMux(), resolver).CheckEmail(context.Background())
	if err != nil {
		t.Fatalf("CheckEmail: %v", err)
	}
	if report.Domain != "example.com" || report.RootDomain != "example.com" {
		t.Errorf("domain = %q root = %q", report.Domain, report.RootDomain)
	}
	if len(report.Records) != 2 {
		t.Fatalf("records = %+v", report.Records)
	}
	first, second := report.Records[0], report.Records[1]
	if !first.Match || first.TTL != "300" || first.DKIMQuery != "" {
		t.Errorf("first = %+v", first)
	}
	if second.Match || second.CNAME != "wrong.example.net" || second.DKIMQuery == "" || second.TTL != ttlNotPresent {
		t.Errorf("second = %+v", second)
	}
	if report.DMARCFound || report.DMARC != noDMARC {
		t.Errorf("DMARC = %q found %v", report.DMARC, report.DMARCFound)
	}
	if !reflect.DeepEqual(report.Suggestions, DMARCSuggestions) {
		t.Errorf("suggestions = %v", report.Suggestions)
	}
	if !report.SPFFound || report.SPF != "v=spf1 include:sendgrid.net ~all" {
		t.Errorf("SPF = %q found %v", report.SPF, report.SPFFound)
	}
	if got := EmailTable(report).Rows[1][3]; got != "no" {
		t.Errorf("match column = %q", got)
	}
}

func TestCheckEmailWithDMARC(t *testing.T) {
	resolver := &fakeDNS{
		answers: map[string][]models.DNSAnswer{
			"TXT _dmarc.example.com": {{Data: `"v=DMARC1; p=reject;"`}},
		},
	}
	report, err := newTestChecker(t, emailMux(), resolver).CheckEmail(context.Background())
	if err != nil {
		t.Fatalf("CheckEmail: %v", err)
	}
	if !report.DMARCFound || report.DMARC != "v=DMARC1; p=reject;" || report.Suggestions != nil {
		t.Errorf("report = %+v", report)
	}
	if report.Records[0].CNAME != noCNAME || report.SPF != noSPF {
		t.Errorf("cname %q spf %q", report.Records[0].CNAME, report.SPF)
	}
}

func TestCheckEmailPolicyLookupFails(t *testing.T) {
	resolver := &fakeDNS{fail: map[string]bool{"TXT _dmarc.example.com": true, "TXT example.com": true}}
	report, err := newTestChecker(t, emailMux(), resolver).CheckEmail(context.Background())
	if err != nil {
		t.Fatalf("CheckEmail: %v", err)
	}
	if report.DMARC != "Error fetching DMARC policy" || report.DMARCFound {
		t.Errorf("DMARC = %q found %v", report.DMARC, report.DMARCFound)
	}
	if report.Suggestions != nil {
		t.Errorf("suggestions = %v; want none", report.Suggestions)
	}
	if report.SPF != "Error fetching SPF policy" || report.SPFFound {
		t.Errorf("SPF = %q found %v", report.SPF, report.SPFFound)
	}
}

func TestPlatform(t *testing.T) {
	tests := map[string]string{
		"shop.webshopapp.com":      "webshopapp",
		"admin.shoplightspeed.com": "shoplightspeed",
		"localhost":                "",
	}
	for host, want := range tests {
		if got := Platform(host); got != want {
			t.Errorf("Platform(%q) = %q; want %q", host, got, want)
		}
	}
}
