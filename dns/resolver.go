// Package dns queries a DNS-over-HTTPS JSON resolver such as
// https://dns.google/resolve.
package dns

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"admin-exporter/fetch"
	"admin-exporter/models"
)

// Resolver looks up records through a DoH JSON endpoint.
type Resolver struct {
	endpoint string
	http     *fetch.Client
}

// NewResolver uses endpoint (e.g. https://dns.google/resolve).
func NewResolver(endpoint string, opts ...fetch.Option) *Resolver {
	opts = append([]fetch.Option{fetch.WithHeader("Accept", "application/dns-json")}, opts...)
	return &Resolver{endpoint: endpoint, http: fetch.New(opts...)}
}

// QueryURL is the resolver URL for name and record type. Reports print it
// so the query can be opened by hand.
func (r *Resolver) QueryURL(name, recordType string) string {
	return r.endpoint + "?" + url.Values{"name": {name}, "type": {recordType}}.Encode()
}

// Resolve returns the answers for name and record type. An NXDOMAIN or an
// empty answer section yields no answers and no error.
func (r *Resolver) Resolve(ctx context.Context, name, recordType string) ([]models.DNSAnswer, error) {
	var resp models.DNSResponse
	if err := r.http.GetJSON(ctx, r.QueryURL(name, recordType), &resp); err != nil {
		return nil, fmt.Errorf("dns: resolve %s %s: %w", recordType, name, err)
	}
	return resp.Answer, nil
}

// TrimDot strips the trailing root dot of a DNS name.
func TrimDot(name string) string {
	return strings.TrimSuffix(name, ".")
}

// RootDomain drops leading labels: five or more labels keep the last four,
// four keep three, three keep two, anything shorter is returned whole.
func RootDomain(host string) string {
	parts := strings.Split(host, ".")
	switch {
	case len(parts) >= 5:
		return strings.Join(parts[len(parts)-4:], ".")
	case len(parts) == 4:
		return strings.Join(parts[len(parts)-3:], ".")
	case len(parts) == 3:
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return host
}
