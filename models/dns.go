package models

import (
	"encoding/json"
	"fmt"
)

type SubDomain struct {
	HostName FlexString `json:"host_name"`
	ShopID   FlexString `json:"shop_id"`
}

type DomainList struct {
	SubDomains List[SubDomain] `json:"sub_domains"`
}

// EmailDNSRecord is a record the platform asks the merchant to publish.
type EmailDNSRecord struct {
	Host string `json:"host"`
	Type string `json:"type"`
	Data string `json:"data"`
}

// EmailDNSSettings is /admin/settings/company/email_dns.json.
type EmailDNSSettings struct {
	Shop struct {
		Data struct {
			EmailValidation struct {
				Domains json.RawMessage `json:"domains"`
			} `json:"email_validation"`
		} `json:"data"`
	} `json:"shop"`
}

// LastDomain returns the last configured email domain and its records.
func (s *EmailDNSSettings) LastDomain() (string, []EmailDNSRecord, error) {
	raw := s.Shop.Data.EmailValidation.Domains
	if !isObject(raw) {
		return "", nil, fmt.Errorf("models: email domains missing from response")
	}
	keys, values, err := orderedObject(raw)
	if err != nil {
		return "", nil, fmt.Errorf("models: decode email domains: %w", err)
	}
	if len(keys) == 0 {
		return "", nil, fmt.Errorf("models: no email domains configured")
	}

	last := len(keys) - 1
	var domain struct {
		DNS []EmailDNSRecord `json:"dns"`
	}
	if err := json.Unmarshal(values[last], &domain); err != nil || domain.DNS == nil {
		return keys[last], nil, fmt.Errorf("models: dns records missing for %s", keys[last])
	}
	return keys[last], domain.DNS, nil
}

// DNSAnswer is one answer of a DNS-over-HTTPS JSON response.
type DNSAnswer struct {
	Name string `json:"name"`
	Type int    `json:"type"`
	TTL  int    `json:"TTL"`
	Data string `json:"data"`
}

type DNSResponse struct {
	Status int         `json:"Status"`
	Answer []DNSAnswer `json:"Answer"`
}
