package registrar

import (
	"context"
	"strings"
)

// LegacyMaxBatch is the most domains the v4 API accepts per call.
const LegacyMaxBatch = 50

// Legacy talks to the name.com v4 API. Prices are reported in dollars.
type Legacy struct {
	BaseURL string

	*transport
}

type legacyResponse struct {
	Results []struct {
		DomainName    string   `json:"domainName"`
		Purchasable   *bool    `json:"purchasable"`
		PurchasePrice *float64 `json:"purchasePrice"`
		RenewalPrice  *float64 `json:"renewalPrice"`
		Currency      string   `json:"currency"`
	} `json:"results"`
}

func (l *Legacy) Variant() Variant { return VariantLegacy }

// Endpoint returns the checkAvailability URL. The base always ends in /v4.
func (l *Legacy) Endpoint() string {
	base := strings.TrimRight(strings.TrimSpace(l.BaseURL), "/")
	if base == "" {
		base = "https://api.name.com"
	}
	if !strings.HasSuffix(base, "/v4") {
		base += "/v4"
	}
	return base + "/domains:checkAvailability"
}

// CheckAvailability issues sequential batches of at most LegacyMaxBatch.
func (l *Legacy) CheckAvailability(ctx context.Context, domains []string) (map[string]Availability, error) {
	domains = normalizeDomains(domains)
	out := map[string]Availability{}
	if len(domains) == 0 {
		return out, nil
	}

	for _, batch := range chunk(domains, LegacyMaxBatch) {
		var resp legacyResponse
		if err := l.post(ctx, VariantLegacy, l.Endpoint(), batch, &resp); err != nil {
			return nil, err
		}
		for _, r := range resp.Results {
			out[strings.ToLower(r.DomainName)] = Availability{
				DomainName:    r.DomainName,
				Available:     r.Purchasable,
				Currency:      r.Currency,
				RegisterPrice: r.PurchasePrice,
				RenewPrice:    r.RenewalPrice,
			}
		}
	}
	return out, nil
}
