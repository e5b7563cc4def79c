package registrar

import (
	"context"
	"strings"
)

// Current talks to the name.com core API. Prices arrive in cents and are
// converted to dollars here.
type Current struct {
	BaseURL string
	// MaxBatch splits large lookups. Zero sends one request.
	MaxBatch int

	*transport
}

type currentResponse struct {
	Results []struct {
		DomainName    string   `json:"domainName"`
		Available     *bool    `json:"available"`
		Premium       *bool    `json:"premium"`
		PurchasePrice *float64 `json:"purchasePrice"`
		RenewalPrice  *float64 `json:"renewalPrice"`
	} `json:"results"`
}

func (c *Current) Variant() Variant { return VariantCore }

// Endpoint returns the checkAvailability URL.
func (c *Current) Endpoint() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = "https://api.name.com"
	}
	return base + "/domains:checkAvailability"
}

func (c *Current) CheckAvailability(ctx context.Context, domains []string) (map[string]Availability, error) {
	domains = normalizeDomains(domains)
	out := map[string]Availability{}
	if len(domains) == 0 {
		return out, nil
	}

	for _, batch := range chunk(domains, c.MaxBatch) {
		var resp currentResponse
		if err := c.post(ctx, VariantCore, c.Endpoint(), batch, &resp); err != nil {
			return nil, err
		}
		for _, r := range resp.Results {
			out[strings.ToLower(r.DomainName)] = Availability{
				DomainName:    r.DomainName,
				Available:     r.Available,
				Premium:       r.Premium,
				Currency:      "USD",
				RegisterPrice: cents(r.PurchasePrice),
				RenewPrice:    cents(r.RenewalPrice),
			}
		}
	}
	return out, nil
}

func cents(v *float64) *float64 {
	if v == nil {
		return nil
	}
	dollars := *v / 100
	return &dollars
}
