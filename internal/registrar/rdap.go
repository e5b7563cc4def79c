package registrar

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/openrdap/rdap"
)

// RDAP answers availability from registry RDAP servers. It reports no
// prices and needs no credentials.
type RDAP struct {
	Client  *rdap.Client
	Timeout time.Duration
	// Server pins every lookup to one RDAP base URL instead of the IANA
	// bootstrap registry.
	Server *url.URL
}

// NewRDAP returns an RDAP client using IANA bootstrap.
func NewRDAP(timeout time.Duration) *RDAP {
	return &RDAP{Client: &rdap.Client{}, Timeout: defaultTimeout(timeout)}
}

func (r *RDAP) Variant() Variant { return VariantRDAP }

// CheckAvailability looks each domain up in turn. A domain whose lookup
// fails for any reason other than "not found" is left out of the result.
func (r *RDAP) CheckAvailability(ctx context.Context, domains []string) (map[string]Availability, error) {
	domains = normalizeDomains(domains)
	out := map[string]Availability{}

	client := r.Client
	if client == nil {
		client = &rdap.Client{}
	}

	for _, name := range domains {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req := rdap.NewDomainRequest(name)
		if r.Server != nil {
			req = req.WithServer(r.Server)
		}
		req.Timeout = defaultTimeout(r.Timeout)
		req = req.WithContext(ctx)

		resp, err := client.Do(req)
		switch {
		case isNotFound(err, resp):
			out[name] = Availability{DomainName: name, Available: boolPtr(true)}
		case err != nil:
			continue
		default:
			if _, ok := resp.Object.(*rdap.Domain); ok {
				out[name] = Availability{DomainName: name, Available: boolPtr(false)}
			}
		}
	}
	return out, nil
}

func isNotFound(err error, resp *rdap.Response) bool {
	if err == nil {
		return false
	}
	var clientErr *rdap.ClientError
	if errors.As(err, &clientErr) && clientErr.Type == rdap.ObjectDoesNotExist {
		return true
	}
	if resp != nil {
		for _, hr := range resp.HTTP {
			if hr != nil && hr.Response != nil && hr.Response.StatusCode == http.StatusNotFound {
				return true
			}
		}
	}
	return false
}
