package probe

import "time"

// Default endpoints. Two independent primaries and two independent
// confirmation resolvers, so no single third party's outage can both raise
// and confirm a false alert.
const (
	gstatic204URL      = "http://www.gstatic.com/generate_204"
	cloudflareTraceURL = "https://www.cloudflare.com/cdn-cgi/trace"
	googleDoHURL       = "https://dns.google/resolve"
	cloudflareDoHURL   = "https://cloudflare-dns.com/dns-query"
	dohQueryDomain     = "example.com"
)

// DefaultRegistry builds the standard probe set.
func DefaultRegistry(timeout time.Duration) *Registry {
	return NewRegistry(
		Probe{
			ID:       "G204",
			Name:     "gstatic generate_204",
			Category: Primary,
			Checker:  NewHTTPProbe("G204", gstatic204URL, HTTPFixture{WantStatus: 204}, timeout),
		},
		Probe{
			ID:       "CFTR",
			Name:     "cloudflare trace",
			Category: Primary,
			Checker:  NewHTTPProbe("CFTR", cloudflareTraceURL, HTTPFixture{WantStatus: 200, WantBody: "ip="}, timeout),
		},
		Probe{
			ID:       "GDOH",
			Name:     "google dns-over-https",
			Category: Confirmation,
			Checker:  NewDoHProbe("GDOH", googleDoHURL, dohQueryDomain, timeout),
		},
		Probe{
			ID:       "CDOH",
			Name:     "cloudflare dns-over-https",
			Category: Confirmation,
			Checker:  NewDoHProbe("CDOH", cloudflareDoHURL, dohQueryDomain, timeout),
		},
	)
}
