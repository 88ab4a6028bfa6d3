package probe

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
)

// DoHProbe resolves a well-known name through a public DNS-over-HTTPS
// resolver (JSON API). It is deliberately independent of whatever endpoint
// a primary probe just failed against: a different host, a different
// protocol layer, a different third party.
type DoHProbe struct {
	ID       string
	Endpoint string // e.g. https://dns.google/resolve
	Query    string // domain to resolve
	Client   *http.Client
	Resolver *net.Resolver
	Timeout  time.Duration
}

func NewDoHProbe(id, endpoint, query string, timeout time.Duration) *DoHProbe {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &DoHProbe{
		ID:       id,
		Endpoint: endpoint,
		Query:    query,
		Client:   &http.Client{Timeout: timeout},
		Resolver: net.DefaultResolver,
		Timeout:  timeout,
	}
}

// dohAnswer is the subset of the RFC 8427-style JSON body we validate.
type dohAnswer struct {
	Status int `json:"Status"`
	Answer []struct {
		Data string `json:"data"`
	} `json:"Answer"`
}

func (p *DoHProbe) Check(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	host := hostOf(p.Endpoint)
	if host == "" {
		return Result{OK: false, Diag: Diagnostic(p.ID, SuffixTransport)}
	}
	if !isLiteralIP(host) {
		if _, err := p.Resolver.LookupHost(ctx, host); err != nil {
			if suffix := classify(err); suffix == SuffixTimeout {
				return Result{OK: false, Diag: Diagnostic(p.ID, SuffixTimeout)}
			}
			return Result{OK: false, Diag: Diagnostic(p.ID, SuffixDNS)}
		}
	}

	q := url.Values{}
	q.Set("name", p.Query)
	q.Set("type", "A")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Result{OK: false, Diag: Diagnostic(p.ID, SuffixTransport)}
	}
	req.Header.Set("Accept", "application/dns-json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return Result{OK: false, Diag: Diagnostic(p.ID, classify(err))}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{OK: false, Diag: Diagnostic(p.ID, SuffixHTTPStatus)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return Result{OK: false, Diag: Diagnostic(p.ID, classify(err))}
	}
	var ans dohAnswer
	if err := json.Unmarshal(body, &ans); err != nil {
		return Result{OK: false, Diag: Diagnostic(p.ID, SuffixPayload)}
	}
	if ans.Status != 0 || len(ans.Answer) == 0 {
		return Result{OK: false, Diag: Diagnostic(p.ID, SuffixPayload)}
	}
	return Result{OK: true}
}
