package probe

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every probe call, DNS phase included.
const DefaultTimeout = 10 * time.Second

// HTTPProbe is a cheap HTTP check against one public endpoint. It resolves
// the endpoint host explicitly before issuing the request so a DNS outage
// is diagnosed as DNS rather than as a generic HTTP failure.
type HTTPFixture struct {
	WantStatus int    // 0 means any 2xx/3xx
	WantBody   string // substring the body must contain; empty skips the read
}

type HTTPProbe struct {
	ID       string
	URL      string
	Fixture  HTTPFixture
	Client   *http.Client
	Resolver *net.Resolver
	Timeout  time.Duration
}

func NewHTTPProbe(id, rawurl string, fixture HTTPFixture, timeout time.Duration) *HTTPProbe {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPProbe{
		ID:       id,
		URL:      rawurl,
		Fixture:  fixture,
		Client:   &http.Client{Timeout: timeout},
		Resolver: net.DefaultResolver,
		Timeout:  timeout,
	}
}

func (p *HTTPProbe) Check(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	host := hostOf(p.URL)
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

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return Result{OK: false, Diag: Diagnostic(p.ID, SuffixTransport)}
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return Result{OK: false, Diag: Diagnostic(p.ID, classify(err))}
	}
	defer resp.Body.Close()

	if !p.statusOK(resp.StatusCode) {
		return Result{OK: false, Diag: Diagnostic(p.ID, SuffixHTTPStatus)}
	}
	if p.Fixture.WantBody != "" {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if err != nil {
			return Result{OK: false, Diag: Diagnostic(p.ID, classify(err))}
		}
		if !strings.Contains(string(body), p.Fixture.WantBody) {
			return Result{OK: false, Diag: Diagnostic(p.ID, SuffixPayload)}
		}
	}
	return Result{OK: true}
}

func (p *HTTPProbe) statusOK(code int) bool {
	if p.Fixture.WantStatus != 0 {
		return code == p.Fixture.WantStatus
	}
	return code >= 200 && code < 400
}

func hostOf(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func isLiteralIP(host string) bool {
	return net.ParseIP(host) != nil
}
