package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
)

// classify maps a transport error to its diagnostic suffix. Probes call this
// for every error raised past the DNS phase; DNS failures are classified at
// the resolution step itself.
func classify(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return SuffixTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return SuffixTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return SuffixDNS
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return SuffixDisconnect
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return SuffixConnect
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return SuffixConnect
	}

	// net/http wraps remote disconnects in plain errors more often than not.
	if strings.Contains(err.Error(), "connection reset") ||
		strings.Contains(err.Error(), "broken pipe") {
		return SuffixDisconnect
	}

	return SuffixTransport
}
