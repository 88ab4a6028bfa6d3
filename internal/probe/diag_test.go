package probe

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestDiagnostic_FixedWidth(t *testing.T) {
	cases := []struct {
		probeID string
		suffix  string
		want    string
	}{
		{"G204", SuffixDNS, "G204DNSERROR"},
		{"CFTR", SuffixTimeout, "CFTRTIMEDOUT"},
		{"GDOH", SuffixPayload, "GDOHBADREPLY"},
		{"CDOH", SuffixHTTPStatus, "CDOHHTTPSTAT"},
		{"AB", "SHORT", "ABSHORT00000"},
		{"TOOLONGID", "OVERFLOWING", "TOOLONGIDOVE"},
	}
	for _, c := range cases {
		got := Diagnostic(c.probeID, c.suffix)
		if got != c.want {
			t.Errorf("Diagnostic(%q, %q) = %q, want %q", c.probeID, c.suffix, got, c.want)
		}
		if len(got) != DiagWidth {
			t.Errorf("Diagnostic(%q, %q) width %d, want %d", c.probeID, c.suffix, len(got), DiagWidth)
		}
	}
}

func TestDiagnostic_AlwaysFixedWidthUppercase(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	props := gopter.NewProperties(params)

	props.Property("any id/suffix pair yields a stable-width code", prop.ForAll(
		func(id, suffix string) bool {
			code := Diagnostic(id, suffix)
			if len(code) != DiagWidth {
				return false
			}
			for _, r := range code {
				if r >= 'a' && r <= 'z' {
					return false
				}
			}
			return true
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	props.TestingRun(t)
}

func TestSuffixesAreUniformWidth(t *testing.T) {
	suffixes := []string{
		SuffixDNS, SuffixConnect, SuffixTimeout, SuffixHTTPStatus,
		SuffixDisconnect, SuffixPayload, SuffixTransport,
	}
	for _, s := range suffixes {
		if len(s) != 8 {
			t.Errorf("suffix %q has width %d, want 8", s, len(s))
		}
	}
}
