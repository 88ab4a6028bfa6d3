package probe

import "strings"

// Failure suffixes. Each is exactly eight characters so that, combined with
// the four-character probe ID, every diagnostic code is twelve characters
// wide and parses stably downstream.
const (
	SuffixDNS        = "DNSERROR" // resolution of the probe host failed
	SuffixConnect    = "CONNFAIL" // socket connect refused or unreachable
	SuffixTimeout    = "TIMEDOUT" // deadline hit before a response
	SuffixHTTPStatus = "HTTPSTAT" // response arrived with the wrong status
	SuffixDisconnect = "REMCLOSE" // remote closed mid-exchange
	SuffixPayload    = "BADREPLY" // response readable but not the expected one
	SuffixTransport  = "TRANSERR" // any other transport or OS error
)

// DiagWidth is the fixed width of every diagnostic code.
const DiagWidth = 12

// Diagnostic builds the fixed-width code for a probe failure:
// uppercase probe ID followed by the failure suffix, padded or truncated
// to DiagWidth.
func Diagnostic(probeID, suffix string) string {
	code := strings.ToUpper(probeID + suffix)
	if len(code) > DiagWidth {
		return code[:DiagWidth]
	}
	if len(code) < DiagWidth {
		code += strings.Repeat("0", DiagWidth-len(code))
	}
	return code
}
