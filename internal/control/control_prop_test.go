package control

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: every write round-trips its suppression deadline within float
// tolerance and mints a token unseen in any earlier write.
func TestPropertyWriteReadRoundTrip(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 50
	props := gopter.NewProperties(params)

	c := tempChannel(t)
	seen := map[string]bool{}

	props.Property("round trip preserves suppress_until and refreshes token", prop.ForAll(
		func(offsetSeconds int) bool {
			until := time.Now().Add(time.Duration(offsetSeconds) * time.Second)
			token, err := c.Write(until, offsetSeconds%2 == 0)
			if err != nil {
				return false
			}
			if seen[token] {
				return false
			}
			seen[token] = true

			st, err := c.Read()
			if err != nil || st == nil {
				return false
			}
			if st.CommandToken != token {
				return false
			}
			want := float64(until.UnixNano()) / float64(time.Second)
			diff := st.SuppressUntil - want
			return diff < 0.001 && diff > -0.001
		},
		gen.IntRange(-86400, 86400),
	))

	props.TestingRun(t)
}
