package probe

import "context"

// Result is the outcome of a single probe execution. A failed probe carries
// a fixed-width diagnostic code; a successful one carries none.
type Result struct {
	OK   bool
	Diag string
}

// Checker runs one connectivity check against the endpoint it was built for.
// Implementations convert every underlying error into a failed Result; they
// never return an error or panic.
type Checker interface {
	Check(ctx context.Context) Result
}

// Category splits probes into the cheap per-tick checks and the independent
// second checks used to confirm a suspected outage.
type Category int

const (
	Primary Category = iota
	Confirmation
)

func (c Category) String() string {
	if c == Confirmation {
		return "confirmation"
	}
	return "primary"
}

// Probe is one named connectivity check. ID is a four-character code used as
// the prefix of every diagnostic this probe emits.
type Probe struct {
	ID       string
	Name     string
	Category Category
	Checker  Checker
}

// Registry is the fixed set of probes the monitor draws from. Immutable once
// built.
type Registry struct {
	primaries     []Probe
	confirmations []Probe
}

func NewRegistry(probes ...Probe) *Registry {
	r := &Registry{}
	for _, p := range probes {
		switch p.Category {
		case Confirmation:
			r.confirmations = append(r.confirmations, p)
		default:
			r.primaries = append(r.primaries, p)
		}
	}
	return r
}

func (r *Registry) Primaries() []Probe { return r.primaries }

func (r *Registry) Confirmations() []Probe { return r.confirmations }
