package probe

import "math/rand"

// Selector picks which probe of a category runs on a given tick. The exclude
// argument names a probe ID to avoid where possible, so a confirmation check
// does not re-test the endpoint that just failed.
type Selector interface {
	Pick(probes []Probe, exclude string) (Probe, bool)
}

// RandomSelector spreads load across endpoints and avoids correlating every
// tick with one third party. This is the default.
type RandomSelector struct {
	rng *rand.Rand
}

func NewRandomSelector(rng *rand.Rand) *RandomSelector {
	return &RandomSelector{rng: rng}
}

func (s *RandomSelector) Pick(probes []Probe, exclude string) (Probe, bool) {
	candidates := eligible(probes, exclude)
	if len(candidates) == 0 {
		return Probe{}, false
	}
	if s.rng == nil {
		return candidates[rand.Intn(len(candidates))], true
	}
	return candidates[s.rng.Intn(len(candidates))], true
}

// RoundRobinSelector cycles through probes in registration order. Useful
// where deterministic sequencing matters, such as tests.
type RoundRobinSelector struct {
	next int
}

func (s *RoundRobinSelector) Pick(probes []Probe, exclude string) (Probe, bool) {
	candidates := eligible(probes, exclude)
	if len(candidates) == 0 {
		return Probe{}, false
	}
	p := candidates[s.next%len(candidates)]
	s.next++
	return p, true
}

// eligible filters out the excluded probe, unless that would leave nothing
// to run.
func eligible(probes []Probe, exclude string) []Probe {
	if exclude == "" {
		return probes
	}
	kept := make([]Probe, 0, len(probes))
	for _, p := range probes {
		if p.ID != exclude {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return probes
	}
	return kept
}
