package hlbvh

import "time"

// Stats describes the work done by the last Step.
type Stats struct {
	Frame int

	Bodies         int
	CandidatePairs int
	BodiesBuilt    int
	CollidingPairs int

	Animate     time.Duration
	BroadPhase  time.Duration
	Build       time.Duration
	NarrowPhase time.Duration
}

// Total returns the duration of the whole frame.
func (s Stats) Total() time.Duration {
	return s.Animate + s.BroadPhase + s.Build + s.NarrowPhase
}
