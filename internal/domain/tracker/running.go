// Package tracker turns cumulative counters scraped from the game page into
// per-observation increments.
package tracker

// Policy decides what an unseen key's baseline is.
type Policy int

const (
	// ZeroBaseline treats an unseen key as starting from zero, so the first
	// observation counts in full.
	ZeroBaseline Policy = iota
	// SeedBaseline uses the first observation only to set the baseline.
	SeedBaseline
)

// RunningTotalTracker converts running totals per key into non-negative
// increments. It is not safe for concurrent use.
type RunningTotalTracker[K comparable] struct {
	policy    Policy
	baselines map[K]int64
}

// NewRunningTotalTracker creates a tracker with the given policy. Seed
// baselines are copied.
func NewRunningTotalTracker[K comparable](policy Policy, seed map[K]int64) *RunningTotalTracker[K] {
	t := &RunningTotalTracker[K]{policy: policy, baselines: make(map[K]int64, len(seed))}
	for k, v := range seed {
		t.baselines[k] = v
	}
	return t
}

// Observe records value as the new total for key and returns how much it
// grew since the previous total. A decrease yields zero and resets the
// baseline to the lower value.
func (t *RunningTotalTracker[K]) Observe(key K, value int64) int64 {
	prev, seen := t.baselines[key]
	t.baselines[key] = value
	if !seen {
		if t.policy == SeedBaseline {
			return 0
		}
		prev = 0
	}
	return max(0, value-prev)
}

// Peek returns the current baseline for key.
func (t *RunningTotalTracker[K]) Peek(key K) (int64, bool) {
	v, ok := t.baselines[key]
	return v, ok
}

// Snapshot returns a copy of all baselines.
func (t *RunningTotalTracker[K]) Snapshot() map[K]int64 {
	out := make(map[K]int64, len(t.baselines))
	for k, v := range t.baselines {
		out[k] = v
	}
	return out
}

// Len returns the number of tracked keys.
func (t *RunningTotalTracker[K]) Len() int { return len(t.baselines) }
