package tracker

import "github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/model"

// Baselines is the persisted last-seen cumulative exp per skill.
type Baselines map[string]int64

// DeltaTracker derives gained exp per skill from the cumulative exp counter.
// A skill with no stored baseline starts from zero.
type DeltaTracker struct {
	totals *RunningTotalTracker[string]
}

// NewDeltaTracker creates a tracker seeded with persisted baselines.
func NewDeltaTracker(b Baselines) *DeltaTracker {
	return &DeltaTracker{totals: NewRunningTotalTracker[string](ZeroBaseline, b)}
}

// ComputeGain returns max(0, cumulative - baseline) and stores cumulative as
// the new baseline for skill.
func (d *DeltaTracker) ComputeGain(skill string, cumulative int64) int64 {
	return d.totals.Observe(skill, cumulative)
}

// Baseline returns the stored cumulative exp for skill.
func (d *DeltaTracker) Baseline(skill string) (int64, bool) {
	return d.totals.Peek(skill)
}

// Snapshot returns the baselines for persistence.
func (d *DeltaTracker) Snapshot() Baselines {
	return d.totals.Snapshot()
}

// Clone returns an independent copy. Callers compute on the copy and keep it
// only once the baselines are stored.
func (d *DeltaTracker) Clone() *DeltaTracker {
	return NewDeltaTracker(d.Snapshot())
}

// FilterCombatExp drops the secondary entry reporting the primary skill
// itself, which the primary gainedExp already counts.
func FilterCombatExp(primarySkill string, entries []model.CombatExp) []model.CombatExp {
	var out []model.CombatExp
	for _, c := range entries {
		if c.Skill == primarySkill {
			continue
		}
		out = append(out, c)
	}
	return out
}
