package dedupe

import (
	"slices"
	"sort"
	"time"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/model"
)

// CanonicalKey identifies the real observation behind an event. Every path
// that deduplicates, the weekly roll-up included, uses this key.
func CanonicalKey(e model.Event) string {
	if e.EventID != "" {
		return e.EventID + "|" + e.Skill
	}
	return e.Timestamp.UTC().Format(time.RFC3339Nano) + "|" + e.Skill
}

// Merge folds two observations sharing a CanonicalKey. The richer record
// (higher gained exp, then the one carrying a skill level, then incoming)
// is the base; list fields of both are concatenated.
func Merge(existing, incoming model.Event) model.Event {
	base := incoming
	switch {
	case existing.GainedExp > incoming.GainedExp:
		base = existing
	case existing.GainedExp == incoming.GainedExp && existing.SkillLevel != "" && incoming.SkillLevel == "":
		base = existing
	}

	base.Drops = concat(existing.Drops, incoming.Drops)
	base.DamageDealt = concat(existing.DamageDealt, incoming.DamageDealt)
	base.DamageReceived = concat(existing.DamageReceived, incoming.DamageReceived)
	return base
}

// concat joins a and b. An identical b is the same observation seen twice and
// is not repeated.
func concat[T comparable](a, b []T) []T {
	switch {
	case len(b) == 0:
		return slices.Clone(a)
	case len(a) == 0:
		return slices.Clone(b)
	case slices.Equal(a, b):
		return slices.Clone(a)
	}
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// Collapse returns one event per CanonicalKey, folding observations in
// ascending timestamp order and returning them in that order.
func Collapse(events []model.Event) []model.Event {
	sorted := slices.Clone(events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	index := make(map[string]int, len(sorted))
	out := make([]model.Event, 0, len(sorted))
	for _, e := range sorted {
		key := CanonicalKey(e)
		if i, ok := index[key]; ok {
			out[i] = Merge(out[i], e)
			continue
		}
		index[key] = len(out)
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
