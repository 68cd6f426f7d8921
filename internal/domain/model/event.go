// Package model contains domain models passed between layers.
package model

import "time"

// UntrackedMonster labels backfilled events that carry loot from an
// untracked period, so aggregation treats their drops as loot rather than
// as produced-item running totals.
const UntrackedMonster = "(untracked)"

// OptionalInt is an integer column that may be absent from a record.
// The zero value is absent and reads as 0 in arithmetic.
type OptionalInt struct {
	Value int64
	Valid bool
}

// Int returns a present OptionalInt.
func Int(v int64) OptionalInt { return OptionalInt{Value: v, Valid: true} }

// Or returns the value when present, def otherwise.
func (o OptionalInt) Or(def int64) int64 {
	if o.Valid {
		return o.Value
	}
	return def
}

// CombatExp is a secondary experience gain attributed to the same observation
// as the primary skill (e.g. Defence exp earned while fighting with Attack).
type CombatExp struct {
	Skill           string `json:"skill"`
	Exp             int64  `json:"exp"`
	Level           string `json:"level,omitempty"`
	ExpForNextLevel string `json:"expForNextLevel,omitempty"`
}

// Event is one observed activity sample, decoded from any log schema vintage.
type Event struct {
	Timestamp        time.Time
	EventID          string // absent in legacy records
	Skill            string
	SkillLevel       string
	ExpForNextLevel  string
	GainedExp        int64 // derived, never negative
	Drops            []string
	Monster          string
	Location         string
	DamageDealt      []int64 // 0 is a miss
	DamageReceived   []int64
	PeopleFighting   OptionalInt
	TotalFights      OptionalInt // nonzero marks a completed encounter
	TotalInventoryHP OptionalInt // running gauge
	HPUsed           OptionalInt // explicit per-event delta
	TotalExp         OptionalInt // cumulative skill exp as scraped
	Equipment        string      // opaque blob
	CombatExp        []CombatExp
}

// IsEncounter reports whether the event was recorded against a monster.
func (e Event) IsEncounter() bool { return e.Monster != "" }
