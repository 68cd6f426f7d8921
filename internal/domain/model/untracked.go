package model

import "time"

// UntrackedRecord is activity the external source reported but the log never
// observed. Records are created by an external reconciler and only ever
// change by being marked resolved.
type UntrackedRecord struct {
	ID         string    `json:"id" validate:"required"`
	StartUTC   time.Time `json:"startUTC" validate:"required"`
	EndUTC     time.Time `json:"endUTC" validate:"required,gtefield=StartUTC"`
	Skill      string    `json:"skill" validate:"required"`
	ExpGained  int64     `json:"expGained" validate:"gte=0"`
	DurationMs int64     `json:"durationMs" validate:"gte=0"`
	Resolved   bool      `json:"resolved"`
}

// Gap is a maximal group of overlapping unresolved records. It is derived on
// every query and never persisted.
type Gap struct {
	RecordIDs       []string         `json:"recordIds"`
	StartUTC        time.Time        `json:"startUTC"`
	EndUTC          time.Time        `json:"endUTC"`
	HoursSpanned    []int            `json:"hoursSpanned"`
	TotalExpBySkill map[string]int64 `json:"totalExpBySkill"`
}

// LootItem is a user-entered loot line of a backfill row.
type LootItem struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// Row is one adjustable hour/skill line of a gap backfill.
type Row struct {
	Hour  int        `json:"hour"`
	Skill string     `json:"skill"`
	Exp   int64      `json:"exp"`
	Loot  []LootItem `json:"loot"`
}
