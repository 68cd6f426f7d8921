package model

import (
	"sort"
	"time"
)

// DropStat accumulates loot of one item across a window.
type DropStat struct {
	Count       int64   `json:"count"`
	TotalAmount int64   `json:"totalAmount"`
	TotalValue  float64 `json:"totalValue"`
}

// ProducedItem is the period delta of a skilling product.
type ProducedItem struct {
	Quantity   int64   `json:"quantity"`
	Skill      string  `json:"skill"`
	TotalValue float64 `json:"totalValue"`
}

// HPUsage describes inventory HP consumed within a window.
type HPUsage struct {
	Used    int64 `json:"used"`
	StartHP int64 `json:"startHP"`
	EndHP   int64 `json:"endHP"`
}

// LootEntry is one row of a value-ordered loot or production list.
type LootEntry struct {
	Name       string  `json:"name"`
	Quantity   int64   `json:"quantity"`
	Count      int64   `json:"count,omitempty"`
	Skill      string  `json:"skill,omitempty"`
	TotalValue float64 `json:"totalValue"`
}

// PeriodSummary aggregates a deduplicated event set over [Start, End).
type PeriodSummary struct {
	Start                time.Time               `json:"start"`
	End                  time.Time               `json:"end"`
	EventCount           int                     `json:"eventCount"`
	TotalExp             int64                   `json:"totalExp"`
	ExpBySkill           map[string]int64        `json:"expBySkill"`
	DropStats            map[string]DropStat     `json:"dropStats"`
	ProducedItems        map[string]ProducedItem `json:"producedItems"`
	TotalDropValue       float64                 `json:"totalDropValue"`
	TotalProducedValue   float64                 `json:"totalProducedValue"`
	HPUsed               *HPUsage                `json:"hpUsed"`
	TotalDamageDealt     int64                   `json:"totalDamageDealt"`
	TotalDamageReceived  int64                   `json:"totalDamageReceived"`
	NetProfit            float64                 `json:"netProfit"`
	TotalFights          int64                   `json:"totalFights"`
	TotalSkillingActions int64                   `json:"totalSkillingActions"`
	AverageHitByLocation map[string]float64      `json:"averageHitByLocation"`
}

// NewPeriodSummary returns an empty summary with all maps allocated.
func NewPeriodSummary(start, end time.Time) PeriodSummary {
	return PeriodSummary{
		Start:                start,
		End:                  end,
		ExpBySkill:           map[string]int64{},
		DropStats:            map[string]DropStat{},
		ProducedItems:        map[string]ProducedItem{},
		AverageHitByLocation: map[string]float64{},
	}
}

// LootList returns the loot ordered by total value desc, then name asc.
func (s PeriodSummary) LootList() []LootEntry {
	out := make([]LootEntry, 0, len(s.DropStats))
	for name, st := range s.DropStats {
		out = append(out, LootEntry{Name: name, Quantity: st.TotalAmount, Count: st.Count, TotalValue: st.TotalValue})
	}
	sortLoot(out)
	return out
}

// ProducedList returns produced items ordered like LootList.
func (s PeriodSummary) ProducedList() []LootEntry {
	out := make([]LootEntry, 0, len(s.ProducedItems))
	for name, p := range s.ProducedItems {
		out = append(out, LootEntry{Name: name, Quantity: p.Quantity, Skill: p.Skill, TotalValue: p.TotalValue})
	}
	sortLoot(out)
	return out
}

func sortLoot(entries []LootEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalValue != entries[j].TotalValue {
			return entries[i].TotalValue > entries[j].TotalValue
		}
		return entries[i].Name < entries[j].Name
	})
}

// Bucket is one calendar slot of a bucketed query.
type Bucket struct {
	Label   string        `json:"label"`
	Start   time.Time     `json:"start"`
	End     time.Time     `json:"end"`
	Summary PeriodSummary `json:"summary"`
}

// WeekPeriod is the canonical weekly window starting Sunday 18:00 civil time.
type WeekPeriod struct {
	WeekKey string    `json:"weekKey"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// WeekSummary is the persisted per-week roll-up, one row per WeekKey.
type WeekSummary struct {
	WeekKey      string           `json:"weekKey"`
	WeekStart    time.Time        `json:"weekStart"`
	WeekEnd      time.Time        `json:"weekEnd"`
	TotalExp     int64            `json:"totalExp"`
	ExpBySkill   map[string]int64 `json:"expBySkill"`
	TotalDrops   int64            `json:"totalDrops"`
	DropsByItem  map[string]int64 `json:"dropsByItem"`
	HPUsed       int64            `json:"hpUsed"`
	TotalEntries int              `json:"totalEntries"`
	LastUpdated  time.Time        `json:"lastUpdated"`
}
