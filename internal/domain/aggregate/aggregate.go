// Package aggregate computes experience, loot, damage and profit summaries
// over windows of deduplicated events.
package aggregate

import (
	"sort"
	"time"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/model"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/pricing"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/tracker"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/week"
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithPriceBook sets the item price table.
func WithPriceBook(b *pricing.Book) Option {
	return func(a *Aggregator) {
		if b != nil {
			a.book = b
		}
	}
}

// WithCalendar sets the calendar used for bucketing.
func WithCalendar(c *week.Calendar) Option {
	return func(a *Aggregator) {
		if c != nil {
			a.cal = c
		}
	}
}

// Aggregator summarizes event windows. It holds no mutable state and is safe
// for concurrent use.
type Aggregator struct {
	book *pricing.Book
	cal  *week.Calendar
}

// New creates an Aggregator with configuration options.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{book: pricing.NewBook()}
	for _, opt := range opts {
		opt(a)
	}
	if a.cal == nil {
		cal, err := week.NewCalendar(week.DefaultTimezone)
		if err != nil {
			cal = week.NewCalendarIn(time.UTC)
		}
		a.cal = cal
	}
	return a
}

// Calendar returns the calendar used for bucketing.
func (a *Aggregator) Calendar() *week.Calendar { return a.cal }

type fightKey struct {
	monster string
	second  int64
}

type locationHits struct {
	sum, count int64
}

// Aggregate summarizes the events falling in [start, end). The input must
// already be deduplicated; order does not matter.
func (a *Aggregator) Aggregate(events []model.Event, start, end time.Time) model.PeriodSummary {
	return a.summarize(window(events, start, end), start, end)
}

func (a *Aggregator) summarize(in []model.Event, start, end time.Time) model.PeriodSummary {
	s := model.NewPeriodSummary(start, end)

	produced := tracker.NewRunningTotalTracker[string](tracker.SeedBaseline, nil)
	fights := make(map[fightKey]struct{})
	hits := make(map[string]*locationHits)

	var (
		explicitHP  int64
		hasExplicit bool
		hpReadings  []int64
	)

	for _, e := range in {
		s.EventCount++

		if e.GainedExp > 0 {
			s.TotalExp += e.GainedExp
			s.ExpBySkill[e.Skill] += e.GainedExp
			if !e.IsEncounter() {
				s.TotalSkillingActions++
			}
		}
		for _, c := range tracker.FilterCombatExp(e.Skill, e.CombatExp) {
			if c.Exp > 0 {
				s.TotalExp += c.Exp
				s.ExpBySkill[c.Skill] += c.Exp
			}
		}

		for _, tok := range e.Drops {
			name, qty, ok := ParseDrop(tok)
			if !ok {
				continue
			}
			if e.IsEncounter() {
				if qty <= 0 {
					continue
				}
				st := s.DropStats[name]
				st.Count++
				st.TotalAmount += qty
				s.DropStats[name] = st
				continue
			}
			// Skilling drops are inventory running totals. The produced
			// quantity is the seeded sum of positive steps, so a dip and
			// refill counts the refill: 100, 150, 120, 130 gives 60 where
			// max minus min would give 50.
			delta := produced.Observe(name, qty)
			p := s.ProducedItems[name]
			p.Quantity += delta
			p.Skill = e.Skill
			s.ProducedItems[name] = p
		}

		for _, d := range e.DamageDealt {
			if d <= 0 {
				continue
			}
			s.TotalDamageDealt += d
			if e.Location != "" {
				h := hits[e.Location]
				if h == nil {
					h = &locationHits{}
					hits[e.Location] = h
				}
				h.sum += d
				h.count++
			}
		}
		for _, d := range e.DamageReceived {
			if d > 0 {
				s.TotalDamageReceived += d
			}
		}

		if e.TotalFights.Or(0) > 0 {
			fights[fightKey{monster: e.Monster, second: e.Timestamp.Round(time.Second).Unix()}] = struct{}{}
		}

		// negative counts read as zero
		if e.HPUsed.Valid {
			explicitHP += max(e.HPUsed.Value, 0)
			hasExplicit = true
		}
		if e.TotalInventoryHP.Valid {
			hpReadings = append(hpReadings, max(e.TotalInventoryHP.Value, 0))
		}
	}

	s.TotalFights = int64(len(fights))
	for loc, h := range hits {
		s.AverageHitByLocation[loc] = float64(h.sum) / float64(h.count)
	}
	s.HPUsed = hpUsage(explicitHP, hasExplicit, hpReadings)

	for name, st := range s.DropStats {
		st.TotalValue = a.book.Value(name, st.TotalAmount)
		s.DropStats[name] = st
		s.TotalDropValue += st.TotalValue
	}
	for name, p := range s.ProducedItems {
		if p.Quantity <= 0 {
			delete(s.ProducedItems, name)
			continue
		}
		p.TotalValue = a.book.Value(name, p.Quantity)
		s.ProducedItems[name] = p
		s.TotalProducedValue += p.TotalValue
	}
	s.NetProfit = s.TotalDropValue + s.TotalProducedValue - a.book.DamageCost(s.TotalDamageReceived)
	return s
}

func hpUsage(explicit int64, hasExplicit bool, readings []int64) *model.HPUsage {
	var first, last int64
	if len(readings) > 0 {
		first, last = readings[0], readings[len(readings)-1]
	}
	switch {
	case hasExplicit:
		return &model.HPUsage{Used: explicit, StartHP: first, EndHP: last}
	case len(readings) >= 2:
		return &model.HPUsage{Used: first - last, StartHP: first, EndHP: last}
	}
	return nil
}

// window returns the events in [start, end) in ascending time order.
func window(events []model.Event, start, end time.Time) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if !e.Timestamp.Before(start) && e.Timestamp.Before(end) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Buckets splits [start, end) into calendar buckets of size g and summarizes
// each. The first and last buckets are clipped to the window.
func (a *Aggregator) Buckets(events []model.Event, start, end time.Time, g week.Granularity) ([]model.Bucket, error) {
	in := window(events, start, end)

	var out []model.Bucket
	for cursor := start; cursor.Before(end); {
		bs, be, label, err := a.cal.Bounds(cursor, g)
		if err != nil {
			return nil, err
		}
		if bs.Before(start) {
			bs = start
		}
		if be.After(end) {
			be = end
		}

		lo := sort.Search(len(in), func(i int) bool { return !in[i].Timestamp.Before(bs) })
		hi := sort.Search(len(in), func(i int) bool { return !in[i].Timestamp.Before(be) })
		out = append(out, model.Bucket{
			Label:   label,
			Start:   bs,
			End:     be,
			Summary: a.summarize(in[lo:hi], bs, be),
		})
		cursor = be
	}
	return out, nil
}

// WeekSummary rolls the events of period up into the persisted weekly row.
func (a *Aggregator) WeekSummary(events []model.Event, period model.WeekPeriod, now time.Time) model.WeekSummary {
	s := a.Aggregate(events, period.Start, period.End)

	ws := model.WeekSummary{
		WeekKey:      period.WeekKey,
		WeekStart:    period.Start,
		WeekEnd:      period.End,
		TotalExp:     s.TotalExp,
		ExpBySkill:   s.ExpBySkill,
		DropsByItem:  make(map[string]int64, len(s.DropStats)+len(s.ProducedItems)),
		TotalEntries: s.EventCount,
		LastUpdated:  now,
	}
	for name, st := range s.DropStats {
		ws.DropsByItem[name] += st.TotalAmount
		ws.TotalDrops += st.TotalAmount
	}
	for name, p := range s.ProducedItems {
		ws.DropsByItem[name] += p.Quantity
		ws.TotalDrops += p.Quantity
	}
	if s.HPUsed != nil {
		ws.HPUsed = s.HPUsed.Used
	}
	return ws
}
