// Package gaps groups externally reported untracked activity into gaps and
// turns a confirmed split of each gap into synthetic log events.
package gaps

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/model"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/week"
	"github.com/google/uuid"
)

// backfillMinute places synthetic events mid-hour.
const backfillMinute = 30

// syntheticNamespace seeds the deterministic ids of backfilled events.
var syntheticNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("syrnia-tracker/untracked"))

// GroupIntoGaps groups unresolved records whose time ranges overlap. A record
// joins the current group when it starts strictly before the group's latest
// end; touching ranges stay separate.
func GroupIntoGaps(records []model.UntrackedRecord, cal *week.Calendar) []model.Gap {
	open := make([]model.UntrackedRecord, 0, len(records))
	for _, r := range records {
		if !r.Resolved {
			open = append(open, r)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		if !open[i].StartUTC.Equal(open[j].StartUTC) {
			return open[i].StartUTC.Before(open[j].StartUTC)
		}
		return open[i].ID < open[j].ID
	})

	var out []model.Gap
	var cur *model.Gap
	for _, r := range open {
		if cur != nil && r.StartUTC.Before(cur.EndUTC) {
			cur.RecordIDs = append(cur.RecordIDs, r.ID)
			if r.EndUTC.After(cur.EndUTC) {
				cur.EndUTC = r.EndUTC
			}
			cur.TotalExpBySkill[r.Skill] += r.ExpGained
			continue
		}
		out = append(out, model.Gap{
			RecordIDs:       []string{r.ID},
			StartUTC:        r.StartUTC,
			EndUTC:          r.EndUTC,
			TotalExpBySkill: map[string]int64{r.Skill: r.ExpGained},
		})
		cur = &out[len(out)-1]
	}

	for i := range out {
		out[i].HoursSpanned = HoursSpanned(out[i].StartUTC, out[i].EndUTC, cal)
	}
	return out
}

// HoursSpanned lists the civil hours from start's hour through end's hour,
// wrapping past midnight, so 23:10-01:20 gives [23 0 1]. An end exactly on an
// hour boundary does not open that hour. Each hour appears once.
func HoursSpanned(start, end time.Time, cal *week.Calendar) []int {
	cursor, _ := cal.HourBounds(start)
	var hours []int
	seen := make(map[int]bool, 24)
	for !cursor.After(end) {
		if cursor.Equal(end) && end.After(start) {
			break
		}
		h := cal.HourOf(cursor)
		if !seen[h] {
			seen[h] = true
			hours = append(hours, h)
		}
		if len(hours) == 24 {
			break
		}
		cursor = cursor.Add(time.Hour)
	}
	return hours
}

// InitialRows spreads each skill's exp evenly over the gap's hours. Floor
// division is used and the remainder goes to the last hour, so each skill's
// rows sum to its total.
func InitialRows(gap model.Gap) []model.Row {
	n := int64(len(gap.HoursSpanned))
	if n == 0 {
		return nil
	}
	skills := make([]string, 0, len(gap.TotalExpBySkill))
	for s := range gap.TotalExpBySkill {
		skills = append(skills, s)
	}
	sort.Strings(skills)

	rows := make([]model.Row, 0, len(skills)*len(gap.HoursSpanned))
	for _, skill := range skills {
		total := gap.TotalExpBySkill[skill]
		per, rem := total/n, total%n
		for i, h := range gap.HoursSpanned {
			exp := per
			if int64(i) == n-1 {
				exp += rem
			}
			rows = append(rows, model.Row{Hour: h, Skill: skill, Exp: exp})
		}
	}
	return rows
}

// BuildEvents turns confirmed rows into synthetic events on referenceDate.
// Rows with no exp and no loot are dropped and rows sharing hour and skill
// are combined. Event ids derive from the record ids, date, hour and skill,
// so rebuilding the same resolve yields the same events.
func BuildEvents(recordIDs []string, rows []model.Row, referenceDate time.Time, cal *week.Calendar) ([]model.Event, error) {
	if len(recordIDs) == 0 {
		return nil, ErrNoRecords
	}
	ids := slices.Clone(recordIDs)
	sort.Strings(ids)
	day := referenceDate.In(cal.Location()).Format(week.KeyLayout)

	type slot struct {
		hour  int
		skill string
	}
	var order []slot
	combined := make(map[slot]*model.Row)
	for _, r := range rows {
		if r.Exp <= 0 && len(r.Loot) == 0 {
			continue
		}
		if r.Hour < 0 || r.Hour > 23 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidHour, r.Hour)
		}
		k := slot{hour: r.Hour, skill: r.Skill}
		c, ok := combined[k]
		if !ok {
			c = &model.Row{Hour: r.Hour, Skill: r.Skill}
			combined[k] = c
			order = append(order, k)
		}
		c.Exp += max(r.Exp, 0)
		c.Loot = append(c.Loot, r.Loot...)
	}

	events := make([]model.Event, 0, len(order))
	for _, k := range order {
		r := combined[k]
		e := model.Event{
			Timestamp: cal.At(referenceDate, r.Hour, backfillMinute).UTC(),
			EventID:   syntheticID(ids, day, r.Hour, r.Skill),
			Skill:     r.Skill,
			GainedExp: r.Exp,
		}
		for _, l := range r.Loot {
			if name := strings.TrimSpace(l.Name); name != "" && l.Quantity > 0 {
				e.Drops = append(e.Drops, strconv.FormatInt(l.Quantity, 10)+" "+name)
			}
		}
		if len(e.Drops) > 0 {
			e.Monster = model.UntrackedMonster
		}
		if e.GainedExp == 0 && len(e.Drops) == 0 {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func syntheticID(sortedIDs []string, day string, hour int, skill string) string {
	seed := strings.Join(sortedIDs, ",") + "|" + day + "|" + strconv.Itoa(hour) + "|" + skill
	return uuid.NewSHA1(syntheticNamespace, []byte(seed)).String()
}

// MarkResolved returns a copy of records with ids marked resolved.
func MarkResolved(records []model.UntrackedRecord, ids []string) ([]model.UntrackedRecord, error) {
	if len(ids) == 0 {
		return nil, ErrNoRecords
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := slices.Clone(records)
	for i := range out {
		if want[out[i].ID] {
			out[i].Resolved = true
			delete(want, out[i].ID)
		}
	}
	for id := range want {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRecord, id)
	}
	return out, nil
}
