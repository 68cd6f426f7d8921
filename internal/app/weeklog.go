package service

import (
	"bytes"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/model"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/quoted"
	"github.com/goccy/go-json"
)

var weekHeader = []string{
	"weekKey", "weekStart", "weekEnd", "totalExp", "expBySkill",
	"totalDrops", "dropsByItem", "hpUsed", "totalEntries", "lastUpdated",
}

// encodeWeekSummaries renders one row per week, ordered by week key.
func encodeWeekSummaries(rows []model.WeekSummary) ([]byte, error) {
	sorted := append([]model.WeekSummary(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].WeekKey < sorted[j].WeekKey })

	var buf bytes.Buffer
	buf.WriteString(quoted.JoinLine(weekHeader))
	buf.WriteByte('\n')
	for _, w := range sorted {
		exp, err := json.Marshal(nonNil(w.ExpBySkill))
		if err != nil {
			return nil, err
		}
		drops, err := json.Marshal(nonNil(w.DropsByItem))
		if err != nil {
			return nil, err
		}
		buf.WriteString(quoted.JoinLine([]string{
			w.WeekKey,
			w.WeekStart.UTC().Format(time.RFC3339Nano),
			w.WeekEnd.UTC().Format(time.RFC3339Nano),
			strconv.FormatInt(w.TotalExp, 10),
			string(exp),
			strconv.FormatInt(w.TotalDrops, 10),
			string(drops),
			strconv.FormatInt(w.HPUsed, 10),
			strconv.Itoa(w.TotalEntries),
			w.LastUpdated.UTC().Format(time.RFC3339Nano),
		}))
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// decodeWeekSummaries reads rows written by encodeWeekSummaries. Rows that
// cannot be read are counted and skipped.
func decodeWeekSummaries(raw []byte) (rows []model.WeekSummary, skipped int) {
	for _, f := range quoted.ParseRecords(string(raw)) {
		if strings.EqualFold(strings.TrimSpace(f[0]), weekHeader[0]) {
			continue
		}
		w, ok := decodeWeekRow(f)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, w)
	}
	return rows, skipped
}

func decodeWeekRow(f []string) (model.WeekSummary, bool) {
	if len(f) != len(weekHeader) || f[0] == "" {
		return model.WeekSummary{}, false
	}
	w := model.WeekSummary{WeekKey: f[0]}

	var err error
	times := []*time.Time{&w.WeekStart, &w.WeekEnd, &w.LastUpdated}
	for i, idx := range []int{1, 2, 9} {
		if *times[i], err = time.Parse(time.RFC3339Nano, f[idx]); err != nil {
			return model.WeekSummary{}, false
		}
	}
	ints := []*int64{&w.TotalExp, &w.TotalDrops, &w.HPUsed}
	for i, idx := range []int{3, 5, 7} {
		if *ints[i], err = strconv.ParseInt(f[idx], 10, 64); err != nil {
			return model.WeekSummary{}, false
		}
	}
	if w.TotalEntries, err = strconv.Atoi(f[8]); err != nil {
		return model.WeekSummary{}, false
	}
	if json.Unmarshal([]byte(f[4]), &w.ExpBySkill) != nil || json.Unmarshal([]byte(f[6]), &w.DropsByItem) != nil {
		return model.WeekSummary{}, false
	}
	w.ExpBySkill = nonNil(w.ExpBySkill)
	w.DropsByItem = nonNil(w.DropsByItem)
	return w, true
}

func nonNil(m map[string]int64) map[string]int64 {
	if m == nil {
		return map[string]int64{}
	}
	return m
}
