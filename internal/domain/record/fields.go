package record

import (
	"strconv"
	"strings"
	"time"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/model"
	json "github.com/goccy/go-json"
)

const listSeparator = ";"

// timestampLayouts are tried in order; layouts without a zone are UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02T15:04:05.000",
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseCount reads an integer that may carry thousands separators. Anything
// else that is not a plain number reads as zero.
func parseCount(s string) (int64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, true
	}
	return v, true
}

// parseOptional reads a present-or-absent count. Every optional column is a
// count or a running total, so negatives read as zero.
func parseOptional(s string) model.OptionalInt {
	v, ok := parseCount(s)
	if !ok {
		return model.OptionalInt{}
	}
	return model.Int(max(v, 0))
}

func formatOptional(o model.OptionalInt) string {
	if !o.Valid {
		return ""
	}
	return strconv.FormatInt(o.Value, 10)
}

func splitList(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, listSeparator) {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func parseIntList(s string) []int64 {
	var out []int64
	for _, tok := range splitList(s) {
		v, err := strconv.ParseInt(strings.ReplaceAll(tok, ",", ""), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func formatIntList(vals []int64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, listSeparator)
}

// parseCombatExp reads the JSON column, falling back to the older
// "Skill:exp;Skill:exp" form.
func parseCombatExp(s string) []model.CombatExp {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var out []model.CombatExp
		if err := json.Unmarshal([]byte(s), &out); err != nil || len(out) == 0 {
			return nil
		}
		return out
	}
	var out []model.CombatExp
	for _, tok := range splitList(s) {
		name, exp, found := strings.Cut(tok, ":")
		if !found || strings.TrimSpace(name) == "" {
			continue
		}
		v, _ := parseCount(exp)
		out = append(out, model.CombatExp{Skill: strings.TrimSpace(name), Exp: v})
	}
	return out
}

func formatCombatExp(entries []model.CombatExp) string {
	if len(entries) == 0 {
		return ""
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return ""
	}
	return string(b)
}
