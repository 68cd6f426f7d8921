package record

import (
	"strconv"
	"strings"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/model"
)

// Decode reads fields in whatever layout they were written in.
// It returns false only for rows too short to carry an event.
func Decode(fields []string) (model.Event, bool) {
	e, _, ok := DecodeShape(fields)
	return e, ok
}

// DecodeShape is Decode that also reports the name of the layout used.
func DecodeShape(fields []string) (model.Event, string, bool) {
	shape, ok := Classify(fields)
	if !ok {
		return model.Event{}, "", false
	}
	return decodeWith(shape.Columns, fields), shape.Name, true
}

func decodeWith(columns []Column, fields []string) model.Event {
	var e model.Event
	for i, col := range columns {
		if i >= len(fields) {
			break
		}
		set(&e, col, fields[i])
	}
	return e
}

func set(e *model.Event, col Column, raw string) {
	v := strings.TrimSpace(raw)
	switch col {
	case Timestamp:
		e.Timestamp = parseTimestamp(v)
	case EventID:
		e.EventID = v
	case Skill:
		e.Skill = v
	case SkillLevel:
		e.SkillLevel = v
	case ExpForNextLevel:
		e.ExpForNextLevel = v
	case GainedExp:
		n, _ := parseCount(v)
		e.GainedExp = max(n, 0)
	case Drops:
		e.Drops = splitList(v)
	case Monster:
		e.Monster = v
	case Location:
		e.Location = v
	case DamageDealt:
		e.DamageDealt = parseIntList(v)
	case DamageReceived:
		e.DamageReceived = parseIntList(v)
	case PeopleFighting:
		e.PeopleFighting = parseOptional(v)
	case TotalFights:
		e.TotalFights = parseOptional(v)
	case TotalInventoryHP:
		e.TotalInventoryHP = parseOptional(v)
	case HPUsed:
		e.HPUsed = parseOptional(v)
	case TotalExp:
		e.TotalExp = parseOptional(v)
	case Equipment:
		e.Equipment = raw
	case CombatExp:
		e.CombatExp = parseCombatExp(v)
	}
}

// Encode writes e in the canonical layout.
func Encode(e model.Event) []string {
	return []string{
		formatTimestamp(e.Timestamp),
		e.EventID,
		e.Skill,
		e.SkillLevel,
		e.ExpForNextLevel,
		strconv.FormatInt(e.GainedExp, 10),
		strings.Join(e.Drops, listSeparator),
		e.Monster,
		e.Location,
		formatIntList(e.DamageDealt),
		formatIntList(e.DamageReceived),
		formatOptional(e.PeopleFighting),
		formatOptional(e.TotalFights),
		formatOptional(e.TotalInventoryHP),
		formatOptional(e.HPUsed),
		formatOptional(e.TotalExp),
		e.Equipment,
		formatCombatExp(e.CombatExp),
	}
}

// IsHeader reports whether fields are a header line of any layout.
func IsHeader(fields []string) bool {
	return len(fields) > 0 && strings.EqualFold(strings.TrimSpace(fields[0]), Timestamp.String())
}
