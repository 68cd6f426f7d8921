// Package record decodes every historical layout of the activity log into
// model.Event and encodes events back into the canonical layout.
package record

// Column identifies a logical field of an activity record.
type Column int

const (
	Timestamp Column = iota
	EventID
	Skill
	SkillLevel
	ExpForNextLevel
	GainedExp
	Drops
	Monster
	Location
	DamageDealt
	DamageReceived
	PeopleFighting
	TotalFights
	TotalInventoryHP
	HPUsed
	TotalExp
	Equipment
	CombatExp
)

var columnNames = [...]string{
	Timestamp:        "timestamp",
	EventID:          "eventId",
	Skill:            "skill",
	SkillLevel:       "skillLevel",
	ExpForNextLevel:  "expForNextLevel",
	GainedExp:        "gainedExp",
	Drops:            "drops",
	Monster:          "monster",
	Location:         "location",
	DamageDealt:      "damageDealt",
	DamageReceived:   "damageReceived",
	PeopleFighting:   "peopleFighting",
	TotalFights:      "totalFights",
	TotalInventoryHP: "totalInventoryHP",
	HPUsed:           "hpUsed",
	TotalExp:         "totalExp",
	Equipment:        "equipment",
	CombatExp:        "combatExp",
}

// String returns the header name of the column.
func (c Column) String() string {
	if c < 0 || int(c) >= len(columnNames) {
		return "unknown"
	}
	return columnNames[c]
}

// canonical is the layout every record is written in.
var canonical = []Column{
	Timestamp, EventID, Skill, SkillLevel, ExpForNextLevel, GainedExp, Drops,
	Monster, Location, DamageDealt, DamageReceived, PeopleFighting, TotalFights,
	TotalInventoryHP, HPUsed, TotalExp, Equipment, CombatExp,
}

// CanonicalWidth is the number of fields in a canonical record.
const CanonicalWidth = 18

// Header returns the canonical header line fields.
func Header() []string {
	out := make([]string, len(canonical))
	for i, c := range canonical {
		out[i] = c.String()
	}
	return out
}
