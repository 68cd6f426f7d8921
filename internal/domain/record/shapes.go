package record

import (
	"regexp"
	"strings"
)

// Shape is one historical record layout.
type Shape struct {
	Name    string
	Match   func(fields []string) bool
	Columns []Column
}

// legacy15 is the layout used before event identifiers were recorded.
var legacy15 = []Column{
	Timestamp, Skill, SkillLevel, ExpForNextLevel, GainedExp, Drops, Monster,
	Location, DamageDealt, DamageReceived, PeopleFighting, TotalFights,
	TotalInventoryHP, HPUsed, TotalExp,
}

var (
	shape11New = []Column{
		Timestamp, Skill, SkillLevel, ExpForNextLevel, GainedExp, Drops,
		Location, Monster, DamageDealt, DamageReceived, TotalFights,
	}
	shape11Old = []Column{
		Timestamp, Skill, SkillLevel, ExpForNextLevel, GainedExp, Drops,
		Monster, TotalExp, DamageDealt, DamageReceived, PeopleFighting,
	}
	shape6 = legacy15[:6]
)

// groupedNumber matches a bare count such as 1234 or 1,234,567.
var groupedNumber = regexp.MustCompile(`^(\d{1,3}(,\d{3})+|\d+)$`)

func width(n int) func([]string) bool {
	return func(fields []string) bool { return len(fields) == n }
}

// Shapes lists the known layouts newest first. Eleven-field rows come in two
// vintages told apart by field 7: the old layout stored the cumulative exp
// counter there, the newer one the monster name.
var Shapes = []Shape{
	{Name: "v18", Match: width(18), Columns: canonical},
	{Name: "v17", Match: width(17), Columns: canonical[:17]},
	{Name: "v16", Match: width(16), Columns: canonical[:16]},
	{Name: "v15", Match: width(15), Columns: legacy15},
	{Name: "v13", Match: width(13), Columns: legacy15[:13]},
	{Name: "v12", Match: width(12), Columns: legacy15[:12]},
	{
		Name: "v11-old",
		Match: func(fields []string) bool {
			return len(fields) == 11 && groupedNumber.MatchString(strings.TrimSpace(fields[7]))
		},
		Columns: shape11Old,
	},
	{Name: "v11", Match: width(11), Columns: shape11New},
	{Name: "v9", Match: width(9), Columns: legacy15[:9]},
	{Name: "v7", Match: width(7), Columns: legacy15[:7]},
	{Name: "v6", Match: width(6), Columns: shape6},
}

// FallbackShape is the name reported for rows no known layout matched.
const FallbackShape = "fallback"

// Classify returns the layout used to read fields. Rows of an unknown width
// are read with the widest known layout that fits, so they never fail; only
// rows with fewer than two fields are rejected.
func Classify(fields []string) (Shape, bool) {
	if len(fields) < 2 {
		return Shape{}, false
	}
	for _, s := range Shapes {
		if s.Match(fields) {
			return s, true
		}
	}
	if len(fields) > CanonicalWidth {
		return Shape{Name: FallbackShape, Columns: canonical}, true
	}
	best := Shape{Name: FallbackShape, Columns: shape6[:min(len(fields), len(shape6))]}
	for _, s := range Shapes {
		if len(s.Columns) <= len(fields) && len(s.Columns) > len(best.Columns) {
			best = Shape{Name: FallbackShape, Columns: s.Columns}
		}
	}
	return best, true
}
