package aggregate_test

import (
	"testing"
	"time"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/aggregate"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/model"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/pricing"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/week"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	from = time.Date(2024, 3, 6, 14, 0, 0, 0, time.UTC)
	to   = from.Add(time.Hour)
)

func at(min int) time.Time { return from.Add(time.Duration(min) * time.Minute) }

func newAggregator() *aggregate.Aggregator {
	book := pricing.NewBook(
		pricing.WithPricesFromConfig(map[string]float64{"Gold": 1, "Ore": 2, "Bones": 5}, 0),
		pricing.WithCostPerDamagePoint(2.5),
	)
	return aggregate.New(aggregate.WithPriceBook(book), aggregate.WithCalendar(week.NewCalendarIn(time.UTC)))
}

func TestAggregateExp(t *testing.T) {
	Convey("Given Mining events with and without exp", t, func() {
		events := []model.Event{
			{Skill: "Mining", GainedExp: 10, Timestamp: at(1)},
			{Skill: "Mining", GainedExp: 0, Timestamp: at(2)},
		}

		Convey("When they are aggregated", func() {
			s := newAggregator().Aggregate(events, from, to)

			Convey("Then only the positive gain counts", func() {
				So(s.TotalExp, ShouldEqual, 10)
				So(s.ExpBySkill, ShouldResemble, map[string]int64{"Mining": 10})
				So(s.TotalSkillingActions, ShouldEqual, 1)
				So(s.EventCount, ShouldEqual, 2)
			})
		})

		Convey("When an event sits on the window end", func() {
			events = append(events, model.Event{Skill: "Mining", GainedExp: 99, Timestamp: to})
			s := newAggregator().Aggregate(events, from, to)

			So(s.TotalExp, ShouldEqual, 10)
		})
	})

	Convey("Given secondary combat exp", t, func() {
		events := []model.Event{{
			Skill: "Attack", GainedExp: 20, Monster: "Rat", Timestamp: at(1),
			CombatExp: []model.CombatExp{{Skill: "Attack", Exp: 20}, {Skill: "Health", Exp: 7}, {Skill: "Defence", Exp: 0}},
		}}

		s := newAggregator().Aggregate(events, from, to)

		So(s.TotalExp, ShouldEqual, 27)
		So(s.ExpBySkill, ShouldResemble, map[string]int64{"Attack": 20, "Health": 7})
		So(s.TotalSkillingActions, ShouldEqual, 0)
	})
}

func TestAggregateLootAndProduction(t *testing.T) {
	Convey("Given fights with loot", t, func() {
		events := []model.Event{
			{Skill: "Attack", Monster: "Rat", Drops: []string{"20 Gold", "Bones", "35 exp", "123"}, Timestamp: at(1)},
			{Skill: "Attack", Monster: "Rat", Drops: []string{"5 Gold", "Mining experience 4"}, Timestamp: at(2)},
		}

		s := newAggregator().Aggregate(events, from, to)

		Convey("Then valid drops are counted and valued", func() {
			So(s.DropStats["Gold"], ShouldResemble, model.DropStat{Count: 2, TotalAmount: 25, TotalValue: 25})
			So(s.DropStats["Bones"], ShouldResemble, model.DropStat{Count: 1, TotalAmount: 1, TotalValue: 5})
			So(len(s.DropStats), ShouldEqual, 2)
			So(s.TotalDropValue, ShouldEqual, 30)
		})

		Convey("Then the loot list is ordered by value", func() {
			loot := s.LootList()
			So(loot[0].Name, ShouldEqual, "Gold")
			So(loot[1].Name, ShouldEqual, "Bones")
		})
	})

	Convey("Given skilling events reporting inventory totals", t, func() {
		Convey("When Ore goes 100, 100, 130", func() {
			events := []model.Event{
				{Skill: "Mining", GainedExp: 5, Drops: []string{"100 Ore"}, Timestamp: at(1)},
				{Skill: "Mining", GainedExp: 5, Drops: []string{"100 Ore"}, Timestamp: at(2)},
				{Skill: "Mining", GainedExp: 5, Drops: []string{"130 Ore"}, Timestamp: at(3)},
			}
			s := newAggregator().Aggregate(events, from, to)

			So(s.ProducedItems["Ore"], ShouldResemble, model.ProducedItem{Quantity: 30, Skill: "Mining", TotalValue: 60})
			So(s.TotalProducedValue, ShouldEqual, 60)
			So(s.DropStats, ShouldBeEmpty)
		})

		Convey("When Ore goes 100, 90", func() {
			events := []model.Event{
				{Skill: "Mining", Drops: []string{"100 Ore"}, Timestamp: at(1)},
				{Skill: "Mining", Drops: []string{"90 Ore"}, Timestamp: at(2)},
			}
			s := newAggregator().Aggregate(events, from, to)

			So(s.ProducedItems, ShouldBeEmpty)
		})

		Convey("When Ore dips and is refilled", func() {
			var events []model.Event
			for i, n := range []string{"100 Ore", "150 Ore", "120 Ore", "130 Ore"} {
				events = append(events, model.Event{Skill: "Mining", Drops: []string{n}, Timestamp: at(i + 1)})
			}
			s := newAggregator().Aggregate(events, from, to)

			So(s.ProducedItems["Ore"].Quantity, ShouldEqual, 60)
		})

		Convey("When the events arrive out of order", func() {
			events := []model.Event{
				{Skill: "Mining", Drops: []string{"130 Ore"}, Timestamp: at(3)},
				{Skill: "Mining", Drops: []string{"100 Ore"}, Timestamp: at(1)},
			}
			s := newAggregator().Aggregate(events, from, to)

			So(s.ProducedItems["Ore"].Quantity, ShouldEqual, 30)
		})
	})
}

func TestAggregateNegativeAndNonNumeric(t *testing.T) {
	Convey("Given loot with negative and non-numeric counts", t, func() {
		events := []model.Event{
			{Skill: "Attack", Monster: "Rat", Drops: []string{"-5 Gold", "Gold -5", "-3x Bones", "0 Gold"}, Timestamp: at(1)},
			{Skill: "Attack", Monster: "Rat", Drops: []string{"some Bones", "2 Gold"}, Timestamp: at(2)},
		}
		s := newAggregator().Aggregate(events, from, to)

		Convey("Then only positive counts are loot", func() {
			So(s.DropStats["Gold"], ShouldResemble, model.DropStat{Count: 1, TotalAmount: 2, TotalValue: 2})
			So(s.DropStats["some Bones"].TotalAmount, ShouldEqual, 1)
			_, bones := s.DropStats["Bones"]
			So(bones, ShouldBeFalse)
			So(s.TotalDropValue, ShouldEqual, 2)
		})
	})

	Convey("Given negative HP and fight counts", t, func() {
		events := []model.Event{
			{Skill: "Attack", Monster: "Rat", HPUsed: model.Int(-40), TotalFights: model.Int(-1), Timestamp: at(1)},
			{Skill: "Attack", Monster: "Orc", HPUsed: model.Int(10), TotalFights: model.Int(1), Timestamp: at(2)},
		}
		s := newAggregator().Aggregate(events, from, to)

		Convey("Then the negatives count as zero", func() {
			So(s.HPUsed.Used, ShouldEqual, 10)
			So(s.TotalFights, ShouldEqual, 1)
		})
	})
}

func TestAggregateCombat(t *testing.T) {
	Convey("Given combat events", t, func() {
		events := []model.Event{
			{Skill: "Attack", Monster: "Rat", Location: "Sewers", DamageDealt: []int64{4, 0, 6}, DamageReceived: []int64{2, 0}, TotalFights: model.Int(1), Timestamp: at(1)},
			{Skill: "Defence", Monster: "Rat", Location: "Sewers", DamageDealt: []int64{5}, TotalFights: model.Int(1), Timestamp: at(1).Add(200 * time.Millisecond)},
			{Skill: "Attack", Monster: "Rat", Location: "", DamageDealt: []int64{9}, TotalFights: model.Int(0), Timestamp: at(5)},
			{Skill: "Attack", Monster: "Orc", Location: "Cave", DamageReceived: []int64{4}, TotalFights: model.Int(3), Timestamp: at(7)},
		}

		s := newAggregator().Aggregate(events, from, to)

		Convey("Then fights are counted once per monster and second", func() {
			So(s.TotalFights, ShouldEqual, 2)
		})

		Convey("Then misses are left out of the average hit", func() {
			So(s.AverageHitByLocation, ShouldResemble, map[string]float64{"Sewers": 5})
			So(s.TotalDamageDealt, ShouldEqual, 24)
		})

		Convey("Then received damage costs profit", func() {
			So(s.TotalDamageReceived, ShouldEqual, 6)
			So(s.NetProfit, ShouldEqual, -15)
		})
	})
}

func TestAggregateHP(t *testing.T) {
	Convey("Given inventory HP readings", t, func() {
		Convey("When explicit usage is present", func() {
			events := []model.Event{
				{Skill: "Attack", TotalInventoryHP: model.Int(500), HPUsed: model.Int(10), Timestamp: at(1)},
				{Skill: "Attack", Timestamp: at(2)},
				{Skill: "Attack", TotalInventoryHP: model.Int(470), HPUsed: model.Int(20), Timestamp: at(3)},
			}
			s := newAggregator().Aggregate(events, from, to)

			So(s.HPUsed, ShouldResemble, &model.HPUsage{Used: 30, StartHP: 500, EndHP: 470})
		})

		Convey("When only readings are present", func() {
			events := []model.Event{
				{Skill: "Attack", TotalInventoryHP: model.Int(450), Timestamp: at(4)},
				{Skill: "Attack", TotalInventoryHP: model.Int(500), Timestamp: at(1)},
			}
			s := newAggregator().Aggregate(events, from, to)

			So(s.HPUsed, ShouldResemble, &model.HPUsage{Used: 50, StartHP: 500, EndHP: 450})
		})

		Convey("When a single reading is present", func() {
			events := []model.Event{{Skill: "Attack", TotalInventoryHP: model.Int(450), Timestamp: at(4)}}
			So(newAggregator().Aggregate(events, from, to).HPUsed, ShouldBeNil)
		})
	})
}

func TestBuckets(t *testing.T) {
	Convey("Given events over three hours", t, func() {
		events := []model.Event{
			{Skill: "Mining", GainedExp: 1, Timestamp: from.Add(10 * time.Minute)},
			{Skill: "Mining", GainedExp: 2, Timestamp: from.Add(70 * time.Minute)},
			{Skill: "Mining", GainedExp: 4, Timestamp: from.Add(130 * time.Minute)},
		}
		a := newAggregator()

		Convey("When bucketing by hour from a half hour", func() {
			buckets, err := a.Buckets(events, from.Add(30*time.Minute), from.Add(3*time.Hour), week.Hour)

			Convey("Then buckets are clipped to the window", func() {
				So(err, ShouldBeNil)
				So(len(buckets), ShouldEqual, 3)
				So(buckets[0].Start.Equal(from.Add(30*time.Minute)), ShouldBeTrue)
				So(buckets[0].Summary.TotalExp, ShouldEqual, 0)
				So(buckets[1].Label, ShouldEqual, "2024-03-06 15:00")
				So(buckets[1].Summary.TotalExp, ShouldEqual, 2)
				So(buckets[2].Summary.TotalExp, ShouldEqual, 4)
			})
		})

		Convey("When bucketing by day", func() {
			buckets, err := a.Buckets(events, from, from.Add(3*time.Hour), week.Day)
			So(err, ShouldBeNil)
			So(len(buckets), ShouldEqual, 1)
			So(buckets[0].Label, ShouldEqual, "2024-03-06")
			So(buckets[0].Summary.TotalExp, ShouldEqual, 7)
		})

		Convey("When the granularity is unknown", func() {
			_, err := a.Buckets(events, from, to, week.Granularity("decade"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestWeekSummary(t *testing.T) {
	Convey("Given a week of activity", t, func() {
		cal := week.NewCalendarIn(time.UTC)
		period := cal.CurrentWeek(from)
		events := []model.Event{
			{Skill: "Attack", GainedExp: 10, Monster: "Rat", Drops: []string{"3 Gold"}, Timestamp: at(1)},
			{Skill: "Mining", GainedExp: 5, Drops: []string{"10 Ore"}, Timestamp: at(2)},
			{Skill: "Mining", GainedExp: 5, Drops: []string{"14 Ore"}, Timestamp: at(3)},
			{Skill: "Mining", GainedExp: 50, Timestamp: period.End},
		}
		now := at(30)

		ws := aggregate.New(aggregate.WithCalendar(cal)).WeekSummary(events, period, now)

		So(ws.WeekKey, ShouldEqual, "2024-03-03")
		So(ws.TotalExp, ShouldEqual, 20)
		So(ws.ExpBySkill, ShouldResemble, map[string]int64{"Attack": 10, "Mining": 10})
		So(ws.DropsByItem, ShouldResemble, map[string]int64{"Gold": 3, "Ore": 4})
		So(ws.TotalDrops, ShouldEqual, 7)
		So(ws.TotalEntries, ShouldEqual, 3)
		So(ws.LastUpdated, ShouldEqual, now)
	})
}

func TestParseDrop(t *testing.T) {
	Convey("Given drop tokens", t, func() {
		cases := []struct {
			token string
			name  string
			qty   int64
			ok    bool
		}{
			{"20 Gold", "Gold", 20, true},
			{"Logs 14", "Logs", 14, true},
			{"5x Bones", "Bones", 5, true},
			{"1,200 Gold", "Gold", 1200, true},
			{"Bones", "Bones", 1, true},
			{"  ", "", 0, false},
			{"1,234", "", 0, false},
			{"45 exp", "", 0, false},
			{"12EXP", "", 0, false},
			{"Mining experience", "", 0, false},
			{"10 exp points", "", 0, false},
			{"3 ", "", 0, false},
			{"-5 Gold", "", 0, false},
			{"Gold -5", "", 0, false},
			{"-1,000x Bones", "", 0, false},
			{"-5", "", 0, false},
			{"Potion +2", "Potion +2", 1, true},
			{"many Logs", "many Logs", 1, true},
		}
		for _, c := range cases {
			name, qty, ok := aggregate.ParseDrop(c.token)
			So(ok, ShouldEqual, c.ok)
			So(name, ShouldEqual, c.name)
			So(qty, ShouldEqual, c.qty)
		}
	})
}
