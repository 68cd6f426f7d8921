// Package week computes civil calendar boundaries in the game's reference
// timezone. Weeks start on Sunday at 18:00 local time.
package week

import (
	"fmt"
	"time"

	// the reference zone must resolve on hosts without a zoneinfo database
	_ "time/tzdata"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/model"
)

const (
	// DefaultTimezone is the zone the game resets its weekly stats in.
	DefaultTimezone = "America/New_York"

	// KeyLayout formats week keys and civil dates.
	KeyLayout = "2006-01-02"

	resetHour = 18
)

// Calendar groups instants by civil hour, day, week and month in one zone.
type Calendar struct {
	loc *time.Location
}

// NewCalendar loads the named zone.
func NewCalendar(name string) (*Calendar, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnknownTimezone, name, err)
	}
	return &Calendar{loc: loc}, nil
}

// NewCalendarIn wraps an already loaded location.
func NewCalendarIn(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc}
}

// Location returns the calendar's zone.
func (c *Calendar) Location() *time.Location { return c.loc }

// WeekKeyFor returns the date of the Sunday that opened t's week. Before the
// 18:00 reset a Sunday still belongs to the previous week.
func (c *Calendar) WeekKeyFor(t time.Time) string {
	local := t.In(c.loc)
	back := int(local.Weekday())
	if local.Weekday() == time.Sunday && local.Hour() < resetHour {
		back = 7
	}
	y, m, d := local.Date()
	return time.Date(y, m, d-back, 12, 0, 0, 0, c.loc).Format(KeyLayout)
}

// WeekBounds returns the period named by key. Start and end are each taken
// at 18:00 on their own date, so a week spanning a daylight saving change is
// an hour shorter or longer than 168h.
func (c *Calendar) WeekBounds(key string) (model.WeekPeriod, error) {
	day, err := time.ParseInLocation(KeyLayout, key, c.loc)
	if err != nil || day.Weekday() != time.Sunday {
		return model.WeekPeriod{}, fmt.Errorf("%w: %q", ErrInvalidWeekKey, key)
	}
	y, m, d := day.Date()
	return model.WeekPeriod{
		WeekKey: key,
		Start:   time.Date(y, m, d, resetHour, 0, 0, 0, c.loc),
		End:     time.Date(y, m, d+7, resetHour, 0, 0, 0, c.loc),
	}, nil
}

// CurrentWeek returns the period containing now.
func (c *Calendar) CurrentWeek(now time.Time) model.WeekPeriod {
	p, err := c.WeekBounds(c.WeekKeyFor(now))
	if err != nil {
		// WeekKeyFor always yields a Sunday
		panic(err)
	}
	return p
}

// HourOf returns the civil hour of t.
func (c *Calendar) HourOf(t time.Time) int { return t.In(c.loc).Hour() }

// HourBounds returns the civil hour containing t.
func (c *Calendar) HourBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(c.loc)
	start := local.Add(-time.Duration(local.Minute())*time.Minute -
		time.Duration(local.Second())*time.Second -
		time.Duration(local.Nanosecond()))
	return start, start.Add(time.Hour)
}

// DayBounds returns the civil day containing t.
func (c *Calendar) DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc), time.Date(y, m, d+1, 0, 0, 0, 0, c.loc)
}

// MonthBounds returns the civil month containing t.
func (c *Calendar) MonthBounds(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.In(c.loc).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, c.loc), time.Date(y, m+1, 1, 0, 0, 0, 0, c.loc)
}

// At returns the instant at hour:minute on date's civil day.
func (c *Calendar) At(date time.Time, hour, minute int) time.Time {
	y, m, d := date.In(c.loc).Date()
	return time.Date(y, m, d, hour, minute, 0, 0, c.loc)
}

// ParseDate reads a YYYY-MM-DD civil date in the calendar's zone.
func (c *Calendar) ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(KeyLayout, s, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}
