package week

import (
	"fmt"
	"strings"
	"time"
)

// Granularity is a bucket size for calendar queries.
type Granularity string

const (
	Hour  Granularity = "hour"
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// ParseGranularity accepts the bucket names case-insensitively.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Hour, Day, Week, Month:
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
}

// Bounds returns the bucket of size g containing t and its label.
func (c *Calendar) Bounds(t time.Time, g Granularity) (start, end time.Time, label string, err error) {
	switch g {
	case Hour:
		start, end = c.HourBounds(t)
		return start, end, start.Format("2006-01-02 15:00"), nil
	case Day:
		start, end = c.DayBounds(t)
		return start, end, start.Format(KeyLayout), nil
	case Week:
		p := c.CurrentWeek(t)
		return p.Start, p.End, p.WeekKey, nil
	case Month:
		start, end = c.MonthBounds(t)
		return start, end, start.Format("2006-01"), nil
	}
	return time.Time{}, time.Time{}, "", fmt.Errorf("%w: %q", ErrUnknownGranularity, g)
}
