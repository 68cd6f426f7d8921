package week

import "errors"

var (
	// ErrInvalidWeekKey is returned when a week key is not a Sunday date.
	ErrInvalidWeekKey = errors.New("invalid week key")
	// ErrUnknownTimezone is returned when the configured zone cannot be loaded.
	ErrUnknownTimezone = errors.New("unknown timezone")
	// ErrUnknownGranularity is returned for an unsupported bucket size.
	ErrUnknownGranularity = errors.New("unknown granularity")
	// ErrInvalidDate is returned when a civil date cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")
)
