package gaps

import "errors"

var (
	// ErrNoRecords is returned when a resolve names no records.
	ErrNoRecords = errors.New("no untracked records given")
	// ErrUnknownRecord is returned when a resolve names a record that does not exist.
	ErrUnknownRecord = errors.New("unknown untracked record")
	// ErrInvalidHour is returned for a backfill row outside 0-23.
	ErrInvalidHour = errors.New("invalid hour")
)
