package service

import "errors"

var (
	// ErrStoreUnavailable wraps every blob store failure. The operation can be
	// retried; no in-memory state was changed.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrNotStarted is returned by operations called before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrMalformedRecord is returned when a candidate row has too few fields
	// to decode.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrInvalidUntracked is returned when an imported untracked record fails
	// validation.
	ErrInvalidUntracked = errors.New("invalid untracked record")
)
