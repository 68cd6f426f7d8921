package blobstore

import "errors"

// Sentinel kinds for blob store errors.
var (
	ErrClosed        = errors.New("blob store closed")
	ErrUnknownDriver = errors.New("unknown blob store driver")
	ErrInvalidKey    = errors.New("invalid blob key")
	ErrUnavailable   = errors.New("blob store unavailable")

	ErrBatchUnsupported = errors.New("blob store cannot write several blobs atomically")
)
