package blobstore

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/pkg/logger"
)

// Supported drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
)

// Config selects and tunes a store.
type Config struct {
	Driver           string
	Path             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Open builds the configured store wrapped in a Breaker.
func Open(cfg Config, log logger.Logger) (BlobStore, error) {
	var (
		inner BlobStore
		err   error
	)
	switch cfg.Driver {
	case DriverMemory:
		inner = NewMemory()
	case DriverFile:
		inner, err = NewFile(cfg.Path)
	case DriverBadger:
		inner, err = NewBadger(cfg.Path)
	case DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		} else if filepath.Ext(path) == "" {
			path = filepath.Join(path, "tracker.db")
		}
		inner, err = NewSQLite(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	return NewBreaker(inner, cfg.Driver,
		WithFailureThreshold(cfg.FailureThreshold),
		WithOpenTimeout(cfg.OpenTimeout),
		WithBreakerLogger(log),
	), nil
}
