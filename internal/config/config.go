// Package config defines the tracker configuration and how it is loaded.
//
// Conventions:
// - Keys are flat snake_case, matching the koanf tags below.
// - New returns the defaults; Load layers a YAML file and the environment on top.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// StoreDriver picks the blob store: memory, file, badger or sqlite.
	StoreDriver string `koanf:"store_driver" validate:"oneof=memory file badger sqlite"`

	// StorePath is the directory (file, badger, sqlite) the store lives in.
	// Empty keeps badger and sqlite in memory.
	StorePath string `koanf:"store_path" validate:"required_if=StoreDriver file"`

	// BreakerFailureThreshold is the number of consecutive store failures
	// that open the circuit.
	BreakerFailureThreshold uint32 `koanf:"breaker_failure_threshold" validate:"gte=1"`

	// BreakerTimeoutMS is how long an open circuit waits before probing.
	BreakerTimeoutMS int `koanf:"breaker_timeout_ms" validate:"gte=1"`

	// Timezone is the IANA zone every civil grouping uses.
	Timezone string `koanf:"timezone" validate:"required"`

	// CostPerDamagePoint prices each HP point consumed.
	CostPerDamagePoint float64 `koanf:"cost_per_damage_point" validate:"gte=0"`

	// DefaultItemPrice is used for items missing from ItemPrices.
	DefaultItemPrice float64 `koanf:"default_item_price" validate:"gte=0"`

	// ItemPrices maps item names to their unit price.
	ItemPrices map[string]float64 `koanf:"item_prices" validate:"dive,gte=0"`

	// DedupeSize bounds the append-time duplicate window.
	DedupeSize int `koanf:"dedupe_size" validate:"gte=1"`

	// Blob keys the engine persists under.
	EventsKey        string `koanf:"events_key" validate:"required,nefield=WeekSummariesKey"`
	WeekSummariesKey string `koanf:"week_summaries_key" validate:"required"`
	BaselinesKey     string `koanf:"baselines_key" validate:"required"`
	UntrackedKey     string `koanf:"untracked_key" validate:"required"`
}

// New creates a Config holding the defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		StoreDriver:             "file",
		StorePath:               "./data",
		BreakerFailureThreshold: 5,
		BreakerTimeoutMS:        30_000,
		Timezone:                "America/New_York",
		CostPerDamagePoint:      2.5,
		DefaultItemPrice:        0,
		ItemPrices:              map[string]float64{},
		DedupeSize:              50_000,
		EventsKey:               "events_log",
		WeekSummariesKey:        "week_summaries",
		BaselinesKey:            "exp_baselines",
		UntrackedKey:            "untracked_records",
	}
}

// BreakerTimeout returns BreakerTimeoutMS as a duration.
func (c *Config) BreakerTimeout() time.Duration {
	return time.Duration(c.BreakerTimeoutMS) * time.Millisecond
}
