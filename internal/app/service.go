// Package service provides the tracker engine: the append path, window and
// weekly queries, and untracked gap resolution over a blob store.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/adapters/blobstore"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/aggregate"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/dedupe"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/pricing"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/tracker"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/week"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/pkg/logger"
)

// Keys names the blobs the service persists.
type Keys struct {
	Events        string
	WeekSummaries string
	Baselines     string
	Untracked     string
}

// DefaultKeys are used unless WithKeys overrides them.
var DefaultKeys = Keys{
	Events:        "events_log",
	WeekSummaries: "week_summaries",
	Baselines:     "exp_baselines",
	Untracked:     "untracked_records",
}

// Service is the tracker engine. Mutations are serialized; reads only take
// the read lock.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     blobstore.BlobStore
	deduper   dedupe.Deduper
	agg       *aggregate.Aggregator
	cal       *week.Calendar
	book      *pricing.Book
	baselines *tracker.DeltaTracker

	// Configuration
	keys       Keys
	dedupeSize int
	now        func() time.Time

	// State
	started bool
	stats   *statsCollector

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the blob store. The service closes it on Stop.
func WithStore(store blobstore.BlobStore) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithCalendar sets the calendar every civil grouping uses.
func WithCalendar(cal *week.Calendar) Option {
	return func(s *Service) {
		if cal != nil {
			s.cal = cal
		}
	}
}

// WithPriceBook sets the item price table.
func WithPriceBook(book *pricing.Book) Option {
	return func(s *Service) {
		if book != nil {
			s.book = book
		}
	}
}

// WithDedupeSize sets the size of the append-time duplicate window.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithKeys overrides the blob keys. Empty fields keep their defaults.
func WithKeys(keys Keys) Option {
	return func(s *Service) {
		if keys.Events != "" {
			s.keys.Events = keys.Events
		}
		if keys.WeekSummaries != "" {
			s.keys.WeekSummaries = keys.WeekSummaries
		}
		if keys.Baselines != "" {
			s.keys.Baselines = keys.Baselines
		}
		if keys.Untracked != "" {
			s.keys.Untracked = keys.Untracked
		}
	}
}

// WithClock sets the time source used for the current week.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		keys:       DefaultKeys,
		dedupeSize: 50000,
		now:        time.Now,
		stats:      newStatsCollector(),
		logger:     nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = blobstore.NewMemory()
	}
	if s.book == nil {
		s.book = pricing.NewBook()
	}
	s.agg = aggregate.New(aggregate.WithPriceBook(s.book), aggregate.WithCalendar(s.cal))
	s.cal = s.agg.Calendar()

	return s
}

// Start loads the persisted exp baselines and primes the duplicate window
// from the stored log.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting tracker service...")

	baselines, err := s.loadBaselines(ctx)
	if err != nil {
		return err
	}
	s.baselines = tracker.NewDeltaTracker(baselines)

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	events, _, err := s.loadEvents(ctx)
	if err != nil {
		return err
	}
	s.stats.exportLog()
	for _, e := range events {
		s.deduper.SeenAndRecord(ctx, dedupe.CanonicalKey(e))
	}

	s.started = true
	s.logger.Info(ctx, "tracker service started",
		logger.Int("storedEvents", len(events)),
		logger.Int("baselines", len(baselines)),
		logger.String("timezone", s.cal.Location().String()),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop closes the blob store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping tracker service...")
	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing blob store failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(context.Background(), "tracker service stopped")
}

// Calendar returns the calendar every civil grouping uses.
func (s *Service) Calendar() *week.Calendar { return s.cal }

// PriceBook returns the item price table.
func (s *Service) PriceBook() *pricing.Book { return s.book }
