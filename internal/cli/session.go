package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/adapters/blobstore"
	service "github.com/ParkerM2/Syrnia-Tracker-sub000/internal/app"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/config"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/pricing"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/week"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/pkg/logger"
)

// session holds what one command invocation opened.
type session struct {
	configPath  string
	metricsFile string
	stderr      io.Writer

	cfg *config.Config
	svc *service.Service
}

func (s *session) open(ctx context.Context) error {
	cfg, err := config.Load(ctx, s.configPath)
	if err != nil {
		return err
	}
	s.cfg = cfg

	if err := logger.InitWithWriter(s.stderr, cfg.LogFormat); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	log := logger.Get()
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	cal, err := week.NewCalendar(cfg.Timezone)
	if err != nil {
		return err
	}
	store, err := blobstore.Open(blobstore.Config{
		Driver:           cfg.StoreDriver,
		Path:             cfg.StorePath,
		FailureThreshold: cfg.BreakerFailureThreshold,
		OpenTimeout:      cfg.BreakerTimeout(),
	}, log.Named("blobstore"))
	if err != nil {
		return err
	}

	svc := service.New(
		service.WithStore(store),
		service.WithCalendar(cal),
		service.WithPriceBook(pricing.NewBook(
			pricing.WithPricesFromConfig(cfg.ItemPrices, cfg.DefaultItemPrice),
			pricing.WithCostPerDamagePoint(cfg.CostPerDamagePoint),
		)),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithKeys(service.Keys{
			Events:        cfg.EventsKey,
			WeekSummaries: cfg.WeekSummariesKey,
			Baselines:     cfg.BaselinesKey,
			Untracked:     cfg.UntrackedKey,
		}),
		service.WithLogger(log.Named("service")),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return fmt.Errorf("start service: %w", err)
	}
	s.svc = svc
	return nil
}

func (s *session) close() {
	if s.svc != nil {
		s.svc.Stop()
		s.svc = nil
	}
}
