package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/dedupe"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/model"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/week"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/pkg/logger"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/pkg/metrics"
)

func sinceMs(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}

// collapsed reads the log and folds repeated observations.
func (s *Service) collapsed(ctx context.Context) ([]model.Event, error) {
	events, _, err := s.loadEvents(ctx)
	if err != nil {
		return nil, err
	}
	out := dedupe.Collapse(events)
	metrics.RecordEventsMerged(len(events) - len(out))
	return out, nil
}

// QueryWindow summarizes the log over [start, end). The summary is usable
// even when err is set; it is then empty.
func (s *Service) QueryWindow(ctx context.Context, start, end time.Time) (model.PeriodSummary, error) {
	began := time.Now()
	defer func() { metrics.RecordQueryLatency("window", sinceMs(began)) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return model.NewPeriodSummary(start, end), ErrNotStarted
	}
	events, err := s.collapsed(ctx)
	if err != nil {
		return model.NewPeriodSummary(start, end), err
	}
	return s.agg.Aggregate(events, start, end), nil
}

// QueryBuckets splits [start, end) into calendar buckets and summarizes each.
func (s *Service) QueryBuckets(ctx context.Context, start, end time.Time, g week.Granularity) ([]model.Bucket, error) {
	began := time.Now()
	defer func() { metrics.RecordQueryLatency("buckets", sinceMs(began)) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	events, err := s.collapsed(ctx)
	if err != nil {
		return nil, err
	}
	return s.agg.Buckets(events, start, end, g)
}

// CurrentWeekSummary computes the current week's roll-up and stores it. A
// week without activity is returned but not stored.
func (s *Service) CurrentWeekSummary(ctx context.Context) (model.WeekSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return model.WeekSummary{}, ErrNotStarted
	}
	now := s.now()
	period := s.cal.CurrentWeek(now)
	events, err := s.collapsed(ctx)
	if err != nil {
		return model.WeekSummary{}, err
	}
	ws := s.agg.WeekSummary(events, period, now)
	if ws.TotalEntries == 0 {
		return ws, nil
	}
	if err := s.updateWeekSummary(ctx, ws); err != nil {
		return ws, err
	}
	return ws, nil
}

func (s *Service) updateWeekSummary(ctx context.Context, ws model.WeekSummary) error {
	rows, err := s.loadWeekSummaries(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range rows {
		if rows[i].WeekKey == ws.WeekKey {
			rows[i] = ws
			replaced = true
		}
	}
	if !replaced {
		rows = append(rows, ws)
	}
	blob, err := encodeWeekSummaries(rows)
	if err != nil {
		return fmt.Errorf("encode week summaries: %w", err)
	}
	if err := s.writeAll(ctx, map[string][]byte{s.keys.WeekSummaries: blob}); err != nil {
		return err
	}
	metrics.RecordWeekSummaryUpdate()
	s.logger.Debug(ctx, "week summary updated",
		logger.String("week", ws.WeekKey),
		logger.Int64("totalExp", ws.TotalExp),
	)
	return nil
}

// SummarizeWeek computes the roll-up of the week starting on key without
// storing it.
func (s *Service) SummarizeWeek(ctx context.Context, key string) (model.WeekSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return model.WeekSummary{}, ErrNotStarted
	}
	period, err := s.cal.WeekBounds(key)
	if err != nil {
		return model.WeekSummary{}, err
	}
	events, err := s.collapsed(ctx)
	if err != nil {
		return model.WeekSummary{}, err
	}
	return s.agg.WeekSummary(events, period, s.now()), nil
}

// WeekSummaries returns the stored weekly rows ordered by week key.
func (s *Service) WeekSummaries(ctx context.Context) ([]model.WeekSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	rows, err := s.loadWeekSummaries(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].WeekKey < rows[j].WeekKey })
	return rows, nil
}

// ResetWeekSummaries removes every stored weekly row.
func (s *Service) ResetWeekSummaries(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	blob, err := encodeWeekSummaries(nil)
	if err != nil {
		return err
	}
	if err := s.writeAll(ctx, map[string][]byte{s.keys.WeekSummaries: blob}); err != nil {
		return err
	}
	s.logger.Info(ctx, "week summaries reset")
	return nil
}
