package service

import (
	"context"
	"fmt"
	"maps"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/dedupe"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/model"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/record"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/tracker"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/pkg/logger"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/pkg/metrics"
	"github.com/goccy/go-json"
)

// AppendCandidate decodes a freshly extracted row, derives its exp gain from
// the cumulative counter and appends it to the log. The baselines only move
// once the log and baselines are stored, so a failed append can be retried
// with the same row.
func (s *Service) AppendCandidate(ctx context.Context, fields []string) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return model.Event{}, ErrNotStarted
	}

	e, shape, ok := record.DecodeShape(fields)
	if !ok {
		s.stats.addRejected()
		metrics.RecordMalformed()
		return model.Event{}, fmt.Errorf("%w: %d fields", ErrMalformedRecord, len(fields))
	}
	metrics.RecordDecoded(shape)

	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}
	next := s.baselines.Clone()
	e = derive(e, next)

	baselines, err := json.Marshal(next.Snapshot())
	if err != nil {
		return model.Event{}, fmt.Errorf("encode baselines: %w", err)
	}
	if err := s.appendLocked(ctx, []model.Event{e}, map[string][]byte{s.keys.Baselines: baselines}); err != nil {
		return model.Event{}, err
	}
	s.baselines = next

	s.logger.Debug(ctx, "appended candidate",
		logger.String("skill", e.Skill),
		logger.Int64("gainedExp", e.GainedExp),
		logger.String("shape", shape),
	)
	return e, nil
}

// derive fills GainedExp from the cumulative counter when the row carries
// one and drops the secondary exp entry that repeats the primary skill.
func derive(e model.Event, t *tracker.DeltaTracker) model.Event {
	if e.TotalExp.Valid && e.Skill != "" {
		e.GainedExp = t.ComputeGain(e.Skill, e.TotalExp.Value)
	}
	e.CombatExp = tracker.FilterCombatExp(e.Skill, e.CombatExp)
	return e
}

// AppendEvents appends already derived events to the log as they are.
func (s *Service) AppendEvents(ctx context.Context, events []model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	if len(events) == 0 {
		return nil
	}
	return s.appendLocked(ctx, events, nil)
}

// appendLocked writes events to the log together with extra blobs. Repeated
// observations are still appended; they collapse when the log is read.
func (s *Service) appendLocked(ctx context.Context, events []model.Event, extra map[string][]byte) error {
	var fresh []string
	dups := 0
	for _, e := range events {
		key := dedupe.CanonicalKey(e)
		if s.deduper.SeenAndRecord(ctx, key) {
			dups++
			metrics.RecordEventDuplicate()
			s.logger.Debug(ctx, "repeated observation", logger.String("key", key))
			continue
		}
		fresh = append(fresh, key)
	}

	raw, err := s.get(ctx, s.keys.Events)
	if err == nil {
		blobs := map[string][]byte{s.keys.Events: appendLog(raw, events)}
		maps.Copy(blobs, extra)
		err = s.writeAll(ctx, blobs)
	}
	if err != nil {
		for _, key := range fresh {
			s.deduper.Unrecord(ctx, key)
		}
		s.logger.Warn(ctx, "append failed", logger.Int("events", len(events)), logger.Error(err))
		return err
	}

	s.stats.addAppended(len(events), dups)
	for range events {
		metrics.RecordEventAppended()
	}
	return nil
}
