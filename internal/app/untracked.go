package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/gaps"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/model"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/pkg/logger"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/pkg/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// UnresolvedGaps groups the unresolved untracked records into gaps.
func (s *Service) UnresolvedGaps(ctx context.Context) ([]model.Gap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	records, err := s.loadUntracked(ctx)
	if err != nil {
		return nil, err
	}
	return gaps.GroupIntoGaps(records, s.cal), nil
}

// ResolveGap backfills the records ids with rows on date and marks them
// resolved. The synthetic events and the resolved records are stored
// together; on failure neither is.
func (s *Service) ResolveGap(ctx context.Context, ids []string, rows []model.Row, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	records, err := s.loadUntracked(ctx)
	if err != nil {
		return err
	}
	resolved, err := gaps.MarkResolved(records, ids)
	if err != nil {
		return err
	}
	events, err := gaps.BuildEvents(ids, rows, date, s.cal)
	if err != nil {
		return err
	}
	blob, err := json.Marshal(resolved)
	if err != nil {
		return fmt.Errorf("encode untracked records: %w", err)
	}

	extra := map[string][]byte{s.keys.Untracked: blob}
	if len(events) == 0 {
		err = s.writeAll(ctx, extra)
	} else {
		err = s.appendLocked(ctx, events, extra)
	}
	if err != nil {
		return err
	}

	s.stats.addSynthetic(len(events))
	metrics.RecordSyntheticEvents(len(events))
	metrics.RecordGapResolved()
	s.logger.Info(ctx, "gap resolved",
		logger.Int("records", len(ids)),
		logger.Int("events", len(events)),
	)
	return nil
}

// ImportUntracked stores records reported by the external reconciler. A
// record replaces the stored one with the same id; a stored record that is
// already resolved stays resolved.
func (s *Service) ImportUntracked(ctx context.Context, records []model.UntrackedRecord) error {
	for i := range records {
		if err := validate.Struct(records[i]); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				return fmt.Errorf("%w: record %d (%q): %s", ErrInvalidUntracked, i, records[i].ID, verrs.Error())
			}
			return fmt.Errorf("%w: record %d: %w", ErrInvalidUntracked, i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	stored, err := s.loadUntracked(ctx)
	if err != nil {
		return err
	}

	byID := make(map[string]int, len(stored))
	for i, r := range stored {
		byID[r.ID] = i
	}
	added := 0
	for _, r := range records {
		if i, ok := byID[r.ID]; ok {
			r.Resolved = r.Resolved || stored[i].Resolved
			stored[i] = r
			continue
		}
		byID[r.ID] = len(stored)
		stored = append(stored, r)
		added++
	}
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].StartUTC.Before(stored[j].StartUTC) })

	blob, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode untracked records: %w", err)
	}
	if err := s.writeAll(ctx, map[string][]byte{s.keys.Untracked: blob}); err != nil {
		return err
	}
	s.logger.Info(ctx, "untracked records imported",
		logger.Int("received", len(records)),
		logger.Int("added", added),
	)
	return nil
}
