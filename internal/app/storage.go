package service

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/adapters/blobstore"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/model"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/quoted"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/record"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/tracker"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/pkg/logger"
	"github.com/goccy/go-json"
)

func (s *Service) get(ctx context.Context, key string) ([]byte, error) {
	val, _, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrStoreUnavailable, key, err)
	}
	return val, nil
}

// writeAll replaces blobs in one batch when the store supports it. Otherwise
// the blobs are written one by one and the ones already written are restored
// if a later write fails.
func (s *Service) writeAll(ctx context.Context, blobs map[string][]byte) error {
	if b, ok := s.store.(blobstore.Batcher); ok && blobstore.CanBatch(s.store) {
		if err := b.SetAll(ctx, blobs); err != nil {
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		return nil
	}

	keys := slices.Sorted(maps.Keys(blobs))
	prev := make(map[string][]byte, len(keys))
	if len(keys) > 1 {
		for _, k := range keys {
			v, err := s.get(ctx, k)
			if err != nil {
				return err
			}
			prev[k] = v
		}
	}
	for i, k := range keys {
		if err := s.store.Set(ctx, k, blobs[k]); err != nil {
			s.restore(ctx, keys[:i], prev)
			return fmt.Errorf("%w: set %s: %w", ErrStoreUnavailable, k, err)
		}
	}
	return nil
}

func (s *Service) restore(ctx context.Context, keys []string, prev map[string][]byte) {
	for _, k := range keys {
		if err := s.store.Set(ctx, k, prev[k]); err != nil {
			s.logger.Error(ctx, "restoring blob after failed write",
				logger.String("key", k),
				logger.Error(err),
			)
		}
	}
}

// loadEvents reads and decodes the whole log, header and malformed rows
// skipped. The raw blob is returned for appending.
func (s *Service) loadEvents(ctx context.Context) ([]model.Event, []byte, error) {
	raw, err := s.get(ctx, s.keys.Events)
	if err != nil {
		return nil, nil, err
	}
	return s.decodeLog(ctx, raw), raw, nil
}

// decodeLog only tallies into Stats. Queries reread the whole log, so the
// decode counters are fed at Start and on append instead.
func (s *Service) decodeLog(ctx context.Context, raw []byte) []model.Event {
	tally := logTally{decoded: map[string]int64{}}
	var events []model.Event
	for i, fields := range quoted.ParseRecords(string(raw)) {
		if record.IsHeader(fields) {
			continue
		}
		e, shape, ok := record.DecodeShape(fields)
		if !ok {
			tally.malformed++
			s.logger.Debug(ctx, "skipping malformed record",
				logger.Int("record", i),
				logger.Int("fields", len(fields)),
			)
			continue
		}
		tally.decoded[shape]++
		events = append(events, e)
	}
	s.stats.setLog(tally)
	return events
}

// appendLog returns raw with events appended as canonical rows. An empty
// log gets the header first.
func appendLog(raw []byte, events []model.Event) []byte {
	var buf bytes.Buffer
	if len(bytes.TrimSpace(raw)) == 0 {
		buf.WriteString(quoted.JoinLine(record.Header()))
		buf.WriteByte('\n')
	} else {
		buf.Write(raw)
		if raw[len(raw)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	for _, e := range events {
		buf.WriteString(quoted.JoinLine(record.Encode(e)))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func (s *Service) loadBaselines(ctx context.Context) (tracker.Baselines, error) {
	raw, err := s.get(ctx, s.keys.Baselines)
	if err != nil {
		return nil, err
	}
	b := tracker.Baselines{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return b, nil
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.keys.Baselines, err)
	}
	return b, nil
}

func (s *Service) loadUntracked(ctx context.Context) ([]model.UntrackedRecord, error) {
	raw, err := s.get(ctx, s.keys.Untracked)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var records []model.UntrackedRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.keys.Untracked, err)
	}
	return records, nil
}

func (s *Service) loadWeekSummaries(ctx context.Context) ([]model.WeekSummary, error) {
	raw, err := s.get(ctx, s.keys.WeekSummaries)
	if err != nil {
		return nil, err
	}
	rows, skipped := decodeWeekSummaries(raw)
	if skipped > 0 {
		s.logger.Debug(ctx, "skipped unreadable week summary rows", logger.Int("rows", skipped))
	}
	return rows, nil
}
