package service

import (
	"maps"
	"sync"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/pkg/metrics"
)

// Stats reports what the service has decoded and appended.
type Stats struct {
	Started bool `json:"started"`
	// DecodedByShape and Malformed describe the most recent full read of
	// the log.
	DecodedByShape map[string]int64 `json:"decodedByShape"`
	Malformed      int64            `json:"malformed"`
	// Counters since Start.
	Appended        int64 `json:"appended"`
	Duplicates      int64 `json:"duplicates"`
	SyntheticEvents int64 `json:"syntheticEvents"`
	RejectedRows    int64 `json:"rejectedRows"`
	DedupeSize      int64 `json:"dedupeSize"`
}

type logTally struct {
	decoded   map[string]int64
	malformed int64
}

type statsCollector struct {
	mu        sync.Mutex
	log       logTally
	appended  int64
	dups      int64
	synthetic int64
	rejected  int64
}

func newStatsCollector() *statsCollector {
	return &statsCollector{log: logTally{decoded: map[string]int64{}}}
}

func (c *statsCollector) setLog(t logTally) {
	c.mu.Lock()
	c.log = t
	c.mu.Unlock()
}

// exportLog feeds the current tally to the decode counters.
func (c *statsCollector) exportLog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	metrics.RecordLogLoaded(c.log.decoded, c.log.malformed)
}

func (c *statsCollector) addAppended(appended, dups int) {
	c.mu.Lock()
	c.appended += int64(appended)
	c.dups += int64(dups)
	c.mu.Unlock()
}

func (c *statsCollector) addSynthetic(n int) {
	c.mu.Lock()
	c.synthetic += int64(n)
	c.mu.Unlock()
}

func (c *statsCollector) addRejected() {
	c.mu.Lock()
	c.rejected++
	c.mu.Unlock()
}

func (c *statsCollector) snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		DecodedByShape:  maps.Clone(c.log.decoded),
		Malformed:       c.log.malformed,
		Appended:        c.appended,
		Duplicates:      c.dups,
		SyntheticEvents: c.synthetic,
		RejectedRows:    c.rejected,
	}
}

// Stats returns decode and append counters.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.stats.snapshot()
	st.Started = s.started
	if s.deduper != nil {
		st.DedupeSize = s.deduper.Size()
	}
	return st
}
