// Package dedupe collapses repeated observations of one activity event and
// keeps a bounded index of recently appended event keys.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen canonical keys so repeated observations are noticed
// before they reach the log.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key, used when the append that recorded it failed.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

type slot struct {
	key  string
	live bool
}

// inMemoryDeduper keeps keys in a ring so the oldest key is evicted first
// once maxSize is reached. maxSize <= 0 keeps every key.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]int // key -> slot in ring, -1 when unbounded
	ring    []slot
	next    int
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.ring = make([]slot, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize <= 0 {
		d.seen[key] = -1
		return false
	}

	// evict whatever still occupies the slot
	if old := d.ring[d.next]; old.live {
		delete(d.seen, old.key)
	}
	d.ring[d.next] = slot{key: key, live: true}
	d.seen[key] = d.next
	d.next = (d.next + 1) % d.maxSize
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i, ok := d.seen[key]
	if !ok {
		return
	}
	delete(d.seen, key)
	if i >= 0 {
		d.ring[i] = slot{}
	}
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
