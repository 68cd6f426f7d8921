// Package blobstore provides the key/value blob stores the activity log,
// weekly summaries, exp baselines and untracked records are persisted in.
package blobstore

import "context"

// BlobStore is an opaque get/set store of whole blobs.
type BlobStore interface {
	// Get returns the blob stored under key. A missing key is not an error;
	// found reports whether it existed.
	Get(ctx context.Context, key string) (val []byte, found bool, err error)
	// Set replaces the blob stored under key.
	Set(ctx context.Context, key string, val []byte) error
	// Close releases the store.
	Close() error
}

// Batcher is implemented by stores that can replace several blobs atomically.
type Batcher interface {
	SetAll(ctx context.Context, blobs map[string][]byte) error
}

// wrapper is implemented by stores that decorate another store.
type wrapper interface {
	Unwrap() BlobStore
}

// CanBatch reports whether s, or the store it decorates, writes several blobs
// atomically.
func CanBatch(s BlobStore) bool {
	for s != nil {
		if w, ok := s.(wrapper); ok {
			s = w.Unwrap()
			continue
		}
		_, ok := s.(Batcher)
		return ok
	}
	return false
}
