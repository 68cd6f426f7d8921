package blobstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const badgerKeyPrefix = "blob:"

// Badger keeps blobs in an embedded BadgerDB.
type Badger struct {
	db *badger.DB
}

// NewBadger opens a BadgerDB at path. An empty path opens an in-memory
// database.
func NewBadger(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Get(_ context.Context, key string) ([]byte, bool, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, b.wrap("get", key, err)
	}
	return val, true, nil
}

func (b *Badger) Set(_ context.Context, key string, val []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerKeyPrefix+key), val)
	})
	if err != nil {
		return b.wrap("set", key, err)
	}
	return nil
}

// SetAll writes every blob in one transaction.
func (b *Badger) SetAll(_ context.Context, blobs map[string][]byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		for k, v := range blobs {
			if err := txn.Set([]byte(badgerKeyPrefix+k), v); err != nil {
				return fmt.Errorf("set %s: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		return b.wrap("set all", "", err)
	}
	return nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}

func (b *Badger) wrap(op, key string, err error) error {
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	return fmt.Errorf("badger %s %s: %w", op, key, err)
}
