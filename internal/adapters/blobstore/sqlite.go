package blobstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// blobRow is one stored blob.
type blobRow struct {
	Key       string `gorm:"column:blob_key;primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}

func (blobRow) TableName() string { return "blobs" }

// SQLite keeps blobs in a single table of a pure-Go SQLite database.
type SQLite struct {
	db *gorm.DB
}

// NewSQLite opens (creating if needed) the database at path. ":memory:"
// opens a private in-memory database.
func NewSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// every connection to :memory: would be a separate database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&blobRow{}); err != nil {
		sqlDB.Close() //nolint:errcheck,gosec // migrate error wins
		return nil, fmt.Errorf("migrate blobs: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row blobRow
	err := s.db.WithContext(ctx).Where("blob_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite get %s: %w", key, err)
	}
	return row.Value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key string, val []byte) error {
	if err := upsert(s.db.WithContext(ctx), key, val); err != nil {
		return fmt.Errorf("sqlite set %s: %w", key, err)
	}
	return nil
}

// SetAll writes every blob in one transaction.
func (s *SQLite) SetAll(ctx context.Context, blobs map[string][]byte) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for k, v := range blobs {
			if err := upsert(tx, k, v); err != nil {
				return fmt.Errorf("sqlite set %s: %w", k, err)
			}
		}
		return nil
	})
}

func upsert(db *gorm.DB, key string, val []byte) error {
	if val == nil {
		val = []byte{}
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "blob_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&blobRow{Key: key, Value: val}).Error
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
