package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// LedgerRecord is one key of the Ledger Store.
type LedgerRecord struct {
	Key       string    `gorm:"column:record_key;primaryKey"`
	UpdatedAt time.Time `gorm:"index"`

	Value []byte
}

// SQLite is a Store backed by an embedded sqlite database.
type SQLite struct {
	db *gorm.DB
}

// Open opens (or creates) the sqlite database at dbFilePath. Pass ":memory:"
// for a throwaway database.
func Open(dbFilePath string) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{
		// Avoid printing "record not found" on every cold load
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database")
		return nil, err
	}

	if dbFilePath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return NewSQLite(db)
}

// NewSQLite wraps an existing connection and migrates the records table.
func NewSQLite(db *gorm.DB) (*SQLite, error) {
	if err := db.AutoMigrate(&LedgerRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate ledger records: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLite) Load(key string) ([]byte, error) {
	var record LedgerRecord
	result := s.db.Where("record_key = ?", key).First(&record)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return record.Value, nil
}

func (s *SQLite) Save(key string, data []byte) error {
	record := LedgerRecord{
		Key:       key,
		UpdatedAt: time.Now(),
		Value:     data,
	}

	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record)

	return result.Error
}

func (s *SQLite) Delete(key string) error {
	return s.db.Where("record_key = ?", key).Delete(&LedgerRecord{}).Error
}

func (s *SQLite) Keys(prefix string) ([]string, error) {
	var keys []string
	result := s.db.Model(&LedgerRecord{}).
		Where("record_key LIKE ?", prefix+"%").
		Order("record_key asc").
		Pluck("record_key", &keys)
	if result.Error != nil {
		return nil, result.Error
	}

	// LIKE treats '_' as a wildcard
	return lo.Filter(keys, func(k string, _ int) bool {
		return strings.HasPrefix(k, prefix)
	}), nil
}
