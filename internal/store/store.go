package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"usage-sync-backend/internal/model"
)

// Store defines the interface for all remote-store operations. Usage data is
// append-only: there are no update or delete operations on it.
type Store interface {
	// InsertUsageRecords appends a batch of usage records in one call.
	InsertUsageRecords(ctx context.Context, records []model.UsageRecord) error

	// InsertDailySummary appends one daily summary row.
	InsertDailySummary(ctx context.Context, summary *model.DailyUsageSummary) error

	// LastSyncTime returns the maximum upload timestamp across the device's
	// records, or 0 when the device has never synced.
	LastSyncTime(ctx context.Context, deviceID string) (int64, error)

	// DB exposes the underlying handle for read-only API handlers.
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) InsertUsageRecords(ctx context.Context, records []model.UsageRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&records).Error; err != nil {
		return fmt.Errorf("failed to insert %d usage records: %w", len(records), err)
	}
	return nil
}

func (s *gormStore) InsertDailySummary(ctx context.Context, summary *model.DailyUsageSummary) error {
	if err := s.db.WithContext(ctx).Create(summary).Error; err != nil {
		return fmt.Errorf("failed to insert daily summary for %s: %w", summary.Date, err)
	}
	return nil
}

func (s *gormStore) LastSyncTime(ctx context.Context, deviceID string) (int64, error) {
	var last int64
	err := s.db.WithContext(ctx).
		Model(&model.UsageRecord{}).
		Where("device_id = ?", deviceID).
		Select("COALESCE(MAX(timestamp), 0)").
		Scan(&last).Error
	if err != nil {
		return 0, fmt.Errorf("failed to query last sync time for device %s: %w", deviceID, err)
	}
	return last, nil
}
