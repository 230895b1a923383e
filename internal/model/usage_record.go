package model

import "time"

// UsageRecord is one application's foreground usage over a sync window.
// Rows are append-only: once uploaded they are never updated or deleted.
type UsageRecord struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	DeviceID    string `gorm:"size:128;index;not null" json:"device_id"`
	UserID      string `gorm:"size:128" json:"user_id,omitempty"`
	PackageName string `gorm:"size:256;not null" json:"package_name"`
	AppName     string `gorm:"size:256;not null" json:"app_name"`

	// UsageTime is the total foreground time in milliseconds.
	UsageTime int64 `gorm:"not null" json:"usage_time"`

	// FirstUsed and LastUsed are millisecond epoch timestamps bounding the
	// observed usage inside the window.
	FirstUsed int64 `gorm:"not null" json:"first_used"`
	LastUsed  int64 `gorm:"not null" json:"last_used"`

	// Timestamp is the upload time in millisecond epoch. The maximum
	// Timestamp per device is the sync watermark.
	Timestamp int64 `gorm:"index;not null" json:"timestamp"`

	// StartPeriod and EndPeriod bound the sync window this record covers.
	StartPeriod int64 `gorm:"not null" json:"start_period"`
	EndPeriod   int64 `gorm:"not null" json:"end_period"`

	CreatedAt time.Time `json:"created_at"`
}
