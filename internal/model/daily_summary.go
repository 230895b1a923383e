package model

import "time"

// DailyUsageSummary aggregates one sync cycle's window for a local calendar
// date. The store enforces no uniqueness on (device_id, date): every cycle
// that uploads records appends another row for its date.
type DailyUsageSummary struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	DeviceID string `gorm:"size:128;index;not null" json:"device_id"`
	UserID   string `gorm:"size:128" json:"user_id,omitempty"`

	// Date is the local date string, e.g. "2026-08-28".
	Date string `gorm:"size:10;index;not null" json:"date"`

	// TotalScreenTime is the cycle's total foreground time in milliseconds.
	TotalScreenTime int64  `gorm:"not null" json:"total_screen_time"`
	AppCount        int    `gorm:"not null" json:"app_count"`
	MostUsedApp     string `gorm:"size:256;not null" json:"most_used_app"`

	CreatedAt time.Time `json:"created_at"`
}
