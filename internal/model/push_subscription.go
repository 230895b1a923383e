package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// A subscription is scoped to one device and receives that device's sync
// cycle outcomes.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	DeviceID  string    `gorm:"size:128;index;not null"`
	CreatedAt time.Time `gorm:"not null"`
}
