package models

import (
	"time"
)

// OTP is a one-time login code issued for a phone number. One row per phone;
// re-requesting a code overwrites the previous one.
type OTP struct {
	Phone     string    `gorm:"primaryKey" json:"phone"`
	Code      string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the OTP model
func (OTP) TableName() string {
	return "otps"
}

// Expired reports whether the code is older than the given time-to-live.
func (o *OTP) Expired(ttl time.Duration) bool {
	return time.Since(o.CreatedAt) > ttl
}
