package models

import (
	"time"
)

// Address is a saved delivery address in a user's address book.
type Address struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	UserID    uint    `gorm:"not null;index" json:"user_id"`
	Title     string  `gorm:"not null" json:"title"` // e.g. "Home", "Work"
	Address   string  `gorm:"not null" json:"address"`
	City      string  `gorm:"not null" json:"city"`
	Lat       float64 `gorm:"not null" json:"lat"`
	Lng       float64 `gorm:"not null" json:"lng"`
	IsDefault bool    `gorm:"default:false" json:"is_default"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Address model
func (Address) TableName() string {
	return "addresses"
}
