package models

import (
	"time"
)

// Review is a customer's rating of a restaurant, tied to one of their
// orders. One review per order; reviews are never edited or deleted.
type Review struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UserID       uint   `gorm:"not null;index" json:"user_id"`
	User         User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RestaurantID uint   `gorm:"not null;index" json:"restaurant_id"`
	OrderID      uint   `gorm:"not null;uniqueIndex" json:"order_id"`
	Rating       int    `gorm:"not null" json:"rating"` // 1 to 5
	Comment      string `json:"comment"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the Review model
func (Review) TableName() string {
	return "reviews"
}
