package models

import (
	"time"
)

// Category groups products. A nil RestaurantID marks a global category
// available to every restaurant; otherwise the category is specific to one
// restaurant.
type Category struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null;index" json:"name"`
	Image        string    `json:"image"`
	RestaurantID *uint     `gorm:"index" json:"restaurant_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Category model
func (Category) TableName() string {
	return "categories"
}
