package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a menu item belonging to one restaurant.
type Product struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	RestaurantID uint     `gorm:"not null;index" json:"restaurant_id"`
	Restaurant   User     `gorm:"foreignKey:RestaurantID" json:"-"`
	Name         string   `gorm:"not null" json:"name"`
	Image        string   `json:"image"`
	Price        float64  `gorm:"not null" json:"price"`
	CategoryID   uint     `gorm:"index" json:"category_id"`
	Category     Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Description  string   `json:"description"`
	IsVeg        bool     `gorm:"default:true" json:"is_veg"`
	IsAvailable  bool     `gorm:"default:true" json:"is_available"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}
