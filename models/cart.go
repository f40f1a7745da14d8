package models

import (
	"time"
)

// Cart is a per-user shopping cart. One cart per user, enforced by the
// unique index. All items in a cart belong to the same restaurant.
type Cart struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Items       []CartItem `gorm:"foreignKey:CartID" json:"items"`
	TotalAmount float64    `gorm:"not null;default:0" json:"total_amount"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Cart model
func (Cart) TableName() string {
	return "carts"
}

// RecomputeTotal derives the cart total from the snapshot prices of its
// lines. Called on every mutation.
func (c *Cart) RecomputeTotal() {
	total := 0.0
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	c.TotalAmount = total
}

// RestaurantID returns the restaurant the cart currently belongs to, or 0
// for an empty cart.
func (c *Cart) RestaurantID() uint {
	if len(c.Items) == 0 {
		return 0
	}
	return c.Items[0].RestaurantID
}

// CartItem is a cart line. Price and RestaurantID are denormalized from the
// product at the time the item was added.
type CartItem struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	CartID       uint    `gorm:"not null;index" json:"cart_id"`
	ProductID    uint    `gorm:"not null" json:"product_id"`
	Product      Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity     int     `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price        float64 `gorm:"not null" json:"price"`
	RestaurantID uint    `gorm:"not null" json:"restaurant_id"`
}

// TableName specifies the table name for the CartItem model
func (CartItem) TableName() string {
	return "cart_items"
}
