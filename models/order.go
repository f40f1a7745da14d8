package models

import (
	"time"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderPreparing      OrderStatus = "preparing"
	OrderReady          OrderStatus = "ready"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

// PaymentCOD is the only supported payment method (cash on delivery,
// optionally backed by a manual UPI screenshot).
const PaymentCOD = "cod"

// Order is a permanent record of a placed order. The delivery address is a
// snapshot captured at creation time and the item prices are the prices at
// order time; neither is ever recomputed from live data.
type Order struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	OrderRef     string      `gorm:"uniqueIndex;not null" json:"order_ref"` // human-readable "#ORD-<n>"
	UserID       uint        `gorm:"not null;index" json:"user_id"`
	User         User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RestaurantID uint        `gorm:"not null;index" json:"restaurant_id"`
	Restaurant   User        `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	Items        []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	TotalAmount  float64     `gorm:"not null" json:"total_amount"`
	Status       OrderStatus `gorm:"not null;default:'pending'" json:"status"`

	PaymentMethod     string  `gorm:"not null;default:'cod'" json:"payment_method"`
	PaymentScreenshot *string `json:"payment_screenshot,omitempty"`

	// Delivery address snapshot, immutable after creation
	DeliveryAddress string   `json:"delivery_address"`
	DeliveryCity    string   `json:"delivery_city"`
	DeliveryLat     *float64 `json:"delivery_lat,omitempty"`
	DeliveryLng     *float64 `json:"delivery_lng,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem is a single order line. Price is the unit price captured when
// the order was placed, not a live product lookup.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"not null;index" json:"order_id"`
	ProductID uint    `gorm:"not null" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int     `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price     float64 `gorm:"not null" json:"price"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
