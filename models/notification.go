package models

import (
	"time"
)

// Notification categories.
const (
	NotificationOrderNew     = "order_new"
	NotificationOrderStatus  = "order_status"
	NotificationPayment      = "payment"
	NotificationSubscription = "subscription"
	NotificationGeneral      = "general"
	NotificationPromotional  = "promotional"
	NotificationAlert        = "alert"
)

// Notification is a durable per-recipient message. It is only ever mutated
// to flip the read flag and is never auto-deleted.
type Notification struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	RecipientID uint   `gorm:"not null;index" json:"recipient_id"`
	Recipient   User   `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
	Title       string `gorm:"not null" json:"title"`
	Message     string `gorm:"not null" json:"message"`
	Category    string `gorm:"not null;default:'general'" json:"category"`

	// Optional structured payload pointing at an order
	OrderID  *uint  `gorm:"index" json:"order_id,omitempty"`
	OrderRef string `json:"order_ref,omitempty"`

	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
