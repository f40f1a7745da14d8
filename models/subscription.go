package models

import (
	"time"
)

// Subscription plans (monthly price tiers).
var SubscriptionPlans = []string{"499", "699", "999"}

// Subscription review statuses.
const (
	SubscriptionRequestPending  = "pending"
	SubscriptionRequestApproved = "approved"
	SubscriptionRequestRejected = "rejected"
)

// Subscription is a restaurant's submitted subscription payment. Multiple
// rows per restaurant accumulate as history; the most recent one is the
// current request.
type Subscription struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	RestaurantID  uint    `gorm:"not null;index" json:"restaurant_id"`
	Restaurant    User    `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	Plan          string  `gorm:"not null" json:"plan"` // "499", "699" or "999"
	Amount        float64 `gorm:"not null" json:"amount"`
	ScreenshotURL string  `gorm:"not null" json:"screenshot_url"` // manual UPI payment proof
	Status        string  `gorm:"not null;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Subscription model
func (Subscription) TableName() string {
	return "subscriptions"
}

// ValidPlan reports whether plan names one of the supported tiers.
func ValidPlan(plan string) bool {
	for _, p := range SubscriptionPlans {
		if p == plan {
			return true
		}
	}
	return false
}
