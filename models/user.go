package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles. A single account record serves all three roles; restaurant
// accounts carry the extra restaurant fields below.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleRestaurant = "restaurant"
)

// Subscription statuses for restaurant accounts.
const (
	SubscriptionNone           = "none"
	SubscriptionPendingPayment = "pending_payment"
	SubscriptionActive         = "active"
	SubscriptionExpired        = "expired"
	SubscriptionBlocked        = "blocked"
)

// User represents an account in the system. Role discriminates between
// ordering users, restaurant owners and admins.
type User struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	Phone    string     `gorm:"uniqueIndex" json:"phone"`
	Email    *string    `gorm:"uniqueIndex" json:"email,omitempty"`
	Password string     `json:"-"` // hashed, admin login only
	Role     string     `gorm:"not null;default:'user'" json:"role"`
	Name     string     `json:"name"`
	DOB      *time.Time `json:"dob,omitempty"`

	// Profile / delivery defaults
	Address         string   `json:"address"`
	City            string   `json:"city"`
	UserImage       string   `json:"user_image"` // profile picture
	Lat             *float64 `json:"lat,omitempty"`
	Lng             *float64 `json:"lng,omitempty"`
	LocationEnabled bool     `gorm:"default:false" json:"location_enabled"`
	IsBlocked       bool     `gorm:"default:false" json:"is_blocked"`

	// Restaurant fields (only meaningful when Role == "restaurant")
	RestaurantName        string     `json:"restaurant_name,omitempty"`
	Image                 string     `json:"image,omitempty"`  // restaurant logo
	Banner                string     `json:"banner,omitempty"` // restaurant cover image
	IsOpen                bool       `gorm:"default:true" json:"is_open"`
	IsVerified            bool       `gorm:"default:false" json:"is_verified"`
	DeliveryRadius        int        `gorm:"default:5000" json:"delivery_radius"` // meters
	Priority              int        `gorm:"default:0" json:"priority"`
	SubscriptionStatus    string     `gorm:"not null;default:'none'" json:"subscription_status"`
	SubscriptionPlan      string     `gorm:"not null;default:'none'" json:"subscription_plan"`
	SubscriptionExpiry    *time.Time `json:"subscription_expiry,omitempty"`
	IsSubscriptionBlocked bool       `gorm:"default:false" json:"is_subscription_blocked"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsRestaurant reports whether this account is a restaurant account.
func (u *User) IsRestaurant() bool {
	return u.Role == RoleRestaurant
}

// HasLocation reports whether the account has a usable geo-location.
func (u *User) HasLocation() bool {
	return u.Lat != nil && u.Lng != nil
}
