package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/platewise/platewise-api/models"
)

func createExpiringRestaurant(t *testing.T, db *gorm.DB, phone, plan string, expiry time.Time) models.User {
	t.Helper()

	restaurant := models.User{
		Phone:              phone,
		Role:               models.RoleRestaurant,
		RestaurantName:     "Expiring Kitchen",
		IsVerified:         true,
		SubscriptionStatus: models.SubscriptionActive,
		SubscriptionPlan:   plan,
		SubscriptionExpiry: &expiry,
	}
	if err := db.Create(&restaurant).Error; err != nil {
		t.Fatalf("Failed to create test restaurant: %v", err)
	}
	return restaurant
}

func TestScan_RemindsExpiringRestaurants(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	// Expires in exactly 3 days
	expiring := createExpiringRestaurant(t, db, "+911111111111", "699", now.AddDate(0, 0, 3))
	// Expires in 10 days, outside every window
	createExpiringRestaurant(t, db, "+912222222222", "499", now.AddDate(0, 0, 10))

	bus := &captureDispatcher{}
	scanner := NewScannerService(db, NewNotificationStore(db), bus, []int{1, 2, 3})
	scanner.now = func() time.Time { return now }

	assert.NoError(t, scanner.Scan(context.Background()))

	var notifications []models.Notification
	db.Find(&notifications)
	assert.Len(t, notifications, 1)
	assert.Equal(t, expiring.ID, notifications[0].RecipientID)
	assert.Equal(t, models.NotificationSubscription, notifications[0].Category)
	assert.Contains(t, notifications[0].Message, "(699)")
	assert.Contains(t, notifications[0].Message, "3 day(s)")

	events := bus.Events()
	assert.Len(t, events, 1)
	assert.Equal(t, RestaurantChannel(expiring.ID), events[0].Channel)
	assert.Equal(t, EventNewNotification, events[0].Event)
}

func TestScan_EachWindowMatches(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for i, days := range []int{1, 2, 3} {
		createExpiringRestaurant(t, db,
			fmt.Sprintf("+9111111111%d", i), "999", now.AddDate(0, 0, days))
	}

	scanner := NewScannerService(db, NewNotificationStore(db), nil, []int{1, 2, 3})
	scanner.now = func() time.Time { return now }

	assert.NoError(t, scanner.Scan(context.Background()))

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestScan_SkipsInactiveAndNonRestaurants(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	expiry := now.AddDate(0, 0, 2)

	// Pending payment, not active
	pending := createExpiringRestaurant(t, db, "+911111111111", "499", expiry)
	db.Model(&pending).Update("subscription_status", models.SubscriptionPendingPayment)

	// An ordering user with a stray expiry date
	user := createTestUser(t, db, "+912222222222")
	db.Model(&user).Update("subscription_expiry", expiry)

	scanner := NewScannerService(db, NewNotificationStore(db), nil, []int{1, 2, 3})
	scanner.now = func() time.Time { return now }

	assert.NoError(t, scanner.Scan(context.Background()))

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestScan_StoreFailureDoesNotAbortScan(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	createExpiringRestaurant(t, db, "+911111111111", "499", now.AddDate(0, 0, 1))
	expiring := createExpiringRestaurant(t, db, "+912222222222", "699", now.AddDate(0, 0, 2))

	bus := &captureDispatcher{}
	scanner := NewScannerService(db, failingNotificationStore{}, bus, []int{1, 2, 3})
	scanner.now = func() time.Time { return now }

	// Persist fails for everyone, but the scan completes and the bus still
	// carries the real-time copies
	assert.NoError(t, scanner.Scan(context.Background()))
	events := bus.Events()
	assert.Len(t, events, 2)
	assert.Equal(t, RestaurantChannel(expiring.ID), events[1].Channel)
}

func TestScannerHandler_RunsScan(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	createExpiringRestaurant(t, db, "+911111111111", "499", now.AddDate(0, 0, 1))

	scanner := NewScannerService(db, NewNotificationStore(db), nil, []int{1})
	scanner.now = func() time.Time { return now }

	handler := scanner.Handler()
	assert.NoError(t, handler(context.Background(), nil))

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
