package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/platewise/platewise-api/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// capturedEvent is one Publish call observed by captureDispatcher.
type capturedEvent struct {
	Channel string
	Event   string
	Payload interface{}
}

// captureDispatcher records every published event for assertions.
type captureDispatcher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (d *captureDispatcher) Publish(_ context.Context, channel, event string, payload interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, capturedEvent{Channel: channel, Event: event, Payload: payload})
	return nil
}

func (d *captureDispatcher) Events() []capturedEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]capturedEvent, len(d.events))
	copy(out, d.events)
	return out
}

// failingNotificationStore errors on every call, for verifying that
// side-effect failures never fail the primary operation.
type failingNotificationStore struct{}

func (failingNotificationStore) Record(uint, string, string, string, *NotificationPayload) (*models.Notification, error) {
	return nil, errors.New("store unavailable")
}

func (failingNotificationStore) ListUnread(uint, int, int) ([]models.Notification, int64, error) {
	return nil, 0, errors.New("store unavailable")
}

func (failingNotificationStore) MarkRead(uint) error { return errors.New("store unavailable") }

func (failingNotificationStore) MarkAllRead(uint) error { return errors.New("store unavailable") }

func createTestUser(t *testing.T, db *gorm.DB, phone string) models.User {
	t.Helper()

	user := models.User{
		Phone: phone,
		Role:  models.RoleUser,
		Name:  "Test User",
		City:  "Mumbai",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func createTestRestaurant(t *testing.T, db *gorm.DB, phone string, open bool) models.User {
	t.Helper()

	restaurant := models.User{
		Phone:          phone,
		Role:           models.RoleRestaurant,
		RestaurantName: "Test Kitchen",
		City:           "Mumbai",
		IsOpen:         open,
		IsVerified:     true,
	}
	if err := db.Create(&restaurant).Error; err != nil {
		t.Fatalf("Failed to create test restaurant: %v", err)
	}
	return restaurant
}

func createTestProduct(t *testing.T, db *gorm.DB, restaurantID uint, name string, price float64) models.Product {
	t.Helper()

	product := models.Product{
		RestaurantID: restaurantID,
		Name:         name,
		Price:        price,
		IsAvailable:  true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}
	return product
}
