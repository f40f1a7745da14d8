package controllers

import (
	"context"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/platewise/platewise-api/config"
	"github.com/platewise/platewise-api/models"
	"github.com/platewise/platewise-api/services"
)

type publishedEvent struct {
	Channel string
	Event   string
}

// recordingDispatcher captures publishes so tests can assert on routing.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (d *recordingDispatcher) Publish(ctx context.Context, channel, event string, payload interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, publishedEvent{Channel: channel, Event: event})
	return nil
}

func (d *recordingDispatcher) Channels() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	channels := make([]string, 0, len(d.events))
	for _, e := range d.events {
		channels = append(channels, e.Channel)
	}
	return channels
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// setupControllerTestDB builds an in-memory database for one test and wires
// it into the global config and service instances the handlers read.
func setupControllerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	services.SetDispatcher(nil)
	notifications := services.InitNotificationStore(db)
	services.InitOrderService(db, notifications, nil)
	services.InitCartService(db)
	return db
}

// mockAuthMiddleware stores the account in the context the same way the
// real middleware does.
func mockAuthMiddleware(user models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Next()
	}
}

func createUser(t *testing.T, db *gorm.DB, phone string) models.User {
	t.Helper()

	user := models.User{Phone: phone, Role: models.RoleUser, Name: "Test User", City: "Mumbai", Address: "12 MG Road"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func createRestaurant(t *testing.T, db *gorm.DB, phone string, open bool) models.User {
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

func createProduct(t *testing.T, db *gorm.DB, restaurantID uint, name string, price float64) models.Product {
	t.Helper()

	product := models.Product{RestaurantID: restaurantID, Name: name, Price: price, IsAvailable: true}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}
	return product
}
