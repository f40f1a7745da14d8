package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/platewise/platewise-api/config"
	"github.com/platewise/platewise-api/controllers"
	"github.com/platewise/platewise-api/middleware"
	"github.com/platewise/platewise-api/models"
	"github.com/platewise/platewise-api/services"
	"github.com/platewise/platewise-api/tests/testutil"
)

// recordingSocket collects everything the hub delivers to it.
type recordingSocket struct {
	mu       sync.Mutex
	messages []map[string]interface{}
}

func (s *recordingSocket) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var msg map[string]interface{}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *recordingSocket) Close() error { return nil }

func (s *recordingSocket) events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for _, msg := range s.messages {
		names = append(names, msg["event"].(string))
	}
	return names
}

// OrderFlowIntegrationTestSuite drives the full order lifecycle through the
// real router stack: JWT auth, handlers, services, dispatch and the
// notification store.
type OrderFlowIntegrationTestSuite struct {
	suite.Suite
	router *gin.Engine
	db     *gorm.DB
	hub    *services.Hub
}

// SetupSuite runs once before all tests
func (suite *OrderFlowIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	testutil.MustSetTestEnvironment(suite.T())
	testutil.ConfigureTestJWT()
}

// SetupTest runs before each test
func (suite *OrderFlowIntegrationTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.NoError(err)
	suite.db = db
	suite.NoError(db.AutoMigrate(models.All()...))
	config.SetDB(db)

	suite.hub = services.InitHub(services.NewHub())
	bus := services.NewLocalDispatcher(suite.hub)
	services.InitDispatcher(bus)
	notifications := services.InitNotificationStore(db)
	services.InitOrderService(db, notifications, bus)
	services.InitCartService(db)

	suite.router = gin.New()
	v1 := suite.router.Group("/api/v1")
	{
		authed := v1.Group("", middleware.RequireAuth())
		authed.POST("/cart/add", controllers.AddToCart)
		authed.GET("/cart", controllers.GetCart)
		authed.POST("/orders", controllers.CreateOrder)
		authed.GET("/orders", controllers.GetMyOrders)
		authed.GET("/notifications", controllers.GetMyNotifications)
		authed.PUT("/notifications/read-all", controllers.MarkAllNotificationsRead)

		restaurant := v1.Group("/restaurant",
			middleware.RequireAuth(), middleware.RequireRole(models.RoleRestaurant))
		restaurant.PATCH("/orders/:id/status", controllers.UpdateOrderStatus)
		restaurant.GET("/orders", controllers.GetRestaurantOrders)
	}
}

// TearDownTest runs after each test
func (suite *OrderFlowIntegrationTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

func (suite *OrderFlowIntegrationTestSuite) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		raw, _ := json.Marshal(body)
		buf = bytes.NewBuffer(raw)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *OrderFlowIntegrationTestSuite) TestOrderLifecycle_EndToEnd() {
	t := suite.T()

	user := testutil.CreateAccount(t, suite.db, "+911111111111", models.RoleUser)
	restaurant := testutil.CreateAccount(t, suite.db, "+912222222222", models.RoleRestaurant)
	product := models.Product{RestaurantID: restaurant.ID, Name: "Paneer Tikka", Price: 250, IsAvailable: true}
	suite.NoError(suite.db.Create(&product).Error)

	userToken := testutil.TokenFor(t, user)
	restaurantToken := testutil.TokenFor(t, restaurant)

	// Both sides have a live socket on their own channel
	userSocket := &recordingSocket{}
	restaurantSocket := &recordingSocket{}
	suite.hub.Subscribe(userSocket, services.UserChannel(user.ID))
	suite.hub.Subscribe(restaurantSocket, services.RestaurantChannel(restaurant.ID))

	// Build a cart first
	w := suite.request(http.MethodPost, "/api/v1/cart/add", userToken,
		map[string]interface{}{"product_id": product.ID, "quantity": 2})
	assert.Equal(t, http.StatusOK, w.Code)

	// Place the order
	w = suite.request(http.MethodPost, "/api/v1/orders", userToken, map[string]interface{}{
		"restaurant_id": restaurant.ID,
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 2, "price": 250},
		},
		"total_amount": 500,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var created map[string]interface{}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &created))
	orderData := created["data"].(map[string]interface{})
	orderID := orderData["id"].(float64)
	assert.Equal(t, "pending", orderData["status"])

	// The restaurant heard about it in real time and durably
	assert.Equal(t, []string{services.EventNewOrder}, restaurantSocket.events())
	w = suite.request(http.MethodGet, "/api/v1/notifications", restaurantToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "order_new")

	// The restaurant walks the order through the lifecycle
	for _, status := range []string{"accept", "ready", "out_for_delivery", "delivered"} {
		w = suite.request(http.MethodPatch,
			fmt.Sprintf("/api/v1/restaurant/orders/%.0f/status", orderID),
			restaurantToken, map[string]interface{}{"status": status})
		assert.Equal(t, http.StatusOK, w.Code, "transition %s failed: %s", status, w.Body.String())
	}

	// An illegal transition after delivery is refused
	w = suite.request(http.MethodPatch,
		fmt.Sprintf("/api/v1/restaurant/orders/%.0f/status", orderID),
		restaurantToken, map[string]interface{}{"status": "cancelled"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The user saw each step live
	userEvents := userSocket.events()
	assert.Len(t, userEvents, 4)
	for _, event := range userEvents {
		assert.Equal(t, services.EventOrderStatusUpdate, event)
	}

	// And has four unread notifications to read
	w = suite.request(http.MethodGet, "/api/v1/notifications", userToken, nil)
	var listing map[string]interface{}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Equal(t, float64(4), listing["total_notifications"])

	w = suite.request(http.MethodPut, "/api/v1/notifications/read-all", userToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/notifications", userToken, nil)
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Equal(t, float64(0), listing["total_notifications"])

	// The delivered order shows in both listings
	w = suite.request(http.MethodGet, "/api/v1/orders", userToken, nil)
	assert.Contains(t, w.Body.String(), "delivered")
	w = suite.request(http.MethodGet, "/api/v1/restaurant/orders", restaurantToken, nil)
	assert.Contains(t, w.Body.String(), "delivered")
}

func (suite *OrderFlowIntegrationTestSuite) TestRoleEnforcement() {
	t := suite.T()

	user := testutil.CreateAccount(t, suite.db, "+911111111111", models.RoleUser)
	userToken := testutil.TokenFor(t, user)

	// An ordering user cannot reach restaurant endpoints
	w := suite.request(http.MethodGet, "/api/v1/restaurant/orders", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// And no token means no access at all
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderFlowIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderFlowIntegrationTestSuite))
}
