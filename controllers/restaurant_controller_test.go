package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/platewise/platewise-api/models"
)

func placeTestOrder(t *testing.T, user, restaurant models.User, product models.Product) uint {
	t.Helper()

	router := setupTestRouter()
	router.POST("/orders", mockAuthMiddleware(user), CreateOrder)

	body, _ := json.Marshal(map[string]interface{}{
		"restaurant_id": restaurant.ID,
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 1, "price": product.Price},
		},
		"total_amount": product.Price,
	})
	req, _ := http.NewRequest(http.MethodPost, "/orders", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to place test order: %s", w.Body.String())
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse order response: %v", err)
	}
	return uint(response["data"].(map[string]interface{})["id"].(float64))
}

func TestUpdateOrderStatusEndpoint(t *testing.T) {
	db := setupControllerTestDB(t)
	user := createUser(t, db, "+911111111111")
	restaurant := createRestaurant(t, db, "+912222222222", true)
	other := createRestaurant(t, db, "+913333333333", true)
	product := createProduct(t, db, restaurant.ID, "Momos", 90)

	orderID := placeTestOrder(t, user, restaurant, product)

	tests := []struct {
		name           string
		asRestaurant   models.User
		orderID        uint
		status         string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "accept alias moves pending to preparing",
			asRestaurant:   restaurant,
			orderID:        orderID,
			status:         "accept",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "skipping states is rejected",
			asRestaurant:   restaurant,
			orderID:        orderID,
			status:         "delivered",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_STATUS",
		},
		{
			name:           "unknown status name",
			asRestaurant:   restaurant,
			orderID:        orderID,
			status:         "shipped",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_STATUS",
		},
		{
			name:           "foreign restaurant sees not found",
			asRestaurant:   other,
			orderID:        orderID,
			status:         "ready",
			expectedStatus: http.StatusNotFound,
			expectedError:  "NOT_FOUND",
		},
		{
			name:           "missing order",
			asRestaurant:   restaurant,
			orderID:        9999,
			status:         "accept",
			expectedStatus: http.StatusNotFound,
			expectedError:  "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.PATCH("/orders/:id/status", mockAuthMiddleware(tt.asRestaurant), UpdateOrderStatus)

			body, _ := json.Marshal(map[string]interface{}{"status": tt.status})
			req, _ := http.NewRequest(http.MethodPatch,
				fmt.Sprintf("/orders/%d/status", tt.orderID), bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
			}
		})
	}

	// The accept case above actually persisted
	var order models.Order
	assert.NoError(t, db.First(&order, orderID).Error)
	assert.Equal(t, models.OrderPreparing, order.Status)
}

func TestAddProductEndpoint(t *testing.T) {
	db := setupControllerTestDB(t)
	restaurant := createRestaurant(t, db, "+912222222222", true)

	router := setupTestRouter()
	router.POST("/products", mockAuthMiddleware(restaurant), AddProduct)

	body, _ := json.Marshal(map[string]interface{}{
		"name":     "Masala Dosa",
		"price":    140,
		"category": "South Indian",
	})
	req, _ := http.NewRequest(http.MethodPost, "/products", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Masala Dosa", data["name"])
	assert.Equal(t, true, data["is_veg"])
	assert.Equal(t, true, data["is_available"])

	// The category was created on the fly, scoped to this restaurant
	var category models.Category
	assert.NoError(t, db.Where("name = ?", "South Indian").First(&category).Error)
	assert.NotNil(t, category.RestaurantID)
	assert.Equal(t, restaurant.ID, *category.RestaurantID)

	// A second product with the same category name reuses it
	body, _ = json.Marshal(map[string]interface{}{
		"name":     "Idli",
		"price":    60,
		"category": "South Indian",
	})
	req, _ = http.NewRequest(http.MethodPost, "/products", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var count int64
	db.Model(&models.Category{}).Where("name = ?", "South Indian").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateProductEndpoint_Ownership(t *testing.T) {
	db := setupControllerTestDB(t)
	owner := createRestaurant(t, db, "+912222222222", true)
	other := createRestaurant(t, db, "+913333333333", true)
	product := createProduct(t, db, owner.ID, "Pulao", 160)

	router := setupTestRouter()
	router.PUT("/products/:id", mockAuthMiddleware(other), UpdateProduct)

	body, _ := json.Marshal(map[string]interface{}{"price": 1})
	req, _ := http.NewRequest(http.MethodPut,
		fmt.Sprintf("/products/%d", product.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	// The real owner's product is untouched
	var fresh models.Product
	db.First(&fresh, product.ID)
	assert.Equal(t, 160.0, fresh.Price)
}

func TestSubmitSubscriptionEndpoint(t *testing.T) {
	db := setupControllerTestDB(t)
	restaurant := createRestaurant(t, db, "+912222222222", true)

	router := setupTestRouter()
	router.POST("/subscription", mockAuthMiddleware(restaurant), SubmitSubscription)

	// Unknown plan
	body, _ := json.Marshal(map[string]interface{}{
		"plan":           "199",
		"screenshot_url": "https://cdn.example.com/upi-1.png",
	})
	req, _ := http.NewRequest(http.MethodPost, "/subscription", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Valid plan
	body, _ = json.Marshal(map[string]interface{}{
		"plan":           "699",
		"screenshot_url": "https://cdn.example.com/upi-1.png",
	})
	req, _ = http.NewRequest(http.MethodPost, "/subscription", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "699", data["plan"])
	assert.Equal(t, float64(699), data["amount"])
	assert.Equal(t, models.SubscriptionRequestPending, data["status"])

	// The account moved to pending_payment
	var fresh models.User
	db.First(&fresh, restaurant.ID)
	assert.Equal(t, models.SubscriptionPendingPayment, fresh.SubscriptionStatus)
}

func TestToggleOpenStatusEndpoint(t *testing.T) {
	db := setupControllerTestDB(t)
	restaurant := createRestaurant(t, db, "+912222222222", true)

	router := setupTestRouter()
	router.PATCH("/open", mockAuthMiddleware(restaurant), ToggleOpenStatus)

	req, _ := http.NewRequest(http.MethodPatch, "/open", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var fresh models.User
	db.First(&fresh, restaurant.ID)
	assert.False(t, fresh.IsOpen)
}
