package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/platewise/platewise-api/config"
	"github.com/platewise/platewise-api/middleware"
	"github.com/platewise/platewise-api/models"
	"github.com/platewise/platewise-api/services"
	"gorm.io/gorm"
)

// AddProductRequest represents the request body for creating a menu item
type AddProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Category    string  `json:"category" binding:"required"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	IsVeg       *bool   `json:"is_veg"`
	IsAvailable *bool   `json:"is_available"`
}

// AddProduct handles POST /api/v1/restaurant/products
func AddProduct(c *gin.Context) {
	restaurantID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}

	db := config.GetDB()
	category, err := findOrCreateCategory(db, req.Category, restaurantID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to resolve category")
		return
	}

	product := models.Product{
		RestaurantID: restaurantID,
		Name:         req.Name,
		Price:        req.Price,
		CategoryID:   category.ID,
		Image:        req.Image,
		Description:  req.Description,
		IsVeg:        true,
		IsAvailable:  true,
	}
	if req.IsVeg != nil {
		product.IsVeg = *req.IsVeg
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	if err := db.Create(&product).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product")
		return
	}

	db.Preload("Category").First(&product, product.ID)
	respondData(c, http.StatusCreated, product)
}

// findOrCreateCategory resolves a category by name, preferring the
// restaurant's own category over a global one, creating a restaurant-scoped
// category when neither exists.
func findOrCreateCategory(db *gorm.DB, name string, restaurantID uint) (*models.Category, error) {
	var category models.Category
	err := db.Where("name = ? AND (restaurant_id = ? OR restaurant_id IS NULL)", name, restaurantID).
		Order("restaurant_id DESC").
		First(&category).Error
	if err == nil {
		return &category, nil
	}
	category = models.Category{Name: name, RestaurantID: &restaurantID}
	if err := db.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateProductRequest represents the request body for updating a menu item
type UpdateProductRequest struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
	IsVeg       *bool    `json:"is_veg"`
	IsAvailable *bool    `json:"is_available"`
}

// UpdateProduct handles PUT /api/v1/restaurant/products/:id. Ownership is
// part of the lookup, so foreign products read as not found.
func UpdateProduct(c *gin.Context) {
	restaurantID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product id")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	db := config.GetDB()
	var product models.Product
	err = db.Where("id = ? AND restaurant_id = ?", productID, restaurantID).First(&product).Error
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Category != "" {
		category, err := findOrCreateCategory(db, req.Category, restaurantID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to resolve category")
			return
		}
		product.CategoryID = category.ID
	}
	if req.Image != "" {
		product.Image = req.Image
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.IsVeg != nil {
		product.IsVeg = *req.IsVeg
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	if err := db.Save(&product).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product")
		return
	}

	db.Preload("Category").First(&product, product.ID)
	respondData(c, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/restaurant/products/:id
func DeleteProduct(c *gin.Context) {
	restaurantID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product id")
		return
	}

	db := config.GetDB()
	result := db.Where("id = ? AND restaurant_id = ?", productID, restaurantID).
		Delete(&models.Product{})
	if result.Error != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product")
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	}

	respondData(c, http.StatusOK, gin.H{"message": "Product deleted"})
}

// GetMyProducts handles GET /api/v1/restaurant/products
func GetMyProducts(c *gin.Context) {
	restaurantID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	db := config.GetDB()
	query := db.Model(&models.Product{}).Where("restaurant_id = ?", restaurantID)
	if category := c.Query("category"); category != "" {
		query = query.Where("category_id = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load products")
		return
	}

	var products []models.Product
	err = query.Preload("Category").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&products).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"products":       products,
		"total_products": total,
		"current_page":   page,
		"total_pages":    pageCount(total, pageSize),
	})
}

// CreateCategoryRequest represents the request body for creating a category
type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Image string `json:"image"`
}

// CreateCategory handles POST /api/v1/restaurant/categories
func CreateCategory(c *gin.Context) {
	restaurantID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}

	db := config.GetDB()
	var existing models.Category
	err = db.Where("name = ? AND restaurant_id = ?", req.Name, restaurantID).First(&existing).Error
	if err == nil {
		respondError(c, http.StatusConflict, "ALREADY_EXISTS", "Category already exists")
		return
	}

	category := models.Category{Name: req.Name, Image: req.Image, RestaurantID: &restaurantID}
	if err := db.Create(&category).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create category")
		return
	}

	respondData(c, http.StatusCreated, category)
}

// GetMyCategories handles GET /api/v1/restaurant/categories - the
// restaurant's own categories plus the global ones
func GetMyCategories(c *gin.Context) {
	restaurantID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var categories []models.Category
	err = config.GetDB().
		Where("restaurant_id = ? OR restaurant_id IS NULL", restaurantID).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load categories")
		return
	}

	respondData(c, http.StatusOK, categories)
}

// GetRestaurantOrders handles GET /api/v1/restaurant/orders
func GetRestaurantOrders(c *gin.Context) {
	restaurantID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	filter := orderFilterFromQuery(c)
	orders, total, err := services.GetOrderService().GetRestaurantOrders(restaurantID, filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to retrieve orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"orders":       orders,
		"total_orders": total,
		"current_page": filter.Page,
		"total_pages":  pageCount(total, filter.PageSize),
	})
}

// GetRestaurantOrderByID handles GET /api/v1/restaurant/orders/:id
func GetRestaurantOrderByID(c *gin.Context) {
	restaurantID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}

	order, err := services.GetOrderService().GetRestaurantOrderByID(uint(orderID), restaurantID)
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}

	respondData(c, http.StatusOK, order)
}

// UpdateOrderStatusRequest represents the request body for a status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus handles PATCH /api/v1/restaurant/orders/:id/status
func UpdateOrderStatus(c *gin.Context) {
	restaurantID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}

	order, err := services.GetOrderService().UpdateOrderStatus(c.Request.Context(), uint(orderID), restaurantID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
		case errors.Is(err, services.ErrInvalidStatus):
			respondError(c, http.StatusBadRequest, "INVALID_STATUS", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update order")
		}
		return
	}

	respondData(c, http.StatusOK, order)
}

// SubmitSubscriptionRequest represents the request body for a subscription
// payment submission
type SubmitSubscriptionRequest struct {
	Plan          string `json:"plan" binding:"required"`
	ScreenshotURL string `json:"screenshot_url" binding:"required"`
}

// SubmitSubscription handles POST /api/v1/restaurant/subscription. The
// payment is a manual UPI transfer; the screenshot is the proof an admin
// reviews.
func SubmitSubscription(c *gin.Context) {
	restaurantID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req SubmitSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}
	if !models.ValidPlan(req.Plan) {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown subscription plan")
		return
	}

	amount, _ := strconv.ParseFloat(req.Plan, 64)
	subscription := models.Subscription{
		RestaurantID:  restaurantID,
		Plan:          req.Plan,
		Amount:        amount,
		ScreenshotURL: req.ScreenshotURL,
		Status:        models.SubscriptionRequestPending,
	}

	db := config.GetDB()
	if err := db.Create(&subscription).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to submit subscription")
		return
	}

	err = db.Model(&models.User{}).Where("id = ?", restaurantID).
		Update("subscription_status", models.SubscriptionPendingPayment).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update subscription status")
		return
	}

	respondData(c, http.StatusCreated, subscription)
}

// GetMySubscriptions handles GET /api/v1/restaurant/subscription - the
// restaurant's full submission history, newest first
func GetMySubscriptions(c *gin.Context) {
	restaurantID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var subscriptions []models.Subscription
	err = config.GetDB().
		Where("restaurant_id = ?", restaurantID).
		Order("created_at DESC").
		Find(&subscriptions).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load subscriptions")
		return
	}

	respondData(c, http.StatusOK, subscriptions)
}

// ToggleOpenStatus handles PATCH /api/v1/restaurant/open
func ToggleOpenStatus(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	db := config.GetDB()
	newState := !user.IsOpen
	err = db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_open", newState).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update open status")
		return
	}

	respondData(c, http.StatusOK, gin.H{"is_open": newState})
}

// UpdateRestaurantProfileRequest represents the request body for updating a
// restaurant's public profile
type UpdateRestaurantProfileRequest struct {
	RestaurantName string   `json:"restaurant_name"`
	Name           string   `json:"name"`
	City           string   `json:"city"`
	Address        string   `json:"address"`
	Image          string   `json:"image"`
	Banner         string   `json:"banner"`
	Lat            *float64 `json:"lat"`
	Lng            *float64 `json:"lng"`
	DeliveryRadius *int     `json:"delivery_radius"`
}

// UpdateRestaurantProfile handles PUT /api/v1/restaurant/profile
func UpdateRestaurantProfile(c *gin.Context) {
	restaurantID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req UpdateRestaurantProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	db := config.GetDB()
	var restaurant models.User
	if err := db.First(&restaurant, restaurantID).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Restaurant not found")
		return
	}

	if req.RestaurantName != "" {
		restaurant.RestaurantName = req.RestaurantName
	}
	if req.Name != "" {
		restaurant.Name = req.Name
	}
	if req.City != "" {
		restaurant.City = req.City
	}
	if req.Address != "" {
		restaurant.Address = req.Address
	}
	if req.Image != "" {
		restaurant.Image = req.Image
	}
	if req.Banner != "" {
		restaurant.Banner = req.Banner
	}
	if req.Lat != nil && req.Lng != nil {
		restaurant.Lat = req.Lat
		restaurant.Lng = req.Lng
	}
	if req.DeliveryRadius != nil && *req.DeliveryRadius > 0 {
		restaurant.DeliveryRadius = *req.DeliveryRadius
	}

	if err := db.Save(&restaurant).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update profile")
		return
	}

	respondData(c, http.StatusOK, restaurant)
}
