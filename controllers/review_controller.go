package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/platewise/platewise-api/config"
	"github.com/platewise/platewise-api/middleware"
	"github.com/platewise/platewise-api/models"
)

// CreateReviewRequest represents the request body for submitting a review
type CreateReviewRequest struct {
	OrderID uint   `json:"order_id" binding:"required"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// CreateReview handles POST /api/v1/reviews - rates the restaurant behind
// one of the caller's orders. One review per order; the restaurant is
// taken from the order, never from the request.
func CreateReview(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "A rating between 1 and 5 and an order are required")
		return
	}

	db := config.GetDB()

	// Foreign orders are indistinguishable from missing ones
	var order models.Order
	err = db.Where("id = ? AND user_id = ?", req.OrderID, userID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load order")
		return
	}

	var existing models.Review
	if err := db.Where("order_id = ?", req.OrderID).First(&existing).Error; err == nil {
		respondError(c, http.StatusBadRequest, "ALREADY_EXISTS", "You have already reviewed this order")
		return
	}

	review := models.Review{
		UserID:       userID,
		RestaurantID: order.RestaurantID,
		OrderID:      req.OrderID,
		Rating:       req.Rating,
		Comment:      req.Comment,
	}
	if err := db.Create(&review).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save review")
		return
	}

	respondData(c, http.StatusCreated, review)
}

// GetRestaurantReviews handles GET /api/v1/restaurants/:id/reviews -
// public, newest first, with the reviewer's name and picture
func GetRestaurantReviews(c *gin.Context) {
	restaurantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid restaurant id")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	db := config.GetDB()
	query := db.Model(&models.Review{}).Where("restaurant_id = ?", restaurantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to count reviews")
		return
	}

	var reviews []models.Review
	err = query.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "user_image")
		}).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list reviews")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"reviews":       reviews,
		"total_reviews": total,
		"current_page":  page,
		"total_pages":   pageCount(total, limit),
	})
}

// ratingSummary is a restaurant's aggregated review score.
type ratingSummary struct {
	RestaurantID uint
	Rating       float64
	ReviewCount  int64
}

// reviewSummaries loads the average rating and review count for the given
// restaurants in one grouped query.
func reviewSummaries(db *gorm.DB, restaurantIDs []uint) map[uint]ratingSummary {
	summaries := make(map[uint]ratingSummary)
	if len(restaurantIDs) == 0 {
		return summaries
	}

	var rows []ratingSummary
	db.Model(&models.Review{}).
		Select("restaurant_id", "AVG(rating) AS rating", "COUNT(*) AS review_count").
		Where("restaurant_id IN ?", restaurantIDs).
		Group("restaurant_id").
		Scan(&rows)
	for _, row := range rows {
		summaries[row.RestaurantID] = row
	}
	return summaries
}

// GetReviewByOrder handles GET /api/v1/orders/:id/review - the caller's
// review of one of their own orders, if any
func GetReviewByOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}

	db := config.GetDB()
	var order models.Order
	err = db.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load order")
		return
	}

	var review models.Review
	err = db.Where("order_id = ?", orderID).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Order has no review yet")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load review")
		return
	}

	respondData(c, http.StatusOK, review)
}
