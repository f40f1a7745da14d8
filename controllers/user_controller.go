package controllers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/platewise/platewise-api/config"
	"github.com/platewise/platewise-api/middleware"
	"github.com/platewise/platewise-api/models"
	"github.com/platewise/platewise-api/utils"
)

// restaurantListing is a restaurant row plus its computed distance from the
// browsing user, when a location was supplied, and its review summary.
type restaurantListing struct {
	models.User
	Distance    *float64 `json:"distance,omitempty"` // meters
	Rating      float64  `json:"rating"`
	ReviewCount int64    `json:"review_count"`
}

// GetRestaurants handles GET /api/v1/restaurants - browse verified
// restaurants with optional city/search filters and straight-line radius
// filtering. Results sort by priority, then distance.
func GetRestaurants(c *gin.Context) {
	db := config.GetDB()

	query := db.Where("role = ? AND is_verified = ?", models.RoleRestaurant, true)
	if city := c.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	}
	if search := c.Query("search"); search != "" {
		// Match restaurant names or restaurants selling a matching product
		var restaurantIDs []uint
		db.Model(&models.Product{}).
			Where("name LIKE ? AND is_available = ?", "%"+search+"%", true).
			Distinct().
			Pluck("restaurant_id", &restaurantIDs)
		query = query.Where("restaurant_name LIKE ? OR id IN ?", "%"+search+"%", restaurantIDs)
	}

	var restaurants []models.User
	if err := query.Find(&restaurants).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list restaurants")
		return
	}

	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	hasLocation := latErr == nil && lngErr == nil

	listings := make([]restaurantListing, 0, len(restaurants))
	for _, restaurant := range restaurants {
		listing := restaurantListing{User: restaurant}
		if hasLocation {
			if !restaurant.HasLocation() {
				continue
			}
			distance := utils.DistanceMeters(lat, lng, *restaurant.Lat, *restaurant.Lng)
			radius := restaurant.DeliveryRadius
			if radius == 0 {
				radius = 5000
			}
			if distance > float64(radius) {
				continue
			}
			listing.Distance = &distance
		}
		listings = append(listings, listing)
	}

	// Higher priority first, then closer first
	sort.SliceStable(listings, func(i, j int) bool {
		if listings[i].Priority != listings[j].Priority {
			return listings[i].Priority > listings[j].Priority
		}
		if listings[i].Distance != nil && listings[j].Distance != nil {
			return *listings[i].Distance < *listings[j].Distance
		}
		return false
	})

	// Pagination happens in memory since radius filtering already did
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	start := (page - 1) * pageSize
	if start > len(listings) {
		start = len(listings)
	}
	end := start + pageSize
	if end > len(listings) {
		end = len(listings)
	}
	paged := listings[start:end]

	// Only the returned page needs its review summary
	ids := make([]uint, 0, len(paged))
	for _, listing := range paged {
		ids = append(ids, listing.ID)
	}
	summaries := reviewSummaries(db, ids)
	for i := range paged {
		if summary, ok := summaries[paged[i].ID]; ok {
			paged[i].Rating = summary.Rating
			paged[i].ReviewCount = summary.ReviewCount
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"restaurants":       paged,
		"total_restaurants": len(listings),
		"current_page":      page,
		"total_pages":       pageCount(int64(len(listings)), pageSize),
	})
}

// GetRestaurantByID handles GET /api/v1/restaurants/:id
func GetRestaurantByID(c *gin.Context) {
	restaurantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid restaurant id")
		return
	}

	var restaurant models.User
	err = config.GetDB().
		Where("id = ? AND role = ?", restaurantID, models.RoleRestaurant).
		First(&restaurant).Error
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Restaurant not found")
		return
	}

	summary := reviewSummaries(config.GetDB(), []uint{restaurant.ID})[restaurant.ID]
	respondData(c, http.StatusOK, restaurantListing{
		User:        restaurant,
		Rating:      summary.Rating,
		ReviewCount: summary.ReviewCount,
	})
}

// GetRestaurantMenu handles GET /api/v1/restaurants/:id/menu - paginated
// available products with category/veg filters
func GetRestaurantMenu(c *gin.Context) {
	restaurantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid restaurant id")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 12
	}

	db := config.GetDB()
	query := db.Model(&models.Product{}).
		Where("restaurant_id = ? AND is_available = ?", restaurantID, true)
	if category := c.Query("category"); category != "" {
		query = query.Where("category_id = ?", category)
	}
	if c.Query("is_veg") == "true" {
		query = query.Where("is_veg = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load menu")
		return
	}

	var products []models.Product
	err = query.Preload("Category").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&products).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load menu")
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

// GetRestaurantMenuCategories handles GET /api/v1/restaurants/:id/categories
// - the distinct categories of a restaurant's available products
func GetRestaurantMenuCategories(c *gin.Context) {
	restaurantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid restaurant id")
		return
	}

	var categories []models.Category
	err = config.GetDB().
		Where("id IN (?)", config.GetDB().Model(&models.Product{}).
			Where("restaurant_id = ? AND is_available = ?", restaurantID, true).
			Distinct().
			Select("category_id")).
		Find(&categories).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load categories")
		return
	}

	respondData(c, http.StatusOK, categories)
}

// UpdateProfileRequest represents the request body for profile updates
type UpdateProfileRequest struct {
	Name            string     `json:"name"`
	Email           *string    `json:"email"`
	DOB             *time.Time `json:"dob"`
	City            string     `json:"city"`
	Address         string     `json:"address"`
	UserImage       string     `json:"user_image"`
	Lat             *float64   `json:"lat"`
	Lng             *float64   `json:"lng"`
	LocationEnabled *bool      `json:"location_enabled"`
}

// UpdateProfile handles PUT /api/v1/users/profile. Edits never touch the
// address snapshots of already-placed orders.
func UpdateProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.DOB != nil {
		user.DOB = req.DOB
	}
	if req.City != "" {
		user.City = req.City
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if req.UserImage != "" {
		user.UserImage = req.UserImage
	}
	if req.Lat != nil && req.Lng != nil {
		user.Lat = req.Lat
		user.Lng = req.Lng
	}
	if req.LocationEnabled != nil {
		user.LocationEnabled = *req.LocationEnabled
	}

	if err := db.Save(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update profile")
		return
	}

	respondData(c, http.StatusOK, user)
}
