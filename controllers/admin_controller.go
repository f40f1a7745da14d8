package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/platewise/platewise-api/config"
	"github.com/platewise/platewise-api/models"
	"github.com/platewise/platewise-api/services"
)

// AdminGetRestaurants handles GET /api/v1/admin/restaurants
func AdminGetRestaurants(c *gin.Context) {
	db := config.GetDB()

	query := db.Where("role = ?", models.RoleRestaurant)
	switch c.Query("status") {
	case "verified":
		query = query.Where("is_verified = ?", true)
	case "pending":
		query = query.Where("is_verified = ?", false)
	}
	if city := c.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("restaurant_name LIKE ? OR phone LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var restaurants []models.User
	if err := query.Order("priority DESC, created_at DESC").Find(&restaurants).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list restaurants")
		return
	}

	respondData(c, http.StatusOK, restaurants)
}

// AdminGetRestaurantDetails handles GET /api/v1/admin/restaurants/:id -
// restaurant plus its latest subscription submission
func AdminGetRestaurantDetails(c *gin.Context) {
	restaurantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid restaurant id")
		return
	}

	db := config.GetDB()
	var restaurant models.User
	err = db.Where("id = ? AND role = ?", restaurantID, models.RoleRestaurant).First(&restaurant).Error
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Restaurant not found")
		return
	}

	var subscription models.Subscription
	var latest *models.Subscription
	err = db.Where("restaurant_id = ?", restaurantID).
		Order("created_at DESC").
		First(&subscription).Error
	if err == nil {
		latest = &subscription
	}

	respondData(c, http.StatusOK, gin.H{
		"restaurant":          restaurant,
		"latest_subscription": latest,
	})
}

// AdminVerifyRestaurant handles PATCH /api/v1/admin/restaurants/:id/verify.
// Verification starts the restaurant on the base plan with a one month
// grace expiry.
func AdminVerifyRestaurant(c *gin.Context) {
	restaurantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid restaurant id")
		return
	}

	db := config.GetDB()
	var restaurant models.User
	err = db.Where("id = ? AND role = ?", restaurantID, models.RoleRestaurant).First(&restaurant).Error
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Restaurant not found")
		return
	}

	expiry := time.Now().AddDate(0, 1, 0)
	updates := map[string]interface{}{
		"is_verified":         true,
		"subscription_status": models.SubscriptionActive,
		"subscription_plan":   models.SubscriptionPlans[0],
		"subscription_expiry": expiry,
	}
	if err := db.Model(&restaurant).Updates(updates).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to verify restaurant")
		return
	}

	notifyUser(c, restaurant.ID, restaurant.Role, "Account Verified",
		"Your restaurant has been verified. You can now receive orders.",
		models.NotificationGeneral, nil)

	db.First(&restaurant, restaurant.ID)
	respondData(c, http.StatusOK, restaurant)
}

// AddRestaurantRequest represents the request body for an admin-created
// restaurant account
type AddRestaurantRequest struct {
	Phone          string   `json:"phone" binding:"required"`
	RestaurantName string   `json:"restaurant_name" binding:"required"`
	Name           string   `json:"name"`
	City           string   `json:"city"`
	Address        string   `json:"address"`
	Lat            *float64 `json:"lat"`
	Lng            *float64 `json:"lng"`
	DeliveryRadius int      `json:"delivery_radius"`
}

// AdminAddRestaurant handles POST /api/v1/admin/restaurants. Admin-created
// restaurants skip the review queue and start verified.
func AdminAddRestaurant(c *gin.Context) {
	var req AddRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}

	db := config.GetDB()
	var existing models.User
	if err := db.Where("phone = ?", req.Phone).First(&existing).Error; err == nil {
		respondError(c, http.StatusConflict, "ALREADY_EXISTS", "An account with this phone already exists")
		return
	}

	radius := req.DeliveryRadius
	if radius <= 0 {
		radius = 5000
	}
	expiry := time.Now().AddDate(0, 1, 0)
	restaurant := models.User{
		Phone:              req.Phone,
		Role:               models.RoleRestaurant,
		Name:               req.Name,
		RestaurantName:     req.RestaurantName,
		City:               req.City,
		Address:            req.Address,
		Lat:                req.Lat,
		Lng:                req.Lng,
		DeliveryRadius:     radius,
		IsVerified:         true,
		IsOpen:             true,
		SubscriptionStatus: models.SubscriptionActive,
		SubscriptionPlan:   models.SubscriptionPlans[0],
		SubscriptionExpiry: &expiry,
	}
	if err := db.Create(&restaurant).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create restaurant")
		return
	}

	respondData(c, http.StatusCreated, restaurant)
}

// AdminUpdateRestaurantPriority handles PATCH /api/v1/admin/restaurants/:id/priority
func AdminUpdateRestaurantPriority(c *gin.Context) {
	restaurantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid restaurant id")
		return
	}

	var req struct {
		Priority int `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	result := config.GetDB().Model(&models.User{}).
		Where("id = ? AND role = ?", restaurantID, models.RoleRestaurant).
		Update("priority", req.Priority)
	if result.Error != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update priority")
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Restaurant not found")
		return
	}

	respondData(c, http.StatusOK, gin.H{"priority": req.Priority})
}

// AdminGetSubscriptions handles GET /api/v1/admin/subscriptions - the
// latest submission of each restaurant, optionally filtered by status
func AdminGetSubscriptions(c *gin.Context) {
	db := config.GetDB()

	// Latest row per restaurant
	subquery := db.Model(&models.Subscription{}).
		Select("MAX(id)").
		Group("restaurant_id")
	query := db.Where("id IN (?)", subquery)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var subscriptions []models.Subscription
	err := query.Preload("Restaurant").Order("created_at DESC").Find(&subscriptions).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load subscriptions")
		return
	}

	respondData(c, http.StatusOK, subscriptions)
}

// AdminGetSubscriptionHistory handles GET /api/v1/admin/restaurants/:id/subscriptions
func AdminGetSubscriptionHistory(c *gin.Context) {
	restaurantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid restaurant id")
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

// UpdateSubscriptionStatusRequest represents the request body for a
// subscription review decision
type UpdateSubscriptionStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// AdminUpdateSubscriptionStatus handles PATCH /api/v1/admin/subscriptions/:id.
// Approval activates the restaurant's account for another month; rejection
// leaves the account as it was.
func AdminUpdateSubscriptionStatus(c *gin.Context) {
	subscriptionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid subscription id")
		return
	}

	var req UpdateSubscriptionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}

	db := config.GetDB()
	var subscription models.Subscription
	if err := db.First(&subscription, subscriptionID).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Subscription not found")
		return
	}
	if subscription.Status != models.SubscriptionRequestPending {
		respondError(c, http.StatusBadRequest, "INVALID_STATUS", "Subscription has already been reviewed")
		return
	}

	var status string
	switch req.Status {
	case "approved":
		status = models.SubscriptionRequestApproved
	case "rejected":
		status = models.SubscriptionRequestRejected
	}

	if err := db.Model(&subscription).Update("status", status).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update subscription")
		return
	}

	if status == models.SubscriptionRequestApproved {
		expiry := time.Now().AddDate(0, 1, 0)
		err = db.Model(&models.User{}).Where("id = ?", subscription.RestaurantID).
			Updates(map[string]interface{}{
				"subscription_status": models.SubscriptionActive,
				"subscription_plan":   subscription.Plan,
				"subscription_expiry": expiry,
			}).Error
		if err != nil {
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to activate subscription")
			return
		}
		notifyUser(c, subscription.RestaurantID, models.RoleRestaurant, "Subscription Approved",
			fmt.Sprintf("Your subscription plan (₹%s) has been approved and is active for one month.", subscription.Plan),
			models.NotificationSubscription, nil)
	} else {
		notifyUser(c, subscription.RestaurantID, models.RoleRestaurant, "Subscription Rejected",
			fmt.Sprintf("Your subscription payment for plan ₹%s was rejected. Please contact support.", subscription.Plan),
			models.NotificationSubscription, nil)
	}

	db.First(&subscription, subscription.ID)
	respondData(c, http.StatusOK, subscription)
}

// AdminToggleSubscriptionBlock handles PATCH /api/v1/admin/restaurants/:id/subscription-block.
// A blocked restaurant stays visible but cannot receive orders.
func AdminToggleSubscriptionBlock(c *gin.Context) {
	restaurantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid restaurant id")
		return
	}

	db := config.GetDB()
	var restaurant models.User
	err = db.Where("id = ? AND role = ?", restaurantID, models.RoleRestaurant).First(&restaurant).Error
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Restaurant not found")
		return
	}

	newState := !restaurant.IsSubscriptionBlocked
	err = db.Model(&restaurant).Update("is_subscription_blocked", newState).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update restaurant")
		return
	}

	respondData(c, http.StatusOK, gin.H{"is_subscription_blocked": newState})
}

// AdminGetUsers handles GET /api/v1/admin/users
func AdminGetUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	db := config.GetDB()
	query := db.Model(&models.User{}).Where("role = ?", models.RoleUser)
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ? OR phone LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load users")
		return
	}

	var users []models.User
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"users":        users,
		"total_users":  total,
		"current_page": page,
		"total_pages":  pageCount(total, pageSize),
	})
}

// AdminToggleUserStatus handles PATCH /api/v1/admin/users/:id/block
func AdminToggleUserStatus(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user id")
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}

	newState := !user.IsBlocked
	if err := db.Model(&user).Update("is_blocked", newState).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update user")
		return
	}

	respondData(c, http.StatusOK, gin.H{"is_blocked": newState})
}

// SendNotificationRequest represents the request body for an admin broadcast
type SendNotificationRequest struct {
	Title    string `json:"title" binding:"required"`
	Message  string `json:"message" binding:"required"`
	Category string `json:"category"`
	// Audience selects recipients: "users", "restaurants" or "all".
	// RecipientIDs overrides it with an explicit account list.
	Audience     string `json:"audience" binding:"required_without=RecipientIDs,omitempty,oneof=users restaurants all"`
	RecipientIDs []uint `json:"recipient_ids"`
}

// AdminSendNotification handles POST /api/v1/admin/notifications. The
// broadcast persists one row per recipient and pushes each over the
// dispatch bus; individual failures do not stop the rest.
func AdminSendNotification(c *gin.Context) {
	var req SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}

	category := req.Category
	if category == "" {
		category = models.NotificationPromotional
	}

	db := config.GetDB()
	query := db.Model(&models.User{}).Where("is_blocked = ?", false)
	if len(req.RecipientIDs) > 0 {
		query = query.Where("id IN ?", req.RecipientIDs)
	} else {
		switch req.Audience {
		case "users":
			query = query.Where("role = ?", models.RoleUser)
		case "restaurants":
			query = query.Where("role = ?", models.RoleRestaurant)
		case "all":
			query = query.Where("role IN ?", []string{models.RoleUser, models.RoleRestaurant})
		}
	}

	var recipients []models.User
	if err := query.Select("id", "role").Find(&recipients).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to resolve recipients")
		return
	}

	sent := 0
	for _, recipient := range recipients {
		if notifyUser(c, recipient.ID, recipient.Role, req.Title, req.Message, category, nil) {
			sent++
		}
	}

	respondData(c, http.StatusOK, gin.H{
		"recipients": len(recipients),
		"sent":       sent,
	})
}

// AdminSendSubscriptionExpiryAlerts handles POST /api/v1/admin/subscriptions/expiry-alerts.
// It runs the same scan the nightly job runs, on demand.
func AdminSendSubscriptionExpiryAlerts(c *gin.Context) {
	scanner := services.GetScannerService()
	if scanner == nil {
		respondError(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Scanner is not running")
		return
	}
	if err := scanner.Scan(c.Request.Context()); err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to scan subscriptions")
		return
	}
	respondData(c, http.StatusOK, gin.H{"message": "Expiry alerts dispatched"})
}

// AdminGetSentNotifications handles GET /api/v1/admin/notifications - the
// most recent rows across all recipients
func AdminGetSentNotifications(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	db := config.GetDB()
	query := db.Model(&models.Notification{})
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load notifications")
		return
	}

	var notifications []models.Notification
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&notifications).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"notifications":       notifications,
		"total_notifications": total,
		"current_page":        page,
		"total_pages":         pageCount(total, pageSize),
	})
}

// notifyUser records a notification and pushes it on the recipient's own
// channel. Restaurant sockets listen on their restaurant channel, everyone
// else on their user channel. It reports whether the record persisted;
// push failures only log.
func notifyUser(c *gin.Context, recipientID uint, recipientRole, title, message, category string, payload *services.NotificationPayload) bool {
	notification, err := services.GetNotificationStore().Record(recipientID, title, message, category, payload)
	if err != nil {
		services.BestEffort("record notification", func() error { return err })
		return false
	}
	channel := services.UserChannel(recipientID)
	if recipientRole == models.RoleRestaurant {
		channel = services.RestaurantChannel(recipientID)
	}
	if bus := services.GetDispatcher(); bus != nil {
		services.BestEffort("dispatch notification", func() error {
			return bus.Publish(c.Request.Context(), channel, services.EventNewNotification, notification)
		})
	}
	return true
}
