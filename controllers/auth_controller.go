package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/platewise/platewise-api/config"
	"github.com/platewise/platewise-api/middleware"
	"github.com/platewise/platewise-api/models"
	"github.com/platewise/platewise-api/services"
)

// RequestOTPRequest represents the request body for requesting a login code
type RequestOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// RequestOTP handles POST /api/v1/auth/otp - sends a login code
func RequestOTP(c *gin.Context) {
	var req RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Phone number is required")
		return
	}

	if err := services.GetOTPVerifier().SendOTP(req.Phone); err != nil {
		respondError(c, http.StatusInternalServerError, "OTP_SEND_FAILED", "Failed to send OTP")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "OTP sent successfully",
	})
}

// VerifyOTPRequest represents the request body for verifying a login code
type VerifyOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

// VerifyOTP handles POST /api/v1/auth/verify - verifies the code and
// issues a token, creating the account on first login
func VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Phone and code are required")
		return
	}

	valid, err := services.GetOTPVerifier().VerifyOTP(req.Phone, req.Code)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "OTP_VERIFY_FAILED", "Failed to verify OTP")
		return
	}
	if !valid {
		respondError(c, http.StatusBadRequest, "INVALID_OTP", "Invalid OTP")
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("phone = ?", req.Phone).First(&user).Error; err != nil {
		// First login creates the account. Restaurants start unverified
		// and need admin approval before appearing to users.
		role := models.RoleUser
		verified := true
		if req.Role == models.RoleRestaurant {
			role = models.RoleRestaurant
			verified = false
		}
		user = models.User{
			Phone:      req.Phone,
			Role:       role,
			Name:       req.Name,
			IsVerified: verified,
		}
		if err := db.Create(&user).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create account")
			return
		}
	}

	token, err := middleware.GenerateToken(user.ID, config.GetConfig().JWTSecret)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

// RegisterRestaurantRequest represents the request body for restaurant signup
type RegisterRestaurantRequest struct {
	Name           string   `json:"name"`
	Email          *string  `json:"email"`
	Phone          string   `json:"phone" binding:"required"`
	OTP            string   `json:"otp" binding:"required"`
	RestaurantName string   `json:"restaurant_name" binding:"required"`
	Address        string   `json:"address"`
	City           string   `json:"city"`
	Image          string   `json:"image"`
	Banner         string   `json:"banner"`
	Lat            *float64 `json:"lat"`
	Lng            *float64 `json:"lng"`
	DeliveryRadius int      `json:"delivery_radius"`
}

// RegisterRestaurant handles POST /api/v1/auth/register-restaurant
func RegisterRestaurant(c *gin.Context) {
	var req RegisterRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	valid, err := services.GetOTPVerifier().VerifyOTP(req.Phone, req.OTP)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "OTP_VERIFY_FAILED", "Failed to verify OTP")
		return
	}
	if !valid {
		respondError(c, http.StatusBadRequest, "INVALID_OTP", "Invalid OTP")
		return
	}

	db := config.GetDB()
	var existing models.User
	if err := db.Where("phone = ?", req.Phone).First(&existing).Error; err == nil {
		respondError(c, http.StatusBadRequest, "ALREADY_EXISTS", "User with this phone already exists")
		return
	}

	radius := req.DeliveryRadius
	if radius == 0 {
		radius = 5000
	}

	user := models.User{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Role:           models.RoleRestaurant,
		RestaurantName: req.RestaurantName,
		Address:        req.Address,
		City:           req.City,
		Image:          req.Image,
		Banner:         req.Banner,
		Lat:            req.Lat,
		Lng:            req.Lng,
		DeliveryRadius: radius,
		IsVerified:     false, // requires admin approval
	}
	if err := db.Create(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create restaurant account")
		return
	}

	token, err := middleware.GenerateToken(user.ID, config.GetConfig().JWTSecret)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

// GetMe handles GET /api/v1/auth/me - returns the authenticated account
func GetMe(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}
	respondData(c, http.StatusOK, user)
}
