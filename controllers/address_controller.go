package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/platewise/platewise-api/config"
	"github.com/platewise/platewise-api/middleware"
	"github.com/platewise/platewise-api/models"
	"gorm.io/gorm"
)

// AddressRequest represents the request body for creating or updating a
// saved address
type AddressRequest struct {
	Title     string   `json:"title" binding:"required"`
	Address   string   `json:"address" binding:"required"`
	City      string   `json:"city" binding:"required"`
	Lat       *float64 `json:"lat" binding:"required"`
	Lng       *float64 `json:"lng" binding:"required"`
	IsDefault bool     `json:"is_default"`
}

// GetMyAddresses handles GET /api/v1/addresses
func GetMyAddresses(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var addresses []models.Address
	err = config.GetDB().
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load addresses")
		return
	}

	respondData(c, http.StatusOK, addresses)
}

// CreateAddress handles POST /api/v1/addresses
func CreateAddress(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}

	db := config.GetDB()
	if req.IsDefault {
		if err := unsetDefaultAddress(db, userID); err != nil {
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update default address")
			return
		}
	}

	address := models.Address{
		UserID:    userID,
		Title:     req.Title,
		Address:   req.Address,
		City:      req.City,
		Lat:       *req.Lat,
		Lng:       *req.Lng,
		IsDefault: req.IsDefault,
	}
	if err := db.Create(&address).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create address")
		return
	}

	respondData(c, http.StatusCreated, address)
}

// UpdateAddress handles PUT /api/v1/addresses/:id
func UpdateAddress(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	addressID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid address id")
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}

	db := config.GetDB()
	var address models.Address
	err = db.Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Address not found")
		return
	}

	if req.IsDefault && !address.IsDefault {
		if err := unsetDefaultAddress(db, userID); err != nil {
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update default address")
			return
		}
	}

	address.Title = req.Title
	address.Address = req.Address
	address.City = req.City
	address.Lat = *req.Lat
	address.Lng = *req.Lng
	address.IsDefault = req.IsDefault

	if err := db.Save(&address).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update address")
		return
	}

	respondData(c, http.StatusOK, address)
}

// DeleteAddress handles DELETE /api/v1/addresses/:id. Deleting an address
// never touches the snapshots on past orders.
func DeleteAddress(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	addressID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid address id")
		return
	}

	result := config.GetDB().
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&models.Address{})
	if result.Error != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete address")
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Address not found")
		return
	}

	respondData(c, http.StatusOK, gin.H{"message": "Address deleted"})
}

// SetDefaultAddress handles PATCH /api/v1/addresses/:id/default. The unset
// and set are separate statements, so a crash in between can briefly leave
// no default; the next set repairs it.
func SetDefaultAddress(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	addressID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid address id")
		return
	}

	db := config.GetDB()
	var address models.Address
	err = db.Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Address not found")
		return
	}

	if err := unsetDefaultAddress(db, userID); err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update default address")
		return
	}
	if err := db.Model(&address).Update("is_default", true).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update default address")
		return
	}

	respondData(c, http.StatusOK, address)
}

func unsetDefaultAddress(db *gorm.DB, userID uint) error {
	return db.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}
