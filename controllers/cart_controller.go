package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/platewise/platewise-api/middleware"
	"github.com/platewise/platewise-api/services"
)

// GetCart handles GET /api/v1/cart - returns the user's cart, creating an
// empty one on first access
func GetCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	cart, err := services.GetCartService().Get(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load cart")
		return
	}
	respondData(c, http.StatusOK, cart)
}

// AddToCartRequest represents the request body for adding a cart item
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// AddToCart handles POST /api/v1/cart/add - adds a product to the cart.
// Adding from a different restaurant replaces the cart contents.
func AddToCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	cart, err := services.GetCartService().Add(userID, req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update cart")
		return
	}
	respondData(c, http.StatusOK, cart)
}

// RemoveFromCartRequest represents the request body for removing a cart item
type RemoveFromCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// RemoveFromCart handles POST /api/v1/cart/remove - removes a line entirely
func RemoveFromCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req RemoveFromCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	cart, err := services.GetCartService().Remove(userID, req.ProductID)
	if err != nil {
		if errors.Is(err, services.ErrItemNotInCart) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Item not in cart")
			return
		}
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update cart")
		return
	}
	respondData(c, http.StatusOK, cart)
}

// UpdateCartQuantityRequest represents the request body for quantity changes
type UpdateCartQuantityRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Action    string `json:"action" binding:"required"` // increment or decrement
}

// UpdateCartQuantity handles POST /api/v1/cart/update-quantity. Decrementing
// a line to zero removes it.
func UpdateCartQuantity(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req UpdateCartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	cart, err := services.GetCartService().SetQuantity(userID, req.ProductID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCartAction):
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, services.ErrItemNotInCart):
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Item not in cart")
		default:
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update cart")
		}
		return
	}
	respondData(c, http.StatusOK, cart)
}

// ClearCart handles DELETE /api/v1/cart - empties the cart
func ClearCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	cart, err := services.GetCartService().Clear(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to clear cart")
		return
	}
	respondData(c, http.StatusOK, cart)
}
