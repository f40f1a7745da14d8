package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/platewise/platewise-api/middleware"
	"github.com/platewise/platewise-api/services"
)

// CreateOrderRequest represents the request body for placing an order
type CreateOrderRequest struct {
	RestaurantID      uint                       `json:"restaurant_id" binding:"required"`
	Items             []services.OrderItemInput  `json:"items" binding:"required"`
	TotalAmount       float64                    `json:"total_amount" binding:"required"`
	PaymentMethod     string                     `json:"payment_method"`
	PaymentScreenshot *string                    `json:"payment_screenshot"`
	DeliveryAddress   *services.AddressSnapshot  `json:"delivery_address"`
}

// CreateOrder handles POST /api/v1/orders - places a new order (users only)
func CreateOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	order, err := services.GetOrderService().CreateOrder(
		c.Request.Context(),
		userID,
		req.RestaurantID,
		req.Items,
		req.TotalAmount,
		req.PaymentMethod,
		req.PaymentScreenshot,
		req.DeliveryAddress,
	)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRestaurantNotFound):
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Restaurant not found")
		case errors.Is(err, services.ErrRestaurantClosed):
			respondError(c, http.StatusBadRequest, "RESTAURANT_CLOSED", err.Error())
		case errors.Is(err, services.ErrEmptyOrder),
			errors.Is(err, services.ErrInvalidQuantity),
			errors.Is(err, services.ErrTotalMismatch):
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create order")
		}
		return
	}

	respondData(c, http.StatusCreated, order)
}

// GetMyOrders handles GET /api/v1/orders - lists the user's own orders
func GetMyOrders(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	filter := orderFilterFromQuery(c)
	orders, total, err := services.GetOrderService().GetUserOrders(userID, filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list orders")
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

// GetOrderByID handles GET /api/v1/orders/:id - single order detail. Orders
// placed by other users come back as not-found.
func GetOrderByID(c *gin.Context) {
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

	order, err := services.GetOrderService().GetUserOrderByID(uint(orderID), userID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load order")
		return
	}

	respondData(c, http.StatusOK, order)
}

// orderFilterFromQuery builds an order listing filter from query params.
func orderFilterFromQuery(c *gin.Context) services.OrderFilter {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))

	filter := services.OrderFilter{Page: page, PageSize: pageSize}
	if start := c.Query("start_date"); start != "" {
		if t, err := time.Parse("2006-01-02", start); err == nil {
			filter.StartDate = &t
		}
	}
	if end := c.Query("end_date"); end != "" {
		if t, err := time.Parse("2006-01-02", end); err == nil {
			filter.EndDate = &t
		}
	}
	return filter
}

// pageCount computes the number of pages for a total and page size.
func pageCount(total int64, pageSize int) int64 {
	if pageSize <= 0 {
		return 0
	}
	return (total + int64(pageSize) - 1) / int64(pageSize)
}
