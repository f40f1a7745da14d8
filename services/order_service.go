package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/platewise/platewise-api/models"
)

// Order lifecycle errors.
var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrRestaurantClosed   = errors.New("restaurant is currently closed and not accepting orders")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrEmptyOrder         = errors.New("order must contain at least one item")
	ErrInvalidQuantity    = errors.New("item quantity must be at least 1")
	ErrTotalMismatch      = errors.New("total amount does not match order items")
)

// statusAliases maps input-level action synonyms onto real states.
var statusAliases = map[string]models.OrderStatus{
	"accept": models.OrderPreparing,
	"reject": models.OrderCancelled,
}

// validTransitions is the order state machine. Anything not listed here is
// an invalid transition.
var validTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:        {models.OrderPreparing, models.OrderCancelled},
	models.OrderPreparing:      {models.OrderReady, models.OrderCancelled},
	models.OrderReady:          {models.OrderOutForDelivery},
	models.OrderOutForDelivery: {models.OrderDelivered},
}

// ResolveStatus maps an input status (possibly an alias like "accept" or
// "reject") onto a real order state. The second return value is false when
// the input names no known state.
func ResolveStatus(input string) (models.OrderStatus, bool) {
	if status, ok := statusAliases[input]; ok {
		return status, true
	}
	status := models.OrderStatus(input)
	switch status {
	case models.OrderPending, models.OrderPreparing, models.OrderReady,
		models.OrderOutForDelivery, models.OrderDelivered, models.OrderCancelled:
		return status, true
	}
	return "", false
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderItemInput is one requested order line. Price is the unit price the
// client saw; it becomes the permanent snapshot price of the line.
type OrderItemInput struct {
	ProductID uint    `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	Price     float64 `json:"price" binding:"required,gte=0"`
}

// AddressSnapshot is a delivery address captured at order time.
type AddressSnapshot struct {
	Address string   `json:"address"`
	City    string   `json:"city"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// OrderService owns order state transitions and drives the notification
// store and dispatch bus as best-effort side effects.
type OrderService struct {
	db            *gorm.DB
	notifications NotificationStore
	bus           Dispatcher
}

// NewOrderService creates the order lifecycle engine. bus may be nil, in
// which case delivery degrades to notification-store-only.
func NewOrderService(db *gorm.DB, notifications NotificationStore, bus Dispatcher) *OrderService {
	return &OrderService{db: db, notifications: notifications, bus: bus}
}

// CreateOrder validates the restaurant, snapshots the delivery address,
// assigns a sequential order reference and persists the order in state
// pending. The restaurant is notified persistently and in real time;
// failures of either are non-fatal.
func (s *OrderService) CreateOrder(ctx context.Context, userID, restaurantID uint, items []OrderItemInput, totalAmount float64, paymentMethod string, paymentScreenshot *string, addr *AddressSnapshot) (*models.Order, error) {
	var restaurant models.User
	err := s.db.Where("id = ? AND role = ?", restaurantID, models.RoleRestaurant).First(&restaurant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	if !restaurant.IsOpen {
		return nil, ErrRestaurantClosed
	}

	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	computed := 0.0
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		computed += item.Price * float64(item.Quantity)
	}
	if math.Abs(computed-totalAmount) > 0.01 {
		return nil, ErrTotalMismatch
	}

	// Snapshot the delivery address. Falls back to the user's current
	// profile address; later profile edits never change a placed order.
	if addr == nil {
		var user models.User
		if err := s.db.First(&user, userID).Error; err != nil {
			return nil, err
		}
		addr = &AddressSnapshot{
			Address: user.Address,
			City:    user.City,
			Lat:     user.Lat,
			Lng:     user.Lng,
		}
	}

	seq, err := models.NextSequence(s.db, "order")
	if err != nil {
		return nil, err
	}

	if paymentMethod == "" {
		paymentMethod = models.PaymentCOD
	}

	order := models.Order{
		OrderRef:          fmt.Sprintf("#ORD-%d", seq),
		UserID:            userID,
		RestaurantID:      restaurantID,
		TotalAmount:       totalAmount,
		Status:            models.OrderPending,
		PaymentMethod:     paymentMethod,
		PaymentScreenshot: paymentScreenshot,
		DeliveryAddress:   addr.Address,
		DeliveryCity:      addr.City,
		DeliveryLat:       addr.Lat,
		DeliveryLng:       addr.Lng,
	}
	for _, item := range items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	if err := s.db.Create(&order).Error; err != nil {
		return nil, err
	}

	BestEffort("record new-order notification", func() error {
		_, err := s.notifications.Record(
			restaurantID,
			"New Order Received",
			fmt.Sprintf("You have a new order %s for ₹%.0f", order.OrderRef, order.TotalAmount),
			models.NotificationOrderNew,
			&NotificationPayload{OrderID: order.ID, OrderRef: order.OrderRef},
		)
		return err
	})

	BestEffort("publish new_order event", func() error {
		if s.bus == nil {
			return nil
		}
		// Fully joined detail for the restaurant dashboard
		var detail models.Order
		if err := s.db.Preload("User").Preload("Items.Product").First(&detail, order.ID).Error; err != nil {
			return err
		}
		return s.bus.Publish(ctx, RestaurantChannel(restaurantID), EventNewOrder, detail)
	})

	return &order, nil
}

// UpdateOrderStatus transitions an order owned by the requesting restaurant
// to the requested state after alias resolution and state-machine
// validation. The ordering user and the restaurant's own dashboard sessions
// are notified; each side effect is independently failure-tolerant.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID, restaurantID uint, requested string) (*models.Order, error) {
	target, ok := ResolveStatus(requested)
	if !ok {
		return nil, ErrInvalidStatus
	}

	var order models.Order
	err := s.db.Where("id = ? AND restaurant_id = ?", orderID, restaurantID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Foreign orders are indistinguishable from missing ones
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if !CanTransition(order.Status, target) {
		return nil, ErrInvalidStatus
	}

	order.Status = target
	if err := s.db.Model(&order).Update("status", target).Error; err != nil {
		return nil, err
	}

	readable := strings.ReplaceAll(string(target), "_", " ")

	BestEffort("record status-change notification", func() error {
		_, err := s.notifications.Record(
			order.UserID,
			fmt.Sprintf("Order %s", readable),
			fmt.Sprintf("Your order %s is now %s", order.OrderRef, readable),
			models.NotificationOrderStatus,
			&NotificationPayload{OrderID: order.ID, OrderRef: order.OrderRef},
		)
		return err
	})

	BestEffort("publish order_status_update event", func() error {
		if s.bus == nil {
			return nil
		}
		return s.bus.Publish(ctx, UserChannel(order.UserID), EventOrderStatusUpdate, map[string]interface{}{
			"order_id":  order.ID,
			"order_ref": order.OrderRef,
			"status":    target,
		})
	})

	BestEffort("publish restaurant_order_status_update event", func() error {
		if s.bus == nil {
			return nil
		}
		return s.bus.Publish(ctx, RestaurantChannel(restaurantID), EventRestaurantOrderStatusUpdate, map[string]interface{}{
			"order_id":     order.ID,
			"status":       target,
			"total_amount": order.TotalAmount,
		})
	})

	return &order, nil
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Page      int
	PageSize  int
	StartDate *time.Time
	EndDate   *time.Time
}

func (f *OrderFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 12
	}
}

// GetUserOrders lists orders placed by the given user, newest first.
func (s *OrderService) GetUserOrders(userID uint, filter OrderFilter) ([]models.Order, int64, error) {
	return s.listOrders("user_id", userID, filter, "Restaurant", "Items.Product")
}

// GetRestaurantOrders lists orders addressed to the given restaurant,
// newest first.
func (s *OrderService) GetRestaurantOrders(restaurantID uint, filter OrderFilter) ([]models.Order, int64, error) {
	return s.listOrders("restaurant_id", restaurantID, filter, "User", "Items.Product")
}

func (s *OrderService) listOrders(ownerColumn string, ownerID uint, filter OrderFilter, preloads ...string) ([]models.Order, int64, error) {
	filter.normalize()

	query := s.db.Model(&models.Order{}).Where(ownerColumn+" = ?", ownerID)
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		end := filter.EndDate.AddDate(0, 0, 1)
		query = query.Where("created_at < ?", end)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	for _, preload := range preloads {
		query = query.Preload(preload)
	}

	var orders []models.Order
	err := query.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// GetUserOrderByID returns a single order owned by the user. Foreign orders
// come back as not-found.
func (s *OrderService) GetUserOrderByID(orderID, userID uint) (*models.Order, error) {
	return s.getOwnedOrder("user_id", userID, orderID, "Restaurant", "Items.Product")
}

// GetRestaurantOrderByID returns a single order addressed to the
// restaurant. Foreign orders come back as not-found.
func (s *OrderService) GetRestaurantOrderByID(orderID, restaurantID uint) (*models.Order, error) {
	return s.getOwnedOrder("restaurant_id", restaurantID, orderID, "User", "Items.Product")
}

func (s *OrderService) getOwnedOrder(ownerColumn string, ownerID, orderID uint, preloads ...string) (*models.Order, error) {
	query := s.db.Where("id = ? AND "+ownerColumn+" = ?", orderID, ownerID)
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	var order models.Order
	if err := query.First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

var orderServiceInstance *OrderService

// InitOrderService initializes the process-wide order service.
func InitOrderService(db *gorm.DB, notifications NotificationStore, bus Dispatcher) *OrderService {
	orderServiceInstance = NewOrderService(db, notifications, bus)
	return orderServiceInstance
}

// GetOrderService returns the initialized order service instance
func GetOrderService() *OrderService {
	return orderServiceInstance
}

// SetOrderService sets the order service instance (primarily for testing)
func SetOrderService(s *OrderService) {
	orderServiceInstance = s
}
