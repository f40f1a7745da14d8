package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/platewise/platewise-api/models"
)

// Cart errors.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrItemNotInCart     = errors.New("item not found in cart")
	ErrInvalidCartAction = errors.New("action must be increment or decrement")
)

// Quantity actions for SetQuantity.
const (
	CartIncrement = "increment"
	CartDecrement = "decrement"
)

// CartService enforces the single-restaurant-per-cart invariant and
// recomputes the derived total on every mutation.
type CartService struct {
	db *gorm.DB
}

// NewCartService creates the cart aggregator.
func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// Get returns the user's cart, creating an empty one on first access.
func (s *CartService) Get(userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.Preload("Items.Product").Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		if err := s.db.Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Add inserts a product into the cart with the product's current price as
// the line's snapshot price. If the cart already contains items from a
// different restaurant, those items are cleared first: the cart is
// replaced, never merged across restaurants.
func (s *CartService) Add(userID, productID uint, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}

	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	cart, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	if current := cart.RestaurantID(); current != 0 && current != product.RestaurantID {
		if err := s.db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return nil, err
		}
		cart.Items = nil
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			if err := s.db.Model(&cart.Items[i]).Update("quantity", cart.Items[i].Quantity).Error; err != nil {
				return nil, err
			}
			found = true
			break
		}
	}
	if !found {
		item := models.CartItem{
			CartID:       cart.ID,
			ProductID:    productID,
			Quantity:     quantity,
			Price:        product.Price,
			RestaurantID: product.RestaurantID,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}

	return s.saveTotal(cart)
}

// Remove deletes a product line from the cart entirely.
func (s *CartService) Remove(userID, productID uint) (*models.Cart, error) {
	cart, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrItemNotInCart
	}

	if err := s.db.Delete(&cart.Items[idx]).Error; err != nil {
		return nil, err
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	return s.saveTotal(cart)
}

// SetQuantity increments or decrements a line's quantity. Decrementing to
// zero or below removes the line entirely; quantity never goes negative.
func (s *CartService) SetQuantity(userID, productID uint, action string) (*models.Cart, error) {
	if action != CartIncrement && action != CartDecrement {
		return nil, ErrInvalidCartAction
	}

	cart, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrItemNotInCart
	}

	item := &cart.Items[idx]
	if action == CartIncrement {
		item.Quantity++
		if err := s.db.Model(item).Update("quantity", item.Quantity).Error; err != nil {
			return nil, err
		}
	} else {
		item.Quantity--
		if item.Quantity <= 0 {
			if err := s.db.Delete(item).Error; err != nil {
				return nil, err
			}
			cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		} else if err := s.db.Model(item).Update("quantity", item.Quantity).Error; err != nil {
			return nil, err
		}
	}

	return s.saveTotal(cart)
}

// Clear empties the cart and resets its total.
func (s *CartService) Clear(userID uint) (*models.Cart, error) {
	cart, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return nil, err
	}
	cart.Items = nil
	return s.saveTotal(cart)
}

// saveTotal recomputes the derived total from snapshot prices and persists
// it.
func (s *CartService) saveTotal(cart *models.Cart) (*models.Cart, error) {
	cart.RecomputeTotal()
	if err := s.db.Model(cart).Update("total_amount", cart.TotalAmount).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

var cartServiceInstance *CartService

// InitCartService initializes the process-wide cart service.
func InitCartService(db *gorm.DB) *CartService {
	cartServiceInstance = NewCartService(db)
	return cartServiceInstance
}

// GetCartService returns the initialized cart service instance
func GetCartService() *CartService {
	return cartServiceInstance
}

// SetCartService sets the cart service instance (primarily for testing)
func SetCartService(s *CartService) {
	cartServiceInstance = s
}
