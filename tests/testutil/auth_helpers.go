package testutil

import (
	"testing"

	"github.com/platewise/platewise-api/config"
	"github.com/platewise/platewise-api/middleware"
	"github.com/platewise/platewise-api/models"
	"gorm.io/gorm"
)

// TestJWTSecret is the signing secret used by integration tests.
const TestJWTSecret = "integration-test-secret"

// ConfigureTestJWT installs a config carrying the test signing secret.
func ConfigureTestJWT() {
	config.SetConfig(&config.Config{JWTSecret: TestJWTSecret, GoEnv: "test"})
}

// TokenFor issues a valid Bearer token for the given account.
func TokenFor(t *testing.T, user models.User) string {
	t.Helper()

	token, err := middleware.GenerateToken(user.ID, TestJWTSecret)
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}
	return token
}

// CreateAccount persists an account with the given role.
func CreateAccount(t *testing.T, db *gorm.DB, phone, role string) models.User {
	t.Helper()

	user := models.User{Phone: phone, Role: role, Name: "Integration " + role, City: "Mumbai", Address: "12 MG Road"}
	if role == models.RoleRestaurant {
		user.RestaurantName = "Integration Kitchen"
		user.IsOpen = true
		user.IsVerified = true
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create %s account: %v", role, err)
	}
	return user
}
