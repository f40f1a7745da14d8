package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platewise/platewise-api/config"
	"github.com/platewise/platewise-api/models"
	"github.com/platewise/platewise-api/services"
)

type stubOTPVerifier struct {
	validCode string
}

func (s stubOTPVerifier) SendOTP(phone string) error { return nil }

func (s stubOTPVerifier) VerifyOTP(phone, code string) (bool, error) {
	return code == s.validCode, nil
}

func setupAuthEndpointTest(t *testing.T) *gorm.DB {
	t.Helper()
	db := setupControllerTestDB(t)
	config.SetConfig(&config.Config{JWTSecret: "controller-test-secret"})
	services.SetOTPVerifier(stubOTPVerifier{validCode: "123456"})
	return db
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequestOTPEndpoint(t *testing.T) {
	db := setupControllerTestDB(t)
	services.SetOTPVerifier(services.NewDBOTPVerifier(db, false))

	router := setupTestRouter()
	router.POST("/auth/otp", RequestOTP)

	w := postJSON(t, router, "/auth/otp", map[string]interface{}{"phone": "+911234567890"})
	assert.Equal(t, http.StatusOK, w.Code)

	var otp models.OTP
	require.NoError(t, db.First(&otp, "phone = ?", "+911234567890").Error)
	assert.Len(t, otp.Code, 6)

	// Missing phone
	w = postJSON(t, router, "/auth/otp", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyOTPEndpoint(t *testing.T) {
	db := setupAuthEndpointTest(t)

	router := setupTestRouter()
	router.POST("/auth/verify", VerifyOTP)

	// First login creates the account
	w := postJSON(t, router, "/auth/verify", map[string]interface{}{
		"phone": "+911234567890",
		"code":  "123456",
		"name":  "Asha",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response["token"])

	var user models.User
	require.NoError(t, db.First(&user, "phone = ?", "+911234567890").Error)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.IsVerified)

	// Second login reuses the same account
	w = postJSON(t, router, "/auth/verify", map[string]interface{}{
		"phone": "+911234567890",
		"code":  "123456",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// Wrong code
	w = postJSON(t, router, "/auth/verify", map[string]interface{}{
		"phone": "+911234567890",
		"code":  "000000",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	errObj := response["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_OTP", errObj["code"])
}

func TestVerifyOTPEndpoint_RestaurantStartsUnverified(t *testing.T) {
	db := setupAuthEndpointTest(t)

	router := setupTestRouter()
	router.POST("/auth/verify", VerifyOTP)

	w := postJSON(t, router, "/auth/verify", map[string]interface{}{
		"phone": "+919999999999",
		"code":  "123456",
		"role":  models.RoleRestaurant,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, db.First(&user, "phone = ?", "+919999999999").Error)
	assert.Equal(t, models.RoleRestaurant, user.Role)
	assert.False(t, user.IsVerified)
}

func TestRegisterRestaurantEndpoint(t *testing.T) {
	db := setupAuthEndpointTest(t)

	router := setupTestRouter()
	router.POST("/auth/register-restaurant", RegisterRestaurant)

	w := postJSON(t, router, "/auth/register-restaurant", map[string]interface{}{
		"phone":           "+918888888888",
		"otp":             "123456",
		"restaurant_name": "Spice Route",
		"city":            "Mumbai",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var user models.User
	require.NoError(t, db.First(&user, "phone = ?", "+918888888888").Error)
	assert.Equal(t, "Spice Route", user.RestaurantName)
	assert.False(t, user.IsVerified)
	assert.Equal(t, 5000, user.DeliveryRadius)

	// Same phone again
	w = postJSON(t, router, "/auth/register-restaurant", map[string]interface{}{
		"phone":           "+918888888888",
		"otp":             "123456",
		"restaurant_name": "Spice Route",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	errObj := response["error"].(map[string]interface{})
	assert.Equal(t, "ALREADY_EXISTS", errObj["code"])
}
