package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/platewise/platewise-api/config"
	"github.com/platewise/platewise-api/models"
)

// TokenTTL is how long issued tokens stay valid.
const TokenTTL = 30 * 24 * time.Hour

// AuthError represents an authentication/authorization error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// GenerateToken signs a token for the given account ID.
func GenerateToken(userID uint, secret string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a token and returns the account ID it was issued for.
func ParseToken(tokenString, secret string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return 0, errors.New("invalid token claims")
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, errors.New("invalid token subject")
	}
	return uint(id), nil
}

// RequireAuth validates the Bearer token, loads the account and stores it in
// the request context. Blocked accounts are rejected.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "MISSING_TOKEN", "Authorization token is required")
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		cfg := config.GetConfig()
		if cfg == nil {
			abortUnauthorized(c, "NOT_CONFIGURED", "Server configuration not loaded")
			return
		}

		userID, err := ParseToken(tokenString, cfg.JWTSecret)
		if err != nil {
			abortUnauthorized(c, "INVALID_TOKEN", "Failed to validate token")
			return
		}

		var user models.User
		if err := config.GetDB().First(&user, userID).Error; err != nil {
			abortUnauthorized(c, "INVALID_TOKEN", "Account no longer exists")
			return
		}
		if user.IsBlocked {
			abortUnauthorized(c, "ACCOUNT_BLOCKED", "Account is blocked")
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Next()
	}
}

// RequireRole rejects requests whose authenticated account does not carry
// one of the given roles. Must run after RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetCurrentUser(c)
		if err != nil {
			abortUnauthorized(c, "UNAUTHORIZED", "Could not extract user information")
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Insufficient role for this operation",
			},
		})
	}
}

// GetUserID extracts the authenticated account ID from the Gin context
func GetUserID(c *gin.Context) (uint, error) {
	value, exists := c.Get("user_id")
	if !exists {
		return 0, &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}
	userID, ok := value.(uint)
	if !ok {
		return 0, &AuthError{Code: "INVALID_USER_ID", Message: "User ID has unexpected type"}
	}
	return userID, nil
}

// GetCurrentUser extracts the authenticated account from the Gin context
func GetCurrentUser(c *gin.Context) (models.User, error) {
	value, exists := c.Get("user")
	if !exists {
		return models.User{}, &AuthError{Code: "MISSING_USER", Message: "User not found in context"}
	}
	user, ok := value.(models.User)
	if !ok {
		return models.User{}, &AuthError{Code: "INVALID_USER", Message: "User has unexpected type"}
	}
	return user, nil
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
