package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"mockexam-service/internal/auth"
	"mockexam-service/internal/models"
	"mockexam-service/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	// Context keys populated by Protect.
	UserIDKey = "userID"
	UserKey   = "user"
)

// Protect validates the bearer token and loads the account, so downstream
// handlers see a fresh user document rather than stale token claims.
func Protect(users *service.UserService, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			return
		}
		userID, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "), jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		user, err := users.Profile(context.Background(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
			return
		}
		c.Set(UserIDKey, user.ID)
		c.Set(UserKey, user)
		c.Next()
	}
}

// PremiumOnly gates premium content. A lapsed subscription observed here is
// demoted immediately so the flag does not keep granting access.
func PremiumOnly(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			return
		}
		now := time.Now()
		if user.IsPremium && !user.Premium(now) {
			_ = users.DemoteExpiredPremium(context.Background(), user.ID)
			user.IsPremium = false
		}
		if !user.Premium(now) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Premium subscription required"})
			return
		}
		c.Next()
	}
}

// AdminOnly assumes Protect already ran.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the account loaded by Protect, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(UserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// CurrentUserID returns the authenticated user's id, or "".
func CurrentUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
