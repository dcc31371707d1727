package handlers

import (
	"context"
	"net/http"

	"mockexam-service/internal/middleware"
	"mockexam-service/internal/models"
	"mockexam-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Service *service.UserService
}

func NewAuthHandler(s *service.UserService) *AuthHandler {
	return &AuthHandler{Service: s}
}

// Register creates an account and logs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var in service.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	user, token, err := h.Service.Register(context.Background(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  publicUser(user),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var creds service.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	user, token, err := h.Service.Login(context.Background(), creds)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  publicUser(user),
	})
}

// Profile returns the authenticated account.
func (h *AuthHandler) Profile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": publicUser(user)})
}

// publicUser strips the password hash from responses.
func publicUser(u *models.User) gin.H {
	return gin.H{
		"id":                 u.ID,
		"name":               u.Name,
		"email":              u.Email,
		"phone":              u.Phone,
		"is_admin":           u.IsAdmin,
		"is_premium":         u.IsPremium,
		"premium_expires_at": u.PremiumExpiresAt,
		"tests_attempted":    u.TestsAttempted,
		"last_test_date":     u.LastTestDate,
		"stats":              u.Stats,
		"created_at":         u.CreatedAt,
	}
}
