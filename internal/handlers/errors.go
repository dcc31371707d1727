package handlers

import (
	"errors"
	"net/http"

	"mockexam-service/internal/models"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors onto HTTP statuses in one place so every
// handler reports the same way.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, models.ErrEntitlementDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Attempt has expired"})
	case errors.Is(err, models.ErrAlreadySubmitted):
		c.JSON(http.StatusConflict, gin.H{"error": "Attempt already submitted"})
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, models.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is already registered"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "details": err.Error()})
	}
}
