package handlers

import (
	"context"
	"net/http"

	"mockexam-service/internal/middleware"
	"mockexam-service/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	Service *service.PaymentService
}

func NewPaymentHandler(s *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{Service: s}
}

// ListPlans is public so the pricing page needs no auth.
func (h *PaymentHandler) ListPlans(c *gin.Context) {
	plans := make([]gin.H, 0, len(service.Plans))
	for name, plan := range service.Plans {
		plans = append(plans, gin.H{
			"plan":   name,
			"label":  plan.Label,
			"amount": plan.Amount,
		})
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// CreateOrder opens a checkout session for a premium plan and returns the
// gateway token the client redirects to.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req struct {
		Plan string `json:"plan" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	order, err := h.Service.CreateOrder(context.Background(), middleware.CurrentUserID(c), req.Plan)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// Notification is the payment gateway webhook. It is unauthenticated; the
// signature inside the payload is the proof of origin.
func (h *PaymentHandler) Notification(c *gin.Context) {
	var n service.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification payload", "details": err.Error()})
		return
	}

	if err := h.Service.HandleNotification(context.Background(), n); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification processed"})
}
