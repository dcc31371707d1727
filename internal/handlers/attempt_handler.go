package handlers

import (
	"context"
	"net/http"

	"mockexam-service/internal/middleware"
	"mockexam-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	Service *service.AttemptService
}

func NewAttemptHandler(s *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{Service: s}
}

// StartAttempt opens a fresh attempt or resumes the caller's live one for
// the same test.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	var req struct {
		TestID string `json:"testId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	attempt, resumed, err := h.Service.Start(context.Background(), middleware.CurrentUserID(c), req.TestID)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	message := "Attempt started"
	if resumed {
		status = http.StatusOK
		message = "Resumed existing attempt"
	}
	c.JSON(status, gin.H{
		"attempt": attempt,
		"resumed": resumed,
		"message": message,
	})
}

func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	attempt, err := h.Service.Get(context.Background(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempt": attempt})
}

// SaveAnswer records one question's answer. Repeated saves for the same
// question overwrite; no scoring happens here.
func (h *AttemptHandler) SaveAnswer(c *gin.Context) {
	var in service.SaveAnswerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid answer format", "details": err.Error()})
		return
	}

	if err := h.Service.SaveAnswer(context.Background(), middleware.CurrentUserID(c), c.Param("id"), in); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Answer saved"})
}

// SubmitAttempt finalizes the attempt and returns the scored result with its
// fresh rank and percentile.
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	result, err := h.Service.Submit(context.Background(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":  result,
		"message": "Test submitted successfully",
	})
}
