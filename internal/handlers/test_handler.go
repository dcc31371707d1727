package handlers

import (
	"context"
	"net/http"

	"mockexam-service/internal/middleware"
	"mockexam-service/internal/service"

	"github.com/gin-gonic/gin"
)

type TestHandler struct {
	Service *service.TestService
}

func NewTestHandler(s *service.TestService) *TestHandler {
	return &TestHandler{Service: s}
}

// ListTests returns the catalog visible to the caller, answers stripped.
// Supports ?type= and ?category= filters.
func (h *TestHandler) ListTests(c *gin.Context) {
	tests, err := h.Service.List(
		context.Background(),
		middleware.CurrentUserID(c),
		c.Query("type"),
		c.Query("category"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tests": tests,
		"count": len(tests),
	})
}

// GetTest serves a single test for the exam screen, answers stripped.
func (h *TestHandler) GetTest(c *gin.Context) {
	test, err := h.Service.Get(context.Background(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"test": test})
}
