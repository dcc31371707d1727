package handlers

import (
	"context"
	"net/http"

	"mockexam-service/internal/middleware"
	"mockexam-service/internal/service"

	"github.com/gin-gonic/gin"
)

type ResultHandler struct {
	Service *service.ResultService
}

func NewResultHandler(s *service.ResultService) *ResultHandler {
	return &ResultHandler{Service: s}
}

// ListMyResults returns the caller's result history, newest first. With
// ?test_id= it narrows to one test.
func (h *ResultHandler) ListMyResults(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var (
		results interface{}
		err     error
	)
	if testID := c.Query("test_id"); testID != "" {
		results, err = h.Service.ListByUserAndTest(context.Background(), userID, testID)
	} else {
		results, err = h.Service.ListByUser(context.Background(), userID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *ResultHandler) GetResult(c *gin.Context) {
	result, err := h.Service.Get(context.Background(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// AnalyzeResult returns the per-question review plus strengths, weaknesses
// and pacing insights.
func (h *ResultHandler) AnalyzeResult(c *gin.Context) {
	analysis, err := h.Service.Analyze(context.Background(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}
