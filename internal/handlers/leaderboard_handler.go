package handlers

import (
	"context"
	"net/http"
	"strconv"

	"mockexam-service/internal/middleware"
	"mockexam-service/internal/service"

	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	Service *service.LeaderboardService
}

func NewLeaderboardHandler(s *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{Service: s}
}

// TestLeaderboard returns a ranked page for one test plus the caller's own
// standing, which is always fetched fresh.
func (h *LeaderboardHandler) TestLeaderboard(c *gin.Context) {
	limit := queryInt(c, "limit", 10)
	page := queryInt(c, "page", 1)
	if limit < 1 || limit > 100 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}

	board, err := h.Service.ForTest(context.Background(), c.Param("testId"), middleware.CurrentUserID(c), limit, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// GlobalLeaderboard ranks users across all tests by best score.
func (h *LeaderboardHandler) GlobalLeaderboard(c *gin.Context) {
	limit := queryInt(c, "limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}

	board, err := h.Service.Global(context.Background(), middleware.CurrentUserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}
