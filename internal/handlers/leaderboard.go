package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gambleio-server/internal/services"
)

type LeaderboardHandler struct {
	leaderboard *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboard *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

func (h *LeaderboardHandler) boardType(c *gin.Context) (services.LeaderboardType, bool) {
	board, ok := services.ParseLeaderboardType(c.Param("type"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid leaderboard type"})
	}
	return board, ok
}

func (h *LeaderboardHandler) GetTop(c *gin.Context) {
	board, ok := h.boardType(c)
	if !ok {
		return
	}

	entries, err := h.leaderboard.Top(c.Request.Context(), board)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *LeaderboardHandler) GetUser(c *gin.Context) {
	board, ok := h.boardType(c)
	if !ok {
		return
	}

	detail, err := h.leaderboard.UserDetail(c.Request.Context(), board, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *LeaderboardHandler) GetProfile(c *gin.Context) {
	profile, err := h.leaderboard.Profile(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
