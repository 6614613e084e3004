package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gambleio-server/internal/models"
	"gambleio-server/internal/services"
)

type RouletteHandler struct {
	engine *services.RouletteEngine
}

func NewRouletteHandler(engine *services.RouletteEngine) *RouletteHandler {
	return &RouletteHandler{engine: engine}
}

// GetRound returns the shared round. Authenticated callers also get their
// balance and bets.
func (h *RouletteHandler) GetRound(c *gin.Context) {
	username := currentUser(c)
	if username == "" {
		c.JSON(http.StatusOK, h.engine.Snapshot())
		return
	}

	snapshot, err := h.engine.SnapshotFor(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusOK, h.engine.Snapshot())
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *RouletteHandler) PlaceBet(c *gin.Context) {
	var req models.RouletteBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.engine.PlaceBet(c.Request.Context(), currentUser(c), req.Key, valueOr(req.Amount))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *RouletteHandler) ClearBets(c *gin.Context) {
	balance, refunded, err := h.engine.ClearBets(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":  balance,
		"refunded": refunded,
	})
}

func (h *RouletteHandler) GetWinners(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Winners())
}

func (h *RouletteHandler) GetAllBets(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.AllBets())
}
