package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gambleio-server/internal/models"
	"gambleio-server/internal/services"
)

type UserHandler struct {
	ledger *services.LedgerService
	plinko *services.PlinkoService
}

func NewUserHandler(ledger *services.LedgerService, plinko *services.PlinkoService) *UserHandler {
	return &UserHandler{
		ledger: ledger,
		plinko: plinko,
	}
}

func (h *UserHandler) GetStats(c *gin.Context) {
	stats, err := h.ledger.Stats(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *UserHandler) UpdateStats(c *gin.Context) {
	var req models.UpdateStatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	err := h.ledger.UpdateStats(c.Request.Context(), currentUser(c), services.StatsUpdate{
		Level:                req.Level,
		XP:                   req.XP,
		BiggestWinAmount:     req.BiggestWinAmount,
		BiggestWinMultiplier: req.BiggestWinMultiplier,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *UserHandler) PlaceBet(c *gin.Context) {
	var req models.BetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.ledger.PlaceBet(c.Request.Context(), currentUser(c), valueOr(req.Amount), req.Source)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *UserHandler) Win(c *gin.Context) {
	var req models.WinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.ledger.RecordWin(c.Request.Context(), currentUser(c), services.WinInput{
		Amount:     valueOr(req.Amount),
		Multiplier: req.Multiplier,
		BetAmount:  req.BetAmount,
		Source:     req.Source,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *UserHandler) Refund(c *gin.Context) {
	var req models.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	balance, err := h.ledger.Refund(c.Request.Context(), currentUser(c), valueOr(req.Amount))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

func (h *UserHandler) ClickEarnings(c *gin.Context) {
	var req models.ClickEarningsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	clicks := 0.0
	if req.ClickCount != nil {
		clicks = *req.ClickCount
	}
	res, err := h.ledger.RecordClickEarnings(c.Request.Context(), currentUser(c), valueOr(req.Amount), clicks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *UserHandler) SetRiskLevel(c *gin.Context) {
	var req models.RiskLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.ledger.SetPlinkoRisk(c.Request.Context(), currentUser(c), req.Level)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *UserHandler) AcceptChatRules(c *gin.Context) {
	if err := h.ledger.AcceptChatRules(c.Request.Context(), currentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *UserHandler) PlinkoLand(c *gin.Context) {
	var req models.PlinkoLandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.SlotIndex == nil {
		respondError(c, services.ErrInvalidInput)
		return
	}

	var bet, multiplier float64
	if req.Bet != nil {
		bet = *req.Bet
	}
	if req.Multiplier != nil {
		multiplier = *req.Multiplier
	}
	if err := h.plinko.RecordLanding(c.Request.Context(), currentUser(c), *req.SlotIndex, bet, multiplier); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *UserHandler) PlinkoStats(c *gin.Context) {
	stats, err := h.plinko.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
