package handlers

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"gambleio-server/internal/middleware"
	"gambleio-server/internal/services"
)

type errorMapping struct {
	target  error
	status  int
	message string
	code    string
}

var errorMappings = []errorMapping{
	{services.ErrNotAuthenticated, http.StatusUnauthorized, "Not authenticated", ""},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "Wrong password", ""},
	{services.ErrForbidden, http.StatusForbidden, "Forbidden", ""},
	{services.ErrUserNotFound, http.StatusNotFound, "User not found", ""},
	{services.ErrUserExists, http.StatusBadRequest, "Username already exists", ""},
	{services.ErrInsufficientBalance, http.StatusBadRequest, "Insufficient balance", "INSUFFICIENT_BALANCE"},
	{services.ErrInvalidAmount, http.StatusBadRequest, "Invalid amount", "INVALID_AMOUNT"},
	{services.ErrSequenceViolation, http.StatusBadRequest, "Unlock the previous risk level first", ""},
	{services.ErrBettingClosed, http.StatusBadRequest, "Betting is closed for this round", "BETTING_CLOSED"},
	{services.ErrBetConflict, http.StatusBadRequest, "You already have a bet in that group", "BET_CONFLICT"},
	{services.ErrInvalidMessage, http.StatusBadRequest, "Message must be 1-500 characters", ""},
	{services.ErrInvalidInput, http.StatusBadRequest, "", "INVALID_INPUT"},
}

// respondError maps service errors to a status and a {"error": ...} body.
func respondError(c *gin.Context, err error) {
	var rejection *services.ChatRejection
	if errors.As(err, &rejection) {
		respondChatRejection(c, rejection)
		return
	}

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		body := gin.H{"error": m.message}
		if m.message == "" {
			body["error"] = err.Error()
		}
		if m.code != "" {
			body["code"] = m.code
		}
		c.JSON(m.status, body)
		return
	}

	log.WithFields(log.Fields{
		"path":     c.Request.URL.Path,
		"username": c.GetString(middleware.ContextUsername),
	}).WithError(err).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func respondChatRejection(c *gin.Context, r *services.ChatRejection) {
	switch r.Code {
	case services.CodeChatDelay:
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":        r.Error(),
			"code":         r.Code,
			"retryAfterMs": r.RetryAfterMs,
		})
	default:
		c.JSON(http.StatusForbidden, gin.H{
			"error":      r.Error(),
			"code":       r.Code,
			"mutedUntil": r.MutedUntil,
		})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request",
		"details": err.Error(),
	})
}

// valueOr treats an absent number as NaN so it fails finite checks downstream.
func valueOr(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func currentUser(c *gin.Context) string {
	return c.GetString(middleware.ContextUsername)
}
