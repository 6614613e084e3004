package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gambleio-server/internal/middleware"
	"gambleio-server/internal/models"
	"gambleio-server/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.auth.Register(c.Request.Context(), req.Username, req.Password, req.DisplayName)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password must be at least 3 characters"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, services.ErrUserNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := middleware.BearerToken(c)
	h.auth.Logout(c.Request.Context(), token)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
