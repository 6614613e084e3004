package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gambleio-server/internal/middleware"
	"gambleio-server/internal/models"
	"gambleio-server/internal/services"
)

type AdminHandler struct {
	admin  *services.AdminService
	tokens *services.TokenService
	store  services.UserStore
}

func NewAdminHandler(admin *services.AdminService, tokens *services.TokenService, store services.UserStore) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		tokens: tokens,
		store:  store,
	}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	user, err := h.admin.GetUser(c.Request.Context(), currentUser(c), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) SetRole(c *gin.Context) {
	var req models.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	role := ""
	if req.Role != nil {
		role = *req.Role
	}
	user, err := h.admin.SetRole(c.Request.Context(), currentUser(c), c.Param("username"), role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) Adjust(c *gin.Context) {
	var req models.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.admin.Adjust(c.Request.Context(), currentUser(c), c.Param("username"), req.Type, valueOr(req.Value))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) Mute(c *gin.Context) {
	var req models.MuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var (
		user models.UserStats
		err  error
	)
	if req.Unmute {
		user, err = h.admin.Unmute(c.Request.Context(), currentUser(c), c.Param("username"))
	} else {
		user, err = h.admin.Mute(c.Request.Context(), currentUser(c), c.Param("username"), valueOr(req.Minutes))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) ChatLogs(c *gin.Context) {
	messages, err := h.admin.ChatLogs(c.Request.Context(), currentUser(c), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *AdminHandler) Logs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	logs, err := h.admin.Logs(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// Reset accepts the reset key from the X-Admin-Key header or the body, or an
// owner session.
func (h *AdminHandler) Reset(c *gin.Context) {
	var req models.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	key := req.Key
	if key == "" {
		key = c.GetHeader("X-Admin-Key")
	}

	actor := ""
	if !h.admin.CheckResetKey(key) {
		actor = h.ownerSession(c)
		if actor == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
	}

	if err := h.admin.Reset(c.Request.Context(), actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) ownerSession(c *gin.Context) string {
	token, ok := middleware.BearerToken(c)
	if !ok {
		return ""
	}
	username, _, err := h.tokens.Validate(c.Request.Context(), token)
	if err != nil {
		return ""
	}
	user, err := h.store.GetUser(c.Request.Context(), username)
	if err != nil || user.Role != models.RoleOwner {
		return ""
	}
	return user.Username
}
