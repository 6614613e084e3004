package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gambleio-server/internal/models"
	"gambleio-server/internal/services"
)

type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func (h *ChatHandler) GetMessages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"messages": h.chat.Recent()})
}

func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req models.ChatPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	message, err := h.chat.Post(c.Request.Context(), currentUser(c), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}
