package handler

import (
	"net/http"

	"propertychat/internal/service"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports service readiness
type HealthHandler struct {
	chatService *service.ChatService
	listService *service.ListService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(chatService *service.ChatService, listService *service.ListService) *HealthHandler {
	return &HealthHandler{chatService: chatService, listService: listService}
}

// Health handles GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	ai := "disabled"
	if h.chatService.AIEnabled() {
		ai = "enabled"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"ai":                 ai,
		"properties":         h.chatService.CatalogSize(),
		"conversation_store": h.chatService.ConversationStore(),
		"list_store":         h.listService.StoreName(),
	})
}
