package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"propertychat/internal/model"
	"propertychat/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SessionHeader lets clients that do not send session_id in the body keep a conversation
const SessionHeader = "X-Session-ID"

// ChatHandler handles conversational search requests
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	req, ok := bindChatRequest(c)
	if !ok {
		return
	}

	response := h.chatService.Chat(c.Request.Context(), req)
	c.Header(SessionHeader, response.SessionID)
	c.JSON(http.StatusOK, response)
}

// ChatStream handles POST /api/chat/stream - SSE streaming chat
func (h *ChatHandler) ChatStream(c *gin.Context) {
	req, ok := bindChatRequest(c)
	if !ok {
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Header(SessionHeader, req.SessionID)
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	response, err := h.chatService.ChatStream(ctx, req, func(event string, data any) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		sendSSE(c, event, data)
		flusher.Flush()
		return nil
	})

	if err != nil {
		log.Printf("⚠️  Chat stream for session %s ended early: %v", req.SessionID, err)
		sendSSE(c, "error", map[string]any{"error": err.Error()})
		flusher.Flush()
		return
	}

	sendSSE(c, "done", response)
	flusher.Flush()
}

// Reset handles DELETE /api/chat/:sessionId
func (h *ChatHandler) Reset(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("sessionId"))
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID required"})
		return
	}

	if err := h.chatService.ResetSession(c.Request.Context(), sessionID); err != nil {
		log.Printf("❌ Failed to reset session %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset conversation"})
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "Conversation reset"})
}

// bindChatRequest parses the body and assigns a session id, writing the 400 itself
func bindChatRequest(c *gin.Context) (*model.ChatRequest, bool) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "SessionID" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session_id"})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return nil, false
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return nil, false
	}

	if req.SessionID == "" {
		req.SessionID = c.GetHeader(SessionHeader)
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	return &req, true
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
	} else {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
	}
}
