package handlers

import (
	"context"
	"errors"
	"net/http"

	"gentherapist/internal/core"
	"gentherapist/internal/http/middleware"
	"gentherapist/internal/http/response"
	"gentherapist/pkg"
	"gentherapist/src/logger"

	"github.com/gin-gonic/gin"
)

// ChatService is what the chat endpoints need from the core
type ChatService interface {
	Send(ctx context.Context, sessionID, message string) (*core.ProcessorOutput, error)
	Clear(ctx context.Context, sessionID string) error
	History(ctx context.Context, sessionID string) ([]pkg.ConversationTurn, error)
}

type ChatHandler struct {
	chat ChatService
}

func NewChatHandler(chat ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

// SendMessage handles POST /api/send-message
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	out, err := h.chat.Send(c.Request.Context(), middleware.SessionID(c), req.Message)
	if errors.Is(err, core.ErrEmptyMessage) {
		response.RespondError(c, http.StatusBadRequest, "Message cannot be empty")
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("session_id", middleware.SessionID(c)).Msg("Failed to process message")
		_ = c.Error(err)
		response.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	response.RespondOK(c, gin.H{
		"bot_response":   out.Result.Reply,
		"sentiment":      out.Result.Sentiment,
		"intent":         out.Result.Intent,
		"is_crisis":      out.Result.IsCrisis,
		"cbt_techniques": out.Result.Techniques,
	})
}

// ClearConversation handles POST /api/clear-conversation
func (h *ChatHandler) ClearConversation(c *gin.Context) {
	if err := h.chat.Clear(c.Request.Context(), middleware.SessionID(c)); err != nil {
		_ = c.Error(err)
		response.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.RespondOK(c, nil)
}

// GetConversation handles GET /api/conversation
func (h *ChatHandler) GetConversation(c *gin.Context) {
	turns, err := h.chat.History(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		_ = c.Error(err)
		response.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.RespondOK(c, gin.H{"turns": turns})
}
