package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusworks/advisor-backend/internal/logger"
	"github.com/campusworks/advisor-backend/internal/services"
)

type ChatHandler struct {
	log     *logger.Logger
	chatSvc services.AdvisorChatService
}

func NewChatHandler(log *logger.Logger, chatSvc services.AdvisorChatService) *ChatHandler {
	return &ChatHandler{
		log:     log.With("handler", "ChatHandler"),
		chatSvc: chatSvc,
	}
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

// POST /api/students/:id/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	studentID, ok := studentIDParam(c)
	if !ok {
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	reply, err := h.chatSvc.Chat(c.Request.Context(), nil, studentID, req.Message)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientData) {
			RespondError(c, http.StatusUnprocessableEntity, "insufficient_data", err)
			return
		}
		h.log.Error("Advisor chat failed", "error", err, "student_id", studentID)
		RespondError(c, http.StatusInternalServerError, "chat_failed", err)
		return
	}
	RespondOK(c, reply)
}
