package chat

import (
	"errors"
	"net/http"

	"gigwork-service/internal/contract"
	"gigwork-service/internal/models"
	"gigwork-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatHandler struct {
	service ChatService
}

func NewChatHandler(service ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// GetMessages handles GET /chat/:contractId/messages. Only the two parties
// of the contract can read its history.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	contractID, err := uuid.Parse(c.Param("contractId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var query models.MessageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msgs, err := h.service.GetMessages(c.Request.Context(), contractID, userID, &query)
	if err != nil {
		h.writeError(c, err, "failed to load messages")
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// MarkMessageRead handles PUT /chat/messages/:id/read. Only the recipient
// may mark a message as read.
func (h *ChatHandler) MarkMessageRead(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	msg, err := h.service.MarkMessageRead(c.Request.Context(), messageID, userID)
	if err != nil {
		h.writeError(c, err, "failed to mark message as read")
		return
	}
	c.JSON(http.StatusOK, msg)
}

// MarkAllRead handles PUT /chat/:contractId/read.
func (h *ChatHandler) MarkAllRead(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	contractID, err := uuid.Parse(c.Param("contractId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	n, err := h.service.MarkAllRead(c.Request.Context(), contractID, userID)
	if err != nil {
		h.writeError(c, err, "failed to mark messages as read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// GetConversations handles GET /chat/conversations.
func (h *ChatHandler) GetConversations(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	summaries, err := h.service.GetConversations(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *ChatHandler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrMessageNotFound), errors.Is(err, contract.ErrContractNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrOwnMessageRead), errors.Is(err, contract.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
