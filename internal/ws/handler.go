package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"gigwork-service/internal/contract"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Configure this based on your needs
	},
}

// TokenVerifier validates a bearer credential and yields the authenticated
// user id. Implemented by the auth package's JWKS cache.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (uuid.UUID, error)
}

// ChatAuthorizer decides whether a user may chat on a contract. Implemented
// by the contract service; failures are the contract package's sentinel
// errors.
type ChatAuthorizer interface {
	AuthorizeChat(ctx context.Context, contractID, userID uuid.UUID) error
}

// Handler upgrades authenticated, authorized requests into chat sessions.
type Handler struct {
	hub        *Hub
	store      MessageStore
	verifier   TokenVerifier
	authorizer ChatAuthorizer
	logger     *slog.Logger
}

func NewHandler(hub *Hub, store MessageStore, verifier TokenVerifier, authorizer ChatAuthorizer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		hub:        hub,
		store:      store,
		verifier:   verifier,
		authorizer: authorizer,
		logger:     logger,
	}
}

// HandleChatWS serves GET /chat/ws/:contractId?token=<jwt>.
//
// The credential rides in a query parameter because browsers cannot set an
// Authorization header on the WebSocket handshake; a header is accepted too
// for non-browser clients. The connection only joins a room after the token
// verifies and the contract authorizes; rejected handshakes never touch the
// hub.
func (h *Handler) HandleChatWS(c *gin.Context) {
	contractID, err := uuid.Parse(c.Param("contractId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token is required"})
		return
	}

	userID, err := h.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if err := h.authorizer.AuthorizeChat(c.Request.Context(), contractID, userID); err != nil {
		switch {
		case errors.Is(err, contract.ErrContractNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		case errors.Is(err, contract.ErrChatNotAvailable), errors.Is(err, contract.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			h.logger.Error("chat authorization failed",
				"contractID", contractID, "userID", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "authorization check failed"})
		}
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	NewClient(h.hub, conn, h.store, contractID, userID, h.logger).Start()
}
