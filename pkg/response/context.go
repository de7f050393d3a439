package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys set by the auth middleware.
const (
	ContextUserIDKey = "user_id"
	ContextUserKey   = "user"
)

// UserID returns the authenticated user's id from the request context.
func UserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return uuid.Nil, errors.New("user_id not found in context")
	}
	userID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("user_id in context is not a UUID")
	}
	return userID, nil
}

// AuthUserID returns the authenticated user's id, aborting the request with
// 401 when it is missing. Handlers must return when ok is false. Only for
// handlers mounted behind the auth middleware.
func AuthUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := UserID(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	return userID, true
}
