package user

import (
	"errors"
	"net/http"

	"gigwork-service/internal/models"
	"gigwork-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserHandler struct {
	service UserService
}

func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Me handles GET /auth/me and returns the authenticated user's profile.
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err, "failed to load profile")
		return
	}
	c.JSON(http.StatusOK, u.ToResponse())
}

// CompleteProfile handles POST /auth/complete-profile, filling in the
// username and role after the first OAuth sign-in.
func (h *UserHandler) CompleteProfile(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	var req models.CompleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.service.CompleteProfile(c.Request.Context(), userID, &req)
	if err != nil {
		h.writeError(c, err, "failed to complete profile")
		return
	}
	c.JSON(http.StatusOK, u.ToResponse())
}

// ListUsers handles GET /users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "failed to list users")
		return
	}
	out := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToResponse())
	}
	c.JSON(http.StatusOK, out)
}

// GetUser handles GET /users/:id.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "failed to load user")
		return
	}
	c.JSON(http.StatusOK, u.ToResponse())
}

// UpdateUser handles PUT /users/:id. Users can only update themselves.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	callerID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.service.UpdateUser(c.Request.Context(), id, callerID, &req)
	if err != nil {
		h.writeError(c, err, "failed to update user")
		return
	}
	c.JSON(http.StatusOK, u.ToResponse())
}

// DeleteUser handles DELETE /users/:id. Users can only delete themselves.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	callerID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), id, callerID); err != nil {
		h.writeError(c, err, "failed to delete user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (h *UserHandler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotSelf):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
