package gig

import (
	"errors"
	"net/http"

	"gigwork-service/internal/models"
	"gigwork-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Thumbnail uploads above this size are rejected before touching storage.
const maxThumbnailSize = 5 << 20

type GigHandler struct {
	service GigService
}

func NewGigHandler(service GigService) *GigHandler {
	return &GigHandler{service: service}
}

// ListGigs handles GET /gigs with optional category filter and cursor
// pagination.
func (h *GigHandler) ListGigs(c *gin.Context) {
	var query models.GigListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gigs, err := h.service.ListGigs(c.Request.Context(), &query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list gigs"})
		return
	}
	c.JSON(http.StatusOK, gigs)
}

// GetGig handles GET /gigs/:id.
func (h *GigHandler) GetGig(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gig id"})
		return
	}

	gig, err := h.service.GetGig(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrGigNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load gig"})
		return
	}
	c.JSON(http.StatusOK, gig)
}

// CreateGig handles POST /gigs.
func (h *GigHandler) CreateGig(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	var req models.CreateGigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gig, err := h.service.CreateGig(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create gig"})
		return
	}
	c.JSON(http.StatusCreated, gig)
}

// UpdateGig handles PUT /gigs/:id. Owner only.
func (h *GigHandler) UpdateGig(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gig id"})
		return
	}

	var req models.UpdateGigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gig, err := h.service.UpdateGig(c.Request.Context(), id, userID, &req)
	if err != nil {
		h.writeGigError(c, err, "failed to update gig")
		return
	}
	c.JSON(http.StatusOK, gig)
}

// DeleteGig handles DELETE /gigs/:id. Owner only.
func (h *GigHandler) DeleteGig(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gig id"})
		return
	}

	if err := h.service.DeleteGig(c.Request.Context(), id, userID); err != nil {
		h.writeGigError(c, err, "failed to delete gig")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "gig deleted"})
}

// GetGigsByUser handles GET /gigs/user/:userId.
func (h *GigHandler) GetGigsByUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	gigs, err := h.service.GetGigsByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list gigs"})
		return
	}
	c.JSON(http.StatusOK, gigs)
}

// DeleteGigsByUser handles DELETE /gigs/user/:userId. Users can only clear
// their own gigs.
func (h *GigHandler) DeleteGigsByUser(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	target, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if target != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only delete your own gigs"})
		return
	}

	if err := h.service.DeleteGigsByUser(c.Request.Context(), target); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete gigs"})
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadThumbnail handles POST /gigs/:id/thumbnail with a multipart image.
func (h *GigHandler) UploadThumbnail(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gig id"})
		return
	}

	file, err := c.FormFile("thumbnail")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "thumbnail file is required"})
		return
	}
	if file.Size > maxThumbnailSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "thumbnail must be at most 5MB"})
		return
	}

	gig, err := h.service.UploadThumbnail(c.Request.Context(), id, userID, file)
	if err != nil {
		h.writeGigError(c, err, "failed to upload thumbnail")
		return
	}
	c.JSON(http.StatusOK, gig)
}

func (h *GigHandler) writeGigError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrGigNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotGigOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
