package portfolio

import (
	"errors"
	"net/http"

	"gigwork-service/internal/models"
	"gigwork-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxThumbnailSize = 5 << 20

type PortfolioHandler struct {
	service PortfolioService
}

func NewPortfolioHandler(service PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{service: service}
}

// CreateItem handles POST /portfolio.
func (h *PortfolioHandler) CreateItem(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	var req models.CreatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.service.CreateItem(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create portfolio item"})
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetByFreelancer handles GET /portfolio/user/:userId.
func (h *PortfolioHandler) GetByFreelancer(c *gin.Context) {
	freelancerID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	items, err := h.service.GetItemsByFreelancer(c.Request.Context(), freelancerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list portfolio items"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// UpdateItem handles PUT /portfolio/:id. Owner only.
func (h *PortfolioHandler) UpdateItem(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid portfolio id"})
		return
	}

	var req models.UpdatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.service.UpdateItem(c.Request.Context(), id, userID, &req)
	if err != nil {
		h.writeError(c, err, "failed to update portfolio item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem handles DELETE /portfolio/:id. Owner only.
func (h *PortfolioHandler) DeleteItem(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid portfolio id"})
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), id, userID); err != nil {
		h.writeError(c, err, "failed to delete portfolio item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "portfolio item deleted"})
}

// UploadThumbnail handles POST /portfolio/:id/thumbnail.
func (h *PortfolioHandler) UploadThumbnail(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid portfolio id"})
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

	item, err := h.service.UploadThumbnail(c.Request.Context(), id, userID, file)
	if err != nil {
		h.writeError(c, err, "failed to upload thumbnail")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *PortfolioHandler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrPortfolioNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotPortfolioOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
