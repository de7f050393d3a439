package contract

import (
	"errors"
	"net/http"

	"gigwork-service/internal/models"
	"gigwork-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ContractHandler struct {
	service ContractService
}

func NewContractHandler(service ContractService) *ContractHandler {
	return &ContractHandler{service: service}
}

// CreateContract handles POST /contracts. The client id comes from the
// authenticated user, never from the body.
func (h *ContractHandler) CreateContract(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	var req models.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.service.CreateContract(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrGigNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrOwnGig):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrContractExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create contract"})
		}
		return
	}

	c.JSON(http.StatusCreated, contract)
}

// GetContracts handles GET /contracts: everything the user is involved in,
// as client or as gig owner.
func (h *ContractHandler) GetContracts(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	contracts, err := h.service.GetContractsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list contracts"})
		return
	}
	c.JSON(http.StatusOK, contracts)
}

// GetContract handles GET /contracts/:id.
func (h *ContractHandler) GetContract(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	contract, err := h.service.GetContract(c.Request.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrContractNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "you can only view contracts you are involved in"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load contract"})
		}
		return
	}
	c.JSON(http.StatusOK, contract)
}

// UpdateStatus handles PUT /contracts/:id/status. Gig owner only; pending
// contracts only.
func (h *ContractHandler) UpdateStatus(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req models.UpdateContractStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.service.UpdateStatus(c.Request.Context(), id, userID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrContractNotFound), errors.Is(err, ErrGigNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotGigOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotPending):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update contract"})
		}
		return
	}
	c.JSON(http.StatusOK, contract)
}

// DeleteContract handles DELETE /contracts/:id: the client withdraws a
// pending request.
func (h *ContractHandler) DeleteContract(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	if err := h.service.WithdrawContract(c.Request.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, ErrContractNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotContractOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotPending):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to withdraw contract"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "contract withdrawn"})
}

// GetContractsByGig handles GET /contracts/gig/:gigId. Gig owner only.
func (h *ContractHandler) GetContractsByGig(c *gin.Context) {
	userID, ok := response.AuthUserID(c)
	if !ok {
		return
	}

	gigID, err := uuid.Parse(c.Param("gigId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gig id"})
		return
	}

	contracts, err := h.service.GetContractsByGig(c.Request.Context(), gigID, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrGigNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotGigOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the gig owner can view contracts for this gig"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list contracts"})
		}
		return
	}
	c.JSON(http.StatusOK, contracts)
}

// GetContractsByUser handles GET /contracts/user/:userId. Users only see
// their own sent contracts.
func (h *ContractHandler) GetContractsByUser(c *gin.Context) {
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
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only view your own contracts"})
		return
	}

	contracts, err := h.service.GetContractsSentByUser(c.Request.Context(), target)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list contracts"})
		return
	}
	c.JSON(http.StatusOK, contracts)
}
