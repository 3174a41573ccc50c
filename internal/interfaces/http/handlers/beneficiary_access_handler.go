package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
	"heirloom.backend/internal/interfaces/http/response"
)

type beneficiaryAccessService interface {
	GetInheritance(ctx context.Context, rawToken, clientIP string) (*entities.InheritanceView, error)
}

// BeneficiaryAccessHandler serves the token-authenticated beneficiary portal
type BeneficiaryAccessHandler struct {
	accessService beneficiaryAccessService
}

// NewBeneficiaryAccessHandler creates a new beneficiary access handler
func NewBeneficiaryAccessHandler(accessService beneficiaryAccessService) *BeneficiaryAccessHandler {
	return &BeneficiaryAccessHandler{accessService: accessService}
}

// GetInheritance returns what the token holder inherited
// GET /api/v1/beneficiary-access?token=<raw>
func (h *BeneficiaryAccessHandler) GetInheritance(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, domainerrors.BadRequest("token is required"))
		return
	}

	view, err := h.accessService.GetInheritance(c.Request.Context(), token, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}
