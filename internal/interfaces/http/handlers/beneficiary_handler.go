package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
	"heirloom.backend/internal/interfaces/http/response"
)

type beneficiaryService interface {
	CreateBeneficiary(ctx context.Context, ownerID uuid.UUID, input *entities.CreateBeneficiaryInput) (*entities.Beneficiary, error)
	ListBeneficiaries(ctx context.Context, ownerID uuid.UUID) ([]*entities.Beneficiary, error)
	GetBeneficiary(ctx context.Context, ownerID, id uuid.UUID) (*entities.Beneficiary, error)
	UpdateBeneficiary(ctx context.Context, ownerID, id uuid.UUID, input *entities.UpdateBeneficiaryInput) (*entities.Beneficiary, error)
	DeleteBeneficiary(ctx context.Context, ownerID, id uuid.UUID) error
}

// BeneficiaryHandler handles beneficiary endpoints
type BeneficiaryHandler struct {
	beneficiaryService beneficiaryService
}

// NewBeneficiaryHandler creates a new beneficiary handler
func NewBeneficiaryHandler(beneficiaryService beneficiaryService) *BeneficiaryHandler {
	return &BeneficiaryHandler{beneficiaryService: beneficiaryService}
}

// CreateBeneficiary adds a beneficiary
// POST /api/v1/beneficiaries
func (h *BeneficiaryHandler) CreateBeneficiary(c *gin.Context) {
	var input entities.CreateBeneficiaryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	beneficiary, err := h.beneficiaryService.CreateBeneficiary(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"beneficiary": beneficiary})
}

// ListBeneficiaries lists the owner's beneficiaries
// GET /api/v1/beneficiaries
func (h *BeneficiaryHandler) ListBeneficiaries(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	beneficiaries, err := h.beneficiaryService.ListBeneficiaries(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if beneficiaries == nil {
		beneficiaries = []*entities.Beneficiary{}
	}

	response.Success(c, http.StatusOK, gin.H{"beneficiaries": beneficiaries})
}

// GetBeneficiary returns one beneficiary
// GET /api/v1/beneficiaries/:id
func (h *BeneficiaryHandler) GetBeneficiary(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "beneficiary")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	beneficiary, err := h.beneficiaryService.GetBeneficiary(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"beneficiary": beneficiary})
}

// UpdateBeneficiary applies a partial update
// PUT /api/v1/beneficiaries/:id
func (h *BeneficiaryHandler) UpdateBeneficiary(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "beneficiary")
	if !ok {
		return
	}
	var input entities.UpdateBeneficiaryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	beneficiary, err := h.beneficiaryService.UpdateBeneficiary(c.Request.Context(), userID, id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"beneficiary": beneficiary})
}

// DeleteBeneficiary removes a beneficiary
// DELETE /api/v1/beneficiaries/:id
func (h *BeneficiaryHandler) DeleteBeneficiary(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "beneficiary")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.beneficiaryService.DeleteBeneficiary(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Beneficiary deleted"})
}
