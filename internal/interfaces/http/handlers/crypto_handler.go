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

// CryptoAssetService registers and reads crypto wallets
type CryptoAssetService interface {
	CreateCryptoAsset(ctx context.Context, ownerID uuid.UUID, input *entities.CreateCryptoAssetInput) (*entities.CryptoAsset, error)
	GetCryptoAsset(ctx context.Context, ownerID, id uuid.UUID) (*entities.CryptoAsset, error)
	ListCryptoAssets(ctx context.Context, ownerID uuid.UUID) ([]*entities.CryptoAsset, error)
}

// AllocationService splits a crypto asset between beneficiaries
type AllocationService interface {
	CreateAllocationForOwner(ctx context.Context, ownerID, cryptoAssetID uuid.UUID, input *entities.CreateAllocationInput) (*entities.CryptoAllocation, error)
	ListAllocations(ctx context.Context, ownerID, cryptoAssetID uuid.UUID) ([]*entities.CryptoAllocation, error)
}

// DisbursementService settles the allocations of a crypto asset
type DisbursementService interface {
	DisburseForOwner(ctx context.Context, ownerID, cryptoAssetID uuid.UUID) ([]*entities.CryptoAllocation, error)
}

// CryptoHandler handles crypto wallets, their allocations and disbursement
type CryptoHandler struct {
	assets       CryptoAssetService
	allocations  AllocationService
	disbursement DisbursementService
}

// NewCryptoHandler creates a new crypto handler
func NewCryptoHandler(assets CryptoAssetService, allocations AllocationService, disbursement DisbursementService) *CryptoHandler {
	return &CryptoHandler{
		assets:       assets,
		allocations:  allocations,
		disbursement: disbursement,
	}
}

// CreateCryptoAsset registers a wallet
// POST /api/v1/crypto/assets
func (h *CryptoHandler) CreateCryptoAsset(c *gin.Context) {
	var input entities.CreateCryptoAssetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	asset, err := h.assets.CreateCryptoAsset(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"cryptoAsset": asset})
}

// ListCryptoAssets lists the owner's wallets
// GET /api/v1/crypto/assets
func (h *CryptoHandler) ListCryptoAssets(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	assets, err := h.assets.ListCryptoAssets(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if assets == nil {
		assets = []*entities.CryptoAsset{}
	}

	response.Success(c, http.StatusOK, gin.H{"cryptoAssets": assets})
}

// GetCryptoAsset returns one wallet
// GET /api/v1/crypto/assets/:id
func (h *CryptoHandler) GetCryptoAsset(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "crypto asset")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	asset, err := h.assets.GetCryptoAsset(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cryptoAsset": asset})
}

// CreateAllocation assigns a percentage of a wallet to a beneficiary
// POST /api/v1/crypto/assets/:id/allocations
func (h *CryptoHandler) CreateAllocation(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "crypto asset")
	if !ok {
		return
	}
	var input entities.CreateAllocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	allocation, err := h.allocations.CreateAllocationForOwner(c.Request.Context(), userID, id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"allocation": allocation})
}

// ListAllocations lists the allocations of a wallet
// GET /api/v1/crypto/assets/:id/allocations
func (h *CryptoHandler) ListAllocations(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "crypto asset")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	allocations, err := h.allocations.ListAllocations(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if allocations == nil {
		allocations = []*entities.CryptoAllocation{}
	}

	response.Success(c, http.StatusOK, gin.H{"allocations": allocations})
}

// Disburse settles every allocation of a wallet
// POST /api/v1/crypto/assets/:id/disburse
func (h *CryptoHandler) Disburse(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "crypto asset")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	allocations, err := h.disbursement.DisburseForOwner(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if allocations == nil {
		allocations = []*entities.CryptoAllocation{}
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":     "Disbursement completed",
		"allocations": allocations,
	})
}
