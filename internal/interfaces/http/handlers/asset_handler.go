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

type assetService interface {
	CreateAsset(ctx context.Context, ownerID uuid.UUID, input *entities.CreateAssetInput) (*entities.Asset, error)
	ListAssets(ctx context.Context, ownerID uuid.UUID) ([]*entities.Asset, error)
	GetAsset(ctx context.Context, ownerID, id uuid.UUID) (*entities.Asset, error)
	DeleteAsset(ctx context.Context, ownerID, id uuid.UUID) error
}

// AssetHandler handles the owner's generic digital assets
type AssetHandler struct {
	assetService assetService
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(assetService assetService) *AssetHandler {
	return &AssetHandler{assetService: assetService}
}

// CreateAsset records a digital asset
// POST /api/v1/assets
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var input entities.CreateAssetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	asset, err := h.assetService.CreateAsset(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"asset": asset})
}

// ListAssets lists the owner's assets
// GET /api/v1/assets
func (h *AssetHandler) ListAssets(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	assets, err := h.assetService.ListAssets(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if assets == nil {
		assets = []*entities.Asset{}
	}

	response.Success(c, http.StatusOK, gin.H{"assets": assets})
}

// GetAsset returns one asset of the owner
// GET /api/v1/assets/:id
func (h *AssetHandler) GetAsset(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "asset")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	asset, err := h.assetService.GetAsset(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"asset": asset})
}

// DeleteAsset removes an asset
// DELETE /api/v1/assets/:id
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "asset")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.assetService.DeleteAsset(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Asset deleted"})
}
