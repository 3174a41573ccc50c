package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
	"heirloom.backend/internal/infrastructure/models"
)

// AssetRepository implements generic asset data operations
type AssetRepository struct {
	db *gorm.DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// Create creates a new asset
func (r *AssetRepository) Create(ctx context.Context, asset *entities.Asset) error {
	return GetDB(ctx, r.db).Create(toAssetModel(asset)).Error
}

// GetByID gets an asset by ID
func (r *AssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Asset, error) {
	var m models.Asset
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toAssetEntity(&m), nil
}

// ListByUserID lists assets owned by a user, newest first
func (r *AssetRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.Asset, error) {
	var ms []models.Asset
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}

	assets := make([]*entities.Asset, 0, len(ms))
	for i := range ms {
		assets = append(assets, toAssetEntity(&ms[i]))
	}
	return assets, nil
}

// Delete soft deletes an asset
func (r *AssetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Delete(&models.Asset{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toAssetModel(a *entities.Asset) *models.Asset {
	return &models.Asset{
		ID:           a.ID,
		UserID:       a.UserID,
		AssetType:    string(a.AssetType),
		PlatformName: a.PlatformName,
		AssetName:    a.AssetName,
		Category:     a.Category,
		Notes:        a.Notes,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func toAssetEntity(m *models.Asset) *entities.Asset {
	return &entities.Asset{
		ID:           m.ID,
		UserID:       m.UserID,
		AssetType:    entities.AssetType(m.AssetType),
		PlatformName: m.PlatformName,
		AssetName:    m.AssetName,
		Category:     m.Category,
		Notes:        m.Notes,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
