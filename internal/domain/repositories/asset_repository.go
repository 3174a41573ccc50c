package repositories

import (
	"context"

	"github.com/google/uuid"
	"heirloom.backend/internal/domain/entities"
)

// AssetRepository defines generic asset data operations
type AssetRepository interface {
	Create(ctx context.Context, asset *entities.Asset) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Asset, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.Asset, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CryptoAssetRepository defines crypto wallet data operations.
// Reads join the owning Asset.
type CryptoAssetRepository interface {
	Create(ctx context.Context, cryptoAsset *entities.CryptoAsset) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.CryptoAsset, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.CryptoAsset, error)
}
