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

// CryptoAssetRepository implements crypto wallet data operations
type CryptoAssetRepository struct {
	db *gorm.DB
}

// NewCryptoAssetRepository creates a new crypto asset repository
func NewCryptoAssetRepository(db *gorm.DB) *CryptoAssetRepository {
	return &CryptoAssetRepository{db: db}
}

// Create stores the wallet row. The owning Asset must already exist.
func (r *CryptoAssetRepository) Create(ctx context.Context, cryptoAsset *entities.CryptoAsset) error {
	m := &models.CryptoAsset{
		ID:            cryptoAsset.ID,
		WalletType:    string(cryptoAsset.WalletType),
		WalletAddress: cryptoAsset.WalletAddress,
		PrivateKey:    string(cryptoAsset.PrivateKey),
		SeedPhrase:    string(cryptoAsset.SeedPhrase),
		BalanceUSD:    cryptoAsset.BalanceUSD,
		BalanceCrypto: cryptoAsset.BalanceCrypto,
		LastUpdated:   cryptoAsset.LastUpdated,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// GetByID gets a crypto asset with its owning Asset
func (r *CryptoAssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.CryptoAsset, error) {
	db := GetDB(ctx, r.db)

	var m models.CryptoAsset
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}

	var asset models.Asset
	if err := db.Where("id = ?", id).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}

	return toCryptoAssetEntity(&m, &asset), nil
}

// ListByUserID lists the crypto assets owned by a user
func (r *CryptoAssetRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.CryptoAsset, error) {
	db := GetDB(ctx, r.db)

	var assets []models.Asset
	if err := db.Where("user_id = ? AND asset_type = ?", userID, string(entities.AssetTypeCryptoWallet)).
		Order("created_at ASC").
		Find(&assets).Error; err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return []*entities.CryptoAsset{}, nil
	}

	ids := make([]uuid.UUID, 0, len(assets))
	for _, a := range assets {
		ids = append(ids, a.ID)
	}

	var wallets []models.CryptoAsset
	if err := db.Where("id IN ?", ids).Find(&wallets).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.CryptoAsset, len(wallets))
	for i := range wallets {
		byID[wallets[i].ID] = &wallets[i]
	}

	result := make([]*entities.CryptoAsset, 0, len(wallets))
	for i := range assets {
		if w, ok := byID[assets[i].ID]; ok {
			result = append(result, toCryptoAssetEntity(w, &assets[i]))
		}
	}
	return result, nil
}

func toCryptoAssetEntity(m *models.CryptoAsset, asset *models.Asset) *entities.CryptoAsset {
	e := &entities.CryptoAsset{
		ID:            m.ID,
		WalletType:    entities.WalletType(m.WalletType),
		WalletAddress: m.WalletAddress,
		PrivateKey:    entities.SealedSecret(m.PrivateKey),
		SeedPhrase:    entities.SealedSecret(m.SeedPhrase),
		BalanceUSD:    m.BalanceUSD,
		BalanceCrypto: m.BalanceCrypto,
		LastUpdated:   m.LastUpdated,
	}
	if asset != nil {
		e.Asset = toAssetEntity(asset)
	}
	return e
}
