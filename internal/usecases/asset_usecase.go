package usecases

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
	"heirloom.backend/internal/domain/repositories"
	"heirloom.backend/pkg/logger"
	"heirloom.backend/pkg/utils"
)

// AddressValidator checks a wallet address against its chain family
type AddressValidator interface {
	ValidateAddress(walletType entities.WalletType, address string) error
}

// AssetUsecase manages owner assets and crypto wallets
type AssetUsecase struct {
	assetRepo       repositories.AssetRepository
	cryptoAssetRepo repositories.CryptoAssetRepository
	allocationRepo  repositories.AllocationRepository
	addresses       AddressValidator
	uow             repositories.UnitOfWork
	clock           Clock
}

// NewAssetUsecase creates a new asset usecase
func NewAssetUsecase(
	assetRepo repositories.AssetRepository,
	cryptoAssetRepo repositories.CryptoAssetRepository,
	allocationRepo repositories.AllocationRepository,
	addresses AddressValidator,
	uow repositories.UnitOfWork,
	clock Clock,
) *AssetUsecase {
	return &AssetUsecase{
		assetRepo:       assetRepo,
		cryptoAssetRepo: cryptoAssetRepo,
		allocationRepo:  allocationRepo,
		addresses:       addresses,
		uow:             uow,
		clock:           clock,
	}
}

// CreateAsset registers a non-wallet asset. Wallets go through CreateCryptoAsset.
func (u *AssetUsecase) CreateAsset(ctx context.Context, ownerID uuid.UUID, input *entities.CreateAssetInput) (*entities.Asset, error) {
	if !input.AssetType.Valid() {
		return nil, domainerrors.NewError("unknown asset type", domainerrors.ErrInvalidInput)
	}
	if input.AssetType == entities.AssetTypeCryptoWallet {
		return nil, domainerrors.NewError("crypto wallets are registered through the crypto endpoint", domainerrors.ErrInvalidInput)
	}

	now := u.clock.now()
	asset := &entities.Asset{
		ID:           utils.GenerateUUIDv7(),
		UserID:       ownerID,
		AssetType:    input.AssetType,
		PlatformName: strings.TrimSpace(input.PlatformName),
		AssetName:    strings.TrimSpace(input.AssetName),
		Category:     input.Category,
		Notes:        input.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.assetRepo.Create(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// ListAssets lists every asset of the owner
func (u *AssetUsecase) ListAssets(ctx context.Context, ownerID uuid.UUID) ([]*entities.Asset, error) {
	return u.assetRepo.ListByUserID(ctx, ownerID)
}

// GetAsset returns one of the owner's assets
func (u *AssetUsecase) GetAsset(ctx context.Context, ownerID, id uuid.UUID) (*entities.Asset, error) {
	asset, err := u.assetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset.UserID != ownerID {
		return nil, domainerrors.NotFound("asset not found")
	}
	return asset, nil
}

// DeleteAsset removes an asset. Wallets that carry allocations cannot be removed.
func (u *AssetUsecase) DeleteAsset(ctx context.Context, ownerID, id uuid.UUID) error {
	asset, err := u.GetAsset(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if asset.AssetType == entities.AssetTypeCryptoWallet {
		allocations, err := u.allocationRepo.ListByCryptoAssetID(ctx, id)
		if err != nil {
			return err
		}
		if len(allocations) > 0 {
			return domainerrors.Conflict("crypto asset has allocations")
		}
	}
	return u.assetRepo.Delete(ctx, id)
}

// CreateCryptoAsset registers a wallet and its owning asset in one transaction.
// Sealed secrets are stored as given.
func (u *AssetUsecase) CreateCryptoAsset(ctx context.Context, ownerID uuid.UUID, input *entities.CreateCryptoAssetInput) (*entities.CryptoAsset, error) {
	if !input.WalletType.Valid() {
		return nil, domainerrors.ErrUnsupportedWallet
	}
	address := strings.TrimSpace(input.WalletAddress)
	if err := u.addresses.ValidateAddress(input.WalletType, address); err != nil {
		return nil, err
	}
	balanceUSD, err := optionalBalance(input.BalanceUSD)
	if err != nil {
		return nil, err
	}
	balanceCrypto, err := optionalBalance(input.BalanceCrypto)
	if err != nil {
		return nil, err
	}

	now := u.clock.now()
	asset := &entities.Asset{
		ID:           utils.GenerateUUIDv7(),
		UserID:       ownerID,
		AssetType:    entities.AssetTypeCryptoWallet,
		PlatformName: strings.TrimSpace(input.PlatformName),
		AssetName:    walletName(input),
		Category:     input.Category,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	cryptoAsset := &entities.CryptoAsset{
		ID:            asset.ID,
		WalletType:    input.WalletType,
		WalletAddress: address,
		PrivateKey:    input.PrivateKey,
		SeedPhrase:    input.SeedPhrase,
		BalanceUSD:    balanceUSD,
		BalanceCrypto: balanceCrypto,
		LastUpdated:   now,
		Asset:         asset,
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.assetRepo.Create(txCtx, asset); err != nil {
			return err
		}
		return u.cryptoAssetRepo.Create(txCtx, cryptoAsset)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Crypto asset registered",
		zap.String("cryptoAssetId", cryptoAsset.ID.String()),
		zap.String("walletType", string(cryptoAsset.WalletType)),
	)
	return cryptoAsset, nil
}

// GetCryptoAsset returns one of the owner's wallets
func (u *AssetUsecase) GetCryptoAsset(ctx context.Context, ownerID, id uuid.UUID) (*entities.CryptoAsset, error) {
	return loadOwnedCryptoAsset(ctx, u.cryptoAssetRepo, ownerID, id)
}

// ListCryptoAssets lists the owner's wallets
func (u *AssetUsecase) ListCryptoAssets(ctx context.Context, ownerID uuid.UUID) ([]*entities.CryptoAsset, error) {
	return u.cryptoAssetRepo.ListByUserID(ctx, ownerID)
}

func optionalBalance(v *decimal.Decimal) (decimal.NullDecimal, error) {
	if v == nil {
		return decimal.NullDecimal{}, nil
	}
	if v.IsNegative() {
		return decimal.NullDecimal{}, domainerrors.NewError("balance cannot be negative", domainerrors.ErrInvalidInput)
	}
	return decimal.NewNullDecimal(*v), nil
}

func walletName(input *entities.CreateCryptoAssetInput) string {
	if name := strings.TrimSpace(input.PlatformName); name != "" {
		return name + " " + string(input.WalletType) + " wallet"
	}
	return string(input.WalletType) + " wallet"
}
