package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
	"heirloom.backend/internal/domain/repositories"
	"heirloom.backend/pkg/logger"
	"heirloom.backend/pkg/metrics"
	"heirloom.backend/pkg/utils"
)

// DisbursementUsecase settles the allocations of a crypto asset
type DisbursementUsecase struct {
	userRepo        repositories.UserRepository
	assetRepo       repositories.AssetRepository
	cryptoAssetRepo repositories.CryptoAssetRepository
	beneficiaryRepo repositories.BeneficiaryRepository
	allocationRepo  repositories.AllocationRepository
	uow             repositories.UnitOfWork
	locker          Locker
	clock           Clock
}

// NewDisbursementUsecase creates a new disbursement usecase
func NewDisbursementUsecase(
	userRepo repositories.UserRepository,
	assetRepo repositories.AssetRepository,
	cryptoAssetRepo repositories.CryptoAssetRepository,
	beneficiaryRepo repositories.BeneficiaryRepository,
	allocationRepo repositories.AllocationRepository,
	uow repositories.UnitOfWork,
	locker Locker,
	clock Clock,
) *DisbursementUsecase {
	return &DisbursementUsecase{
		userRepo:        userRepo,
		assetRepo:       assetRepo,
		cryptoAssetRepo: cryptoAssetRepo,
		beneficiaryRepo: beneficiaryRepo,
		allocationRepo:  allocationRepo,
		uow:             uow,
		locker:          locker,
		clock:           clock,
	}
}

type disbursementOutcome struct {
	allocations []*entities.CryptoAllocation
	cloned      int
}

// Disburse finalizes every allocation of the asset in one transaction and
// clones an inherited asset into the account of each registered beneficiary.
// An asset that already has a disbursed allocation is rejected with ErrAlreadyDisbursed.
func (u *DisbursementUsecase) Disburse(ctx context.Context, cryptoAssetID uuid.UUID) ([]*entities.CryptoAllocation, error) {
	unlock, err := u.locker.Lock(ctx, cryptoAssetLockKey(cryptoAssetID.String()))
	if err != nil {
		metrics.Disbursements.WithLabelValues("lock_failed").Inc()
		return nil, fmt.Errorf("failed to lock crypto asset: %w", err)
	}
	defer unlock()

	var out disbursementOutcome
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		out, err = u.disburse(txCtx, cryptoAssetID)
		return err
	})
	if err != nil {
		metrics.Disbursements.WithLabelValues(disbursementFailure(err)).Inc()
		logger.Warn(ctx, "Disbursement aborted",
			zap.String("cryptoAssetId", cryptoAssetID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.Disbursements.WithLabelValues("success").Inc()
	metrics.AllocationsDisbursed.Add(float64(len(out.allocations)))
	metrics.InheritedAssetsCreated.Add(float64(out.cloned))
	logger.Info(ctx, "Crypto asset disbursed",
		zap.String("cryptoAssetId", cryptoAssetID.String()),
		zap.Int("allocations", len(out.allocations)),
		zap.Int("inheritedAssets", out.cloned),
	)
	return out.allocations, nil
}

// DisburseForOwner disburses an asset on behalf of its owner
func (u *DisbursementUsecase) DisburseForOwner(ctx context.Context, ownerID, cryptoAssetID uuid.UUID) ([]*entities.CryptoAllocation, error) {
	if _, err := loadOwnedCryptoAsset(ctx, u.cryptoAssetRepo, ownerID, cryptoAssetID); err != nil {
		return nil, err
	}
	return u.Disburse(ctx, cryptoAssetID)
}

// IsDisbursed reports whether any allocation of the asset has been settled
func (u *DisbursementUsecase) IsDisbursed(ctx context.Context, cryptoAssetID uuid.UUID) (bool, error) {
	allocations, err := u.allocationRepo.ListByCryptoAssetID(ctx, cryptoAssetID)
	if err != nil {
		return false, err
	}
	return anyDisbursed(allocations), nil
}

func (u *DisbursementUsecase) disburse(ctx context.Context, cryptoAssetID uuid.UUID) (disbursementOutcome, error) {
	var out disbursementOutcome

	source, err := u.cryptoAssetRepo.GetByID(ctx, cryptoAssetID)
	if err != nil {
		return out, err
	}
	allocations, err := u.allocationRepo.ListByCryptoAssetID(ctx, cryptoAssetID)
	if err != nil {
		return out, err
	}
	if anyDisbursed(allocations) {
		return out, domainerrors.ErrAlreadyDisbursed
	}

	now := u.clock.now()
	for _, allocation := range allocations {
		txID, err := newMockTransactionID()
		if err != nil {
			return out, err
		}
		allocation.AllocatedAmountUSD = AllocatedAmount(source.BalanceUSD, allocation.Percentage)
		allocation.AllocatedAmountCrypto = AllocatedAmount(source.BalanceCrypto, allocation.Percentage)
		allocation.MockTransactionID = null.StringFrom(txID)
		allocation.DisbursementStatus = entities.DisbursementStatusDisbursed
		allocation.DisbursedAt = null.TimeFrom(now)

		if err := u.allocationRepo.MarkDisbursed(ctx, allocation); err != nil {
			return out, err
		}

		heir, err := u.registeredHeir(ctx, allocation.BeneficiaryID)
		if err != nil {
			return out, err
		}
		if heir == nil {
			continue
		}
		if err := u.cloneInheritedAsset(ctx, source, allocation, heir, now); err != nil {
			return out, err
		}
		out.cloned++
	}

	out.allocations = allocations
	return out, nil
}

// registeredHeir returns the account whose email matches the beneficiary, or nil
func (u *DisbursementUsecase) registeredHeir(ctx context.Context, beneficiaryID uuid.UUID) (*entities.User, error) {
	beneficiary, err := u.beneficiaryRepo.GetByID(ctx, beneficiaryID)
	if err != nil {
		return nil, err
	}
	heir, err := u.userRepo.GetByEmail(ctx, beneficiary.Email)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return heir, nil
}

func (u *DisbursementUsecase) cloneInheritedAsset(ctx context.Context, source *entities.CryptoAsset, allocation *entities.CryptoAllocation, heir *entities.User, now time.Time) error {
	var origin entities.Asset
	if source.Asset != nil {
		origin = *source.Asset
	}

	asset := &entities.Asset{
		ID:           utils.GenerateUUIDv7(),
		UserID:       heir.ID,
		AssetType:    entities.AssetTypeCryptoWallet,
		PlatformName: origin.PlatformName,
		AssetName:    inheritedName(origin),
		Category:     origin.Category,
		Notes: fmt.Sprintf("Inherited %s%% of crypto asset %s (allocation %s, transaction %s)",
			allocation.Percentage.String(), source.ID, allocation.ID, allocation.MockTransactionID.String),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.assetRepo.Create(ctx, asset); err != nil {
		return err
	}

	return u.cryptoAssetRepo.Create(ctx, &entities.CryptoAsset{
		ID:            asset.ID,
		WalletType:    source.WalletType,
		WalletAddress: source.WalletAddress,
		PrivateKey:    source.PrivateKey,
		SeedPhrase:    source.SeedPhrase,
		BalanceUSD:    decimal.NewNullDecimal(allocation.AllocatedAmountUSD),
		BalanceCrypto: decimal.NewNullDecimal(allocation.AllocatedAmountCrypto),
		LastUpdated:   now,
		Asset:         asset,
	})
}

func inheritedName(origin entities.Asset) string {
	name := origin.AssetName
	if name == "" {
		name = origin.PlatformName
	}
	if name == "" {
		name = "Crypto wallet"
	}
	return name + entities.InheritedSuffix
}

func anyDisbursed(allocations []*entities.CryptoAllocation) bool {
	for _, a := range allocations {
		if a.IsDisbursed() {
			return true
		}
	}
	return false
}

func disbursementFailure(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, domainerrors.ErrAlreadyDisbursed):
		return "already_disbursed"
	case errors.Is(err, domainerrors.ErrConflict):
		return "conflict"
	}
	return "error"
}
