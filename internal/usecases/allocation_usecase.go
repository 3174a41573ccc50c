package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
	"heirloom.backend/internal/domain/repositories"
	"heirloom.backend/pkg/logger"
	"heirloom.backend/pkg/metrics"
	"heirloom.backend/pkg/utils"
)

var hundred = decimal.NewFromInt(100)

// AllocatedAmount returns balance * percentage / 100. A null balance counts as zero.
func AllocatedAmount(balance decimal.NullDecimal, percentage decimal.Decimal) decimal.Decimal {
	if !balance.Valid {
		return decimal.Zero
	}
	return balance.Decimal.Mul(percentage).Shift(-2)
}

func validatePercentage(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return domainerrors.NewError("percentage must be between 0 and 100", domainerrors.ErrInvalidInput)
	}
	return nil
}

// AllocationUsecase splits crypto assets between beneficiaries
type AllocationUsecase struct {
	cryptoAssetRepo repositories.CryptoAssetRepository
	beneficiaryRepo repositories.BeneficiaryRepository
	allocationRepo  repositories.AllocationRepository
	uow             repositories.UnitOfWork
	locker          Locker
	clock           Clock
}

// NewAllocationUsecase creates a new allocation usecase
func NewAllocationUsecase(
	cryptoAssetRepo repositories.CryptoAssetRepository,
	beneficiaryRepo repositories.BeneficiaryRepository,
	allocationRepo repositories.AllocationRepository,
	uow repositories.UnitOfWork,
	locker Locker,
	clock Clock,
) *AllocationUsecase {
	return &AllocationUsecase{
		cryptoAssetRepo: cryptoAssetRepo,
		beneficiaryRepo: beneficiaryRepo,
		allocationRepo:  allocationRepo,
		uow:             uow,
		locker:          locker,
		clock:           clock,
	}
}

// CreateAllocation records a pending allocation with amounts derived from the current balance.
// The sum of percentages on one asset may not exceed 100 and a disbursed asset takes no new allocations.
func (u *AllocationUsecase) CreateAllocation(ctx context.Context, cryptoAssetID, beneficiaryID uuid.UUID, percentage decimal.Decimal) (*entities.CryptoAllocation, error) {
	if err := validatePercentage(percentage); err != nil {
		return nil, err
	}

	unlock, err := u.locker.Lock(ctx, cryptoAssetLockKey(cryptoAssetID.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to lock crypto asset: %w", err)
	}
	defer unlock()

	var allocation *entities.CryptoAllocation
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		asset, err := u.cryptoAssetRepo.GetByID(txCtx, cryptoAssetID)
		if err != nil {
			return err
		}
		if _, err := u.beneficiaryRepo.GetByID(txCtx, beneficiaryID); err != nil {
			return err
		}

		existing, err := u.allocationRepo.ListByCryptoAssetID(txCtx, cryptoAssetID)
		if err != nil {
			return err
		}
		if anyDisbursed(existing) {
			return domainerrors.ErrAlreadyDisbursed
		}

		allocated, err := u.allocationRepo.SumPercentage(txCtx, cryptoAssetID)
		if err != nil {
			return err
		}
		if total := allocated.Add(percentage); total.GreaterThan(hundred) {
			return domainerrors.Unprocessable(
				fmt.Sprintf("allocations would total %s percent (already allocated %s)", total.String(), allocated.String()),
				domainerrors.ErrAllocationOverflow,
			)
		}

		allocation = &entities.CryptoAllocation{
			ID:                    utils.GenerateUUIDv7(),
			CryptoAssetID:         cryptoAssetID,
			BeneficiaryID:         beneficiaryID,
			Percentage:            percentage,
			AllocatedAmountUSD:    AllocatedAmount(asset.BalanceUSD, percentage),
			AllocatedAmountCrypto: AllocatedAmount(asset.BalanceCrypto, percentage),
			DisbursementStatus:    entities.DisbursementStatusPending,
			CreatedAt:             u.clock.now(),
		}
		return u.allocationRepo.Create(txCtx, allocation)
	})
	if err != nil {
		return nil, err
	}

	metrics.AllocationsCreated.Inc()
	logger.Info(ctx, "Allocation created",
		zap.String("allocationId", allocation.ID.String()),
		zap.String("cryptoAssetId", cryptoAssetID.String()),
		zap.String("beneficiaryId", beneficiaryID.String()),
		zap.String("percentage", percentage.String()),
	)
	return allocation, nil
}

// CreateAllocationForOwner allocates a share of the owner's asset to one of the owner's beneficiaries
func (u *AllocationUsecase) CreateAllocationForOwner(ctx context.Context, ownerID, cryptoAssetID uuid.UUID, input *entities.CreateAllocationInput) (*entities.CryptoAllocation, error) {
	if _, err := loadOwnedCryptoAsset(ctx, u.cryptoAssetRepo, ownerID, cryptoAssetID); err != nil {
		return nil, err
	}
	beneficiary, err := u.beneficiaryRepo.GetByID(ctx, input.BeneficiaryID)
	if err != nil {
		return nil, err
	}
	if beneficiary.UserID != ownerID {
		return nil, domainerrors.NotFound("beneficiary not found")
	}
	return u.CreateAllocation(ctx, cryptoAssetID, input.BeneficiaryID, input.Percentage)
}

// ListAllocations lists the allocations of an asset owned by ownerID
func (u *AllocationUsecase) ListAllocations(ctx context.Context, ownerID, cryptoAssetID uuid.UUID) ([]*entities.CryptoAllocation, error) {
	if _, err := loadOwnedCryptoAsset(ctx, u.cryptoAssetRepo, ownerID, cryptoAssetID); err != nil {
		return nil, err
	}
	return u.allocationRepo.ListByCryptoAssetID(ctx, cryptoAssetID)
}

// loadOwnedCryptoAsset hides assets of other owners behind a not-found error
func loadOwnedCryptoAsset(ctx context.Context, repo repositories.CryptoAssetRepository, ownerID, id uuid.UUID) (*entities.CryptoAsset, error) {
	asset, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset.Asset == nil || asset.Asset.UserID != ownerID {
		return nil, domainerrors.NotFound("crypto asset not found")
	}
	return asset, nil
}
