package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
	"heirloom.backend/internal/infrastructure/models"
)

// AllocationRepository implements crypto allocation data operations
type AllocationRepository struct {
	db *gorm.DB
}

// NewAllocationRepository creates a new allocation repository
func NewAllocationRepository(db *gorm.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// Create creates a new allocation
func (r *AllocationRepository) Create(ctx context.Context, allocation *entities.CryptoAllocation) error {
	m := &models.CryptoAllocation{
		ID:                    allocation.ID,
		CryptoAssetID:         allocation.CryptoAssetID,
		BeneficiaryID:         allocation.BeneficiaryID,
		Percentage:            allocation.Percentage,
		AllocatedAmountUSD:    allocation.AllocatedAmountUSD,
		AllocatedAmountCrypto: allocation.AllocatedAmountCrypto,
		DisbursementStatus:    string(allocation.DisbursementStatus),
		MockTransactionID:     allocation.MockTransactionID.Ptr(),
		DisbursedAt:           allocation.DisbursedAt.Ptr(),
		CreatedAt:             allocation.CreatedAt,
	}
	if m.DisbursementStatus == "" {
		m.DisbursementStatus = string(entities.DisbursementStatusPending)
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// ListByCryptoAssetID lists the allocations of one crypto asset in creation order
func (r *AllocationRepository) ListByCryptoAssetID(ctx context.Context, cryptoAssetID uuid.UUID) ([]*entities.CryptoAllocation, error) {
	return r.list(GetDB(ctx, r.db).Where("crypto_asset_id = ?", cryptoAssetID))
}

// ListByBeneficiaryID lists every allocation naming a beneficiary
func (r *AllocationRepository) ListByBeneficiaryID(ctx context.Context, beneficiaryID uuid.UUID) ([]*entities.CryptoAllocation, error) {
	return r.list(GetDB(ctx, r.db).Where("beneficiary_id = ?", beneficiaryID))
}

func (r *AllocationRepository) list(query *gorm.DB) ([]*entities.CryptoAllocation, error) {
	var ms []models.CryptoAllocation
	if err := query.Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}

	items := make([]*entities.CryptoAllocation, 0, len(ms))
	for i := range ms {
		items = append(items, toAllocationEntity(&ms[i]))
	}
	return items, nil
}

// SumPercentage adds the percentages already allocated on a crypto asset.
// The sum is taken in Go to keep decimal precision on every driver.
func (r *AllocationRepository) SumPercentage(ctx context.Context, cryptoAssetID uuid.UUID) (decimal.Decimal, error) {
	var percentages []decimal.Decimal
	if err := GetDB(ctx, r.db).Model(&models.CryptoAllocation{}).
		Where("crypto_asset_id = ?", cryptoAssetID).
		Pluck("percentage", &percentages).Error; err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, p := range percentages {
		total = total.Add(p)
	}
	return total, nil
}

// MarkDisbursed settles an allocation unless another writer settled it first
func (r *AllocationRepository) MarkDisbursed(ctx context.Context, allocation *entities.CryptoAllocation) error {
	result := GetDB(ctx, r.db).Model(&models.CryptoAllocation{}).
		Where("id = ? AND disbursement_status <> ?", allocation.ID, string(entities.DisbursementStatusDisbursed)).
		Updates(map[string]interface{}{
			"allocated_amount_usd":    allocation.AllocatedAmountUSD,
			"allocated_amount_crypto": allocation.AllocatedAmountCrypto,
			"disbursement_status":     string(entities.DisbursementStatusDisbursed),
			"mock_transaction_id":     allocation.MockTransactionID.Ptr(),
			"disbursed_at":            allocation.DisbursedAt.Ptr(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func toAllocationEntity(m *models.CryptoAllocation) *entities.CryptoAllocation {
	return &entities.CryptoAllocation{
		ID:                    m.ID,
		CryptoAssetID:         m.CryptoAssetID,
		BeneficiaryID:         m.BeneficiaryID,
		Percentage:            m.Percentage,
		AllocatedAmountUSD:    m.AllocatedAmountUSD,
		AllocatedAmountCrypto: m.AllocatedAmountCrypto,
		DisbursementStatus:    entities.DisbursementStatus(m.DisbursementStatus),
		MockTransactionID:     null.StringFromPtr(m.MockTransactionID),
		DisbursedAt:           null.TimeFromPtr(m.DisbursedAt),
		CreatedAt:             m.CreatedAt,
	}
}
