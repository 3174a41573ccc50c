package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"heirloom.backend/internal/domain/entities"
)

// AllocationRepository defines crypto allocation data operations
type AllocationRepository interface {
	Create(ctx context.Context, allocation *entities.CryptoAllocation) error
	ListByCryptoAssetID(ctx context.Context, cryptoAssetID uuid.UUID) ([]*entities.CryptoAllocation, error)
	ListByBeneficiaryID(ctx context.Context, beneficiaryID uuid.UUID) ([]*entities.CryptoAllocation, error)
	SumPercentage(ctx context.Context, cryptoAssetID uuid.UUID) (decimal.Decimal, error)
	// MarkDisbursed persists the settlement fields only while the row is not
	// yet disbursed. It returns ErrConflict when the row was already settled.
	MarkDisbursed(ctx context.Context, allocation *entities.CryptoAllocation) error
}
