package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// DisbursementStatus represents the settlement state of an allocation
type DisbursementStatus string

const (
	DisbursementStatusPending   DisbursementStatus = "pending"
	DisbursementStatusApproved  DisbursementStatus = "approved"
	DisbursementStatusDisbursed DisbursementStatus = "disbursed"
)

// MockTransactionPrefix prefixes every simulated settlement id
const MockTransactionPrefix = "MOCK-"

// CryptoAllocation is a percentage claim by one beneficiary on one crypto asset
type CryptoAllocation struct {
	ID                    uuid.UUID          `json:"id"`
	CryptoAssetID         uuid.UUID          `json:"cryptoAssetId"`
	BeneficiaryID         uuid.UUID          `json:"beneficiaryId"`
	Percentage            decimal.Decimal    `json:"percentage"`
	AllocatedAmountUSD    decimal.Decimal    `json:"allocatedAmountUsd"`
	AllocatedAmountCrypto decimal.Decimal    `json:"allocatedAmountCrypto"`
	DisbursementStatus    DisbursementStatus `json:"disbursementStatus"`
	MockTransactionID     null.String        `json:"mockTransactionId"`
	DisbursedAt           null.Time          `json:"disbursedAt"`
	CreatedAt             time.Time          `json:"createdAt"`
}

// IsDisbursed reports whether the allocation has been settled
func (a *CryptoAllocation) IsDisbursed() bool {
	return a.DisbursementStatus == DisbursementStatusDisbursed
}

// CreateAllocationInput represents input for allocating a share of a crypto asset
type CreateAllocationInput struct {
	BeneficiaryID uuid.UUID       `json:"beneficiaryId" binding:"required"`
	Percentage    decimal.Decimal `json:"percentage"`
}
