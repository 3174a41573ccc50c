package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CryptoAllocation struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CryptoAssetID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	BeneficiaryID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Percentage            decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	AllocatedAmountUSD    decimal.Decimal `gorm:"column:allocated_amount_usd;type:numeric(20,2);not null;default:0"`
	AllocatedAmountCrypto decimal.Decimal `gorm:"type:numeric(30,18);not null;default:0"`
	DisbursementStatus    string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	MockTransactionID     *string         `gorm:"type:varchar(64)"`
	DisbursedAt           *time.Time      `gorm:"type:timestamp"`
	CreatedAt             time.Time
}
