package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Asset struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index"`
	AssetType    string    `gorm:"type:varchar(50);not null"`
	PlatformName string    `gorm:"type:varchar(255)"`
	AssetName    string    `gorm:"type:varchar(255);not null"`
	Category     string    `gorm:"type:varchar(100)"`
	Notes        string    `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// CryptoAsset shares its primary key with the owning Asset row
type CryptoAsset struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey"`
	WalletType    string              `gorm:"type:varchar(20);not null"`
	WalletAddress string              `gorm:"type:varchar(255);not null"`
	PrivateKey    string              `gorm:"column:private_key_sealed;type:text"`
	SeedPhrase    string              `gorm:"column:seed_phrase_sealed;type:text"`
	BalanceUSD    decimal.NullDecimal `gorm:"type:numeric(20,2)"`
	BalanceCrypto decimal.NullDecimal `gorm:"type:numeric(30,18)"`
	LastUpdated   time.Time
}

func (CryptoAsset) TableName() string {
	return "crypto_assets"
}
