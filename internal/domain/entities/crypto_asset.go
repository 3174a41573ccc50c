package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletType represents the chain family of a crypto wallet
type WalletType string

const (
	WalletTypeBitcoin  WalletType = "bitcoin"
	WalletTypeEthereum WalletType = "ethereum"
	WalletTypeUSDT     WalletType = "usdt"
)

// Valid reports whether w is a supported wallet type
func (w WalletType) Valid() bool {
	switch w {
	case WalletTypeBitcoin, WalletTypeEthereum, WalletTypeUSDT:
		return true
	}
	return false
}

// SealedSecret is an encrypted blob supplied by the client. The service
// stores and copies it but never decrypts or inspects it.
type SealedSecret string

// CryptoAsset holds wallet details for an Asset of type crypto_wallet.
// ID is the ID of the owning Asset.
type CryptoAsset struct {
	ID            uuid.UUID           `json:"id"`
	WalletType    WalletType          `json:"walletType"`
	WalletAddress string              `json:"walletAddress"`
	PrivateKey    SealedSecret        `json:"-"`
	SeedPhrase    SealedSecret        `json:"-"`
	BalanceUSD    decimal.NullDecimal `json:"balanceUsd"`
	BalanceCrypto decimal.NullDecimal `json:"balanceCrypto"`
	LastUpdated   time.Time           `json:"lastUpdated"`

	// Joins
	Asset *Asset `json:"asset,omitempty"`
}

// CreateCryptoAssetInput represents input for registering a crypto wallet
type CreateCryptoAssetInput struct {
	WalletType    WalletType       `json:"walletType" binding:"required"`
	WalletAddress string           `json:"walletAddress" binding:"required"`
	PlatformName  string           `json:"platformName"`
	Category      string           `json:"category"`
	PrivateKey    SealedSecret     `json:"privateKey"`
	SeedPhrase    SealedSecret     `json:"seedPhrase"`
	BalanceUSD    *decimal.Decimal `json:"balanceUsd"`
	BalanceCrypto *decimal.Decimal `json:"balanceCrypto"`
}
