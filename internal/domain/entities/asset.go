package entities

import (
	"time"

	"github.com/google/uuid"
)

// AssetType classifies a registered digital asset
type AssetType string

const (
	AssetTypeLoginCredential AssetType = "login_credential"
	AssetTypeCryptoWallet    AssetType = "crypto_wallet"
	AssetTypeDocument        AssetType = "document"
	AssetTypeSocialMedia     AssetType = "social_media"
	AssetTypeFinancial       AssetType = "financial"
	AssetTypeOther           AssetType = "other"
)

// Valid reports whether t is one of the known asset types
func (t AssetType) Valid() bool {
	switch t {
	case AssetTypeLoginCredential, AssetTypeCryptoWallet, AssetTypeDocument,
		AssetTypeSocialMedia, AssetTypeFinancial, AssetTypeOther:
		return true
	}
	return false
}

// InheritedSuffix is appended to the name of assets minted by a disbursement
const InheritedSuffix = " (Inherited)"

// Asset represents a generic asset owned by a user
type Asset struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"userId"`
	AssetType    AssetType `json:"assetType"`
	PlatformName string    `json:"platformName"`
	AssetName    string    `json:"assetName"`
	Category     string    `json:"category"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateAssetInput represents input for registering a generic asset
type CreateAssetInput struct {
	AssetType    AssetType `json:"assetType" binding:"required"`
	PlatformName string    `json:"platformName"`
	AssetName    string    `json:"assetName" binding:"required"`
	Category     string    `json:"category"`
	Notes        string    `json:"notes"`
}
