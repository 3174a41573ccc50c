package models

import "gorm.io/gorm"

// AutoMigrate creates or updates the ledger schema
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Asset{},
		&CryptoAsset{},
		&Beneficiary{},
		&CryptoAllocation{},
		&VerificationRequest{},
		&VerificationDocument{},
		&AccessLog{},
		&Message{},
	)
}
