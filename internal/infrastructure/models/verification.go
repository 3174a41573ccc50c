package models

import (
	"time"

	"github.com/google/uuid"
)

type VerificationRequest struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	BeneficiaryID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	RequesterEmail  string     `gorm:"type:varchar(255);not null"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	ReviewedBy      *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt      *time.Time `gorm:"type:timestamp"`
	RejectionReason *string    `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Relations
	Documents []VerificationDocument `gorm:"foreignKey:RequestID;references:ID"`
}

type VerificationDocument struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestID    uuid.UUID `gorm:"type:uuid;not null;index"`
	DocumentType string    `gorm:"type:varchar(50);not null"`
	FileName     string    `gorm:"type:varchar(255);not null"`
	StoragePath  string    `gorm:"type:varchar(512)"`
	Verified     bool      `gorm:"default:false"`
	UploadedAt   time.Time
}

type AccessLog struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	BeneficiaryID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID        uuid.UUID `gorm:"type:uuid;not null"`
	Action        string    `gorm:"type:varchar(50);not null"`
	ClientIP      string    `gorm:"type:varchar(64)"`
	CreatedAt     time.Time
}

func (AccessLog) TableName() string {
	return "beneficiary_access_logs"
}
