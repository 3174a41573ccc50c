package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccessAction names what a beneficiary did through the portal
type AccessAction string

const (
	AccessActionViewInheritance AccessAction = "view_inheritance"
)

// AccessLog records a beneficiary portal access
type AccessLog struct {
	ID            uuid.UUID    `json:"id"`
	BeneficiaryID uuid.UUID    `json:"beneficiaryId"`
	UserID        uuid.UUID    `json:"userId"`
	Action        AccessAction `json:"action"`
	ClientIP      string       `json:"clientIp"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// InheritanceView is what a beneficiary sees after presenting a valid token
type InheritanceView struct {
	Beneficiary    *Beneficiary        `json:"beneficiary"`
	OwnerName      string              `json:"ownerName"`
	OwnerEmail     string              `json:"ownerEmail"`
	Allocations    []*CryptoAllocation `json:"allocations"`
	TotalAllocated decimal.Decimal     `json:"totalAllocatedUsd"`
	TokenExpiresAt time.Time           `json:"tokenExpiresAt"`
	Messages       []*Message          `json:"messages"`
}

// AccessNotification is handed to the delivery channel after inheritance triggers
type AccessNotification struct {
	BeneficiaryID   uuid.UUID
	BeneficiaryName string
	Email           string
	OwnerName       string
	AccessURL       string
	ExpiresAt       time.Time
}
