package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// BeneficiaryStatus represents beneficiary status
type BeneficiaryStatus string

const (
	BeneficiaryStatusActive   BeneficiaryStatus = "active"
	BeneficiaryStatusInactive BeneficiaryStatus = "inactive"
	BeneficiaryStatusRevoked  BeneficiaryStatus = "revoked"
)

// Valid reports whether s is a known beneficiary status
func (s BeneficiaryStatus) Valid() bool {
	switch s {
	case BeneficiaryStatusActive, BeneficiaryStatusInactive, BeneficiaryStatusRevoked:
		return true
	}
	return false
}

// Beneficiary is a person designated by a user to inherit assets
type Beneficiary struct {
	ID               uuid.UUID         `json:"id"`
	UserID           uuid.UUID         `json:"userId"`
	Email            string            `json:"email"`
	FirstName        string            `json:"firstName"`
	LastName         string            `json:"lastName"`
	PhoneNumber      string            `json:"phoneNumber,omitempty"`
	RelationshipType string            `json:"relationshipType,omitempty"`
	PriorityLevel    int               `json:"priorityLevel"`
	Status           BeneficiaryStatus `json:"status"`
	IsRegistered     bool              `json:"isRegistered"`
	NotificationSent bool              `json:"notificationSent"`
	AccessTokenHash  null.String       `json:"-"`
	TokenExpiresAt   null.Time         `json:"tokenExpiresAt,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// FullName returns the display name of the beneficiary
func (b *Beneficiary) FullName() string {
	return strings.TrimSpace(b.FirstName + " " + b.LastName)
}

// NormalizeEmail lower-cases and trims an email for matching
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateBeneficiaryInput represents input for adding a beneficiary
type CreateBeneficiaryInput struct {
	Email            string `json:"email" binding:"required,email"`
	FirstName        string `json:"firstName" binding:"required"`
	LastName         string `json:"lastName"`
	PhoneNumber      string `json:"phoneNumber"`
	RelationshipType string `json:"relationshipType"`
	PriorityLevel    int    `json:"priorityLevel"`
}

// UpdateBeneficiaryInput represents a partial beneficiary update
type UpdateBeneficiaryInput struct {
	Email            *string            `json:"email" binding:"omitempty,email"`
	FirstName        *string            `json:"firstName"`
	LastName         *string            `json:"lastName"`
	PhoneNumber      *string            `json:"phoneNumber"`
	RelationshipType *string            `json:"relationshipType"`
	PriorityLevel    *int               `json:"priorityLevel"`
	Status           *BeneficiaryStatus `json:"status"`
}
