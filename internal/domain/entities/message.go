package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// DeliveryCondition names the event that releases a time capsule message
type DeliveryCondition string

const (
	DeliveryUponDeath         DeliveryCondition = "upon_death"
	DeliveryAfterVerification DeliveryCondition = "after_verification"
	DeliveryScheduledDate     DeliveryCondition = "scheduled_date"
)

// Valid reports whether c is a known delivery condition
func (c DeliveryCondition) Valid() bool {
	switch c {
	case DeliveryUponDeath, DeliveryAfterVerification, DeliveryScheduledDate:
		return true
	}
	return false
}

// Message is a time capsule message an owner leaves for beneficiaries.
// A nil BeneficiaryID addresses every beneficiary of the owner.
type Message struct {
	ID                uuid.UUID         `json:"id"`
	UserID            uuid.UUID         `json:"userId"`
	BeneficiaryID     *uuid.UUID        `json:"beneficiaryId,omitempty"`
	Title             string            `json:"title"`
	Content           string            `json:"content"`
	DeliveryCondition DeliveryCondition `json:"deliveryCondition"`
	ScheduledFor      null.Time         `json:"scheduledFor,omitempty"`
	Delivered         bool              `json:"delivered"`
	DeliveredAt       null.Time         `json:"deliveredAt,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// CreateMessageInput represents input for writing a time capsule message
type CreateMessageInput struct {
	BeneficiaryID     *uuid.UUID        `json:"beneficiaryId"`
	Title             string            `json:"title" binding:"required,max=255"`
	Content           string            `json:"content" binding:"required"`
	DeliveryCondition DeliveryCondition `json:"deliveryCondition" binding:"required"`
	ScheduledFor      *time.Time        `json:"scheduledFor"`
}
