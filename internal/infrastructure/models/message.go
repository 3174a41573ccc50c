package models

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	BeneficiaryID     *uuid.UUID `gorm:"type:uuid;index"`
	Title             string     `gorm:"type:varchar(255);not null"`
	Content           string     `gorm:"type:text;not null"`
	DeliveryCondition string     `gorm:"type:varchar(30);not null;index"`
	ScheduledFor      *time.Time `gorm:"type:timestamp"`
	Delivered         bool       `gorm:"not null;default:false"`
	DeliveredAt       *time.Time `gorm:"type:timestamp"`
	CreatedAt         time.Time
}

func (Message) TableName() string {
	return "user_messages"
}
