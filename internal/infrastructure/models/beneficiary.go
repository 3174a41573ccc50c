package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Beneficiary struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	Email            string     `gorm:"type:varchar(255);not null;index"`
	FirstName        string     `gorm:"type:varchar(100);not null"`
	LastName         string     `gorm:"type:varchar(100)"`
	PhoneNumber      string     `gorm:"type:varchar(50)"`
	RelationshipType string     `gorm:"type:varchar(50)"`
	PriorityLevel    int        `gorm:"not null;default:1"`
	Status           string     `gorm:"type:varchar(20);not null;default:'active'"`
	IsRegistered     bool       `gorm:"default:false"`
	NotificationSent bool       `gorm:"default:false"`
	AccessTokenHash  *string    `gorm:"type:varchar(64);uniqueIndex"`
	TokenExpiresAt   *time.Time `gorm:"type:timestamp"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}
