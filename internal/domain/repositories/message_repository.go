package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"heirloom.backend/internal/domain/entities"
)

// MessageRepository defines time capsule message data operations
type MessageRepository interface {
	Create(ctx context.Context, message *entities.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Message, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Message, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// MarkDelivered flags every undelivered message of the owner with the
	// given condition and returns how many rows changed.
	MarkDelivered(ctx context.Context, userID uuid.UUID, condition entities.DeliveryCondition, now time.Time) (int64, error)
	// DeliverDueScheduled flags scheduled messages whose date has passed,
	// only for owners already marked deceased.
	DeliverDueScheduled(ctx context.Context, now time.Time) (int64, error)
	// ListDelivered returns delivered messages addressed to the beneficiary
	// or to all of the owner's beneficiaries.
	ListDelivered(ctx context.Context, userID, beneficiaryID uuid.UUID) ([]*entities.Message, error)
}
