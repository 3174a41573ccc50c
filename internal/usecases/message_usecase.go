package usecases

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
	"heirloom.backend/internal/domain/repositories"
	"heirloom.backend/pkg/utils"
)

// MessageUsecase manages the time capsule messages an owner leaves behind
type MessageUsecase struct {
	messageRepo     repositories.MessageRepository
	beneficiaryRepo repositories.BeneficiaryRepository
	clock           Clock
}

// NewMessageUsecase creates a new message usecase
func NewMessageUsecase(
	messageRepo repositories.MessageRepository,
	beneficiaryRepo repositories.BeneficiaryRepository,
	clock Clock,
) *MessageUsecase {
	return &MessageUsecase{
		messageRepo:     messageRepo,
		beneficiaryRepo: beneficiaryRepo,
		clock:           clock,
	}
}

// CreateMessage stores a message for later delivery. A scheduled_date message
// needs a date; the date is dropped for the other conditions.
func (u *MessageUsecase) CreateMessage(ctx context.Context, ownerID uuid.UUID, input *entities.CreateMessageInput) (*entities.Message, error) {
	if !input.DeliveryCondition.Valid() {
		return nil, domainerrors.BadRequest("unknown delivery condition")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domainerrors.BadRequest("title is required")
	}

	var scheduledFor null.Time
	if input.DeliveryCondition == entities.DeliveryScheduledDate {
		if input.ScheduledFor == nil || input.ScheduledFor.IsZero() {
			return nil, domainerrors.BadRequest("scheduledFor is required for scheduled_date delivery")
		}
		scheduledFor = null.TimeFrom(input.ScheduledFor.UTC())
	}

	if input.BeneficiaryID != nil {
		beneficiary, err := u.beneficiaryRepo.GetByID(ctx, *input.BeneficiaryID)
		if err != nil {
			return nil, err
		}
		if beneficiary.UserID != ownerID {
			return nil, domainerrors.NotFound("beneficiary not found")
		}
	}

	message := &entities.Message{
		ID:                utils.GenerateUUIDv7(),
		UserID:            ownerID,
		BeneficiaryID:     input.BeneficiaryID,
		Title:             title,
		Content:           input.Content,
		DeliveryCondition: input.DeliveryCondition,
		ScheduledFor:      scheduledFor,
		CreatedAt:         u.clock.now(),
	}
	if err := u.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// ListMessages lists the owner's messages newest first
func (u *MessageUsecase) ListMessages(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*entities.Message, utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)
	messages, total, err := u.messageRepo.ListByUserID(ctx, ownerID, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return messages, utils.CalculateMeta(total, params.Page, params.Limit), nil
}

// DeleteMessage removes one of the owner's undelivered messages
func (u *MessageUsecase) DeleteMessage(ctx context.Context, ownerID, id uuid.UUID) error {
	message, err := u.messageRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if message.UserID != ownerID {
		return domainerrors.NotFound("message not found")
	}
	if message.Delivered {
		return domainerrors.Conflict("message has already been delivered")
	}
	return u.messageRepo.Delete(ctx, id)
}
