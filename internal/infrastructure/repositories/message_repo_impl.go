package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
	"heirloom.backend/internal/infrastructure/models"
)

// MessageRepository implements time capsule message data operations
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create creates a new message
func (r *MessageRepository) Create(ctx context.Context, message *entities.Message) error {
	return GetDB(ctx, r.db).Create(toMessageModel(message)).Error
}

// GetByID gets a message by ID
func (r *MessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Message, error) {
	var m models.Message
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toMessageEntity(&m), nil
}

// ListByUserID lists an owner's messages newest first with the total count
func (r *MessageRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Message, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&models.Message{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := db.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	items, err := r.find(query)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Delete removes a message
func (r *MessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Delete(&models.Message{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// MarkDelivered flags the owner's undelivered messages for one condition
func (r *MessageRepository) MarkDelivered(ctx context.Context, userID uuid.UUID, condition entities.DeliveryCondition, now time.Time) (int64, error) {
	result := GetDB(ctx, r.db).Model(&models.Message{}).
		Where("user_id = ? AND delivery_condition = ? AND delivered = ?", userID, string(condition), false).
		Updates(map[string]interface{}{
			"delivered":    true,
			"delivered_at": now,
		})
	return result.RowsAffected, result.Error
}

// DeliverDueScheduled flags scheduled messages of deceased owners whose date has passed
func (r *MessageRepository) DeliverDueScheduled(ctx context.Context, now time.Time) (int64, error) {
	db := GetDB(ctx, r.db)
	deceased := db.Model(&models.User{}).Select("id").Where("account_status = ?", string(entities.AccountStatusDeceased))

	result := db.Model(&models.Message{}).
		Where("delivery_condition = ? AND delivered = ? AND scheduled_for <= ?", string(entities.DeliveryScheduledDate), false, now).
		Where("user_id IN (?)", deceased).
		Updates(map[string]interface{}{
			"delivered":    true,
			"delivered_at": now,
		})
	return result.RowsAffected, result.Error
}

// ListDelivered lists delivered messages visible to one beneficiary, oldest first
func (r *MessageRepository) ListDelivered(ctx context.Context, userID, beneficiaryID uuid.UUID) ([]*entities.Message, error) {
	return r.find(GetDB(ctx, r.db).
		Where("user_id = ? AND delivered = ?", userID, true).
		Where("beneficiary_id IS NULL OR beneficiary_id = ?", beneficiaryID).
		Order("created_at ASC"))
}

func (r *MessageRepository) find(query *gorm.DB) ([]*entities.Message, error) {
	var ms []models.Message
	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}

	items := make([]*entities.Message, 0, len(ms))
	for i := range ms {
		items = append(items, toMessageEntity(&ms[i]))
	}
	return items, nil
}

func toMessageModel(msg *entities.Message) *models.Message {
	return &models.Message{
		ID:                msg.ID,
		UserID:            msg.UserID,
		BeneficiaryID:     msg.BeneficiaryID,
		Title:             msg.Title,
		Content:           msg.Content,
		DeliveryCondition: string(msg.DeliveryCondition),
		ScheduledFor:      msg.ScheduledFor.Ptr(),
		Delivered:         msg.Delivered,
		DeliveredAt:       msg.DeliveredAt.Ptr(),
		CreatedAt:         msg.CreatedAt,
	}
}

func toMessageEntity(m *models.Message) *entities.Message {
	return &entities.Message{
		ID:                m.ID,
		UserID:            m.UserID,
		BeneficiaryID:     m.BeneficiaryID,
		Title:             m.Title,
		Content:           m.Content,
		DeliveryCondition: entities.DeliveryCondition(m.DeliveryCondition),
		ScheduledFor:      null.TimeFromPtr(m.ScheduledFor),
		Delivered:         m.Delivered,
		DeliveredAt:       null.TimeFromPtr(m.DeliveredAt),
		CreatedAt:         m.CreatedAt,
	}
}
