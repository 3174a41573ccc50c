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

// BeneficiaryRepository implements beneficiary data operations
type BeneficiaryRepository struct {
	db *gorm.DB
}

// NewBeneficiaryRepository creates a new beneficiary repository
func NewBeneficiaryRepository(db *gorm.DB) *BeneficiaryRepository {
	return &BeneficiaryRepository{db: db}
}

// Create creates a new beneficiary
func (r *BeneficiaryRepository) Create(ctx context.Context, beneficiary *entities.Beneficiary) error {
	return GetDB(ctx, r.db).Create(toBeneficiaryModel(beneficiary)).Error
}

// GetByID gets a beneficiary by ID
func (r *BeneficiaryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Beneficiary, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByOwnerAndEmail finds the beneficiary record a user created for an email
func (r *BeneficiaryRepository) GetByOwnerAndEmail(ctx context.Context, ownerID uuid.UUID, email string) (*entities.Beneficiary, error) {
	return r.first(ctx, "user_id = ? AND LOWER(email) = ?", ownerID, entities.NormalizeEmail(email))
}

// GetByAccessTokenHash finds the beneficiary holding a token hash. Expiry is
// checked by the caller against its own clock.
func (r *BeneficiaryRepository) GetByAccessTokenHash(ctx context.Context, tokenHash string) (*entities.Beneficiary, error) {
	return r.first(ctx, "access_token_hash = ?", tokenHash)
}

func (r *BeneficiaryRepository) first(ctx context.Context, query string, args ...interface{}) (*entities.Beneficiary, error) {
	var m models.Beneficiary
	if err := GetDB(ctx, r.db).Where(query, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toBeneficiaryEntity(&m), nil
}

// ListByUserID lists a user's beneficiaries by priority
func (r *BeneficiaryRepository) ListByUserID(ctx context.Context, ownerID uuid.UUID) ([]*entities.Beneficiary, error) {
	return r.list(GetDB(ctx, r.db).Where("user_id = ?", ownerID))
}

// ListActiveByUserID lists a user's active beneficiaries by priority
func (r *BeneficiaryRepository) ListActiveByUserID(ctx context.Context, ownerID uuid.UUID) ([]*entities.Beneficiary, error) {
	return r.list(GetDB(ctx, r.db).Where("user_id = ? AND status = ?", ownerID, string(entities.BeneficiaryStatusActive)))
}

func (r *BeneficiaryRepository) list(query *gorm.DB) ([]*entities.Beneficiary, error) {
	var ms []models.Beneficiary
	if err := query.Order("priority_level ASC, created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}

	items := make([]*entities.Beneficiary, 0, len(ms))
	for i := range ms {
		items = append(items, toBeneficiaryEntity(&ms[i]))
	}
	return items, nil
}

// Update updates the editable beneficiary fields
func (r *BeneficiaryRepository) Update(ctx context.Context, beneficiary *entities.Beneficiary) error {
	updates := map[string]interface{}{
		"email":             beneficiary.Email,
		"first_name":        beneficiary.FirstName,
		"last_name":         beneficiary.LastName,
		"phone_number":      beneficiary.PhoneNumber,
		"relationship_type": beneficiary.RelationshipType,
		"priority_level":    beneficiary.PriorityLevel,
		"status":            string(beneficiary.Status),
		"is_registered":     beneficiary.IsRegistered,
		"updated_at":        time.Now(),
	}

	result := GetDB(ctx, r.db).Model(&models.Beneficiary{}).Where("id = ?", beneficiary.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Delete soft deletes a beneficiary
func (r *BeneficiaryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Delete(&models.Beneficiary{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// SetAccessToken replaces the beneficiary's token hash and expiry
func (r *BeneficiaryRepository) SetAccessToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	result := GetDB(ctx, r.db).Model(&models.Beneficiary{}).Where("id = ?", id).Updates(map[string]interface{}{
		"access_token_hash": tokenHash,
		"token_expires_at":  expiresAt,
		"notification_sent": true,
		"updated_at":        time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// SetRegisteredByEmail flags every beneficiary record carrying email
func (r *BeneficiaryRepository) SetRegisteredByEmail(ctx context.Context, email string, registered bool) (int64, error) {
	result := GetDB(ctx, r.db).Model(&models.Beneficiary{}).
		Where("LOWER(email) = ?", entities.NormalizeEmail(email)).
		Updates(map[string]interface{}{
			"is_registered": registered,
			"updated_at":    time.Now(),
		})
	return result.RowsAffected, result.Error
}

// ClearExpiredAccessTokens drops token hashes whose expiry is not after now
func (r *BeneficiaryRepository) ClearExpiredAccessTokens(ctx context.Context, now time.Time) (int64, error) {
	result := GetDB(ctx, r.db).Model(&models.Beneficiary{}).
		Where("access_token_hash IS NOT NULL AND token_expires_at <= ?", now).
		Updates(map[string]interface{}{
			"access_token_hash": nil,
			"token_expires_at":  nil,
		})
	return result.RowsAffected, result.Error
}

func toBeneficiaryModel(b *entities.Beneficiary) *models.Beneficiary {
	m := &models.Beneficiary{
		ID:               b.ID,
		UserID:           b.UserID,
		Email:            b.Email,
		FirstName:        b.FirstName,
		LastName:         b.LastName,
		PhoneNumber:      b.PhoneNumber,
		RelationshipType: b.RelationshipType,
		PriorityLevel:    b.PriorityLevel,
		Status:           string(b.Status),
		IsRegistered:     b.IsRegistered,
		NotificationSent: b.NotificationSent,
		AccessTokenHash:  b.AccessTokenHash.Ptr(),
		TokenExpiresAt:   b.TokenExpiresAt.Ptr(),
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
	if m.Status == "" {
		m.Status = string(entities.BeneficiaryStatusActive)
	}
	return m
}

func toBeneficiaryEntity(m *models.Beneficiary) *entities.Beneficiary {
	return &entities.Beneficiary{
		ID:               m.ID,
		UserID:           m.UserID,
		Email:            m.Email,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		PhoneNumber:      m.PhoneNumber,
		RelationshipType: m.RelationshipType,
		PriorityLevel:    m.PriorityLevel,
		Status:           entities.BeneficiaryStatus(m.Status),
		IsRegistered:     m.IsRegistered,
		NotificationSent: m.NotificationSent,
		AccessTokenHash:  null.StringFromPtr(m.AccessTokenHash),
		TokenExpiresAt:   null.TimeFromPtr(m.TokenExpiresAt),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
