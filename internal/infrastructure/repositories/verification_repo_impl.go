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

// VerificationRepository implements verification request data operations
type VerificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository creates a new verification repository
func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// Create creates a request together with any documents already attached
func (r *VerificationRepository) Create(ctx context.Context, request *entities.VerificationRequest) error {
	m := &models.VerificationRequest{
		ID:              request.ID,
		UserID:          request.UserID,
		BeneficiaryID:   request.BeneficiaryID,
		RequesterEmail:  request.RequesterEmail,
		Status:          string(request.Status),
		ReviewedBy:      request.ReviewedBy,
		ReviewedAt:      request.ReviewedAt.Ptr(),
		RejectionReason: request.RejectionReason.Ptr(),
		CreatedAt:       request.CreatedAt,
		UpdatedAt:       request.UpdatedAt,
	}
	for i := range request.Documents {
		m.Documents = append(m.Documents, toDocumentModel(&request.Documents[i]))
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// GetByID gets a request with its documents
func (r *VerificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.VerificationRequest, error) {
	var m models.VerificationRequest
	err := GetDB(ctx, r.db).
		Preload("Documents", func(db *gorm.DB) *gorm.DB { return db.Order("uploaded_at ASC") }).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toVerificationEntity(&m), nil
}

// List lists requests newest first with the total count
func (r *VerificationRepository) List(ctx context.Context, limit, offset int) ([]*entities.VerificationRequest, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&models.VerificationRequest{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.VerificationRequest
	query := db.Preload("Documents").Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	items := make([]*entities.VerificationRequest, 0, len(ms))
	for i := range ms {
		items = append(items, toVerificationEntity(&ms[i]))
	}
	return items, total, nil
}

// UpdateReview writes the review outcome if the stored status is still from
func (r *VerificationRepository) UpdateReview(ctx context.Context, request *entities.VerificationRequest, from entities.VerificationStatus) error {
	result := GetDB(ctx, r.db).Model(&models.VerificationRequest{}).
		Where("id = ? AND status = ?", request.ID, string(from)).
		Updates(map[string]interface{}{
			"status":           string(request.Status),
			"reviewed_by":      request.ReviewedBy,
			"reviewed_at":      request.ReviewedAt.Ptr(),
			"rejection_reason": request.RejectionReason.Ptr(),
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

// AddDocument attaches a document to an existing request
func (r *VerificationRepository) AddDocument(ctx context.Context, document *entities.VerificationDocument) error {
	m := toDocumentModel(document)
	return GetDB(ctx, r.db).Create(&m).Error
}

// HasApprovedClaim reports whether the beneficiary already holds an approved request against the user
func (r *VerificationRepository) HasApprovedClaim(ctx context.Context, userID, beneficiaryID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.VerificationRequest{}).
		Where("user_id = ? AND beneficiary_id = ? AND status = ?", userID, beneficiaryID, string(entities.VerificationStatusApproved)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func toDocumentModel(d *entities.VerificationDocument) models.VerificationDocument {
	return models.VerificationDocument{
		ID:           d.ID,
		RequestID:    d.RequestID,
		DocumentType: string(d.DocumentType),
		FileName:     d.FileName,
		StoragePath:  d.StoragePath,
		Verified:     d.Verified,
		UploadedAt:   d.UploadedAt,
	}
}

func toVerificationEntity(m *models.VerificationRequest) *entities.VerificationRequest {
	e := &entities.VerificationRequest{
		ID:              m.ID,
		UserID:          m.UserID,
		BeneficiaryID:   m.BeneficiaryID,
		RequesterEmail:  m.RequesterEmail,
		Status:          entities.VerificationStatus(m.Status),
		ReviewedBy:      m.ReviewedBy,
		ReviewedAt:      null.TimeFromPtr(m.ReviewedAt),
		RejectionReason: null.StringFromPtr(m.RejectionReason),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		Documents:       make([]entities.VerificationDocument, 0, len(m.Documents)),
	}
	for _, d := range m.Documents {
		e.Documents = append(e.Documents, entities.VerificationDocument{
			ID:           d.ID,
			RequestID:    d.RequestID,
			DocumentType: entities.DocumentType(d.DocumentType),
			FileName:     d.FileName,
			StoragePath:  d.StoragePath,
			Verified:     d.Verified,
			UploadedAt:   d.UploadedAt,
		})
	}
	return e
}

// AccessLogRepository implements beneficiary access log operations
type AccessLogRepository struct {
	db *gorm.DB
}

// NewAccessLogRepository creates a new access log repository
func NewAccessLogRepository(db *gorm.DB) *AccessLogRepository {
	return &AccessLogRepository{db: db}
}

// Create records a portal access
func (r *AccessLogRepository) Create(ctx context.Context, log *entities.AccessLog) error {
	m := &models.AccessLog{
		ID:            log.ID,
		BeneficiaryID: log.BeneficiaryID,
		UserID:        log.UserID,
		Action:        string(log.Action),
		ClientIP:      log.ClientIP,
		CreatedAt:     log.CreatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// ListByBeneficiaryID lists a beneficiary's portal accesses, newest first
func (r *AccessLogRepository) ListByBeneficiaryID(ctx context.Context, beneficiaryID uuid.UUID) ([]*entities.AccessLog, error) {
	var ms []models.AccessLog
	if err := GetDB(ctx, r.db).Where("beneficiary_id = ?", beneficiaryID).Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}

	items := make([]*entities.AccessLog, 0, len(ms))
	for _, m := range ms {
		items = append(items, &entities.AccessLog{
			ID:            m.ID,
			BeneficiaryID: m.BeneficiaryID,
			UserID:        m.UserID,
			Action:        entities.AccessAction(m.Action),
			ClientIP:      m.ClientIP,
			CreatedAt:     m.CreatedAt,
		})
	}
	return items, nil
}
