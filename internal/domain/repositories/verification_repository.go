package repositories

import (
	"context"

	"github.com/google/uuid"
	"heirloom.backend/internal/domain/entities"
)

// VerificationRepository defines verification request data operations
type VerificationRepository interface {
	Create(ctx context.Context, request *entities.VerificationRequest) error
	// GetByID loads the request with its documents
	GetByID(ctx context.Context, id uuid.UUID) (*entities.VerificationRequest, error)
	List(ctx context.Context, limit, offset int) ([]*entities.VerificationRequest, int64, error)
	// UpdateReview persists status and review fields only while the stored
	// status still equals from. It returns ErrConflict otherwise.
	UpdateReview(ctx context.Context, request *entities.VerificationRequest, from entities.VerificationStatus) error
	AddDocument(ctx context.Context, document *entities.VerificationDocument) error
	HasApprovedClaim(ctx context.Context, userID, beneficiaryID uuid.UUID) (bool, error)
}

// AccessLogRepository records beneficiary portal accesses
type AccessLogRepository interface {
	Create(ctx context.Context, log *entities.AccessLog) error
	ListByBeneficiaryID(ctx context.Context, beneficiaryID uuid.UUID) ([]*entities.AccessLog, error)
}
