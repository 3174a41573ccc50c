package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"heirloom.backend/internal/domain/entities"
)

// BeneficiaryRepository defines beneficiary data operations
type BeneficiaryRepository interface {
	Create(ctx context.Context, beneficiary *entities.Beneficiary) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Beneficiary, error)
	GetByOwnerAndEmail(ctx context.Context, ownerID uuid.UUID, email string) (*entities.Beneficiary, error)
	GetByAccessTokenHash(ctx context.Context, tokenHash string) (*entities.Beneficiary, error)
	ListByUserID(ctx context.Context, ownerID uuid.UUID) ([]*entities.Beneficiary, error)
	ListActiveByUserID(ctx context.Context, ownerID uuid.UUID) ([]*entities.Beneficiary, error)
	Update(ctx context.Context, beneficiary *entities.Beneficiary) error
	Delete(ctx context.Context, id uuid.UUID) error
	// SetAccessToken stores a token hash with its expiry and flags the beneficiary as notified
	SetAccessToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	SetRegisteredByEmail(ctx context.Context, email string, registered bool) (int64, error)
	ClearExpiredAccessTokens(ctx context.Context, now time.Time) (int64, error)
}
