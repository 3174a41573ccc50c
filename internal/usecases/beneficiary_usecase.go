package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
	"heirloom.backend/internal/domain/repositories"
	"heirloom.backend/pkg/utils"
)

// DefaultPriorityLevel is assigned when a beneficiary is created without one
const DefaultPriorityLevel = 1

// BeneficiaryUsecase manages the beneficiaries of an owner
type BeneficiaryUsecase struct {
	beneficiaryRepo repositories.BeneficiaryRepository
	userRepo        repositories.UserRepository
	allocationRepo  repositories.AllocationRepository
	clock           Clock
}

// NewBeneficiaryUsecase creates a new beneficiary usecase
func NewBeneficiaryUsecase(
	beneficiaryRepo repositories.BeneficiaryRepository,
	userRepo repositories.UserRepository,
	allocationRepo repositories.AllocationRepository,
	clock Clock,
) *BeneficiaryUsecase {
	return &BeneficiaryUsecase{
		beneficiaryRepo: beneficiaryRepo,
		userRepo:        userRepo,
		allocationRepo:  allocationRepo,
		clock:           clock,
	}
}

// CreateBeneficiary adds a beneficiary to the owner
func (u *BeneficiaryUsecase) CreateBeneficiary(ctx context.Context, ownerID uuid.UUID, input *entities.CreateBeneficiaryInput) (*entities.Beneficiary, error) {
	email := entities.NormalizeEmail(input.Email)
	if err := u.ensureEmailFree(ctx, ownerID, email, uuid.Nil); err != nil {
		return nil, err
	}
	registered, err := u.isRegistered(ctx, email)
	if err != nil {
		return nil, err
	}

	priority := input.PriorityLevel
	if priority <= 0 {
		priority = DefaultPriorityLevel
	}

	now := u.clock.now()
	beneficiary := &entities.Beneficiary{
		ID:               utils.GenerateUUIDv7(),
		UserID:           ownerID,
		Email:            email,
		FirstName:        strings.TrimSpace(input.FirstName),
		LastName:         strings.TrimSpace(input.LastName),
		PhoneNumber:      input.PhoneNumber,
		RelationshipType: input.RelationshipType,
		PriorityLevel:    priority,
		Status:           entities.BeneficiaryStatusActive,
		IsRegistered:     registered,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := u.beneficiaryRepo.Create(ctx, beneficiary); err != nil {
		return nil, err
	}
	return beneficiary, nil
}

// ListBeneficiaries lists the owner's beneficiaries by priority
func (u *BeneficiaryUsecase) ListBeneficiaries(ctx context.Context, ownerID uuid.UUID) ([]*entities.Beneficiary, error) {
	return u.beneficiaryRepo.ListByUserID(ctx, ownerID)
}

// GetBeneficiary returns one of the owner's beneficiaries
func (u *BeneficiaryUsecase) GetBeneficiary(ctx context.Context, ownerID, id uuid.UUID) (*entities.Beneficiary, error) {
	beneficiary, err := u.beneficiaryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if beneficiary.UserID != ownerID {
		return nil, domainerrors.NotFound("beneficiary not found")
	}
	return beneficiary, nil
}

// UpdateBeneficiary applies a partial update. An email change recomputes is_registered.
func (u *BeneficiaryUsecase) UpdateBeneficiary(ctx context.Context, ownerID, id uuid.UUID, input *entities.UpdateBeneficiaryInput) (*entities.Beneficiary, error) {
	beneficiary, err := u.GetBeneficiary(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := entities.NormalizeEmail(*input.Email)
		if email != beneficiary.Email {
			if err := u.ensureEmailFree(ctx, ownerID, email, beneficiary.ID); err != nil {
				return nil, err
			}
			registered, err := u.isRegistered(ctx, email)
			if err != nil {
				return nil, err
			}
			beneficiary.Email = email
			beneficiary.IsRegistered = registered
		}
	}
	if input.FirstName != nil {
		beneficiary.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		beneficiary.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.PhoneNumber != nil {
		beneficiary.PhoneNumber = *input.PhoneNumber
	}
	if input.RelationshipType != nil {
		beneficiary.RelationshipType = *input.RelationshipType
	}
	if input.PriorityLevel != nil {
		if *input.PriorityLevel <= 0 {
			return nil, domainerrors.NewError("priority level must be positive", domainerrors.ErrInvalidInput)
		}
		beneficiary.PriorityLevel = *input.PriorityLevel
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, domainerrors.NewError("unknown beneficiary status", domainerrors.ErrInvalidInput)
		}
		beneficiary.Status = *input.Status
	}

	beneficiary.UpdatedAt = u.clock.now()
	if err := u.beneficiaryRepo.Update(ctx, beneficiary); err != nil {
		return nil, err
	}
	return beneficiary, nil
}

// DeleteBeneficiary removes one of the owner's beneficiaries. A beneficiary
// still named by an undisbursed allocation cannot be removed.
func (u *BeneficiaryUsecase) DeleteBeneficiary(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := u.GetBeneficiary(ctx, ownerID, id); err != nil {
		return err
	}
	allocations, err := u.allocationRepo.ListByBeneficiaryID(ctx, id)
	if err != nil {
		return err
	}
	for _, a := range allocations {
		if !a.IsDisbursed() {
			return domainerrors.Conflict("beneficiary has pending allocations")
		}
	}
	return u.beneficiaryRepo.Delete(ctx, id)
}

func (u *BeneficiaryUsecase) ensureEmailFree(ctx context.Context, ownerID uuid.UUID, email string, self uuid.UUID) error {
	existing, err := u.beneficiaryRepo.GetByOwnerAndEmail(ctx, ownerID, email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID == self {
		return nil
	}
	return domainerrors.Conflict("a beneficiary with this email already exists")
}

func (u *BeneficiaryUsecase) isRegistered(ctx context.Context, email string) (bool, error) {
	_, err := u.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domainerrors.ErrNotFound) {
		return false, nil
	}
	return false, err
}
