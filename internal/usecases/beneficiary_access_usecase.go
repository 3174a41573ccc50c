package usecases

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
	"heirloom.backend/internal/domain/repositories"
	"heirloom.backend/pkg/crypto"
	"heirloom.backend/pkg/logger"
	"heirloom.backend/pkg/metrics"
	"heirloom.backend/pkg/utils"
)

// BeneficiaryAccessUsecase serves the token-authenticated beneficiary portal
type BeneficiaryAccessUsecase struct {
	beneficiaryRepo repositories.BeneficiaryRepository
	userRepo        repositories.UserRepository
	allocationRepo  repositories.AllocationRepository
	accessLogRepo   repositories.AccessLogRepository
	messageRepo     repositories.MessageRepository
	clock           Clock
}

// NewBeneficiaryAccessUsecase creates a new beneficiary access usecase
func NewBeneficiaryAccessUsecase(
	beneficiaryRepo repositories.BeneficiaryRepository,
	userRepo repositories.UserRepository,
	allocationRepo repositories.AllocationRepository,
	accessLogRepo repositories.AccessLogRepository,
	messageRepo repositories.MessageRepository,
	clock Clock,
) *BeneficiaryAccessUsecase {
	return &BeneficiaryAccessUsecase{
		beneficiaryRepo: beneficiaryRepo,
		userRepo:        userRepo,
		allocationRepo:  allocationRepo,
		accessLogRepo:   accessLogRepo,
		messageRepo:     messageRepo,
		clock:           clock,
	}
}

// VerifyAccessToken resolves a raw token to its beneficiary. Unknown and
// expired tokens fail with the same ErrInvalidAccessToken.
func (u *BeneficiaryAccessUsecase) VerifyAccessToken(ctx context.Context, rawToken string) (*entities.Beneficiary, error) {
	if rawToken == "" {
		metrics.AccessTokenChecks.WithLabelValues("invalid").Inc()
		return nil, domainerrors.ErrInvalidAccessToken
	}

	beneficiary, err := u.beneficiaryRepo.GetByAccessTokenHash(ctx, crypto.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			metrics.AccessTokenChecks.WithLabelValues("invalid").Inc()
			return nil, domainerrors.ErrInvalidAccessToken
		}
		return nil, err
	}
	if !beneficiary.TokenExpiresAt.Valid || !beneficiary.TokenExpiresAt.Time.After(u.clock.now()) {
		metrics.AccessTokenChecks.WithLabelValues("invalid").Inc()
		return nil, domainerrors.ErrInvalidAccessToken
	}

	metrics.AccessTokenChecks.WithLabelValues("valid").Inc()
	return beneficiary, nil
}

// GetInheritance returns what the token holder inherited, with the owner's
// delivered messages addressed to them, and records the access
func (u *BeneficiaryAccessUsecase) GetInheritance(ctx context.Context, rawToken, clientIP string) (*entities.InheritanceView, error) {
	beneficiary, err := u.VerifyAccessToken(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	owner, err := u.userRepo.GetByID(ctx, beneficiary.UserID)
	if err != nil {
		return nil, err
	}
	allocations, err := u.allocationRepo.ListByBeneficiaryID(ctx, beneficiary.ID)
	if err != nil {
		return nil, err
	}

	messages, err := u.messageRepo.ListDelivered(ctx, owner.ID, beneficiary.ID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, a := range allocations {
		total = total.Add(a.AllocatedAmountUSD)
	}

	entry := &entities.AccessLog{
		ID:            utils.GenerateUUIDv7(),
		BeneficiaryID: beneficiary.ID,
		UserID:        owner.ID,
		Action:        entities.AccessActionViewInheritance,
		ClientIP:      clientIP,
		CreatedAt:     u.clock.now(),
	}
	if err := u.accessLogRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Beneficiary portal accessed",
		zap.String("beneficiaryId", beneficiary.ID.String()),
		zap.String("userId", owner.ID.String()),
	)

	return &entities.InheritanceView{
		Beneficiary:    beneficiary,
		OwnerName:      owner.Name,
		OwnerEmail:     owner.Email,
		Allocations:    allocations,
		TotalAllocated: total,
		TokenExpiresAt: beneficiary.TokenExpiresAt.Time,
		Messages:       messages,
	}, nil
}
