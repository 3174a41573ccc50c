package usecases

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
	"heirloom.backend/internal/domain/repositories"
	"heirloom.backend/pkg/crypto"
	"heirloom.backend/pkg/logger"
	"heirloom.backend/pkg/metrics"
)

// DefaultAccessTokenTTL is how long a beneficiary access link stays valid
const DefaultAccessTokenTTL = 7 * 24 * time.Hour

// BeneficiaryAccessPath is the portal path that consumes an access token
const BeneficiaryAccessPath = "/dashboard/beneficiary-access"

// Disburser settles the allocations of one crypto asset
type Disburser interface {
	Disburse(ctx context.Context, cryptoAssetID uuid.UUID) ([]*entities.CryptoAllocation, error)
}

// AccessNotifier delivers access links to beneficiaries
type AccessNotifier interface {
	NotifyAccessGranted(ctx context.Context, notification entities.AccessNotification) error
}

// InheritanceUsecase closes a deceased owner's estate
type InheritanceUsecase struct {
	userRepo        repositories.UserRepository
	beneficiaryRepo repositories.BeneficiaryRepository
	cryptoAssetRepo repositories.CryptoAssetRepository
	messageRepo     repositories.MessageRepository
	disburser       Disburser
	notifier        AccessNotifier
	uow             repositories.UnitOfWork
	tokenTTL        time.Duration
	accessURLBase   string
	clock           Clock
}

// NewInheritanceUsecase creates a new inheritance usecase. A non-positive
// tokenTTL falls back to DefaultAccessTokenTTL.
func NewInheritanceUsecase(
	userRepo repositories.UserRepository,
	beneficiaryRepo repositories.BeneficiaryRepository,
	cryptoAssetRepo repositories.CryptoAssetRepository,
	messageRepo repositories.MessageRepository,
	disburser Disburser,
	notifier AccessNotifier,
	uow repositories.UnitOfWork,
	tokenTTL time.Duration,
	accessURLBase string,
	clock Clock,
) *InheritanceUsecase {
	if tokenTTL <= 0 {
		tokenTTL = DefaultAccessTokenTTL
	}
	return &InheritanceUsecase{
		userRepo:        userRepo,
		beneficiaryRepo: beneficiaryRepo,
		cryptoAssetRepo: cryptoAssetRepo,
		messageRepo:     messageRepo,
		disburser:       disburser,
		notifier:        notifier,
		uow:             uow,
		tokenTTL:        tokenTTL,
		accessURLBase:   accessURLBase,
		clock:           clock,
	}
}

// Trigger marks the owner deceased, issues one access token per active
// beneficiary, disburses every crypto asset of the owner and releases the
// owner's upon_death messages. It joins the
// caller's transaction when there is one. The returned map holds the raw
// tokens keyed by beneficiary id; only their hashes are stored.
func (u *InheritanceUsecase) Trigger(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]string, error) {
	tokens := make(map[uuid.UUID]string)
	disbursed := 0
	var delivered int64

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		owner, err := u.userRepo.GetByID(txCtx, userID)
		if err != nil {
			return err
		}
		if owner.IsDeceased() {
			return domainerrors.ErrAlreadyDeceased
		}
		if err := u.userRepo.UpdateAccountStatus(txCtx, userID, entities.AccountStatusDeceased); err != nil {
			return err
		}

		expiresAt := u.clock.now().Add(u.tokenTTL)
		beneficiaries, err := u.beneficiaryRepo.ListActiveByUserID(txCtx, userID)
		if err != nil {
			return err
		}
		for _, b := range beneficiaries {
			raw, hash, err := crypto.GenerateAccessToken()
			if err != nil {
				return err
			}
			if err := u.beneficiaryRepo.SetAccessToken(txCtx, b.ID, hash, expiresAt); err != nil {
				return err
			}
			tokens[b.ID] = raw
		}

		cryptoAssets, err := u.cryptoAssetRepo.ListByUserID(txCtx, userID)
		if err != nil {
			return err
		}
		for _, ca := range cryptoAssets {
			_, err := u.disburser.Disburse(txCtx, ca.ID)
			if errors.Is(err, domainerrors.ErrAlreadyDisbursed) {
				logger.Info(txCtx, "Crypto asset already disbursed by owner, skipping",
					zap.String("cryptoAssetId", ca.ID.String()))
				continue
			}
			if err != nil {
				return err
			}
			disbursed++
		}

		delivered, err = u.DeliverMessages(txCtx, userID, entities.DeliveryUponDeath)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.InheritanceTriggered.Inc()
	metrics.MessagesDelivered.WithLabelValues(string(entities.DeliveryUponDeath)).Add(float64(delivered))
	logger.Info(ctx, "Inheritance triggered",
		zap.String("userId", userID.String()),
		zap.Int("beneficiaries", len(tokens)),
		zap.Int("disbursedAssets", disbursed),
		zap.Int64("deliveredMessages", delivered),
	)
	return tokens, nil
}

// DeliverMessages marks the owner's undelivered messages held for condition
// as delivered at the current time. Callers count the metric once committed.
func (u *InheritanceUsecase) DeliverMessages(ctx context.Context, userID uuid.UUID, condition entities.DeliveryCondition) (int64, error) {
	return u.messageRepo.MarkDelivered(ctx, userID, condition, u.clock.now())
}

// AccessURL builds the beneficiary portal link for a raw token
func (u *InheritanceUsecase) AccessURL(token string) string {
	return u.accessURLBase + BeneficiaryAccessPath + "?token=" + url.QueryEscape(token)
}

// NotifyBeneficiaries hands each issued token to the notifier. Delivery
// failures are logged and do not undo the committed inheritance.
func (u *InheritanceUsecase) NotifyBeneficiaries(ctx context.Context, ownerID uuid.UUID, tokens map[uuid.UUID]string) {
	if u.notifier == nil || len(tokens) == 0 {
		return
	}

	ownerName := ""
	if owner, err := u.userRepo.GetByID(ctx, ownerID); err == nil {
		ownerName = owner.Name
	}

	for beneficiaryID, raw := range tokens {
		b, err := u.beneficiaryRepo.GetByID(ctx, beneficiaryID)
		if err != nil {
			logger.Warn(ctx, "Skipping access notification",
				zap.String("beneficiaryId", beneficiaryID.String()), zap.Error(err))
			continue
		}
		n := entities.AccessNotification{
			BeneficiaryID:   b.ID,
			BeneficiaryName: b.FullName(),
			Email:           b.Email,
			OwnerName:       ownerName,
			AccessURL:       u.AccessURL(raw),
			ExpiresAt:       b.TokenExpiresAt.Time,
		}
		if err := u.notifier.NotifyAccessGranted(ctx, n); err != nil {
			logger.Error(ctx, "Access notification failed",
				zap.String("beneficiaryId", beneficiaryID.String()), zap.Error(err))
		}
	}
}
