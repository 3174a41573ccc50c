package usecases

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
	"heirloom.backend/internal/domain/repositories"
	"heirloom.backend/pkg/logger"
	"heirloom.backend/pkg/metrics"
	"heirloom.backend/pkg/utils"
)

// InheritanceTrigger is the cascade run when a death certificate is approved
type InheritanceTrigger interface {
	Trigger(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]string, error)
	NotifyBeneficiaries(ctx context.Context, ownerID uuid.UUID, tokens map[uuid.UUID]string)
	DeliverMessages(ctx context.Context, userID uuid.UUID, condition entities.DeliveryCondition) (int64, error)
}

// VerificationSettings tunes the verification workflow
type VerificationSettings struct {
	DocumentStorageRoot string
	AutoApproveClaims   bool
}

// VerificationUsecase runs the review workflow for beneficiary claims
type VerificationUsecase struct {
	verificationRepo repositories.VerificationRepository
	userRepo         repositories.UserRepository
	beneficiaryRepo  repositories.BeneficiaryRepository
	inheritance      InheritanceTrigger
	uow              repositories.UnitOfWork
	settings         VerificationSettings
	clock            Clock
}

// NewVerificationUsecase creates a new verification usecase
func NewVerificationUsecase(
	verificationRepo repositories.VerificationRepository,
	userRepo repositories.UserRepository,
	beneficiaryRepo repositories.BeneficiaryRepository,
	inheritance InheritanceTrigger,
	uow repositories.UnitOfWork,
	settings VerificationSettings,
	clock Clock,
) *VerificationUsecase {
	return &VerificationUsecase{
		verificationRepo: verificationRepo,
		userRepo:         userRepo,
		beneficiaryRepo:  beneficiaryRepo,
		inheritance:      inheritance,
		uow:              uow,
		settings:         settings,
		clock:            clock,
	}
}

// SubmitRequest opens a pending request. The claimant must be a beneficiary of the owner.
func (u *VerificationUsecase) SubmitRequest(ctx context.Context, claimantEmail string, input *entities.SubmitVerificationInput) (*entities.VerificationRequest, error) {
	owner, err := u.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	beneficiary, err := u.claimantBeneficiary(ctx, owner.ID, claimantEmail)
	if err != nil {
		return nil, err
	}

	request := u.newRequest(owner.ID, beneficiary.ID, claimantEmail)
	if err := u.verificationRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Verification request submitted",
		zap.String("requestId", request.ID.String()),
		zap.String("userId", owner.ID.String()),
		zap.String("beneficiaryId", beneficiary.ID.String()),
	)
	return request, nil
}

// AddDocument attaches a document to an open request of the claimant
func (u *VerificationUsecase) AddDocument(ctx context.Context, claimantEmail string, requestID uuid.UUID, input *entities.AddDocumentInput) (*entities.VerificationDocument, error) {
	if !input.DocumentType.Valid() {
		return nil, domainerrors.NewError("unsupported document type", domainerrors.ErrInvalidInput)
	}
	fileName, err := cleanFileName(input.FileName)
	if err != nil {
		return nil, err
	}

	request, err := u.verificationRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if entities.NormalizeEmail(request.RequesterEmail) != entities.NormalizeEmail(claimantEmail) {
		return nil, domainerrors.Forbidden("only the requester may attach documents")
	}
	if request.Status.IsTerminal() {
		return nil, domainerrors.ErrInvalidTransition
	}

	doc := u.newDocument(request.ID, input.DocumentType, fileName)
	if err := u.verificationRepo.AddDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// SubmitInheritanceClaim files a request with a death certificate in one step.
// With auto-approval enabled the claim is approved by the system reviewer.
func (u *VerificationUsecase) SubmitInheritanceClaim(ctx context.Context, claimantEmail string, input *entities.InheritanceClaimInput) (*entities.ApprovalResult, error) {
	fileName, err := cleanFileName(input.FileName)
	if err != nil {
		return nil, err
	}
	if entities.NormalizeEmail(input.TargetUserEmail) == entities.NormalizeEmail(claimantEmail) {
		return nil, domainerrors.NewError("cannot file a claim against your own account", domainerrors.ErrInvalidInput)
	}

	owner, err := u.userRepo.GetByEmail(ctx, input.TargetUserEmail)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}
	beneficiary, err := u.claimantBeneficiary(ctx, owner.ID, claimantEmail)
	if err != nil {
		return nil, err
	}
	if _, err := u.userRepo.GetByEmail(ctx, claimantEmail); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Forbidden("claimant has no registered account")
		}
		return nil, err
	}

	approved, err := u.verificationRepo.HasApprovedClaim(ctx, owner.ID, beneficiary.ID)
	if err != nil {
		return nil, err
	}
	if approved {
		return nil, domainerrors.Conflict("an approved claim already exists for this user")
	}

	request := u.newRequest(owner.ID, beneficiary.ID, claimantEmail)
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.verificationRepo.Create(txCtx, request); err != nil {
			return err
		}
		doc := u.newDocument(request.ID, entities.DocumentTypeDeathCertificate, fileName)
		if err := u.verificationRepo.AddDocument(txCtx, doc); err != nil {
			return err
		}
		request.Documents = append(request.Documents, *doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Inheritance claim submitted",
		zap.String("requestId", request.ID.String()),
		zap.String("userId", owner.ID.String()),
		zap.Bool("autoApprove", u.settings.AutoApproveClaims),
	)

	if u.settings.AutoApproveClaims {
		return u.Approve(ctx, request.ID, entities.SystemReviewer)
	}
	return &entities.ApprovalResult{Request: request}, nil
}

// StartReview moves a pending request to under_review
func (u *VerificationUsecase) StartReview(ctx context.Context, requestID uuid.UUID, adminID uuid.UUID) (*entities.VerificationRequest, error) {
	var request *entities.VerificationRequest
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		request, err = u.transition(txCtx, requestID, entities.VerificationStatusUnderReview, &adminID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Approve approves a request and releases the owner's after_verification
// messages. When a death certificate is attached and the owner is still
// alive, the inheritance cascade runs inside the same transaction and access
// links are sent once it commits.
func (u *VerificationUsecase) Approve(ctx context.Context, requestID uuid.UUID, reviewerID string) (*entities.ApprovalResult, error) {
	reviewer, err := reviewerRef(reviewerID)
	if err != nil {
		return nil, err
	}

	result := &entities.ApprovalResult{}
	var delivered int64
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		request, err := u.transition(txCtx, requestID, entities.VerificationStatusApproved, reviewer)
		if err != nil {
			return err
		}
		result.Request = request

		delivered, err = u.inheritance.DeliverMessages(txCtx, request.UserID, entities.DeliveryAfterVerification)
		if err != nil {
			return err
		}

		if !request.HasDocument(entities.DocumentTypeDeathCertificate) {
			return nil
		}
		owner, err := u.userRepo.GetByID(txCtx, request.UserID)
		if err != nil {
			return err
		}
		if owner.IsDeceased() {
			logger.Info(txCtx, "Owner already deceased, approving without cascade",
				zap.String("requestId", request.ID.String()))
			return nil
		}

		tokens, err := u.inheritance.Trigger(txCtx, request.UserID)
		if err != nil {
			return err
		}
		result.InheritanceApplied = true
		result.AccessTokens = tokens
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.VerificationDecisions.WithLabelValues(string(entities.VerificationStatusApproved)).Inc()
	metrics.MessagesDelivered.WithLabelValues(string(entities.DeliveryAfterVerification)).Add(float64(delivered))
	logger.Info(ctx, "Verification request approved",
		zap.String("requestId", requestID.String()),
		zap.String("reviewer", reviewerID),
		zap.Bool("inheritanceApplied", result.InheritanceApplied),
	)

	if result.InheritanceApplied {
		u.inheritance.NotifyBeneficiaries(ctx, result.Request.UserID, result.AccessTokens)
	}
	return result, nil
}

// Reject closes a request with a reason. It has no other effect.
func (u *VerificationUsecase) Reject(ctx context.Context, requestID uuid.UUID, reviewerID string, reason string) (*entities.VerificationRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domainerrors.NewError("rejection reason is required", domainerrors.ErrInvalidInput)
	}
	reviewer, err := reviewerRef(reviewerID)
	if err != nil {
		return nil, err
	}

	var request *entities.VerificationRequest
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		req, err := u.verificationRepo.GetByID(txCtx, requestID)
		if err != nil {
			return err
		}
		req.RejectionReason = null.StringFrom(reason)
		request, err = u.applyTransition(txCtx, req, entities.VerificationStatusRejected, reviewer)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.VerificationDecisions.WithLabelValues(string(entities.VerificationStatusRejected)).Inc()
	logger.Info(ctx, "Verification request rejected",
		zap.String("requestId", requestID.String()),
		zap.String("reviewer", reviewerID),
	)
	return request, nil
}

// GetRequest returns a request with its documents
func (u *VerificationUsecase) GetRequest(ctx context.Context, requestID uuid.UUID) (*entities.VerificationRequest, error) {
	return u.verificationRepo.GetByID(ctx, requestID)
}

// ListRequests lists requests newest first
func (u *VerificationUsecase) ListRequests(ctx context.Context, page, limit int) ([]*entities.VerificationRequest, utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)
	requests, total, err := u.verificationRepo.List(ctx, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return requests, utils.CalculateMeta(total, params.Page, params.Limit), nil
}

func (u *VerificationUsecase) transition(ctx context.Context, requestID uuid.UUID, next entities.VerificationStatus, reviewer *uuid.UUID) (*entities.VerificationRequest, error) {
	request, err := u.verificationRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return u.applyTransition(ctx, request, next, reviewer)
}

func (u *VerificationUsecase) applyTransition(ctx context.Context, request *entities.VerificationRequest, next entities.VerificationStatus, reviewer *uuid.UUID) (*entities.VerificationRequest, error) {
	from := request.Status
	if !from.CanTransitionTo(next) {
		return nil, domainerrors.ErrInvalidTransition
	}

	now := u.clock.now()
	request.Status = next
	request.ReviewedAt = null.TimeFrom(now)
	request.UpdatedAt = now
	if reviewer != nil {
		request.ReviewedBy = reviewer
	}
	if err := u.verificationRepo.UpdateReview(ctx, request, from); err != nil {
		return nil, err
	}
	return request, nil
}

func (u *VerificationUsecase) claimantBeneficiary(ctx context.Context, ownerID uuid.UUID, claimantEmail string) (*entities.Beneficiary, error) {
	beneficiary, err := u.beneficiaryRepo.GetByOwnerAndEmail(ctx, ownerID, claimantEmail)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Forbidden("you are not a beneficiary of this user")
		}
		return nil, err
	}
	return beneficiary, nil
}

func (u *VerificationUsecase) newRequest(ownerID, beneficiaryID uuid.UUID, claimantEmail string) *entities.VerificationRequest {
	now := u.clock.now()
	return &entities.VerificationRequest{
		ID:             utils.GenerateUUIDv7(),
		UserID:         ownerID,
		BeneficiaryID:  beneficiaryID,
		RequesterEmail: entities.NormalizeEmail(claimantEmail),
		Status:         entities.VerificationStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (u *VerificationUsecase) newDocument(requestID uuid.UUID, docType entities.DocumentType, fileName string) *entities.VerificationDocument {
	return &entities.VerificationDocument{
		ID:           utils.GenerateUUIDv7(),
		RequestID:    requestID,
		DocumentType: docType,
		FileName:     fileName,
		StoragePath:  path.Join(u.settings.DocumentStorageRoot, requestID.String(), fileName),
		UploadedAt:   u.clock.now(),
	}
}

// cleanFileName strips any directory part a client may have sent
func cleanFileName(name string) (string, error) {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "" || base == "." || base == ".." || base == "/" {
		return "", domainerrors.NewError("file name is required", domainerrors.ErrInvalidInput)
	}
	return base, nil
}

// reviewerRef returns nil for the system sentinel, which has no user row
func reviewerRef(reviewerID string) (*uuid.UUID, error) {
	if entities.IsSystemReviewer(reviewerID) {
		return nil, nil
	}
	id, err := uuid.Parse(reviewerID)
	if err != nil {
		return nil, domainerrors.NewError("invalid reviewer id", domainerrors.ErrInvalidInput)
	}
	return &id, nil
}
