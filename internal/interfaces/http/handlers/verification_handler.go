package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
	"heirloom.backend/internal/interfaces/http/middleware"
	"heirloom.backend/internal/interfaces/http/response"
	"heirloom.backend/pkg/utils"
)

// VerificationService is the claim review surface consumed by VerificationHandler
type VerificationService interface {
	SubmitRequest(ctx context.Context, claimantEmail string, input *entities.SubmitVerificationInput) (*entities.VerificationRequest, error)
	AddDocument(ctx context.Context, claimantEmail string, requestID uuid.UUID, input *entities.AddDocumentInput) (*entities.VerificationDocument, error)
	SubmitInheritanceClaim(ctx context.Context, claimantEmail string, input *entities.InheritanceClaimInput) (*entities.ApprovalResult, error)
	StartReview(ctx context.Context, requestID uuid.UUID, adminID uuid.UUID) (*entities.VerificationRequest, error)
	Approve(ctx context.Context, requestID uuid.UUID, reviewerID string) (*entities.ApprovalResult, error)
	Reject(ctx context.Context, requestID uuid.UUID, reviewerID string, reason string) (*entities.VerificationRequest, error)
	GetRequest(ctx context.Context, requestID uuid.UUID) (*entities.VerificationRequest, error)
	ListRequests(ctx context.Context, page, limit int) ([]*entities.VerificationRequest, utils.PaginationMeta, error)
}

// VerificationHandler handles claimant and admin verification endpoints
type VerificationHandler struct {
	verificationService VerificationService
}

// NewVerificationHandler creates a new verification handler
func NewVerificationHandler(verificationService VerificationService) *VerificationHandler {
	return &VerificationHandler{verificationService: verificationService}
}

func claimantEmail(c *gin.Context) (string, bool) {
	email, ok := middleware.GetUserEmail(c)
	if !ok || email == "" {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return "", false
	}
	return email, true
}

func approvalBody(result *entities.ApprovalResult) gin.H {
	return gin.H{
		"request":               result.Request,
		"inheritanceApplied":    result.InheritanceApplied,
		"beneficiariesNotified": len(result.AccessTokens),
	}
}

// SubmitRequest opens a verification request against an owner
// POST /api/v1/verifications/requests
func (h *VerificationHandler) SubmitRequest(c *gin.Context) {
	var input entities.SubmitVerificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	email, ok := claimantEmail(c)
	if !ok {
		return
	}

	request, err := h.verificationService.SubmitRequest(c.Request.Context(), email, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"request": request})
}

// AddDocument attaches a document to the claimant's request
// POST /api/v1/verifications/requests/:id/documents
func (h *VerificationHandler) AddDocument(c *gin.Context) {
	requestID, ok := parseIDParam(c, "id", "verification request")
	if !ok {
		return
	}
	var input entities.AddDocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	email, ok := claimantEmail(c)
	if !ok {
		return
	}

	doc, err := h.verificationService.AddDocument(c.Request.Context(), email, requestID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"document": doc})
}

// SubmitInheritanceClaim files a claim with a death certificate
// POST /api/v1/verifications/inheritance-claim
func (h *VerificationHandler) SubmitInheritanceClaim(c *gin.Context) {
	var input entities.InheritanceClaimInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	email, ok := claimantEmail(c)
	if !ok {
		return
	}

	result, err := h.verificationService.SubmitInheritanceClaim(c.Request.Context(), email, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, approvalBody(result))
}

// ListRequests pages through verification requests
// GET /api/v1/admin/verifications?page=&limit=
func (h *VerificationHandler) ListRequests(c *gin.Context) {
	var params utils.PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	requests, meta, err := h.verificationService.ListRequests(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if requests == nil {
		requests = []*entities.VerificationRequest{}
	}

	response.Paginated(c, http.StatusOK, requests, meta)
}

// GetRequest returns one request with its documents
// GET /api/v1/admin/verifications/:id
func (h *VerificationHandler) GetRequest(c *gin.Context) {
	requestID, ok := parseIDParam(c, "id", "verification request")
	if !ok {
		return
	}

	request, err := h.verificationService.GetRequest(c.Request.Context(), requestID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"request": request})
}

// StartReview claims a pending request for review
// POST /api/v1/admin/verifications/:id/review
func (h *VerificationHandler) StartReview(c *gin.Context) {
	requestID, ok := parseIDParam(c, "id", "verification request")
	if !ok {
		return
	}
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	request, err := h.verificationService.StartReview(c.Request.Context(), requestID, adminID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"request": request})
}

// Approve approves a request and runs the inheritance cascade when it applies
// POST /api/v1/admin/verifications/:id/approve
func (h *VerificationHandler) Approve(c *gin.Context) {
	requestID, ok := parseIDParam(c, "id", "verification request")
	if !ok {
		return
	}
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.verificationService.Approve(c.Request.Context(), requestID, adminID.String())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, approvalBody(result))
}

// Reject rejects a request with a reason
// POST /api/v1/admin/verifications/:id/reject
func (h *VerificationHandler) Reject(c *gin.Context) {
	requestID, ok := parseIDParam(c, "id", "verification request")
	if !ok {
		return
	}
	var input entities.RejectVerificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	request, err := h.verificationService.Reject(c.Request.Context(), requestID, adminID.String(), input.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"request": request})
}
