package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// VerificationStatus represents the state of a verification request
type VerificationStatus string

const (
	VerificationStatusPending     VerificationStatus = "pending"
	VerificationStatusUnderReview VerificationStatus = "under_review"
	VerificationStatusApproved    VerificationStatus = "approved"
	VerificationStatusRejected    VerificationStatus = "rejected"
)

// IsTerminal reports whether no further transition is allowed
func (s VerificationStatus) IsTerminal() bool {
	return s == VerificationStatusApproved || s == VerificationStatusRejected
}

// CanTransitionTo reports whether the workflow allows moving from s to next
func (s VerificationStatus) CanTransitionTo(next VerificationStatus) bool {
	switch s {
	case VerificationStatusPending:
		return next == VerificationStatusUnderReview || next == VerificationStatusApproved || next == VerificationStatusRejected
	case VerificationStatusUnderReview:
		return next == VerificationStatusApproved || next == VerificationStatusRejected
	}
	return false
}

// DocumentType classifies a verification document
type DocumentType string

const (
	DocumentTypeDeathCertificate   DocumentType = "death_certificate"
	DocumentTypeGovernmentID       DocumentType = "government_id"
	DocumentTypeLegalAuthorization DocumentType = "legal_authorization"
	DocumentTypeOther              DocumentType = "other"
)

// Valid reports whether d is one of the accepted document types
func (d DocumentType) Valid() bool {
	switch d {
	case DocumentTypeDeathCertificate, DocumentTypeGovernmentID, DocumentTypeLegalAuthorization, DocumentTypeOther:
		return true
	}
	return false
}

// SystemReviewer is the reviewer id used for automatic approvals. It has no
// user record, so it is never written to reviewed_by.
const SystemReviewer = "system-auto-approver"

// IsSystemReviewer reports whether reviewerID is an internal sentinel
func IsSystemReviewer(reviewerID string) bool {
	return reviewerID == SystemReviewer
}

// VerificationRequest is a beneficiary's claim against an owning user
type VerificationRequest struct {
	ID              uuid.UUID              `json:"id"`
	UserID          uuid.UUID              `json:"userId"`
	BeneficiaryID   uuid.UUID              `json:"beneficiaryId"`
	RequesterEmail  string                 `json:"requesterEmail"`
	Status          VerificationStatus     `json:"status"`
	ReviewedBy      *uuid.UUID             `json:"reviewedBy,omitempty"`
	ReviewedAt      null.Time              `json:"reviewedAt,omitempty"`
	RejectionReason null.String            `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
	Documents       []VerificationDocument `json:"documents"`
}

// HasDocument reports whether a document of the given type is attached
func (r *VerificationRequest) HasDocument(docType DocumentType) bool {
	for _, d := range r.Documents {
		if d.DocumentType == docType {
			return true
		}
	}
	return false
}

// VerificationDocument is a file attached to a verification request
type VerificationDocument struct {
	ID           uuid.UUID    `json:"id"`
	RequestID    uuid.UUID    `json:"requestId"`
	DocumentType DocumentType `json:"documentType"`
	FileName     string       `json:"fileName"`
	StoragePath  string       `json:"-"`
	Verified     bool         `json:"verified"`
	UploadedAt   time.Time    `json:"uploadedAt"`
}

// SubmitVerificationInput opens a verification request against an owner
type SubmitVerificationInput struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
}

// AddDocumentInput attaches a document to a verification request
type AddDocumentInput struct {
	DocumentType DocumentType `json:"documentType" form:"documentType" binding:"required"`
	FileName     string       `json:"fileName" form:"fileName" binding:"required"`
}

// InheritanceClaimInput is the one-step claim submitted by a beneficiary
type InheritanceClaimInput struct {
	TargetUserEmail string `json:"targetUserEmail" form:"targetUserEmail" binding:"required,email"`
	FileName        string `json:"fileName" form:"fileName" binding:"required"`
}

// RejectVerificationInput carries the reviewer's rejection reason
type RejectVerificationInput struct {
	Reason string `json:"reason" form:"reason" binding:"required"`
}

// ApprovalResult is the outcome of approving a verification request.
// AccessTokens maps beneficiary id to the raw one-time token and is never persisted.
type ApprovalResult struct {
	Request            *VerificationRequest `json:"request"`
	InheritanceApplied bool                 `json:"inheritanceApplied"`
	AccessTokens       map[uuid.UUID]string `json:"-"`
}
