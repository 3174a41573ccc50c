package entities

import "testing"

func TestVerificationStatus_CanTransitionTo(t *testing.T) {
	allowed := map[VerificationStatus][]VerificationStatus{
		VerificationStatusPending:     {VerificationStatusUnderReview, VerificationStatusApproved, VerificationStatusRejected},
		VerificationStatusUnderReview: {VerificationStatusApproved, VerificationStatusRejected},
	}
	for from, targets := range allowed {
		for _, to := range targets {
			if !from.CanTransitionTo(to) {
				t.Fatalf("expected %s -> %s to be allowed", from, to)
			}
		}
	}

	if VerificationStatusUnderReview.CanTransitionTo(VerificationStatusPending) {
		t.Fatal("under_review must not return to pending")
	}
	for _, terminal := range []VerificationStatus{VerificationStatusApproved, VerificationStatusRejected} {
		if !terminal.IsTerminal() {
			t.Fatalf("expected %s to be terminal", terminal)
		}
		for _, to := range []VerificationStatus{VerificationStatusPending, VerificationStatusUnderReview, VerificationStatusApproved, VerificationStatusRejected} {
			if terminal.CanTransitionTo(to) {
				t.Fatalf("terminal %s must not move to %s", terminal, to)
			}
		}
	}
}

func TestVerificationRequest_HasDocument(t *testing.T) {
	req := &VerificationRequest{Documents: []VerificationDocument{{DocumentType: DocumentTypeGovernmentID}}}
	if req.HasDocument(DocumentTypeDeathCertificate) {
		t.Fatal("unexpected death certificate")
	}
	req.Documents = append(req.Documents, VerificationDocument{DocumentType: DocumentTypeDeathCertificate})
	if !req.HasDocument(DocumentTypeDeathCertificate) {
		t.Fatal("expected death certificate")
	}
}

func TestDocumentAndWalletEnums(t *testing.T) {
	if !DocumentTypeLegalAuthorization.Valid() || DocumentType("selfie").Valid() {
		t.Fatal("unexpected document type validation result")
	}
	if !WalletTypeUSDT.Valid() || WalletType("dogecoin").Valid() {
		t.Fatal("unexpected wallet type validation result")
	}
	if !IsSystemReviewer(SystemReviewer) || IsSystemReviewer("3f1c") {
		t.Fatal("unexpected system reviewer detection")
	}
	if got := NormalizeEmail("  Heir@Example.COM "); got != "heir@example.com" {
		t.Fatalf("unexpected normalized email %q", got)
	}
}
