// Package models defines the creator-eligibility verification record: KTP
// identity, bank account, and terms acceptance, reviewed by an operator.
package models

import (
	"regexp"
	"strings"
	"time"

	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Resolved reports whether the record reached a terminal decision.
func (s Status) Resolved() bool {
	return s == StatusApproved || s == StatusRejected
}

const (
	// RejectionReasonMinLen and Max bound the operator's rejection reason.
	RejectionReasonMinLen = 10
	RejectionReasonMaxLen = 500
)

var ktpNumberPattern = regexp.MustCompile(`^[0-9]{16}$`)

// Verification is one eligibility request. Re-submission after rejection
// creates a fresh PENDING record pointing at the rejected one via PreviousID;
// records are never rewritten once resolved.
type Verification struct {
	ID         id.VerificationID  `json:"id"`
	UserID     id.UserID          `json:"user_id"`
	PreviousID *id.VerificationID `json:"previous_id,omitempty"`

	KTPName        string `json:"ktp_name"`
	KTPNumber      string `json:"ktp_number"`
	KTPDocumentURL string `json:"ktp_document_url"`

	BankAccountNumber string `json:"bank_account_number"`
	BankAccountName   string `json:"bank_account_name"`
	BankDocumentURL   string `json:"bank_document_url"`

	TermsDocumentURL string `json:"terms_document_url"`

	Status          Status `json:"status"`
	RejectionReason string `json:"rejection_reason,omitempty"`

	// WarningCount is incremented by the moderation engine independent of
	// verification status.
	WarningCount int `json:"warning_count"`

	CreatedAt  time.Time  `json:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy id.UserID  `json:"reviewed_by,omitempty"`
}

// SubmitRequest carries the applicant's documents.
type SubmitRequest struct {
	KTPName           string `json:"ktp_name"`
	KTPNumber         string `json:"ktp_number"`
	KTPDocumentURL    string `json:"ktp_document_url"`
	BankAccountNumber string `json:"bank_account_number"`
	BankAccountName   string `json:"bank_account_name"`
	BankDocumentURL   string `json:"bank_document_url"`
	TermsDocumentURL  string `json:"terms_document_url"`
}

func (r *SubmitRequest) Normalize() {
	r.KTPName = strings.TrimSpace(r.KTPName)
	r.KTPNumber = strings.TrimSpace(r.KTPNumber)
	r.KTPDocumentURL = strings.TrimSpace(r.KTPDocumentURL)
	r.BankAccountNumber = strings.TrimSpace(r.BankAccountNumber)
	r.BankAccountName = strings.TrimSpace(r.BankAccountName)
	r.BankDocumentURL = strings.TrimSpace(r.BankDocumentURL)
	r.TermsDocumentURL = strings.TrimSpace(r.TermsDocumentURL)
}

func (r *SubmitRequest) Validate() error {
	if r.KTPName == "" {
		return dErrors.New(dErrors.CodeValidation, "ktp_name is required")
	}
	if !ktpNumberPattern.MatchString(r.KTPNumber) {
		return dErrors.New(dErrors.CodeValidation, "ktp_number must be exactly 16 digits")
	}
	if r.KTPDocumentURL == "" {
		return dErrors.New(dErrors.CodeValidation, "ktp_document_url is required")
	}
	if r.BankAccountNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "bank_account_number is required")
	}
	if r.BankAccountName == "" {
		return dErrors.New(dErrors.CodeValidation, "bank_account_name is required")
	}
	if r.BankDocumentURL == "" {
		return dErrors.New(dErrors.CodeValidation, "bank_document_url is required")
	}
	if r.TermsDocumentURL == "" {
		return dErrors.New(dErrors.CodeValidation, "terms_document_url is required")
	}
	return nil
}

// New builds a PENDING verification from a validated request.
func New(verificationID id.VerificationID, userID id.UserID, req SubmitRequest, previous *id.VerificationID, now time.Time) *Verification {
	return &Verification{
		ID:                verificationID,
		UserID:            userID,
		PreviousID:        previous,
		KTPName:           req.KTPName,
		KTPNumber:         req.KTPNumber,
		KTPDocumentURL:    req.KTPDocumentURL,
		BankAccountNumber: req.BankAccountNumber,
		BankAccountName:   req.BankAccountName,
		BankDocumentURL:   req.BankDocumentURL,
		TermsDocumentURL:  req.TermsDocumentURL,
		Status:            StatusPending,
		CreatedAt:         now,
	}
}

// ValidateRejectionReason enforces the reason bounds for REJECTED decisions.
func ValidateRejectionReason(reason string) error {
	trimmed := strings.TrimSpace(reason)
	if len(trimmed) < RejectionReasonMinLen {
		return dErrors.New(dErrors.CodeValidation, "rejection_reason must be at least 10 characters")
	}
	if len(trimmed) > RejectionReasonMaxLen {
		return dErrors.New(dErrors.CodeValidation, "rejection_reason must be at most 500 characters")
	}
	return nil
}
