// Package service implements the verification registry: creator-eligibility
// requests, operator decisions, and the per-creator warning counter.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"galang/internal/audit"
	"galang/internal/verification/models"
	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
	"galang/pkg/platform/sentinel"
	"galang/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, v *models.Verification) error
	FindByID(ctx context.Context, verificationID id.VerificationID) (*models.Verification, error)
	FindNewestByUser(ctx context.Context, userID id.UserID) (*models.Verification, error)
	HasApproved(ctx context.Context, userID id.UserID) (bool, error)
	Update(ctx context.Context, v *models.Verification) error
	ListByStatus(ctx context.Context, status models.Status, page, limit int) ([]*models.Verification, int, error)
	IncrementWarning(ctx context.Context, userID id.UserID) (int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store  Store
	logger *slog.Logger
	audit  AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit opens a PENDING verification for the user. A user with an unresolved
// PENDING record cannot open another; a user already APPROVED has nothing to
// re-verify. Re-submission after REJECTED creates a fresh record linked to
// the rejected one.
func (s *Service) Submit(ctx context.Context, userID id.UserID, req models.SubmitRequest) (*models.Verification, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user id is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var previous *id.VerificationID
	newest, err := s.store.FindNewestByUser(ctx, userID)
	switch {
	case err == nil:
		switch newest.Status {
		case models.StatusPending:
			return nil, dErrors.New(dErrors.CodeAlreadyPending, "a verification is already pending for this user")
		case models.StatusApproved:
			return nil, dErrors.New(dErrors.CodeConflict, "user is already a verified creator")
		case models.StatusRejected:
			prevID := newest.ID
			previous = &prevID
		}
	case errors.Is(err, sentinel.ErrNotFound):
		// first application
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification history")
	}

	v := models.New(id.NewVerificationID(), userID, req, previous, requestcontext.Now(ctx))
	if err := s.store.Create(ctx, v); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create verification")
	}

	s.emit(ctx, audit.Event{
		Action:  audit.ActionVerificationSubmit,
		Subject: v.ID.String(),
	})
	return v, nil
}

// Review records an operator decision. APPROVED grants creator capability;
// REJECTED requires a bounded reason. A resolved record cannot be re-reviewed.
func (s *Service) Review(ctx context.Context, verificationID id.VerificationID, decision models.Status, rejectionReason string, operator id.UserID) (*models.Verification, error) {
	if decision != models.StatusApproved && decision != models.StatusRejected {
		return nil, dErrors.New(dErrors.CodeBadRequest, "decision must be APPROVED or REJECTED")
	}
	if decision == models.StatusRejected {
		if err := models.ValidateRejectionReason(rejectionReason); err != nil {
			return nil, err
		}
	}

	v, err := s.store.FindByID(ctx, verificationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "verification not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification")
	}
	if v.Status.Resolved() {
		return nil, dErrors.New(dErrors.CodeAlreadyResolved, "verification was already "+strings.ToLower(string(v.Status)))
	}

	now := requestcontext.Now(ctx)
	v.Status = decision
	v.ReviewedAt = &now
	v.ReviewedBy = operator
	if decision == models.StatusRejected {
		v.RejectionReason = strings.TrimSpace(rejectionReason)
	}
	if err := s.store.Update(ctx, v); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update verification")
	}

	s.emit(ctx, audit.Event{
		Action:  audit.ActionVerificationReviewed,
		ActorID: operator,
		Subject: v.ID.String(),
		Detail:  string(decision),
	})
	return v, nil
}

// IssueWarning increments the creator's warning counter. No threshold policy
// lives here; suspension decisions belong to the moderation engine.
func (s *Service) IssueWarning(ctx context.Context, userID id.UserID) (int, error) {
	count, err := s.store.IncrementWarning(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, dErrors.New(dErrors.CodeNotFound, "no verification record for user")
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to increment warning count")
	}

	s.emit(ctx, audit.Event{
		Action:  audit.ActionWarningIssued,
		Subject: userID.String(),
	})
	return count, nil
}

// HasCreatorCapability reports whether the user holds an APPROVED
// verification. The campaign registry consults this on create.
func (s *Service) HasCreatorCapability(ctx context.Context, userID id.UserID) (bool, error) {
	approved, err := s.store.HasApproved(ctx, userID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check creator capability")
	}
	return approved, nil
}

// GetForUser returns the user's newest verification record.
func (s *Service) GetForUser(ctx context.Context, userID id.UserID) (*models.Verification, error) {
	v, err := s.store.FindNewestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no verification record for user")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification")
	}
	return v, nil
}

// ListPending pages through the operator review queue, oldest first.
func (s *Service) ListPending(ctx context.Context, page, limit int) ([]*models.Verification, int, error) {
	items, total, err := s.store.ListByStatus(ctx, models.StatusPending, page, limit)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pending verifications")
	}
	return items, total, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "error", err)
	}
}
