// Package service implements the report and moderation engine. Anyone may
// file; an operator reviews each report exactly once and the recorded action
// drives at most one side effect on the campaign or its creator.
package service

import (
	"context"
	"errors"
	"log/slog"

	"galang/internal/audit"
	campaignmodels "galang/internal/campaign/models"
	reportmetrics "galang/internal/report/metrics"
	"galang/internal/report/models"
	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
	"galang/pkg/platform/sentinel"
	"galang/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, r *models.Report) error
	FindByID(ctx context.Context, reportID id.ReportID) (*models.Report, error)
	Update(ctx context.Context, r *models.Report) error
	ListByStatus(ctx context.Context, status models.Status, page, limit int) ([]*models.Report, int, error)
}

// CampaignRegistry is the slice of the campaign service moderation needs:
// lookup plus the suspension transition.
type CampaignRegistry interface {
	Get(ctx context.Context, campaignID id.CampaignID) (*campaignmodels.Campaign, error)
	UpdateStatus(ctx context.Context, campaignID id.CampaignID, to campaignmodels.Status) (*campaignmodels.Campaign, error)
}

// Warner increments a creator's warning count. Backed by the verification
// registry.
type Warner interface {
	IssueWarning(ctx context.Context, userID id.UserID) (int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	reports   Store
	campaigns CampaignRegistry
	warner    Warner
	logger    *slog.Logger
	metrics   *reportmetrics.Metrics
	auditPub  AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *reportmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPub = publisher }
}

func New(reports Store, campaigns CampaignRegistry, warner Warner, opts ...Option) *Service {
	s := &Service{reports: reports, campaigns: campaigns, warner: warner}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// File records a PENDING report. No authentication required; a report against
// a campaign that does not exist is malformed input, not a lookup miss.
func (s *Service) File(ctx context.Context, campaignID id.CampaignID, req models.FileRequest) (*models.Report, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.campaigns.Get(ctx, campaignID); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "campaign does not exist")
		}
		return nil, err
	}

	r := models.New(id.NewReportID(), campaignID, req, requestcontext.Now(ctx))
	if err := s.reports.Create(ctx, r); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create report")
	}

	s.emit(ctx, audit.Event{
		Action:     audit.ActionReportFiled,
		CampaignID: campaignID,
		Subject:    r.ID.String(),
		Detail:     string(r.Reason),
	})
	s.metrics.RecordFiled(string(r.Reason))
	return r, nil
}

// Review resolves a report and applies its action: WARNING increments the
// creator's warning count, SUSPEND transitions the campaign, REJECT records
// the outcome and nothing else. The record is persisted before the side
// effect runs, so a repeated review can never re-apply the action.
func (s *Service) Review(ctx context.Context, reportID id.ReportID, outcome models.Status, action models.Action, adminNote string, operator id.UserID) (*models.Report, error) {
	if operator.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "operator id is required")
	}

	r, err := s.find(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if err := r.Review(outcome, action, adminNote, operator, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.reports.Update(ctx, r); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update report")
	}

	if err := s.applyAction(ctx, r); err != nil {
		return nil, err
	}

	s.emit(ctx, audit.Event{
		Action:     audit.ActionReportReviewed,
		CampaignID: r.CampaignID,
		Subject:    r.ID.String(),
		Detail:     string(r.Action),
	})
	s.metrics.RecordReviewed(string(r.Action))
	return r, nil
}

func (s *Service) applyAction(ctx context.Context, r *models.Report) error {
	switch r.Action {
	case models.ActionWarning:
		campaign, err := s.campaigns.Get(ctx, r.CampaignID)
		if err != nil {
			return err
		}
		count, err := s.warner.IssueWarning(ctx, campaign.CreatorID)
		if err != nil {
			return err
		}
		s.emit(ctx, audit.Event{
			Action:     audit.ActionWarningIssued,
			CampaignID: r.CampaignID,
			Subject:    campaign.CreatorID.String(),
			Amount:     int64(count),
		})
		return nil
	case models.ActionSuspend:
		if _, err := s.campaigns.UpdateStatus(ctx, r.CampaignID, campaignmodels.StatusSuspended); err != nil {
			// Already suspended is an acceptable outcome for moderation.
			if dErrors.HasCode(err, dErrors.CodeInvalidTransition) {
				if s.logger != nil {
					s.logger.WarnContext(ctx, "suspend action on already-suspended campaign",
						"campaign_id", r.CampaignID.String(),
						"report_id", r.ID.String(),
					)
				}
				return nil
			}
			return err
		}
		return nil
	case models.ActionReject:
		return nil
	}
	return dErrors.New(dErrors.CodeInvariantViolation, "unknown moderation action")
}

// Get returns a report by ID.
func (s *Service) Get(ctx context.Context, reportID id.ReportID) (*models.Report, error) {
	return s.find(ctx, reportID)
}

// ListPending pages through unreviewed reports, oldest first.
func (s *Service) ListPending(ctx context.Context, page, limit int) ([]*models.Report, int, error) {
	items, total, err := s.reports.ListByStatus(ctx, models.StatusPending, page, limit)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reports")
	}
	return items, total, nil
}

func (s *Service) find(ctx context.Context, reportID id.ReportID) (*models.Report, error) {
	r, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "report not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load report")
	}
	return r, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPub == nil {
		return
	}
	if err := s.auditPub.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "error", err)
	}
}
