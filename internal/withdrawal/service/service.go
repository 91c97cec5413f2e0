// Package service implements the withdrawal ledger. A request reserves funds
// against the campaign's available balance inside the campaign transaction
// boundary, so two concurrent requests can never jointly overdraw.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"galang/internal/audit"
	campaignmodels "galang/internal/campaign/models"
	campaignservice "galang/internal/campaign/service"
	withdrawalmetrics "galang/internal/withdrawal/metrics"
	"galang/internal/withdrawal/models"
	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
	"galang/pkg/platform/sentinel"
	"galang/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, w *models.Withdrawal) error
	FindByID(ctx context.Context, withdrawalID id.WithdrawalID) (*models.Withdrawal, error)
	Update(ctx context.Context, w *models.Withdrawal) error
	ListByCampaign(ctx context.Context, campaignID id.CampaignID) ([]*models.Withdrawal, error)
	// SumReserved totals PROCESSING and COMPLETED withdrawals; both reduce
	// the available balance. FAILED never counts.
	SumReserved(ctx context.Context, campaignID id.CampaignID) (int64, error)
	SumCompleted(ctx context.Context, campaignID id.CampaignID) (int64, error)
}

// CampaignRegistry is the slice of the campaign service the ledger needs.
type CampaignRegistry interface {
	Get(ctx context.Context, campaignID id.CampaignID) (*campaignmodels.Campaign, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Summary is the operator view of a campaign's withdrawal position.
type Summary struct {
	Withdrawals     []*models.Withdrawal `json:"withdrawals"`
	TotalWithdrawn  int64                `json:"total_withdrawn"`
	AvailableAmount int64                `json:"available_amount"`
}

type Service struct {
	withdrawals Store
	campaigns   CampaignRegistry
	tx          campaignservice.CampaignTx
	logger      *slog.Logger
	metrics     *withdrawalmetrics.Metrics
	auditPub    AuditPublisher

	minAmount int64
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *withdrawalmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPub = publisher }
}

func WithMinAmount(min int64) Option {
	return func(s *Service) { s.minAmount = min }
}

const defaultMinAmount = 1_000

func New(withdrawals Store, campaigns CampaignRegistry, tx campaignservice.CampaignTx, opts ...Option) *Service {
	s := &Service{
		withdrawals: withdrawals,
		campaigns:   campaigns,
		tx:          tx,
		minAmount:   defaultMinAmount,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request opens a PROCESSING withdrawal. The balance check and the insert run
// as one unit inside the campaign boundary.
func (s *Service) Request(ctx context.Context, campaignID id.CampaignID, amount int64, note string, operator id.UserID) (*models.Withdrawal, error) {
	if operator.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "operator id is required")
	}
	if amount < s.minAmount {
		return nil, dErrors.New(dErrors.CodeValidation, "amount is below the minimum withdrawal")
	}
	note = strings.TrimSpace(note)
	if len(note) > models.NoteMaxLen {
		return nil, dErrors.New(dErrors.CodeValidation, "note must be at most 500 characters")
	}

	var created *models.Withdrawal
	err := s.tx.RunInCampaignTx(ctx, campaignID, func(ctx context.Context) error {
		campaign, err := s.campaigns.Get(ctx, campaignID)
		if err != nil {
			return err
		}
		if !campaign.AllowsWithdrawal() {
			return dErrors.New(dErrors.CodeForbidden, "campaign status does not permit withdrawal")
		}

		available, err := s.availableFor(ctx, campaign)
		if err != nil {
			return err
		}
		if amount > available {
			return dErrors.New(dErrors.CodeValidation, "amount exceeds the available balance")
		}

		w := models.New(id.NewWithdrawalID(), campaignID, amount, note, operator, requestcontext.Now(ctx))
		if err := s.withdrawals.Create(ctx, w); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create withdrawal")
		}
		if err := s.emit(ctx, audit.Event{
			Action:     audit.ActionWithdrawalRequested,
			CampaignID: campaignID,
			Subject:    w.ID.String(),
			Amount:     amount,
		}); err != nil {
			return err
		}
		created = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordRequested()
	return created, nil
}

// Resolve finalizes a withdrawal. COMPLETED means funds left custody; FAILED
// releases the reservation back to the available balance.
func (s *Service) Resolve(ctx context.Context, withdrawalID id.WithdrawalID, outcome models.Status, operator id.UserID) (*models.Withdrawal, error) {
	if operator.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "operator id is required")
	}

	pre, err := s.find(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}

	var resolved *models.Withdrawal
	err = s.tx.RunInCampaignTx(ctx, pre.CampaignID, func(ctx context.Context) error {
		w, err := s.find(ctx, withdrawalID)
		if err != nil {
			return err
		}
		if err := w.Resolve(outcome, operator, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := s.withdrawals.Update(ctx, w); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update withdrawal")
		}
		if err := s.emit(ctx, audit.Event{
			Action:     audit.ActionWithdrawalResolved,
			CampaignID: w.CampaignID,
			Subject:    w.ID.String(),
			Amount:     w.Amount,
			Detail:     string(outcome),
		}); err != nil {
			return err
		}
		resolved = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordResolved(string(outcome), resolved.Amount)
	return resolved, nil
}

// Get returns a withdrawal by ID.
func (s *Service) Get(ctx context.Context, withdrawalID id.WithdrawalID) (*models.Withdrawal, error) {
	return s.find(ctx, withdrawalID)
}

// CampaignSummary lists a campaign's withdrawals with its totals. Completed
// withdrawals count toward total_withdrawn; PROCESSING ones are reserved and
// reduce availability without being withdrawn yet.
func (s *Service) CampaignSummary(ctx context.Context, campaignID id.CampaignID) (*Summary, error) {
	campaign, err := s.campaigns.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	withdrawals, err := s.withdrawals.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list withdrawals")
	}
	completed, err := s.withdrawals.SumCompleted(ctx, campaignID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sum withdrawals")
	}
	available, err := s.availableFor(ctx, campaign)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Withdrawals:     withdrawals,
		TotalWithdrawn:  completed,
		AvailableAmount: available,
	}, nil
}

func (s *Service) availableFor(ctx context.Context, campaign *campaignmodels.Campaign) (int64, error) {
	reserved, err := s.withdrawals.SumReserved(ctx, campaign.ID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sum withdrawals")
	}
	available := campaign.CollectedAmount - reserved
	if available < 0 {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "negative available balance",
				"campaign_id", campaign.ID.String(),
				"collected", campaign.CollectedAmount,
				"reserved", reserved,
			)
		}
		return 0, dErrors.New(dErrors.CodeInvariantViolation, "available balance is negative")
	}
	return available, nil
}

func (s *Service) find(ctx context.Context, withdrawalID id.WithdrawalID) (*models.Withdrawal, error) {
	w, err := s.withdrawals.FindByID(ctx, withdrawalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "withdrawal not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load withdrawal")
	}
	return w, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.auditPub == nil {
		return nil
	}
	return s.auditPub.Emit(ctx, event)
}
