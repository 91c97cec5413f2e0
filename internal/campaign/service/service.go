// Package service implements the campaign registry: lifecycle, the emergency
// flag, the collected-amount aggregate, and the available-balance view that
// the withdrawal ledger draws against.
package service

import (
	"context"
	"errors"
	"log/slog"

	"galang/internal/audit"
	campaignmetrics "galang/internal/campaign/metrics"
	"galang/internal/campaign/models"
	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
	"galang/pkg/platform/sentinel"
	"galang/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, c *models.Campaign) error
	FindByID(ctx context.Context, campaignID id.CampaignID) (*models.Campaign, error)
	Update(ctx context.Context, c *models.Campaign) error
	// AddToCollected atomically increments collected_amount and returns the
	// updated campaign. Callers hold the per-campaign boundary.
	AddToCollected(ctx context.Context, campaignID id.CampaignID, amount int64) (*models.Campaign, error)
	List(ctx context.Context, filter models.ListFilter, page, limit int) ([]*models.Campaign, int, error)
	Delete(ctx context.Context, campaignID id.CampaignID) error
}

// CapabilityChecker reports whether a user holds creator capability
// (an APPROVED verification). Backed by the verification registry.
type CapabilityChecker interface {
	HasCreatorCapability(ctx context.Context, userID id.UserID) (bool, error)
}

// ReservationSummer sums a campaign's non-FAILED withdrawals. Backed by the
// withdrawal store; wired in cmd/server to keep the dependency one-way.
type ReservationSummer interface {
	SumReserved(ctx context.Context, campaignID id.CampaignID) (int64, error)
}

// ConfirmedCounter counts a campaign's confirmed donations. Used to guard
// deletion: a campaign holding confirmed money is never silently removed.
type ConfirmedCounter interface {
	CountConfirmed(ctx context.Context, campaignID id.CampaignID) (int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	campaigns   Store
	capability  CapabilityChecker
	reserved    ReservationSummer
	confirmed   ConfirmedCounter
	tx          CampaignTx
	logger      *slog.Logger
	metrics     *campaignmetrics.Metrics
	auditEvents AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *campaignmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditEvents = publisher }
}

// WithReservationSummer wires the withdrawal aggregate used by
// AvailableBalance and Delete.
func WithReservationSummer(summer ReservationSummer) Option {
	return func(s *Service) { s.reserved = summer }
}

// WithConfirmedCounter wires the donation count used by Delete.
func WithConfirmedCounter(counter ConfirmedCounter) Option {
	return func(s *Service) { s.confirmed = counter }
}

func New(campaigns Store, capability CapabilityChecker, tx CampaignTx, opts ...Option) *Service {
	s := &Service{campaigns: campaigns, capability: capability, tx: tx}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a campaign for a creator. Only holders of creator capability
// or the admin role may create; everyone else gets Forbidden regardless of
// how well-formed the request is.
func (s *Service) Create(ctx context.Context, creator id.UserID, req models.CreateRequest) (*models.Campaign, error) {
	if creator.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "creator id is required")
	}

	if !requestcontext.Role(ctx).IsAdmin() {
		allowed, err := s.capability.HasCreatorCapability(ctx, creator)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, dErrors.New(dErrors.CodeForbidden, "creator is not verified")
		}
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c := models.New(id.NewCampaignID(), creator, req, requestcontext.Now(ctx))
	if err := s.campaigns.Create(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create campaign")
	}

	if err := s.emit(ctx, audit.Event{
		Action:     audit.ActionCampaignCreated,
		CampaignID: c.ID,
		Subject:    c.Title,
	}); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "error", err)
	}
	s.metrics.RecordCreated()
	return c, nil
}

// Get returns a campaign by ID.
func (s *Service) Get(ctx context.Context, campaignID id.CampaignID) (*models.Campaign, error) {
	c, err := s.campaigns.FindByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "campaign not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load campaign")
	}
	return c, nil
}

// List pages through campaigns, newest first.
func (s *Service) List(ctx context.Context, filter models.ListFilter, page, limit int) ([]*models.Campaign, int, error) {
	items, total, err := s.campaigns.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list campaigns")
	}
	return items, total, nil
}

// UpdateStatus transitions the campaign's status. Runs inside the campaign
// boundary so a suspension never races a concurrent confirmation.
func (s *Service) UpdateStatus(ctx context.Context, campaignID id.CampaignID, to models.Status) (*models.Campaign, error) {
	var updated *models.Campaign
	err := s.tx.RunInCampaignTx(ctx, campaignID, func(ctx context.Context) error {
		c, err := s.campaigns.FindByID(ctx, campaignID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "campaign not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load campaign")
		}
		if err := c.ApplyStatus(to, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := s.campaigns.Update(ctx, c); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update campaign")
		}
		if err := s.emit(ctx, audit.Event{
			Action:     audit.ActionCampaignStatusSet,
			CampaignID: c.ID,
			Detail:     string(to),
		}); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordStatusChange(string(to))
	return updated, nil
}

// SetEmergency flips the prioritized-display flag. Orthogonal to status.
// Runs inside the campaign boundary so the write never clobbers a concurrent
// confirmation.
func (s *Service) SetEmergency(ctx context.Context, campaignID id.CampaignID, flag bool) (*models.Campaign, error) {
	var updated *models.Campaign
	err := s.tx.RunInCampaignTx(ctx, campaignID, func(ctx context.Context) error {
		c, err := s.Get(ctx, campaignID)
		if err != nil {
			return err
		}
		c.IsEmergency = flag
		c.UpdatedAt = requestcontext.Now(ctx)
		if err := s.campaigns.Update(ctx, c); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update campaign")
		}
		if err := s.emit(ctx, audit.Event{
			Action:     audit.ActionCampaignEmergencySet,
			CampaignID: c.ID,
		}); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a DRAFT campaign. Published campaigns are retired through
// the status machine, and a campaign with confirmed donations must not be
// deleted; donations would be orphaned.
func (s *Service) Delete(ctx context.Context, campaignID id.CampaignID) error {
	return s.tx.RunInCampaignTx(ctx, campaignID, func(ctx context.Context) error {
		c, err := s.Get(ctx, campaignID)
		if err != nil {
			return err
		}
		if c.Status != models.StatusDraft {
			return dErrors.New(dErrors.CodeConflict, "only DRAFT campaigns can be deleted")
		}
		if s.confirmed != nil {
			count, err := s.confirmed.CountConfirmed(ctx, campaignID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count donations")
			}
			if count > 0 {
				return dErrors.New(dErrors.CodeConflict, "campaign has confirmed donations and cannot be deleted")
			}
		}
		if err := s.campaigns.Delete(ctx, campaignID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete campaign")
		}
		return s.emit(ctx, audit.Event{
			Action:     audit.ActionCampaignDeleted,
			CampaignID: campaignID,
		})
	})
}

// ApplyConfirmedDonation increments the collected aggregate. Called only by
// the donation ledger, inside the donation's campaign transaction.
func (s *Service) ApplyConfirmedDonation(ctx context.Context, campaignID id.CampaignID, amount int64) (*models.Campaign, error) {
	if amount <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "confirmed donation amount must be positive")
	}
	c, err := s.campaigns.AddToCollected(ctx, campaignID, amount)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "campaign not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to apply confirmed donation")
	}
	return c, nil
}

// AvailableBalance returns collected minus non-FAILED withdrawals. A negative
// result means the ledger lost track of money; that is surfaced as an
// invariant violation, never returned as a number.
func (s *Service) AvailableBalance(ctx context.Context, campaignID id.CampaignID) (int64, error) {
	c, err := s.Get(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	return s.availableFor(ctx, c)
}

func (s *Service) availableFor(ctx context.Context, c *models.Campaign) (int64, error) {
	var reserved int64
	if s.reserved != nil {
		var err error
		reserved, err = s.reserved.SumReserved(ctx, c.ID)
		if err != nil {
			return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sum withdrawals")
		}
	}
	available := c.CollectedAmount - reserved
	if available < 0 {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "negative available balance",
				"campaign_id", c.ID.String(),
				"collected", c.CollectedAmount,
				"reserved", reserved,
			)
		}
		return 0, dErrors.New(dErrors.CodeInvariantViolation, "available balance is negative")
	}
	return available, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.auditEvents == nil {
		return nil
	}
	return s.auditEvents.Emit(ctx, event)
}
