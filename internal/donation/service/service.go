// Package service implements the donation ledger. Confirmation is idempotent
// per external reference: the gateway delivers notifications at least once,
// and the collected aggregate moves exactly once per donation.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"galang/internal/audit"
	campaignmodels "galang/internal/campaign/models"
	campaignservice "galang/internal/campaign/service"
	donationmetrics "galang/internal/donation/metrics"
	"galang/internal/donation/models"
	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
	"galang/pkg/platform/sentinel"
	"galang/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, d *models.Donation) error
	FindByExternalRef(ctx context.Context, externalRef string) (*models.Donation, error)
	Update(ctx context.Context, d *models.Donation) error
	ListConfirmedByCampaign(ctx context.Context, campaignID id.CampaignID, page, limit int) ([]*models.Donation, int, error)
	CountConfirmed(ctx context.Context, campaignID id.CampaignID) (int, error)
}

// CampaignRegistry is the slice of the campaign service the ledger needs.
type CampaignRegistry interface {
	Get(ctx context.Context, campaignID id.CampaignID) (*campaignmodels.Campaign, error)
	ApplyConfirmedDonation(ctx context.Context, campaignID id.CampaignID, amount int64) (*campaignmodels.Campaign, error)
}

// TokenStore holds payment-initiation tokens until the gateway redeems them.
// Redis-backed in production; TTL bounds how long an intent stays payable.
type TokenStore interface {
	Save(ctx context.Context, token, externalRef string, ttl time.Duration) error
	Resolve(ctx context.Context, token string) (string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	donations Store
	campaigns CampaignRegistry
	tx        campaignservice.CampaignTx
	tokens    TokenStore
	logger    *slog.Logger
	metrics   *donationmetrics.Metrics
	auditPub  AuditPublisher

	minAmount int64
	intentTTL time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *donationmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPub = publisher }
}

func WithMinAmount(min int64) Option {
	return func(s *Service) { s.minAmount = min }
}

func WithIntentTTL(ttl time.Duration) Option {
	return func(s *Service) { s.intentTTL = ttl }
}

const (
	defaultMinAmount = 10_000
	defaultIntentTTL = 24 * time.Hour
)

func New(donations Store, campaigns CampaignRegistry, tx campaignservice.CampaignTx, tokens TokenStore, opts ...Option) *Service {
	s := &Service{
		donations: donations,
		campaigns: campaigns,
		tx:        tx,
		tokens:    tokens,
		minAmount: defaultMinAmount,
		intentTTL: defaultIntentTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateIntent opens a PENDING donation and returns it together with the
// opaque token the client hands to the checkout widget.
func (s *Service) CreateIntent(ctx context.Context, campaignID id.CampaignID, donor models.DonorInfo, amount int64, message string, anonymous bool) (*models.Donation, string, error) {
	if amount < s.minAmount {
		return nil, "", dErrors.New(dErrors.CodeValidation, "amount is below the minimum donation")
	}
	donor.Normalize()
	if err := donor.Validate(); err != nil {
		return nil, "", err
	}
	message = strings.TrimSpace(message)
	if len(message) > models.MessageMaxLen {
		return nil, "", dErrors.New(dErrors.CodeValidation, "message must be at most 500 characters")
	}

	campaign, err := s.campaigns.Get(ctx, campaignID)
	if err != nil {
		return nil, "", err
	}
	now := requestcontext.Now(ctx)
	if !campaign.OpenForIntents(now) {
		return nil, "", dErrors.New(dErrors.CodeValidation, "campaign is not accepting donations")
	}

	d := &models.Donation{
		ID:          id.NewDonationID(),
		CampaignID:  campaignID,
		Donor:       donor,
		Amount:      amount,
		Message:     message,
		Anonymous:   anonymous,
		Status:      models.StatusPending,
		ExternalRef: "don-" + uuid.NewString(),
		CreatedAt:   now,
	}
	if err := s.donations.Create(ctx, d); err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create donation")
	}

	token := uuid.NewString()
	if err := s.tokens.Save(ctx, token, d.ExternalRef, s.intentTTL); err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store payment token")
	}

	if err := s.emit(ctx, audit.Event{
		Action:     audit.ActionDonationIntent,
		CampaignID: campaignID,
		Subject:    d.ExternalRef,
		Amount:     amount,
	}); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "error", err)
	}
	s.metrics.RecordIntent()
	return d, token, nil
}

// Confirm applies a gateway confirmation. Repeated confirmations for the same
// reference return the donation unchanged; the aggregate moves exactly once.
// The status flip and the aggregate update are one unit inside the campaign
// transaction boundary.
func (s *Service) Confirm(ctx context.Context, externalRef string) (*models.Donation, error) {
	pre, err := s.findByRef(ctx, externalRef)
	if err != nil {
		return nil, err
	}

	var confirmed *models.Donation
	var applied bool
	err = s.tx.RunInCampaignTx(ctx, pre.CampaignID, func(ctx context.Context) error {
		d, err := s.findByRef(ctx, externalRef)
		if err != nil {
			return err
		}
		if d.Status == models.StatusConfirmed {
			// Duplicate notification; at-least-once delivery is normal.
			confirmed = d
			return nil
		}
		if d.Status.Terminal() {
			return dErrors.New(dErrors.CodeInvalidTransition,
				"donation is already "+strings.ToLower(string(d.Status)))
		}

		campaign, err := s.campaigns.Get(ctx, d.CampaignID)
		if err != nil {
			return err
		}
		if !campaign.AcceptsDonations() {
			return dErrors.New(dErrors.CodeInvalidTransition, "campaign no longer accepts donations")
		}

		now := requestcontext.Now(ctx)
		d.Status = models.StatusConfirmed
		d.ConfirmedAt = &now
		if err := s.donations.Update(ctx, d); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update donation")
		}
		if _, err := s.campaigns.ApplyConfirmedDonation(ctx, d.CampaignID, d.Amount); err != nil {
			return err
		}
		if err := s.emit(ctx, audit.Event{
			Action:     audit.ActionDonationConfirmed,
			CampaignID: d.CampaignID,
			Subject:    d.ExternalRef,
			Amount:     d.Amount,
		}); err != nil {
			return err
		}
		confirmed = d
		applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if applied {
		s.metrics.RecordConfirmed(confirmed.Amount)
	} else {
		s.metrics.RecordDuplicate()
	}
	return confirmed, nil
}

// MarkFailed records a failed payment. No-op if already FAILED; rejected if
// the donation was already confirmed.
func (s *Service) MarkFailed(ctx context.Context, externalRef, reason string) (*models.Donation, error) {
	return s.markTerminal(ctx, externalRef, models.StatusFailed, reason, audit.ActionDonationFailed)
}

// MarkExpired records an intent that outlived its payment window.
func (s *Service) MarkExpired(ctx context.Context, externalRef string) (*models.Donation, error) {
	return s.markTerminal(ctx, externalRef, models.StatusExpired, "", audit.ActionDonationExpired)
}

func (s *Service) markTerminal(ctx context.Context, externalRef string, target models.Status, reason, action string) (*models.Donation, error) {
	pre, err := s.findByRef(ctx, externalRef)
	if err != nil {
		return nil, err
	}

	var result *models.Donation
	err = s.tx.RunInCampaignTx(ctx, pre.CampaignID, func(ctx context.Context) error {
		d, err := s.findByRef(ctx, externalRef)
		if err != nil {
			return err
		}
		if d.Status == target {
			result = d
			return nil
		}
		if d.Status.Terminal() {
			return dErrors.New(dErrors.CodeInvalidTransition,
				"donation is already "+strings.ToLower(string(d.Status)))
		}

		d.Status = target
		d.FailureReason = reason
		if err := s.donations.Update(ctx, d); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update donation")
		}
		if err := s.emit(ctx, audit.Event{
			Action:     action,
			CampaignID: d.CampaignID,
			Subject:    d.ExternalRef,
			Amount:     d.Amount,
			Detail:     reason,
		}); err != nil {
			return err
		}
		result = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListForCampaign pages through CONFIRMED donations, newest first. PENDING
// and failed attempts never appear in public listings.
func (s *Service) ListForCampaign(ctx context.Context, campaignID id.CampaignID, page, limit int) ([]*models.Donation, int, error) {
	items, total, err := s.donations.ListConfirmedByCampaign(ctx, campaignID, page, limit)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donations")
	}
	return items, total, nil
}

// ResolveToken maps a payment token back to its external reference, for
// gateways that echo the token instead of the reference.
func (s *Service) ResolveToken(ctx context.Context, token string) (string, error) {
	ref, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExpired) {
			return "", dErrors.New(dErrors.CodeNotFound, "unknown or expired payment token")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve payment token")
	}
	return ref, nil
}

func (s *Service) findByRef(ctx context.Context, externalRef string) (*models.Donation, error) {
	externalRef = strings.TrimSpace(externalRef)
	if externalRef == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "external reference is required")
	}
	d, err := s.donations.FindByExternalRef(ctx, externalRef)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no donation matches this reference")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donation")
	}
	return d, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.auditPub == nil {
		return nil
	}
	return s.auditPub.Emit(ctx, event)
}
