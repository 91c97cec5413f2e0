// Package handler exposes the donation ledger over HTTP: intent creation and
// public listings for clients, plus the gateway notification webhook.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"galang/internal/donation/models"
	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
	"galang/pkg/platform/httputil"
	"galang/pkg/requestcontext"
)

// Service defines the donation operations the handler needs.
type Service interface {
	CreateIntent(ctx context.Context, campaignID id.CampaignID, donor models.DonorInfo, amount int64, message string, anonymous bool) (*models.Donation, string, error)
	Confirm(ctx context.Context, externalRef string) (*models.Donation, error)
	MarkFailed(ctx context.Context, externalRef, reason string) (*models.Donation, error)
	MarkExpired(ctx context.Context, externalRef string) (*models.Donation, error)
	ListForCampaign(ctx context.Context, campaignID id.CampaignID, page, limit int) ([]*models.Donation, int, error)
	ResolveToken(ctx context.Context, token string) (string, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger

	// webhookSecretHash is the bcrypt hash the gateway's shared secret must
	// match. Empty disables the check (local development only).
	webhookSecretHash string
}

type Option func(*Handler)

func WithWebhookSecretHash(hash string) Option {
	return func(h *Handler) { h.webhookSecretHash = hash }
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the public donation endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/campaigns/{campaignID}/donations", h.HandleCreateIntent)
	r.Get("/campaigns/{campaignID}/donations", h.HandleList)
}

// RegisterWebhook mounts the gateway notification endpoint. Registered
// outside the authenticated chain; the shared secret is the credential.
func (h *Handler) RegisterWebhook(r chi.Router) {
	r.Post("/donations/notify", h.HandlePaymentNotification)
}

func (h *Handler) HandleCreateIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	campaignID, err := id.ParseCampaignID(chi.URLParam(r, "campaignID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[createIntentRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	donor := models.DonorInfo{
		UserID: requestcontext.UserID(ctx),
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
	}
	donation, token, err := h.service.CreateIntent(ctx, campaignID, donor, req.Amount, req.Message, req.Anonymous)
	if err != nil {
		h.logger.WarnContext(ctx, "donation intent failed",
			"request_id", requestID,
			"campaign_id", campaignID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "donation intent created",
		"request_id", requestID,
		"campaign_id", campaignID.String(),
		"external_ref", donation.ExternalRef,
		"amount", donation.Amount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, intentResponse{
		Donation:     donation,
		PaymentToken: token,
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := httputil.ParsePage(r)

	campaignID, err := id.ParseCampaignID(chi.URLParam(r, "campaignID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	items, total, err := h.service.ListForCampaign(ctx, campaignID, page.Number, page.Limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]listedDonation, 0, len(items))
	for _, d := range items {
		out = append(out, toListedDonation(d))
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginated(out, page, total))
}

// HandlePaymentNotification consumes gateway callbacks. Notifications are
// at-least-once; duplicate confirmations are success, not errors.
func (h *Handler) HandlePaymentNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if !h.authorizeWebhook(r) {
		h.logger.WarnContext(ctx, "webhook secret mismatch", "request_id", requestID)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid webhook credentials"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[notificationRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	ref := req.ExternalRef
	if ref == "" {
		resolved, err := h.service.ResolveToken(ctx, req.PaymentToken)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		ref = resolved
	}

	var (
		donation *models.Donation
		err      error
	)
	switch req.Status {
	case notificationConfirmed:
		donation, err = h.service.Confirm(ctx, ref)
	case notificationFailed:
		donation, err = h.service.MarkFailed(ctx, ref, req.Reason)
	case notificationExpired:
		donation, err = h.service.MarkExpired(ctx, ref)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "payment notification rejected",
			"request_id", requestID,
			"external_ref", ref,
			"status", req.Status,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "payment notification applied",
		"request_id", requestID,
		"external_ref", ref,
		"status", string(donation.Status),
	)
	httputil.WriteJSON(w, http.StatusOK, donation)
}

func (h *Handler) authorizeWebhook(r *http.Request) bool {
	if h.webhookSecretHash == "" {
		return true
	}
	secret := r.Header.Get("X-Webhook-Secret")
	return bcrypt.CompareHashAndPassword([]byte(h.webhookSecretHash), []byte(secret)) == nil
}
