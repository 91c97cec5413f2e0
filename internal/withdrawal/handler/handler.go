// Package handler exposes the withdrawal ledger over HTTP. All endpoints are
// operator-facing.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"galang/internal/withdrawal/models"
	withdrawalservice "galang/internal/withdrawal/service"
	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
	"galang/pkg/platform/httputil"
	"galang/pkg/requestcontext"
)

// Service defines the withdrawal operations the handler needs.
type Service interface {
	Request(ctx context.Context, campaignID id.CampaignID, amount int64, note string, operator id.UserID) (*models.Withdrawal, error)
	Resolve(ctx context.Context, withdrawalID id.WithdrawalID, outcome models.Status, operator id.UserID) (*models.Withdrawal, error)
	Get(ctx context.Context, withdrawalID id.WithdrawalID) (*models.Withdrawal, error)
	CampaignSummary(ctx context.Context, campaignID id.CampaignID) (*withdrawalservice.Summary, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts the operator endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/campaigns/{campaignID}/withdrawals", h.HandleRequest)
	r.Get("/campaigns/{campaignID}/withdrawals", h.HandleSummary)
	r.Get("/withdrawals/{withdrawalID}", h.HandleGet)
	r.Post("/withdrawals/{withdrawalID}/resolve", h.HandleResolve)
}

func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	campaignID, err := id.ParseCampaignID(chi.URLParam(r, "campaignID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[requestWithdrawalRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	withdrawal, err := h.service.Request(ctx, campaignID, req.Amount, req.Note, requestcontext.UserID(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "withdrawal request failed",
			"request_id", requestID,
			"campaign_id", campaignID.String(),
			"amount", req.Amount,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "withdrawal requested",
		"request_id", requestID,
		"campaign_id", campaignID.String(),
		"withdrawal_id", withdrawal.ID.String(),
		"amount", withdrawal.Amount,
	)
	httputil.WriteJSON(w, http.StatusCreated, withdrawal)
}

func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	withdrawalID, err := id.ParseWithdrawalID(chi.URLParam(r, "withdrawalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[resolveRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	withdrawal, err := h.service.Resolve(ctx, withdrawalID, models.Status(req.Outcome), requestcontext.UserID(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "withdrawal resolve failed",
			"request_id", requestID,
			"withdrawal_id", withdrawalID.String(),
			"outcome", req.Outcome,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "withdrawal resolved",
		"request_id", requestID,
		"withdrawal_id", withdrawalID.String(),
		"outcome", req.Outcome,
	)
	httputil.WriteJSON(w, http.StatusOK, withdrawal)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	withdrawalID, err := id.ParseWithdrawalID(chi.URLParam(r, "withdrawalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	withdrawal, err := h.service.Get(r.Context(), withdrawalID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, withdrawal)
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	campaignID, err := id.ParseCampaignID(chi.URLParam(r, "campaignID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	summary, err := h.service.CampaignSummary(r.Context(), campaignID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if summary.Withdrawals == nil {
		summary.Withdrawals = []*models.Withdrawal{}
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

type requestWithdrawalRequest struct {
	Amount int64  `json:"amount"`
	Note   string `json:"note"`
}

func (r *requestWithdrawalRequest) Validate() error {
	if r.Amount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	return nil
}

type resolveRequest struct {
	Outcome string `json:"outcome"`
}

func (r *resolveRequest) Validate() error {
	if r.Outcome == "" {
		return dErrors.New(dErrors.CodeValidation, "outcome is required")
	}
	return nil
}
