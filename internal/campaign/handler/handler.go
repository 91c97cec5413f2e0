// Package handler exposes the campaign registry over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"galang/internal/campaign/models"
	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
	"galang/pkg/platform/httputil"
	"galang/pkg/requestcontext"
)

// Service defines the campaign operations the handler needs.
type Service interface {
	Create(ctx context.Context, creator id.UserID, req models.CreateRequest) (*models.Campaign, error)
	Get(ctx context.Context, campaignID id.CampaignID) (*models.Campaign, error)
	List(ctx context.Context, filter models.ListFilter, page, limit int) ([]*models.Campaign, int, error)
	UpdateStatus(ctx context.Context, campaignID id.CampaignID, to models.Status) (*models.Campaign, error)
	SetEmergency(ctx context.Context, campaignID id.CampaignID, flag bool) (*models.Campaign, error)
	Delete(ctx context.Context, campaignID id.CampaignID) error
	AvailableBalance(ctx context.Context, campaignID id.CampaignID) (int64, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public read endpoints. HandleCreate is mounted
// separately behind required authentication.
func (h *Handler) Register(r chi.Router) {
	r.Get("/campaigns", h.HandleList)
	r.Get("/campaigns/{campaignID}", h.HandleGet)
}

// RegisterAdmin mounts the operator endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Patch("/campaigns/{campaignID}/status", h.HandleUpdateStatus)
	r.Patch("/campaigns/{campaignID}/emergency", h.HandleSetEmergency)
	r.Delete("/campaigns/{campaignID}", h.HandleDelete)
	r.Get("/campaigns/{campaignID}/balance", h.HandleBalance)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	campaign, err := h.service.Create(ctx, userID, req)
	if err != nil {
		h.logger.WarnContext(ctx, "campaign create failed",
			"request_id", requestID,
			"user_id", userID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "campaign created",
		"request_id", requestID,
		"campaign_id", campaign.ID.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, campaign)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	campaignID, err := id.ParseCampaignID(chi.URLParam(r, "campaignID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	campaign, err := h.service.Get(r.Context(), campaignID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, campaign)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := httputil.ParsePage(r)

	filter, err := parseListFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	items, total, err := h.service.List(ctx, filter, page.Number, page.Limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "campaign list failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if items == nil {
		items = []*models.Campaign{}
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginated(items, page, total))
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	campaignID, err := id.ParseCampaignID(chi.URLParam(r, "campaignID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[updateStatusRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	campaign, err := h.service.UpdateStatus(ctx, campaignID, models.Status(req.Status))
	if err != nil {
		h.logger.WarnContext(ctx, "campaign status update failed",
			"request_id", requestID,
			"campaign_id", campaignID.String(),
			"to", req.Status,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "campaign status updated",
		"request_id", requestID,
		"campaign_id", campaignID.String(),
		"to", req.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, campaign)
}

func (h *Handler) HandleSetEmergency(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	campaignID, err := id.ParseCampaignID(chi.URLParam(r, "campaignID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[setEmergencyRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	campaign, err := h.service.SetEmergency(ctx, campaignID, req.IsEmergency)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, campaign)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	campaignID, err := id.ParseCampaignID(chi.URLParam(r, "campaignID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, campaignID); err != nil {
		h.logger.WarnContext(ctx, "campaign delete failed",
			"request_id", requestID,
			"campaign_id", campaignID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "campaign deleted",
		"request_id", requestID,
		"campaign_id", campaignID.String(),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	campaignID, err := id.ParseCampaignID(chi.URLParam(r, "campaignID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	available, err := h.service.AvailableBalance(r.Context(), campaignID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, balanceResponse{
		CampaignID:      campaignID.String(),
		AvailableAmount: available,
	})
}

func parseListFilter(r *http.Request) (models.ListFilter, error) {
	var filter models.ListFilter
	query := r.URL.Query()

	if raw := query.Get("status"); raw != "" {
		status := models.Status(raw)
		if !status.Valid() {
			return filter, dErrors.New(dErrors.CodeValidation, "unknown status filter")
		}
		filter.Status = &status
	}
	if raw := query.Get("emergency"); raw != "" {
		flag := raw == "true"
		filter.Emergency = &flag
	}
	filter.Category = query.Get("category")
	return filter, nil
}
