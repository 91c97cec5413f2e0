// Package handler exposes the report and moderation engine over HTTP. Filing
// is open to any visitor; review is operator-only.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"galang/internal/report/models"
	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
	"galang/pkg/platform/httputil"
	"galang/pkg/requestcontext"
)

// Service defines the moderation operations the handler needs.
type Service interface {
	File(ctx context.Context, campaignID id.CampaignID, req models.FileRequest) (*models.Report, error)
	Review(ctx context.Context, reportID id.ReportID, outcome models.Status, action models.Action, adminNote string, operator id.UserID) (*models.Report, error)
	Get(ctx context.Context, reportID id.ReportID) (*models.Report, error)
	ListPending(ctx context.Context, page, limit int) ([]*models.Report, int, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public filing endpoint.
func (h *Handler) Register(r chi.Router) {
	r.Post("/campaigns/{campaignID}/reports", h.HandleFile)
}

// RegisterAdmin mounts the operator endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/reports", h.HandleListPending)
	r.Get("/reports/{reportID}", h.HandleGet)
	r.Post("/reports/{reportID}/review", h.HandleReview)
}

func (h *Handler) HandleFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	campaignID, err := id.ParseCampaignID(chi.URLParam(r, "campaignID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[fileRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	report, err := h.service.File(ctx, campaignID, models.FileRequest{
		ReporterUserID: requestcontext.UserID(ctx),
		ReporterEmail:  req.ReporterEmail,
		Reason:         models.Reason(req.Reason),
		Description:    req.Description,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "report filing failed",
			"request_id", requestID,
			"campaign_id", campaignID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "report filed",
		"request_id", requestID,
		"campaign_id", campaignID.String(),
		"report_id", report.ID.String(),
		"reason", string(report.Reason),
	)
	httputil.WriteJSON(w, http.StatusCreated, report)
}

func (h *Handler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := httputil.ParsePage(r)

	items, total, err := h.service.ListPending(ctx, page.Number, page.Limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if items == nil {
		items = []*models.Report{}
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginated(items, page, total))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	reportID, err := id.ParseReportID(chi.URLParam(r, "reportID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	report, err := h.service.Get(r.Context(), reportID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	reportID, err := id.ParseReportID(chi.URLParam(r, "reportID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[reviewRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	report, err := h.service.Review(ctx, reportID, models.Status(req.Outcome), models.Action(req.Action), req.AdminNote, requestcontext.UserID(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "report review failed",
			"request_id", requestID,
			"report_id", reportID.String(),
			"action", req.Action,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "report reviewed",
		"request_id", requestID,
		"report_id", reportID.String(),
		"action", string(report.Action),
	)
	httputil.WriteJSON(w, http.StatusOK, report)
}

type fileRequest struct {
	ReporterEmail string `json:"reporter_email"`
	Reason        string `json:"reason"`
	Description   string `json:"description"`
}

func (r *fileRequest) Validate() error {
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	return nil
}

type reviewRequest struct {
	Outcome   string `json:"outcome"`
	Action    string `json:"action"`
	AdminNote string `json:"admin_note"`
}

func (r *reviewRequest) Validate() error {
	if r.Outcome == "" {
		return dErrors.New(dErrors.CodeValidation, "outcome is required")
	}
	if r.Action == "" {
		return dErrors.New(dErrors.CodeValidation, "action is required")
	}
	return nil
}
