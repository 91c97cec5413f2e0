// Package handler exposes the verification registry over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"galang/internal/verification/models"
	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
	"galang/pkg/platform/httputil"
	"galang/pkg/requestcontext"
)

// Service defines the verification operations the handler needs.
type Service interface {
	Submit(ctx context.Context, userID id.UserID, req models.SubmitRequest) (*models.Verification, error)
	Review(ctx context.Context, verificationID id.VerificationID, decision models.Status, rejectionReason string, operator id.UserID) (*models.Verification, error)
	GetForUser(ctx context.Context, userID id.UserID) (*models.Verification, error)
	ListPending(ctx context.Context, page, limit int) ([]*models.Verification, int, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the creator-facing endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verifications", h.HandleSubmit)
	r.Get("/verifications/me", h.HandleGetMine)
}

// RegisterAdmin mounts the operator endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/verifications", h.HandleListPending)
	r.Post("/verifications/{verificationID}/review", h.HandleReview)
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.SubmitRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	verification, err := h.service.Submit(ctx, userID, req)
	if err != nil {
		h.logger.WarnContext(ctx, "verification submit failed",
			"request_id", requestID,
			"user_id", userID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "verification submitted",
		"request_id", requestID,
		"verification_id", verification.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, verification)
}

func (h *Handler) HandleGetMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	verification, err := h.service.GetForUser(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, verification)
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
		items = []*models.Verification{}
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginated(items, page, total))
}

func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	verificationID, err := id.ParseVerificationID(chi.URLParam(r, "verificationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[reviewRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	verification, err := h.service.Review(ctx, verificationID, models.Status(req.Decision), req.RejectionReason, requestcontext.UserID(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "verification review failed",
			"request_id", requestID,
			"verification_id", verificationID.String(),
			"decision", req.Decision,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "verification reviewed",
		"request_id", requestID,
		"verification_id", verificationID.String(),
		"decision", req.Decision,
	)
	httputil.WriteJSON(w, http.StatusOK, verification)
}

type reviewRequest struct {
	Decision        string `json:"decision"`
	RejectionReason string `json:"rejection_reason"`
}

func (r *reviewRequest) Validate() error {
	if r.Decision == "" {
		return dErrors.New(dErrors.CodeValidation, "decision is required")
	}
	return nil
}
