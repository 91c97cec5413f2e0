// Package httptransport assembles the HTTP surface: public routes, the
// operator subtree, the payment webhook, and operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	campaignhandler "galang/internal/campaign/handler"
	donationhandler "galang/internal/donation/handler"
	"galang/internal/platform/middleware"
	reporthandler "galang/internal/report/handler"
	verificationhandler "galang/internal/verification/handler"
	withdrawalhandler "galang/internal/withdrawal/handler"
	id "galang/pkg/domain"
)

const requestTimeout = 30 * time.Second

// Handlers collects the per-domain handlers the router mounts.
type Handlers struct {
	Campaigns     *campaignhandler.Handler
	Donations     *donationhandler.Handler
	Withdrawals   *withdrawalhandler.Handler
	Verifications *verificationhandler.Handler
	Reports       *reporthandler.Handler
}

// HealthChecker reports readiness of a backing dependency.
type HealthChecker func() error

// NewRouter builds the full route tree. Public reads and the report/donation
// endpoints run with optional authentication; verification submission needs a
// signed-in user; everything under /admin needs the admin role.
func NewRouter(h Handlers, validator middleware.TokenValidator, logger *slog.Logger, health HealthChecker) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if health != nil {
			if err := health(); err != nil {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	// Gateway callbacks authenticate with the shared webhook secret.
	h.Donations.RegisterWebhook(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(validator))
		h.Campaigns.Register(r)
		h.Donations.Register(r)
		h.Reports.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))
		r.Post("/campaigns", h.Campaigns.HandleCreate)
		h.Verifications.Register(r)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))
		r.Use(middleware.RequireRole(id.RoleAdmin))
		h.Campaigns.RegisterAdmin(r)
		h.Withdrawals.RegisterAdmin(r)
		h.Verifications.RegisterAdmin(r)
		h.Reports.RegisterAdmin(r)
	})

	return r
}
