package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jastipku/jastipku/internal/auth"
	"github.com/jastipku/jastipku/internal/dashboard"
	"github.com/jastipku/jastipku/internal/jastipers"
	"github.com/jastipku/jastipku/internal/ledger"
	"github.com/jastipku/jastipku/internal/monthly"
	"github.com/jastipku/jastipku/internal/observability"
	"github.com/jastipku/jastipku/internal/orders"
	"github.com/jastipku/jastipku/internal/periods"
	"github.com/jastipku/jastipku/internal/shared"
	"github.com/jastipku/jastipku/internal/trips"
	"github.com/jastipku/jastipku/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	AuthHandler      *auth.Handler
	PeriodsHandler   *periods.Handler
	OrdersHandler    *orders.Handler
	LedgerHandler    *ledger.Handler
	MonthlyHandler   *monthly.Handler
	JastipersHandler *jastipers.Handler
	TripsHandler     *trips.Handler
	DashboardHandler *dashboard.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with jastip defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.AuthHandler != nil {
		params.AuthHandler.MountRoutes(r)
	}
	if params.PeriodsHandler != nil {
		params.PeriodsHandler.MountRoutes(r)
	}
	if params.OrdersHandler != nil {
		params.OrdersHandler.MountRoutes(r)
	}
	if params.LedgerHandler != nil {
		params.LedgerHandler.MountRoutes(r)
	}
	if params.MonthlyHandler != nil {
		params.MonthlyHandler.MountRoutes(r)
	}
	if params.JastipersHandler != nil {
		params.JastipersHandler.MountRoutes(r)
	}
	if params.TripsHandler != nil {
		params.TripsHandler.MountRoutes(r)
	}
	if params.DashboardHandler != nil {
		params.DashboardHandler.MountRoutes(r)
	}
	if params.JobHandler != nil {
		params.JobHandler.MountRoutes(r)
	}

	return r
}
