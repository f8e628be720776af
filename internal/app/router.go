package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/primanota-erp/primanota/internal/accounting/chart"
	"github.com/primanota-erp/primanota/internal/accounting/entries"
	"github.com/primanota-erp/primanota/internal/accounting/functions"
	"github.com/primanota-erp/primanota/internal/accounting/openitems"
	"github.com/primanota-erp/primanota/internal/accounting/vat"
	"github.com/primanota-erp/primanota/internal/masterdata/counterparties"
	"github.com/primanota-erp/primanota/internal/observability"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger                *slog.Logger
	Config                *Config
	Pool                  *pgxpool.Pool
	ChartHandler          *chart.Handler
	FunctionsHandler      *functions.Handler
	VatHandler            *vat.Handler
	OpenItemsHandler      *openitems.Handler
	EntriesHandler        *entries.Handler
	CounterpartiesHandler *counterparties.Handler
	Metrics               *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if params.Pool != nil {
			if err := params.Pool.Ping(req.Context()); err != nil {
				http.Error(w, "database unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/accounts", params.ChartHandler.MountRoutes)
		api.Route("/functions", params.FunctionsHandler.MountRoutes)
		api.Route("/vat-rates", params.VatHandler.MountRoutes)
		api.Route("/open-items", params.OpenItemsHandler.MountRoutes)
		api.Route("/entries", params.EntriesHandler.MountRoutes)
		api.Route("/counterparties", params.CounterpartiesHandler.MountRoutes)
	})

	return r
}
