// Package api wires the HTTP surface together.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/staysense/predictor/internal/api/middleware"
	"github.com/staysense/predictor/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit

	RootHandler            http.HandlerFunc
	HealthHandler          http.HandlerFunc
	PredictHandler         http.HandlerFunc
	ValidValuesHandler     http.HandlerFunc
	UploadHandler          http.HandlerFunc
	HistoryHandler         http.HandlerFunc
	DashboardChartHandler  http.HandlerFunc
	DashboardInfosHandler  http.HandlerFunc
	WordcloudHandler       http.HandlerFunc
	ClusterChartHandler    http.HandlerFunc
	UserDataHandler        http.HandlerFunc
}

// NewRouter builds the Chi router with the middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(mw.UserID)

	// Liveness and observability stay outside the rate limiter.
	r.Get("/", orNotImplemented(deps.RootHandler))
	r.Get("/health", orNotImplemented(deps.HealthHandler))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		r.Post("/predict", orNotImplemented(deps.PredictHandler))
		r.Get("/valid-values", orNotImplemented(deps.ValidValuesHandler))
		r.Post("/upload", orNotImplemented(deps.UploadHandler))

		r.Get("/history", orNotImplemented(deps.HistoryHandler))
		r.Get("/dashboard/chart", orNotImplemented(deps.DashboardChartHandler))
		r.Get("/dashboard/informations", orNotImplemented(deps.DashboardInfosHandler))

		r.Post("/wordcloud", orNotImplemented(deps.WordcloudHandler))
		r.Get("/cluster/chart", orNotImplemented(deps.ClusterChartHandler))
		r.Get("/user/data", orNotImplemented(deps.UserDataHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
