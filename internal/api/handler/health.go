package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/staysense/predictor/internal/api/response"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// NewRootHandler returns the plain-text liveness handler for GET /.
func NewRootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.Text(w, http.StatusOK, "StaySense API is running!")
	}
}

// NewHealthHandler returns the handler for GET /health. Each named check
// runs with a short deadline; any failure degrades the response to 503.
func NewHealthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = "unreachable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		response.JSON(w, status, map[string]any{
			"status": overall,
			"checks": results,
		})
	}
}
