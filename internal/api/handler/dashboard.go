package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/staysense/predictor/internal/api/response"
	"github.com/staysense/predictor/internal/cache"
	"github.com/staysense/predictor/internal/dashboard"
)

const dashboardCacheTTL = 30 * time.Second

type chartResponse struct {
	PieChart pieChart   `json:"pie_chart"`
	BarChart []barPoint `json:"bar_chart"`
}

type pieChart struct {
	Churn    int `json:"churn"`
	NotChurn int `json:"not_churn"`
}

type barPoint struct {
	Month     string  `json:"month"`
	ChurnRate float64 `json:"churn_rate"`
}

// NewDashboardChartHandler returns the handler for GET /dashboard/chart.
// The folded chart is cached in Redis for a short window per user filter;
// cache failures fall through to the store.
func NewDashboardChartHandler(lister RecordLister, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		key := cache.DashboardKey(userID)

		if cached, ok, err := c.Get(r.Context(), key); err == nil && ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}

		records, err := listForRequest(lister, r)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "STORE_ERROR",
				"Failed to read prediction history", nil)
			return
		}

		agg := dashboard.Fold(records)
		body := chartResponse{
			PieChart: pieChart{Churn: agg.ChurnCount, NotChurn: agg.NotChurnCount},
			BarChart: make([]barPoint, 0, len(agg.Months)),
		}
		for _, m := range agg.Months {
			body.BarChart = append(body.BarChart, barPoint{Month: m.Month, ChurnRate: m.ChurnRate})
		}

		if raw, err := json.Marshal(body); err == nil {
			c.Set(r.Context(), key, raw, dashboardCacheTTL)
		}

		response.JSON(w, http.StatusOK, body)
	}
}

// NewDashboardInformationsHandler returns the handler for
// GET /dashboard/informations: the full folded aggregate.
func NewDashboardInformationsHandler(lister RecordLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := listForRequest(lister, r)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "STORE_ERROR",
				"Failed to read prediction history", nil)
			return
		}

		response.JSON(w, http.StatusOK, dashboard.Fold(records))
	}
}
