package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staysense/predictor/internal/api"
)

func marker(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Handler", name)
		w.WriteHeader(http.StatusOK)
	}
}

func fullDeps() api.Dependencies {
	return api.Dependencies{
		RootHandler:           marker("root"),
		HealthHandler:         marker("health"),
		PredictHandler:        marker("predict"),
		ValidValuesHandler:    marker("valid-values"),
		UploadHandler:         marker("upload"),
		HistoryHandler:        marker("history"),
		DashboardChartHandler: marker("dashboard-chart"),
		DashboardInfosHandler: marker("dashboard-informations"),
		WordcloudHandler:      marker("wordcloud"),
		ClusterChartHandler:   marker("cluster-chart"),
		UserDataHandler:       marker("user-data"),
	}
}

func TestRouterDispatch(t *testing.T) {
	router := api.NewRouter(fullDeps())

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/", "root"},
		{http.MethodGet, "/health", "health"},
		{http.MethodPost, "/predict", "predict"},
		{http.MethodGet, "/valid-values", "valid-values"},
		{http.MethodPost, "/upload", "upload"},
		{http.MethodGet, "/history", "history"},
		{http.MethodGet, "/dashboard/chart", "dashboard-chart"},
		{http.MethodGet, "/dashboard/informations", "dashboard-informations"},
		{http.MethodPost, "/wordcloud", "wordcloud"},
		{http.MethodGet, "/cluster/chart", "cluster-chart"},
		{http.MethodGet, "/user/data", "user-data"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("X-Handler"))
		})
	}
}

func TestRouterMethodNotAllowed(t *testing.T) {
	router := api.NewRouter(fullDeps())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/predict", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouterNilHandlerIs501(t *testing.T) {
	router := api.NewRouter(api.Dependencies{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/predict", nil))

	require.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_IMPLEMENTED")
}

func TestRouterServesMetrics(t *testing.T) {
	router := api.NewRouter(fullDeps())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "go_goroutines") ||
		strings.Contains(rec.Body.String(), "# HELP"))
}
