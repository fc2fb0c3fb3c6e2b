package handler

import (
	"net/http"

	"github.com/staysense/predictor/internal/api/response"
	"github.com/staysense/predictor/internal/model"
)

// NewClusterChartHandler returns the handler for GET /cluster/chart. The
// clustering artifact is immutable after startup, so the breakdown is
// computed once.
func NewClusterChartHandler(clustering *model.Clustering) http.HandlerFunc {
	summaries := clustering.Summaries()
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, summaries)
	}
}

// NewValidValuesHandler returns the handler for GET /valid-values: the
// accepted labels for every categorical column.
func NewValidValuesHandler(values map[string][]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, values)
	}
}
