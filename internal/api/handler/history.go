package handler

import (
	"context"
	"net/http"

	"github.com/staysense/predictor/internal/api/response"
	"github.com/staysense/predictor/internal/dashboard"
	"github.com/staysense/predictor/internal/store"
	"github.com/staysense/predictor/pkg/models"
)

// RecordLister reads persisted prediction records.
type RecordLister interface {
	ListPredictionRecords(ctx context.Context, filter store.RecordFilter) ([]*models.PredictionRecord, error)
}

// NewHistoryHandler returns the handler for GET /history. Records come back
// newest-first; ?group_by=month buckets them by their stored month.
func NewHistoryHandler(lister RecordLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := listForRequest(lister, r)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "STORE_ERROR",
				"Failed to read prediction history", nil)
			return
		}

		if r.URL.Query().Get("group_by") == "month" {
			grouped, _ := dashboard.GroupByMonth(records)
			response.JSON(w, http.StatusOK, map[string]any{"history": grouped})
			return
		}

		response.JSON(w, http.StatusOK, map[string]any{"history": records})
	}
}

// NewUserDataHandler returns the handler for GET /user/data, which requires
// an explicit user_id.
func NewUserDataHandler(lister RecordLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"user_id query parameter is required", nil)
			return
		}

		records, err := lister.ListPredictionRecords(r.Context(), store.RecordFilter{UserID: &userID})
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "STORE_ERROR",
				"Failed to read prediction history", nil)
			return
		}

		response.JSON(w, http.StatusOK, map[string]any{"history": records})
	}
}

func listForRequest(lister RecordLister, r *http.Request) ([]*models.PredictionRecord, error) {
	var filter store.RecordFilter
	if id := r.URL.Query().Get("user_id"); id != "" {
		filter.UserID = &id
	}
	return lister.ListPredictionRecords(r.Context(), filter)
}
