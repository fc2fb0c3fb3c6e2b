// Package handler contains the HTTP handlers. Each handler depends on a
// small interface so tests can swap in mocks.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/staysense/predictor/internal/api/response"
	"github.com/staysense/predictor/internal/model"
	"github.com/staysense/predictor/internal/predict"
)

// Predictor scores a single customer record.
type Predictor interface {
	Predict(ctx context.Context, fields map[string]any, userID *string) (*predict.Prediction, error)
}

// NewPredictHandler returns the handler for POST /predict.
func NewPredictHandler(svc Predictor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()

		var fields map[string]any
		if err := dec.Decode(&fields); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if len(fields) == 0 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Request body is empty", nil)
			return
		}

		var userID *string
		if raw, ok := fields["user_id"]; ok {
			delete(fields, "user_id")
			if s, ok := raw.(string); ok && s != "" {
				userID = &s
			}
		}

		pred, err := svc.Predict(r.Context(), fields, userID)
		if err != nil {
			writeEncodingError(w, err)
			return
		}

		body := map[string]any{"is_churn": pred.IsChurn}
		if pred.IsChurn {
			body["churn_rate"] = formatPercent(pred.Probability)
			body["message"] = fmt.Sprintf("Customer will churn with probability %s", formatPercent(pred.Probability))
			body["solution"] = "Reach out with a retention offer before the next billing cycle."
		} else {
			body["not_churn_rate"] = formatPercent(1 - pred.Probability)
			body["message"] = fmt.Sprintf("Customer will not churn with probability %s", formatPercent(1-pred.Probability))
			body["solution"] = "No action needed. Keep monitoring the satisfaction score."
		}

		response.Success(w, "prediction", body)
	}
}

// writeEncodingError maps encoding failures to stable 400 codes; anything
// else is a persistence failure, since scoring an encoded row cannot fail.
func writeEncodingError(w http.ResponseWriter, err error) {
	var fe *model.FieldError
	if errors.As(err, &fe) {
		switch {
		case errors.Is(err, model.ErrMissingField):
			response.Error(w, http.StatusBadRequest, "MISSING_FIELD",
				fmt.Sprintf("Missing input data: %s", fe.Column),
				map[string]any{"column": fe.Column})
		case errors.Is(err, model.ErrUnknownCategory):
			response.Error(w, http.StatusBadRequest, "UNKNOWN_CATEGORY",
				fmt.Sprintf("Unknown value %q for column %s", fe.Value, fe.Column),
				map[string]any{"column": fe.Column, "value": fe.Value, "accepted": fe.Allowed})
		default:
			response.Error(w, http.StatusBadRequest, "INVALID_VALUE",
				fmt.Sprintf("Value %q for column %s is not numeric", fe.Value, fe.Column),
				map[string]any{"column": fe.Column, "value": fe.Value})
		}
		return
	}

	response.Error(w, http.StatusInternalServerError, "STORE_ERROR",
		"Failed to persist the prediction record", nil)
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}
