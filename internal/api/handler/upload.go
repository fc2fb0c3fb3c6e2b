package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/staysense/predictor/internal/api/response"
	"github.com/staysense/predictor/internal/blob"
	"github.com/staysense/predictor/internal/predict"
	"github.com/staysense/predictor/internal/tabular"
	"github.com/staysense/predictor/pkg/models"
)

const maxUploadBytes = 32 << 20

// BatchPredictor scores an uploaded table and persists its summary record.
type BatchPredictor interface {
	PredictBatch(table *tabular.Table) (*predict.BatchSummary, error)
	RecordUploadSummary(ctx context.Context, summary *predict.BatchSummary, filename, fileURL string, userID *string) (*models.PredictionRecord, error)
}

// NewUploadHandler returns the handler for POST /upload. requiredColumns is
// the classifier bundle's column list; every uploaded file must carry all of
// them after header normalization.
func NewUploadHandler(svc BatchPredictor, bucket blob.Bucket, requiredColumns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// ParseMultipartForm's argument only bounds in-memory buffering, so
		// the whole request body is capped here; oversize uploads must be
		// rejected, never silently truncated.
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				response.Error(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
					"The uploaded file exceeds the size limit", nil)
				return
			}
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"Expected a multipart form with a file field", nil)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"No file part in the request", nil)
			return
		}
		defer file.Close()

		var userID *string
		if id := r.FormValue("user_id"); id != "" {
			userID = &id
		}

		raw, err := io.ReadAll(file)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"Failed to read the uploaded file", nil)
			return
		}

		table, err := tabular.Parse(header.Filename, bytes.NewReader(raw))
		if err != nil {
			switch {
			case errors.Is(err, tabular.ErrUnsupportedFormat):
				response.Error(w, http.StatusBadRequest, "UNSUPPORTED_FILE_FORMAT",
					"Only .csv, .xls and .xlsx files are supported", nil)
			case errors.Is(err, tabular.ErrEmptyFile):
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"The uploaded file is empty", nil)
			default:
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"The uploaded file could not be parsed", nil)
			}
			return
		}

		if missing := table.MissingColumns(requiredColumns); len(missing) > 0 {
			response.Error(w, http.StatusBadRequest, "MISSING_COLUMNS",
				"The uploaded file is missing required columns",
				map[string]any{"columns": missing})
			return
		}

		if len(table.Rows) == 0 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"The uploaded file has no data rows", nil)
			return
		}

		summary, err := svc.PredictBatch(table)
		if err != nil {
			var oov *predict.UnknownCategoriesError
			if errors.As(err, &oov) {
				response.Error(w, http.StatusBadRequest, "UNKNOWN_CATEGORY",
					"The uploaded file contains unknown category values",
					map[string]any{"values": oov.Values})
				return
			}
			writeEncodingError(w, err)
			return
		}

		fileURL, err := bucket.Upload(r.Context(), "uploaded_files/"+header.Filename,
			header.Header.Get("Content-Type"), raw)
		if err != nil {
			response.Error(w, http.StatusBadGateway, "STORAGE_ERROR",
				"Failed to upload the file to object storage", nil)
			return
		}

		record, err := svc.RecordUploadSummary(r.Context(), summary, header.Filename, fileURL, userID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "STORE_ERROR",
				"Failed to persist the upload summary", nil)
			return
		}

		response.Success(w, "summary", map[string]any{
			"input_source":    record.Source,
			"total_customers": summary.TotalCustomers,
			"churn_count":     summary.ChurnCount,
			"not_churn_count": summary.NotChurnCount(),
			"churn_rate":      formatPercent(float64(summary.ChurnCount) / float64(summary.TotalCustomers)),
			"filename":        header.Filename,
			"file_url":        fileURL,
			"timestamp":       record.CreatedAt.Format(time.RFC3339),
			"month":           record.Month,
		})
	}
}
