// Package predict scores churn predictions with the loaded classifier bundle
// and persists their outcomes.
package predict

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/staysense/predictor/internal/metrics"
	"github.com/staysense/predictor/internal/model"
	"github.com/staysense/predictor/internal/store"
	"github.com/staysense/predictor/internal/tabular"
	"github.com/staysense/predictor/pkg/models"
)

// Service applies the classifier bundle to single records and uploaded
// tables and writes one PredictionRecord per call.
type Service struct {
	bundle    *model.Bundle
	store     store.Store
	threshold float64
}

// NewService creates a prediction service with an explicit decision
// threshold (CHURN_THRESHOLD).
func NewService(bundle *model.Bundle, st store.Store, threshold float64) *Service {
	return &Service{bundle: bundle, store: st, threshold: threshold}
}

// Threshold returns the active churn decision threshold.
func (s *Service) Threshold() float64 {
	return s.threshold
}

// Prediction is the outcome of a single-record prediction.
type Prediction struct {
	IsChurn     bool
	Probability float64
	Record      *models.PredictionRecord
}

// Predict encodes one raw record, scores it, and persists the outcome.
// Scoring has no side effects, so an encoding or scoring failure persists
// nothing; the record write is the single mutation and happens last.
func (s *Service) Predict(ctx context.Context, fields map[string]any, userID *string) (*Prediction, error) {
	vec, err := s.bundle.EncodeRow(fields)
	if err != nil {
		return nil, err
	}

	probability, err := s.bundle.PredictProba(vec)
	if err != nil {
		return nil, fmt.Errorf("score record: %w", err)
	}

	isChurn := probability > s.threshold
	churnCount := 0
	if isChurn {
		churnCount = 1
	}

	now := time.Now().UTC()
	record := &models.PredictionRecord{
		ID:             uuid.New(),
		Source:         models.SourceManual,
		UserID:         userID,
		CreatedAt:      now,
		Month:          models.MonthBucket(now),
		Probability:    &probability,
		IsChurn:        &isChurn,
		TotalCustomers: 1,
		ChurnCount:     churnCount,
		CustomerData:   fields,
	}

	if err := s.store.CreatePredictionRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("persist prediction: %w", err)
	}

	metrics.PredictionsTotal.WithLabelValues(models.SourceManual, outcomeLabel(isChurn)).Inc()

	return &Prediction{
		IsChurn:     isChurn,
		Probability: probability,
		Record:      record,
	}, nil
}

// BatchSummary is the aggregate outcome of scoring an uploaded table.
type BatchSummary struct {
	TotalCustomers int
	ChurnCount     int
}

// NotChurnCount is derived so the invariant churn + not_churn == total holds
// by construction.
func (b BatchSummary) NotChurnCount() int {
	return b.TotalCustomers - b.ChurnCount
}

// UnknownCategoriesError reports every out-of-vocabulary value found across
// an uploaded table, per column, so the caller can fix the whole file in one
// pass instead of one value at a time.
type UnknownCategoriesError struct {
	Values map[string][]string
}

func (e *UnknownCategoriesError) Error() string {
	cols := make([]string, 0, len(e.Values))
	for c := range e.Values {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		parts = append(parts, fmt.Sprintf("%s: %s", c, strings.Join(e.Values[c], ", ")))
	}
	return "unknown category values (" + strings.Join(parts, "; ") + ")"
}

func (e *UnknownCategoriesError) Unwrap() error {
	return model.ErrUnknownCategory
}

// PredictBatch scores every row of a table. It has no side effects: the
// caller decides what to persist and upload after a fully successful pass.
// Every categorical column of every row is checked against its encoder, so
// the out-of-vocabulary report covers the whole file in one pass; any other
// encoding failure is reported with its row number, but only when no
// out-of-vocabulary values were found.
func (s *Service) PredictBatch(table *tabular.Table) (*BatchSummary, error) {
	oov := make(map[string]map[string]bool)

	summary := &BatchSummary{}
	var rowErr error
	for i, row := range table.Rows {
		rowOOV := s.collectRowOOV(row, oov)
		if rowOOV || len(oov) > 0 || rowErr != nil {
			// Already failing; keep scanning remaining rows only to
			// finish the out-of-vocabulary collection.
			continue
		}

		fields := make(map[string]any, len(row))
		for k, v := range row {
			fields[k] = v
		}

		vec, err := s.bundle.EncodeRow(fields)
		if err != nil {
			rowErr = fmt.Errorf("row %d: %w", i+1, err)
			continue
		}

		probability, err := s.bundle.PredictProba(vec)
		if err != nil {
			rowErr = fmt.Errorf("row %d: score: %w", i+1, err)
			continue
		}

		summary.TotalCustomers++
		if probability > s.threshold {
			summary.ChurnCount++
		}
	}

	if len(oov) > 0 {
		values := make(map[string][]string, len(oov))
		for col, set := range oov {
			vals := make([]string, 0, len(set))
			for v := range set {
				vals = append(vals, v)
			}
			sort.Strings(vals)
			values[col] = vals
		}
		return nil, &UnknownCategoriesError{Values: values}
	}
	if rowErr != nil {
		return nil, rowErr
	}

	return summary, nil
}

// collectRowOOV checks every categorical value of one row against its
// encoder, recording each miss, so a row with several bad columns reports
// all of them rather than the first in column order.
func (s *Service) collectRowOOV(row map[string]string, oov map[string]map[string]bool) bool {
	found := false
	for _, col := range s.bundle.Columns() {
		enc, categorical := s.bundle.Encoder(col)
		if !categorical {
			continue
		}
		val, present := row[col]
		if !present {
			continue
		}
		if _, known := enc.Encode(val); !known {
			if oov[col] == nil {
				oov[col] = make(map[string]bool)
			}
			oov[col][val] = true
			found = true
		}
	}
	return found
}

// RecordUploadSummary persists the aggregate record for a scored upload.
func (s *Service) RecordUploadSummary(ctx context.Context, summary *BatchSummary, filename, fileURL string, userID *string) (*models.PredictionRecord, error) {
	now := time.Now().UTC()
	record := &models.PredictionRecord{
		ID:             uuid.New(),
		Source:         models.SourceUpload,
		UserID:         userID,
		CreatedAt:      now,
		Month:          models.MonthBucket(now),
		TotalCustomers: summary.TotalCustomers,
		ChurnCount:     summary.ChurnCount,
		Filename:       &filename,
		FileURL:        &fileURL,
	}

	if err := s.store.CreatePredictionRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("persist upload summary: %w", err)
	}

	metrics.UploadRowsTotal.Add(float64(summary.TotalCustomers))
	metrics.PredictionsTotal.WithLabelValues(models.SourceUpload, "churn").Add(float64(summary.ChurnCount))
	metrics.PredictionsTotal.WithLabelValues(models.SourceUpload, "not_churn").Add(float64(summary.NotChurnCount()))

	return record, nil
}

func outcomeLabel(isChurn bool) string {
	if isChurn {
		return "churn"
	}
	return "not_churn"
}
