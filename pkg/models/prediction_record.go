// Package models contains shared data models used across the StaySense codebase.
package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SourceManual marks records created by POST /predict.
	SourceManual = "manual"
	// SourceUpload marks summary records created by POST /upload.
	SourceUpload = "upload"
)

// PredictionRecord is one persisted prediction outcome. Single predictions
// and bulk upload summaries share this schema: a manual record has
// TotalCustomers=1 and ChurnCount of 0 or 1, an upload record carries the
// aggregate counts of the whole file. Records are append-only.
type PredictionRecord struct {
	ID             uuid.UUID      `db:"id"              json:"id"`
	Source         string         `db:"source"          json:"input_source"`
	UserID         *string        `db:"user_id"         json:"user_id,omitempty"`
	CreatedAt      time.Time      `db:"created_at"      json:"timestamp"`
	Month          string         `db:"month"           json:"month"`
	Probability    *float64       `db:"probability"     json:"probability,omitempty"`
	IsChurn        *bool          `db:"is_churn"        json:"is_churn,omitempty"`
	TotalCustomers int            `db:"total_customers" json:"total_customers"`
	ChurnCount     int            `db:"churn_count"     json:"churn_count"`
	CustomerData   map[string]any `db:"customer_data"   json:"customer_data,omitempty"`
	Filename       *string        `db:"filename"        json:"filename,omitempty"`
	FileURL        *string        `db:"file_url"        json:"file_url,omitempty"`
}

// NotChurnCount is derived, never stored.
func (r *PredictionRecord) NotChurnCount() int {
	return r.TotalCustomers - r.ChurnCount
}

// MonthBucket derives the "YYYY-MM" aggregation bucket from a timestamp.
// Every record's Month column is written with this exact rule; dashboard
// grouping reuses the stored value rather than recomputing it.
func MonthBucket(t time.Time) string {
	return t.Format("2006-01")
}
