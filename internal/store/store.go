package store

import (
	"context"
	"errors"

	"github.com/staysense/predictor/pkg/models"
)

var ErrNotFound = errors.New("resource not found")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	// CreatePredictionRecord appends one prediction outcome. Records are
	// never updated or deleted.
	CreatePredictionRecord(ctx context.Context, record *models.PredictionRecord) error
	// ListPredictionRecords returns records newest-first, optionally
	// filtered to one user.
	ListPredictionRecords(ctx context.Context, filter RecordFilter) ([]*models.PredictionRecord, error)

	// AppendWordcloudText atomically appends text to a user's cumulative
	// document, keeping at most maxLen trailing characters. The append is a
	// single statement so concurrent same-user requests serialize at the
	// database instead of losing updates.
	AppendWordcloudText(ctx context.Context, userID, text string, maxLen int) error
	// GetWordcloudText returns the cumulative document, or ErrNotFound when
	// the user has never contributed.
	GetWordcloudText(ctx context.Context, userID string) (string, error)
}

// RecordFilter narrows ListPredictionRecords.
type RecordFilter struct {
	UserID *string
}
