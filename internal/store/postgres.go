package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/staysense/predictor/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Prediction Records ---

func (s *PostgresStore) CreatePredictionRecord(ctx context.Context, record *models.PredictionRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO prediction_records
		   (id, source, user_id, created_at, month, probability, is_churn,
		    total_customers, churn_count, customer_data, filename, file_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		record.ID, record.Source, record.UserID, record.CreatedAt, record.Month,
		record.Probability, record.IsChurn, record.TotalCustomers, record.ChurnCount,
		record.CustomerData, record.Filename, record.FileURL)
	if err != nil {
		return fmt.Errorf("create prediction record: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListPredictionRecords(ctx context.Context, filter RecordFilter) ([]*models.PredictionRecord, error) {
	query := `SELECT id, source, user_id, created_at, month, probability, is_churn,
	                 total_customers, churn_count, customer_data, filename, file_url
	          FROM prediction_records`
	args := []any{}
	if filter.UserID != nil {
		query += ` WHERE user_id = $1`
		args = append(args, *filter.UserID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list prediction records: %w", err)
	}
	defer rows.Close()

	var records []*models.PredictionRecord
	for rows.Next() {
		var r models.PredictionRecord
		if err := rows.Scan(&r.ID, &r.Source, &r.UserID, &r.CreatedAt, &r.Month,
			&r.Probability, &r.IsChurn, &r.TotalCustomers, &r.ChurnCount,
			&r.CustomerData, &r.Filename, &r.FileURL); err != nil {
			return nil, fmt.Errorf("scan prediction record: %w", err)
		}
		records = append(records, &r)
	}
	return records, rows.Err()
}

// --- Wordcloud Texts ---

func (s *PostgresStore) AppendWordcloudText(ctx context.Context, userID, text string, maxLen int) error {
	// right() keeps the most recent tail once the cap is reached.
	_, err := s.pool.Exec(ctx,
		`INSERT INTO wordcloud_texts (user_id, text, updated_at)
		 VALUES ($1, right($2, $3), NOW())
		 ON CONFLICT (user_id) DO UPDATE SET
		   text = right(wordcloud_texts.text || ' ' || EXCLUDED.text, $3),
		   updated_at = NOW()`,
		userID, text, maxLen)
	if err != nil {
		return fmt.Errorf("append wordcloud text: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetWordcloudText(ctx context.Context, userID string) (string, error) {
	var text string
	err := s.pool.QueryRow(ctx,
		`SELECT text FROM wordcloud_texts WHERE user_id = $1`, userID,
	).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get wordcloud text: %w", err)
	}
	return text, nil
}
