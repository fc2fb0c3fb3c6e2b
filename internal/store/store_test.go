package store_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/staysense/predictor/internal/store"
	"github.com/staysense/predictor/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// migrationsDir returns the absolute path to the migrations directory.
func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// setupTestDB spins up a Postgres container, runs migrations, and returns a pool.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("staysense_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	err = store.RunMigrations(connStr, migrationsDir())
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return pool
}

func manualRecord(userID *string, isChurn bool, at time.Time) *models.PredictionRecord {
	prob := 0.72
	churnCount := 0
	if isChurn {
		churnCount = 1
	}
	return &models.PredictionRecord{
		ID:             uuid.New(),
		Source:         models.SourceManual,
		UserID:         userID,
		CreatedAt:      at,
		Month:          models.MonthBucket(at),
		Probability:    &prob,
		IsChurn:        &isChurn,
		TotalCustomers: 1,
		ChurnCount:     churnCount,
		CustomerData:   map[string]any{"age": float64(42), "city": "Jakarta"},
	}
}

// --- Prediction Records ---

func TestPredictionRecord_CreateAndList(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	rec := manualRecord(nil, true, now)
	require.NoError(t, s.CreatePredictionRecord(ctx, rec))

	records, err := s.ListPredictionRecords(ctx, store.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, models.SourceManual, got.Source)
	assert.Equal(t, rec.Month, got.Month)
	require.NotNil(t, got.IsChurn)
	assert.True(t, *got.IsChurn)
	assert.Equal(t, 1, got.TotalCustomers)
	assert.Equal(t, 1, got.ChurnCount)
	assert.Equal(t, "Jakarta", got.CustomerData["city"])
	assert.True(t, got.CreatedAt.Equal(now))
}

func TestPredictionRecord_ListNewestFirst(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Microsecond)
	older := manualRecord(nil, false, base.Add(-time.Hour))
	newer := manualRecord(nil, true, base)
	require.NoError(t, s.CreatePredictionRecord(ctx, older))
	require.NoError(t, s.CreatePredictionRecord(ctx, newer))

	records, err := s.ListPredictionRecords(ctx, store.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, newer.ID, records[0].ID)
	assert.Equal(t, older.ID, records[1].ID)
}

func TestPredictionRecord_FilterByUser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	alice := "alice"
	bob := "bob"
	now := time.Now().UTC()
	require.NoError(t, s.CreatePredictionRecord(ctx, manualRecord(&alice, true, now)))
	require.NoError(t, s.CreatePredictionRecord(ctx, manualRecord(&bob, false, now)))
	require.NoError(t, s.CreatePredictionRecord(ctx, manualRecord(nil, false, now)))

	records, err := s.ListPredictionRecords(ctx, store.RecordFilter{UserID: &alice})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].UserID)
	assert.Equal(t, "alice", *records[0].UserID)
}

func TestPredictionRecord_UploadSummary(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	filename := "customers.csv"
	fileURL := "https://storage.example.com/uploaded_files/customers.csv"
	now := time.Now().UTC()
	rec := &models.PredictionRecord{
		ID:             uuid.New(),
		Source:         models.SourceUpload,
		CreatedAt:      now,
		Month:          models.MonthBucket(now),
		TotalCustomers: 120,
		ChurnCount:     34,
		Filename:       &filename,
		FileURL:        &fileURL,
	}
	require.NoError(t, s.CreatePredictionRecord(ctx, rec))

	records, err := s.ListPredictionRecords(ctx, store.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, 120, got.TotalCustomers)
	assert.Equal(t, 34, got.ChurnCount)
	assert.Equal(t, 86, got.NotChurnCount())
	assert.Nil(t, got.IsChurn)
	require.NotNil(t, got.FileURL)
	assert.Equal(t, fileURL, *got.FileURL)
}

// --- Wordcloud Texts ---

func TestWordcloudText_AppendAccumulates(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	require.NoError(t, s.AppendWordcloudText(ctx, "alice", "a", 1024))
	require.NoError(t, s.AppendWordcloudText(ctx, "alice", "b", 1024))

	text, err := s.GetWordcloudText(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "a b", text)
}

func TestWordcloudText_PerUserIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	require.NoError(t, s.AppendWordcloudText(ctx, "alice", "alpha", 1024))
	require.NoError(t, s.AppendWordcloudText(ctx, models.GlobalWordcloudUser, "global", 1024))

	text, err := s.GetWordcloudText(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alpha", text)

	text, err = s.GetWordcloudText(ctx, models.GlobalWordcloudUser)
	require.NoError(t, err)
	assert.Equal(t, "global", text)
}

func TestWordcloudText_CapKeepsRecentTail(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	require.NoError(t, s.AppendWordcloudText(ctx, "alice", "aaaaaaaa", 10))
	require.NoError(t, s.AppendWordcloudText(ctx, "alice", "fresh", 10))

	text, err := s.GetWordcloudText(ctx, "alice")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(text), 10)
	assert.Contains(t, text, "fresh")

	// The cap counts characters, which is what right() trims by.
	require.NoError(t, s.AppendWordcloudText(ctx, "bob", "éééééééé", 10))
	require.NoError(t, s.AppendWordcloudText(ctx, "bob", "café", 10))

	text, err = s.GetWordcloudText(ctx, "bob")
	require.NoError(t, err)
	assert.LessOrEqual(t, utf8.RuneCountInString(text), 10)
	assert.Contains(t, text, "café")
}

func TestWordcloudText_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	_, err := s.GetWordcloudText(context.Background(), "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWordcloudText_ConcurrentAppendsLoseNothing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	done := make(chan error, 2)
	go func() { done <- s.AppendWordcloudText(ctx, "alice", "first", 1024) }()
	go func() { done <- s.AppendWordcloudText(ctx, "alice", "second", 1024) }()
	require.NoError(t, <-done)
	require.NoError(t, <-done)

	text, err := s.GetWordcloudText(ctx, "alice")
	require.NoError(t, err)
	assert.Contains(t, text, "first")
	assert.Contains(t, text, "second")
}
