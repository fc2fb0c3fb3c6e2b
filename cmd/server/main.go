// Package main is the entrypoint for the StaySense churn prediction API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/staysense/predictor/internal/api"
	"github.com/staysense/predictor/internal/api/handler"
	mw "github.com/staysense/predictor/internal/api/middleware"
	"github.com/staysense/predictor/internal/blob"
	"github.com/staysense/predictor/internal/cache"
	"github.com/staysense/predictor/internal/config"
	"github.com/staysense/predictor/internal/model"
	"github.com/staysense/predictor/internal/predict"
	"github.com/staysense/predictor/internal/store"
	"github.com/staysense/predictor/internal/wordcloud"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"env", cfg.Server.Env,
		"model_dir", cfg.Model.Dir,
		"churn_threshold", cfg.Model.ChurnThreshold,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Load the pre-trained artifacts
	artifacts, err := model.LoadArtifacts(cfg.Model.Dir)
	if err != nil {
		return fmt.Errorf("load model artifacts: %w", err)
	}
	slog.Info("model artifacts loaded", "columns", len(artifacts.Bundle.Columns()))

	// 3. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 4. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 5. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 6. Connect object storage
	bucket, err := blob.NewMinioBucket(cfg.Storage)
	if err != nil {
		return fmt.Errorf("create storage client: %w", err)
	}
	if err := bucket.Ready(ctx); err != nil {
		return fmt.Errorf("check storage bucket: %w", err)
	}
	slog.Info("object storage connected", "bucket", cfg.Storage.Bucket)

	// 7. Build services
	pgStore := store.NewPostgresStore(pool)
	predictSvc := predict.NewService(artifacts.Bundle, pgStore, cfg.Model.ChurnThreshold)
	wordcloudSvc, err := wordcloud.NewService(pgStore, bucket, artifacts.WordFreq, cfg.Wordcloud.MaxTextChars)
	if err != nil {
		return fmt.Errorf("create wordcloud service: %w", err)
	}

	// 8. Build router with dependencies
	deps := api.Dependencies{
		RateLimit: mw.NewRateLimit(redisCache, cfg.RateLimit.RequestsPerMinute),

		RootHandler: handler.NewRootHandler(),
		HealthHandler: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"database": pgStore.Ping,
			"cache":    redisCache.Ping,
			"storage":  bucket.Ready,
		}),
		PredictHandler:        handler.NewPredictHandler(predictSvc),
		ValidValuesHandler:    handler.NewValidValuesHandler(artifacts.Bundle.ValidValues()),
		UploadHandler:         handler.NewUploadHandler(predictSvc, bucket, artifacts.Bundle.Columns()),
		HistoryHandler:        handler.NewHistoryHandler(pgStore),
		DashboardChartHandler: handler.NewDashboardChartHandler(pgStore, redisCache),
		DashboardInfosHandler: handler.NewDashboardInformationsHandler(pgStore),
		WordcloudHandler:      handler.NewWordcloudHandler(wordcloudSvc),
		ClusterChartHandler:   handler.NewClusterChartHandler(artifacts.Clustering),
		UserDataHandler:       handler.NewUserDataHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// 9. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
