package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"spendlens/internal/analysis"
	"spendlens/internal/config"
	"spendlens/internal/handler"
	"spendlens/internal/inference/providers"
	"spendlens/internal/ingest"
	"spendlens/internal/lifecycle"
	"spendlens/internal/logger"
	"spendlens/internal/port"
	"spendlens/internal/router"
	"spendlens/internal/service"
	s3storage "spendlens/internal/storage/s3"
)

const shutdownTimeout = 15 * time.Second

// @title Spendlens API
// @version 1.0
// @description Turns financial documents into spending insights, charts and savings suggestions.
// @host localhost:8080
// @BasePath /
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appLogger, err := logger.Init(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	// Initialize inference
	var client port.InferenceClient
	if cfg.Inference.APIKey == "" {
		appLogger.Warn("inference api key not set; analyses will fail until configured",
			zap.String("provider", cfg.Inference.Provider))
	} else {
		client, err = providers.Build(&cfg.Inference, appLogger)
		if err != nil {
			return fmt.Errorf("failed to initialize inference provider: %w", err)
		}
	}

	// Initialize storage
	var objects port.ObjectSource
	if cfg.S3.Endpoint != "" || cfg.S3.AccessKey != "" {
		objects, err = s3storage.NewS3Source(context.Background(), &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 source: %w", err)
		}
	}

	// Initialize pipeline
	adapter := ingest.NewAdapter(&cfg.Ingestion, appLogger)
	validator := analysis.NewValidator(&cfg.Analysis, appLogger)
	tracker := lifecycle.NewTracker(lifecycle.DefaultSteps, cfg.Progress.StepInterval, appLogger)

	maxUploadBytes := cfg.Upload.MaxFileSizeMB << 20
	analysisSvc := service.NewAnalysisService(adapter, client, validator, tracker, objects, service.AnalysisConfig{
		TextThinkingBudget:   cfg.Inference.TextThinkingBudget,
		BinaryThinkingBudget: cfg.Inference.BinaryThinkingBudget,
		MaxDocumentBytes:     maxUploadBytes,
	}, appLogger)

	// Initialize handlers
	analysisH := handler.NewAnalysisHandler(analysisSvc, maxUploadBytes)
	healthH := handler.NewHealthHandler(analysisSvc)

	// Setup router
	r := router.Setup(cfg, appLogger, analysisH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("server starting",
			zap.String("address", cfg.Server.Port),
			zap.String("provider", cfg.Inference.Provider),
			zap.String("environment", cfg.Server.Environment),
			zap.Bool("object_storage", objects != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		appLogger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("server shutdown error", zap.Error(err))
	}
	if err := analysisSvc.Wait(ctx); err != nil {
		appLogger.Warn("abandoning in-flight analyses", zap.Error(err))
	}

	appLogger.Info("server stopped")
	return nil
}
