package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"spendlens/internal/analysis"
	"spendlens/internal/domain"
	"spendlens/internal/ingest"
	"spendlens/internal/lifecycle"
	"spendlens/internal/port"
	"spendlens/internal/prompt"
)

// AnalysisConfig holds pipeline settings for the analysis service.
type AnalysisConfig struct {
	TextThinkingBudget   int
	BinaryThinkingBudget int
	MaxDocumentBytes     int64
}

// AnalysisService defines the document-to-insights pipeline contract.
type AnalysisService interface {
	// Submit starts a run and returns its token without waiting for the result.
	Submit(ctx context.Context, doc domain.InputDocument) (uint64, error)
	// Analyze runs the pipeline to completion.
	Analyze(ctx context.Context, doc domain.InputDocument) (*domain.FinancialAnalysis, error)
	// AnalyzeObject submits a document stored in object storage.
	AnalyzeObject(ctx context.Context, bucket, key string) (uint64, error)
	State() lifecycle.Snapshot
	Ready() bool
	// Wait blocks until all submitted runs have finished or ctx is done.
	Wait(ctx context.Context) error
}

type analysisService struct {
	adapter   *ingest.Adapter
	client    port.InferenceClient
	validator *analysis.Validator
	tracker   *lifecycle.Tracker
	objects   port.ObjectSource
	cfg       AnalysisConfig
	log       *zap.Logger
	wg        sync.WaitGroup
}

// NewAnalysisService creates a new AnalysisService implementation. objects
// may be nil when object storage is not configured; a nil client leaves the
// service unready and fails every run with a configuration error.
func NewAnalysisService(
	adapter *ingest.Adapter,
	client port.InferenceClient,
	validator *analysis.Validator,
	tracker *lifecycle.Tracker,
	objects port.ObjectSource,
	cfg AnalysisConfig,
	log *zap.Logger,
) AnalysisService {
	if log == nil {
		log = zap.NewNop()
	}
	return &analysisService{
		adapter:   adapter,
		client:    client,
		validator: validator,
		tracker:   tracker,
		objects:   objects,
		cfg:       cfg,
		log:       log,
	}
}

var errNoProvider = errors.New("no inference provider configured")

// MediaTypeForName resolves the declared media type of a file from its
// extension, rejecting extensions that are not accepted.
func MediaTypeForName(name string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	mediaType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return "", domain.ErrUnsupportedFileType
	}
	return mediaType, nil
}

func (s *analysisService) Submit(ctx context.Context, doc domain.InputDocument) (uint64, error) {
	// The run outlives the request that submitted it.
	run := s.tracker.Begin(context.WithoutCancel(ctx))

	// The caller may close the body once Submit returns.
	if doc.Body != nil {
		data, err := io.ReadAll(doc.Body)
		if err != nil {
			s.finish(run.Token, doc, nil, domain.NewIngestionError(domain.IngestionUnreadable, err), time.Now())
			return run.Token, nil
		}
		doc.Body = bytes.NewReader(data)
	}

	s.log.Info("analysisService.Submit: run started",
		zap.Uint64("token", run.Token), zap.String("document", doc.Name), zap.String("media_type", doc.MediaType))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		start := time.Now()
		result, err := s.execute(run.Context(), doc)
		s.finish(run.Token, doc, result, err, start)
	}()
	return run.Token, nil
}

func (s *analysisService) Analyze(ctx context.Context, doc domain.InputDocument) (*domain.FinancialAnalysis, error) {
	run := s.tracker.Begin(ctx)
	start := time.Now()
	result, err := s.execute(run.Context(), doc)
	s.finish(run.Token, doc, result, err, start)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *analysisService) AnalyzeObject(ctx context.Context, bucket, key string) (uint64, error) {
	if s.objects == nil {
		return 0, domain.ErrStorageUnavailable
	}
	if _, err := MediaTypeForName(key); err != nil {
		return 0, err
	}

	obj, err := s.objects.Open(ctx, bucket, key)
	if err != nil {
		s.log.Warn("analysisService.AnalyzeObject: open failed",
			zap.String("bucket", bucket), zap.String("key", key), zap.Error(err))
		return 0, err
	}
	defer func() { _ = obj.Body.Close() }()

	if s.cfg.MaxDocumentBytes > 0 && obj.Size > s.cfg.MaxDocumentBytes {
		return 0, domain.ErrFileTooLarge
	}

	mediaType := obj.ContentType
	if mediaType == "" || mediaType == "application/octet-stream" || mediaType == "binary/octet-stream" {
		mediaType, _ = MediaTypeForName(key)
	}

	return s.Submit(ctx, domain.InputDocument{
		Name:      filepath.Base(key),
		MediaType: mediaType,
		Body:      obj.Body,
	})
}

func (s *analysisService) State() lifecycle.Snapshot {
	return s.tracker.Snapshot()
}

func (s *analysisService) Ready() bool {
	return s.client != nil
}

func (s *analysisService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.log.Warn("analysisService.Wait: runs still in flight", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

// execute runs ingestion, inference and validation in order, stopping at the
// first failing stage.
func (s *analysisService) execute(ctx context.Context, doc domain.InputDocument) (*domain.FinancialAnalysis, error) {
	payload, err := s.adapter.Ingest(ctx, doc)
	if err != nil {
		return nil, err
	}

	if s.client == nil {
		return nil, domain.NewInferenceError("none", domain.InferenceConfiguration, errNoProvider)
	}

	req := prompt.Request(payload, s.cfg.TextThinkingBudget, s.cfg.BinaryThinkingBudget)
	resp, err := s.client.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return nil, domain.NewInferenceError(resp.Provider, domain.InferenceEmptyResponse, nil)
	}

	result, err := s.validator.Validate(resp.Text)
	if err != nil {
		return nil, fmt.Errorf("validating %s response: %w", resp.Provider, err)
	}
	return result, nil
}

// finish applies a run's outcome to the tracker and logs it.
func (s *analysisService) finish(token uint64, doc domain.InputDocument, result *domain.FinancialAnalysis, err error, start time.Time) {
	fields := []zap.Field{
		zap.Uint64("token", token),
		zap.String("document", doc.Name),
		zap.Duration("elapsed", time.Since(start)),
	}

	if err != nil {
		applied := s.tracker.Fail(token, err)
		fields = append(fields, zap.String("error_kind", domain.ErrorKind(err)), zap.Error(err), zap.Bool("applied", applied))
		s.log.Warn("analysisService: run failed", fields...)
		return
	}

	applied := s.tracker.Complete(token, result)
	fields = append(fields,
		zap.Int("suggestions", len(result.Suggestions)),
		zap.Int("categories", len(result.Charts.CategoryDistribution)),
		zap.Bool("applied", applied))
	s.log.Info("analysisService: run succeeded", fields...)
}
