package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"go-plant-inspector/internal/analyzer"
	"go-plant-inspector/internal/config"
	apperrors "go-plant-inspector/internal/errors"
	"go-plant-inspector/internal/logger"
	"go-plant-inspector/internal/observer"
	"go-plant-inspector/internal/report"
	"go-plant-inspector/internal/repository"
	"go-plant-inspector/internal/storage"
	"go-plant-inspector/internal/strategy"
	"go-plant-inspector/pkg/models"
)

// UploadSource is the source label reported for uploaded photos
const UploadSource = "upload"

// AnalysisRequestOptions are the per-request knobs
type AnalysisRequestOptions struct {
	// Strategy name; empty selects the configured default
	Strategy string

	// IncludeColorProfile adds channel statistics to the report
	IncludeColorProfile bool
}

// PlantAnalysisService turns photo references and uploads into health reports
type PlantAnalysisService interface {
	// AnalyzeSource acquires the photo behind ref and analyzes it
	AnalyzeSource(ctx context.Context, ref string, opts AnalysisRequestOptions) (*models.HealthReport, error)

	// AnalyzeUpload decodes and analyzes a photo sent by the client
	AnalyzeUpload(ctx context.Context, r io.Reader, opts AnalysisRequestOptions) (*models.HealthReport, error)

	// AnalyzeBatch analyzes several references concurrently. Item errors are
	// reported per item; only invalid batches fail as a whole.
	AnalyzeBatch(ctx context.Context, refs []string, opts AnalysisRequestOptions) (*models.BatchAnalysisResponse, error)

	// UpdateProfile swaps the thresholds and sampling defaults
	UpdateProfile(profile config.Profile)

	// ValidateImageURL checks a reference without fetching it
	ValidateImageURL(ref string) error

	// Strategies lists the accepted strategy names
	Strategies() []string

	// Close stops the batch workers
	Close() error
}

// Settings bounds the work a single call may do
type Settings struct {
	AnalysisTimeout time.Duration
	MaxImageBytes   int64
	MaxBatchSize    int
	BatchWorkers    int
	DefaultStrategy string
}

// SettingsFromConfig extracts the service settings from cfg
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		AnalysisTimeout: cfg.AnalysisTimeout,
		MaxImageBytes:   cfg.MaxImageBytes,
		MaxBatchSize:    cfg.MaxBatchSize,
		BatchWorkers:    cfg.BatchWorkers,
		DefaultStrategy: cfg.DefaultStrategy,
	}
}

// plantAnalysisService implements PlantAnalysisService
type plantAnalysisService struct {
	imageRepo  repository.ImageRepository
	analyzer   analyzer.PlantAnalyzer
	strategies *strategy.Registry
	reporter   report.Generator
	events     observer.Subject
	pool       *analyzer.WorkerPool
	settings   Settings

	// Replaced wholesale on profile reload
	baseOptions atomic.Pointer[analyzer.AnalysisOptions]
}

// NewPlantAnalysisService creates the analysis service and starts its
// batch workers. The default strategy must be registered.
func NewPlantAnalysisService(
	imageRepository repository.ImageRepository,
	plantAnalyzer analyzer.PlantAnalyzer,
	events observer.Subject,
	profile config.Profile,
	settings Settings,
) (PlantAnalysisService, error) {
	strategies := strategy.NewRegistry(plantAnalyzer)
	if settings.DefaultStrategy == "" {
		settings.DefaultStrategy = strategy.Reference
	}
	if _, err := strategies.Lookup(settings.DefaultStrategy); err != nil {
		return nil, fmt.Errorf("invalid default strategy: %w", err)
	}
	if settings.MaxBatchSize <= 0 {
		settings.MaxBatchSize = 16
	}

	s := &plantAnalysisService{
		imageRepo:  imageRepository,
		analyzer:   plantAnalyzer,
		strategies: strategies,
		reporter:   report.NewGenerator(),
		events:     events,
		pool:       analyzer.NewWorkerPool(settings.BatchWorkers),
		settings:   settings,
	}
	s.UpdateProfile(profile)
	s.pool.Start()
	return s, nil
}

// UpdateProfile swaps the base options used by every later call
func (s *plantAnalysisService) UpdateProfile(profile config.Profile) {
	opts := strategy.OptionsFromProfile(profile)
	s.baseOptions.Store(&opts)
	logger.WithFields(logrus.Fields{
		"sample_stride": opts.SampleStride,
		"base_mode":     opts.BaseMode,
	}).Info("Analyzer profile applied")
}

// ValidateImageURL validates the image reference
func (s *plantAnalysisService) ValidateImageURL(ref string) error {
	return s.imageRepo.ValidateImageURL(ref)
}

// Strategies lists the registered strategy names
func (s *plantAnalysisService) Strategies() []string {
	return s.strategies.Names()
}

// AnalyzeSource fetches the photo behind ref and builds its report
func (s *plantAnalysisService) AnalyzeSource(ctx context.Context, ref string, opts AnalysisRequestOptions) (*models.HealthReport, error) {
	strat, err := s.resolveStrategy(opts.Strategy)
	if err != nil {
		return nil, err
	}
	if err := s.imageRepo.ValidateImageURL(ref); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.notify(ctx, observer.AnalysisEvent{EventType: observer.AnalysisStarted, Source: ref, Strategy: strat.GetStrategyName()})

	photo, err := s.imageRepo.FetchImage(ctx, ref)
	if err != nil {
		err = timeoutOr(ctx, err)
		s.notify(ctx, failureEvent(observer.ImageFetchFailed, ref, strat, start, err))
		s.notify(ctx, failureEvent(observer.AnalysisFailed, ref, strat, start, err))
		return nil, err
	}
	s.notify(ctx, observer.AnalysisEvent{
		EventType: observer.ImageFetched,
		Source:    ref,
		Success:   true,
		Metadata:  map[string]interface{}{"format": photo.Metadata.Format, "width": photo.Metadata.Width, "height": photo.Metadata.Height},
	})

	return s.analyzePhoto(ctx, photo, ref, strat, opts, start)
}

// AnalyzeUpload decodes the uploaded photo and builds its report
func (s *plantAnalysisService) AnalyzeUpload(ctx context.Context, r io.Reader, opts AnalysisRequestOptions) (*models.HealthReport, error) {
	strat, err := s.resolveStrategy(opts.Strategy)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.notify(ctx, observer.AnalysisEvent{EventType: observer.AnalysisStarted, Source: UploadSource, Strategy: strat.GetStrategyName()})

	photo, err := storage.DecodeImage(r, s.settings.MaxImageBytes)
	if err != nil {
		err = classifyUploadError(err)
		s.notify(ctx, failureEvent(observer.AnalysisFailed, UploadSource, strat, start, err))
		return nil, err
	}

	return s.analyzePhoto(ctx, photo, UploadSource, strat, opts, start)
}

// AnalyzeBatch fans the references out over the worker pool. Items keep
// the request order.
func (s *plantAnalysisService) AnalyzeBatch(ctx context.Context, refs []string, opts AnalysisRequestOptions) (*models.BatchAnalysisResponse, error) {
	if len(refs) == 0 {
		return nil, apperrors.NewValidationError("Batch must contain at least one URL", nil)
	}
	if len(refs) > s.settings.MaxBatchSize {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("Batch contains %d URLs, the limit is %d", len(refs), s.settings.MaxBatchSize), nil)
	}
	if _, err := s.resolveStrategy(opts.Strategy); err != nil {
		return nil, err
	}

	items := make([]models.BatchItem, len(refs))
	var wg sync.WaitGroup

	for i, ref := range refs {
		i, ref := i, ref // per-iteration copies for the closure (go 1.21 loop semantics)
		items[i].URL = ref
		wg.Add(1)
		accepted := s.pool.Submit(func() {
			defer wg.Done()
			rep, err := s.AnalyzeSource(ctx, ref, opts)
			if err != nil {
				items[i].Error = errorDetail(err)
				return
			}
			items[i].Report = rep
		})
		if !accepted {
			wg.Done()
			items[i].Error = errorDetail(apperrors.NewInternalError("Service is shutting down", nil))
		}
	}
	wg.Wait()

	resp := &models.BatchAnalysisResponse{Items: items}
	for _, item := range items {
		if item.Error != nil {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}

	logger.WithFields(logrus.Fields{
		"batch_size": len(refs),
		"succeeded":  resp.Succeeded,
		"failed":     resp.Failed,
	}).Info("Batch analysis finished")

	return resp, nil
}

// Close stops the batch workers
func (s *plantAnalysisService) Close() error {
	s.pool.Close()
	return nil
}

// analyzePhoto runs the strategy and turns the result into a report
func (s *plantAnalysisService) analyzePhoto(
	ctx context.Context,
	photo *storage.Photo,
	source string,
	strat strategy.AnalysisStrategy,
	opts AnalysisRequestOptions,
	start time.Time,
) (*models.HealthReport, error) {
	base := *s.baseOptions.Load()
	if opts.IncludeColorProfile {
		base = base.WithColorProfile()
	}

	type outcome struct {
		result analyzer.AnalysisResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := strat.Analyze(photo.Image, base)
		done <- outcome{result, err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out.err = apperrors.NewTimeoutError("Analysis did not finish in time", ctx.Err())
	}
	if out.err != nil {
		s.notify(ctx, failureEvent(observer.AnalysisFailed, source, strat, start, out.err))
		return nil, out.err
	}

	rep := s.reporter.Generate(out.result.Metrics)
	rep.ColorProfile = out.result.ColorProfile
	rep.Warnings = out.result.Warnings
	rep.Source = source
	rep.Strategy = strat.GetStrategyName()
	rep.Timestamp = out.result.Timestamp.UTC().Format(time.RFC3339)
	rep.ProcessingTimeSec = time.Since(start).Seconds()
	md := photo.Metadata
	rep.ImageMetadata = &md

	s.notify(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		Source:         source,
		Strategy:       rep.Strategy,
		ProcessingTime: time.Since(start),
		Success:        true,
		HealthScore:    rep.HealthScore,
		Status:         string(rep.Status),
	})

	return &rep, nil
}

func (s *plantAnalysisService) resolveStrategy(name string) (strategy.AnalysisStrategy, error) {
	if name == "" {
		name = s.settings.DefaultStrategy
	}
	return s.strategies.Lookup(name)
}

func (s *plantAnalysisService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.settings.AnalysisTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.settings.AnalysisTimeout)
}

func (s *plantAnalysisService) notify(ctx context.Context, event observer.AnalysisEvent) {
	if s.events == nil {
		return
	}
	s.events.NotifyObservers(ctx, event)
}

func failureEvent(t observer.EventType, source string, strat strategy.AnalysisStrategy, start time.Time, err error) observer.AnalysisEvent {
	event := observer.AnalysisEvent{
		EventType:      t,
		Source:         source,
		Strategy:       strat.GetStrategyName(),
		ProcessingTime: time.Since(start),
		ErrorMessage:   err.Error(),
		ErrorType:      string(apperrors.ErrorTypeInternal),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		event.ErrorType = string(appErr.Type)
	}
	return event
}

// timeoutOr reports a fetch cut short by the analysis deadline as a timeout
func timeoutOr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
		return apperrors.NewTimeoutError("Timed out acquiring the photo", err)
	}
	return err
}

// classifyUploadError maps decode failures of client uploads
func classifyUploadError(err error) error {
	switch {
	case errors.Is(err, storage.ErrUnsupportedFormat):
		return apperrors.NewValidationError("Upload must be a JPEG, PNG or GIF photo", err)
	case errors.Is(err, storage.ErrImageTooLarge):
		return apperrors.NewValidationError("Uploaded photo is too large", err)
	case errors.Is(err, storage.ErrDecode):
		return apperrors.NewAnalysisError("Photo could not be decoded", err)
	default:
		return apperrors.NewAnalysisError("Uploaded photo could not be read", err)
	}
}

// errorDetail converts err to the per-item error shape
func errorDetail(err error) *models.ErrorDetail {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return &models.ErrorDetail{Type: string(appErr.Type), Message: appErr.UserMessage()}
	}
	return &models.ErrorDetail{Type: string(apperrors.ErrorTypeInternal), Message: "Internal server error"}
}
