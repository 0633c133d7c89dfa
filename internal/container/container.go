package container

import (
	"context"
	"fmt"
	"net/http"

	"go-plant-inspector/internal/analyzer"
	"go-plant-inspector/internal/config"
	"go-plant-inspector/internal/factory"
	"go-plant-inspector/internal/logger"
	"go-plant-inspector/internal/observer"
	"go-plant-inspector/internal/repository"
	"go-plant-inspector/internal/service"
	"go-plant-inspector/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config               *config.Config
	plantAnalyzer        analyzer.PlantAnalyzer
	imageRepository      repository.ImageRepository
	events               *observer.EventPublisher
	metrics              *observer.MetricsObserver
	plantAnalysisService service.PlantAnalysisService
	handler              http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	profile := config.DefaultProfile()
	if cfg.ProfilePath != "" {
		loaded, err := config.LoadProfile(cfg.ProfilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load analyzer profile: %w", err)
		}
		profile = *loaded
	}

	// Build dependency graph
	components := factory.NewComponentFactory(cfg)
	plantAnalyzer, err := components.AnalyzerFactory.CreateAnalyzer()
	if err != nil {
		return nil, err
	}

	imageRepository, err := components.BuildRepository(cfg)
	if err != nil {
		return nil, err
	}

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	plantAnalysisService, err := service.NewPlantAnalysisService(
		imageRepository,
		plantAnalyzer,
		events,
		profile,
		service.SettingsFromConfig(cfg),
	)
	if err != nil {
		return nil, err
	}

	handler := transport.NewHandler(plantAnalysisService, metrics, cfg)

	logger.WithField("sources", imageRepository.Schemes()).Info("Image sources registered")

	return &Container{
		config:               cfg,
		plantAnalyzer:        plantAnalyzer,
		imageRepository:      imageRepository,
		events:               events,
		metrics:              metrics,
		plantAnalysisService: plantAnalysisService,
		handler:              handler,
	}, nil
}

// Start runs background work until ctx is cancelled. Currently that is
// the analyzer profile watcher, when a profile file is configured.
func (c *Container) Start(ctx context.Context) {
	if c.config.ProfilePath == "" || !c.config.WatchProfile {
		return
	}
	go func() {
		err := config.WatchProfile(ctx, c.config.ProfilePath, func(p *config.Profile) {
			c.plantAnalysisService.UpdateProfile(*p)
		})
		if err != nil {
			logger.WithError(err).Error("Analyzer profile watcher stopped")
		}
	}()
}

// Close stops the service workers and waits for pending observer events
func (c *Container) Close() error {
	err := c.plantAnalysisService.Close()
	c.events.Wait()
	if cerr := c.plantAnalyzer.Close(); err == nil {
		err = cerr
	}
	return err
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Service returns the plant analysis service
func (c *Container) Service() service.PlantAnalysisService {
	return c.plantAnalysisService
}

// Metrics returns the metrics observer
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}
