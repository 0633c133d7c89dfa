package factory

import (
	"fmt"

	"go-plant-inspector/internal/analyzer"
	"go-plant-inspector/internal/config"
	"go-plant-inspector/internal/repository"
	"go-plant-inspector/internal/storage"
)

// StorageType represents different kinds of photo sources
type StorageType string

const (
	// HTTPStorage fetches http and https references
	HTTPStorage StorageType = "http"
	// AzureStorage fetches azblob references
	AzureStorage StorageType = "azure"
	// LocalStorage fetches file references below a root directory
	LocalStorage StorageType = "local"
)

// Schemes returns the reference schemes a storage type serves
func (s StorageType) Schemes() []string {
	switch s {
	case HTTPStorage:
		return []string{"http", "https"}
	case AzureStorage:
		return []string{"azblob"}
	case LocalStorage:
		return []string{"file"}
	default:
		return nil
	}
}

// AnalyzerFactory creates plant analyzers
type AnalyzerFactory interface {
	CreateAnalyzer() (analyzer.PlantAnalyzer, error)
}

// StorageFactory creates photo sources
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
}

// analyzerFactory implements AnalyzerFactory
type analyzerFactory struct{}

// NewAnalyzerFactory creates a new analyzer factory
func NewAnalyzerFactory() AnalyzerFactory {
	return &analyzerFactory{}
}

// CreateAnalyzer creates the pixel health analyzer
func (f *analyzerFactory) CreateAnalyzer() (analyzer.PlantAnalyzer, error) {
	return analyzer.NewPlantAnalyzer()
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a storage factory configured from cfg
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a fetcher for the specified source type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		httpCfg := storage.DefaultHTTPFetcherConfig()
		httpCfg.Timeout = f.cfg.ImageFetchTimeout
		httpCfg.MaxBytes = f.cfg.MaxImageBytes
		httpCfg.InsecureSkipVerify = f.cfg.TLSInsecureSkipVerify
		return storage.NewHTTPImageFetcher(httpCfg), nil
	case AzureStorage:
		if !f.cfg.AzureEnabled() {
			return nil, fmt.Errorf("azure storage requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
		return storage.NewAzureBlobFetcher(f.cfg.AzureAccountName, f.cfg.AzureAccountKey, f.cfg.MaxImageBytes)
	case LocalStorage:
		return storage.NewFileImageFetcher(f.cfg.LocalImageRoot, f.cfg.MaxImageBytes)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	AnalyzerFactory AnalyzerFactory
	StorageFactory  StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		AnalyzerFactory: NewAnalyzerFactory(),
		StorageFactory:  NewStorageFactory(cfg),
	}
}

// BuildRepository registers every source the configuration enables. HTTP
// is always available; azure and local sources are added when configured.
func (cf *ComponentFactory) BuildRepository(cfg *config.Config) (*repository.SourceRepository, error) {
	repo := repository.NewSourceRepository()

	types := []StorageType{HTTPStorage}
	if cfg.AzureEnabled() {
		types = append(types, AzureStorage)
	}
	if cfg.LocalImageRoot != "" {
		types = append(types, LocalStorage)
	}

	for _, st := range types {
		fetcher, err := cf.StorageFactory.CreateStorage(st)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s storage: %w", st, err)
		}
		repo.Register(fetcher, st.Schemes()...)
	}
	return repo, nil
}
