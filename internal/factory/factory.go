package factory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anime-shed/design-inspector-go/internal/config"
	"github.com/anime-shed/design-inspector-go/internal/storage"
	"github.com/anime-shed/design-inspector-go/internal/strategy"
)

// ErrStorageNotConfigured is returned for a backend whose credentials are missing
var ErrStorageNotConfigured = errors.New("storage backend not configured")

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
	// S3Storage for S3 and S3 compatible object stores
	S3Storage StorageType = "s3"
)

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
	// CreateSources builds the scheme to fetcher map for every configured backend
	CreateSources() (map[string]storage.ImageFetcher, error)
}

// StrategyFactory creates pixel sampling strategies
type StrategyFactory interface {
	CreateStrategy(mode string) (strategy.SamplingStrategy, error)
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		opts := storage.DefaultHTTPOptions()
		opts.Timeout = f.cfg.ImageFetchTimeout
		opts.MaxBytes = f.cfg.MaxRequestBodySize
		opts.BaseBackoff = time.Second
		return storage.NewHTTPImageFetcher(opts), nil
	case AzureStorage:
		if !f.cfg.Azure.Enabled() {
			return nil, fmt.Errorf("%w: %s", ErrStorageNotConfigured, storageType)
		}
		return storage.NewAzureStorage(f.cfg.Azure.AccountName, f.cfg.Azure.AccountKey, f.cfg.MaxRequestBodySize)
	case S3Storage:
		if !f.cfg.S3.Enabled() {
			return nil, fmt.Errorf("%w: %s", ErrStorageNotConfigured, storageType)
		}
		return storage.NewS3Storage(context.Background(), storage.S3Options{
			Region:          f.cfg.S3.Region,
			Endpoint:        f.cfg.S3.Endpoint,
			AccessKeyID:     f.cfg.S3.AccessKeyID,
			SecretAccessKey: f.cfg.S3.SecretAccessKey,
			UsePathStyle:    f.cfg.S3.UsePathStyle,
			MaxBytes:        f.cfg.MaxRequestBodySize,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// CreateSources wires http, https and, when configured, azblob and s3
func (f *storageFactory) CreateSources() (map[string]storage.ImageFetcher, error) {
	httpFetcher, err := f.CreateStorage(HTTPStorage)
	if err != nil {
		return nil, err
	}
	sources := map[string]storage.ImageFetcher{
		"http":  httpFetcher,
		"https": httpFetcher,
	}

	optional := []struct {
		storageType StorageType
		scheme      string
	}{
		{AzureStorage, storage.BlobScheme},
		{S3Storage, storage.S3Scheme},
	}
	for _, o := range optional {
		fetcher, err := f.CreateStorage(o.storageType)
		switch {
		case err == nil:
			sources[o.scheme] = fetcher
		case errors.Is(err, ErrStorageNotConfigured):
		default:
			return nil, err
		}
	}
	return sources, nil
}

// strategyFactory implements StrategyFactory
type strategyFactory struct {
	fastModeMaxDimension int
}

// NewStrategyFactory creates a new strategy factory
func NewStrategyFactory(fastModeMaxDimension int) StrategyFactory {
	return &strategyFactory{fastModeMaxDimension: fastModeMaxDimension}
}

// CreateStrategy maps an ANALYSIS_MODE value to a sampling strategy
func (f *strategyFactory) CreateStrategy(mode string) (strategy.SamplingStrategy, error) {
	switch mode {
	case config.AnalysisModeFull, "":
		return strategy.NewFullResolutionStrategy(), nil
	case config.AnalysisModeFast:
		if f.fastModeMaxDimension <= 0 {
			return nil, fmt.Errorf("fast mode requires a positive max dimension, got %d", f.fastModeMaxDimension)
		}
		return strategy.NewDownsampledStrategy(f.fastModeMaxDimension), nil
	default:
		return nil, fmt.Errorf("unsupported analysis mode: %s", mode)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	StorageFactory  StorageFactory
	StrategyFactory StrategyFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		StorageFactory:  NewStorageFactory(cfg),
		StrategyFactory: NewStrategyFactory(cfg.FastModeMaxDimension),
	}
}
