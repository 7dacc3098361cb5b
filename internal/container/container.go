package container

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anime-shed/design-inspector-go/internal/analyzer"
	"github.com/anime-shed/design-inspector-go/internal/config"
	"github.com/anime-shed/design-inspector-go/internal/factory"
	"github.com/anime-shed/design-inspector-go/internal/imagestats"
	"github.com/anime-shed/design-inspector-go/internal/logger"
	"github.com/anime-shed/design-inspector-go/internal/observer"
	"github.com/anime-shed/design-inspector-go/internal/repository"
	"github.com/anime-shed/design-inspector-go/internal/service"
	"github.com/anime-shed/design-inspector-go/internal/transport"
	"github.com/anime-shed/design-inspector-go/internal/workerpool"
	"github.com/anime-shed/design-inspector-go/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	imageRepository repository.ImageRepository
	provider        imagestats.Provider
	engine          *analyzer.Engine
	pool            *workerpool.WorkerPool
	events          *observer.EventPublisher
	metrics         *observer.MetricsObserver
	kafka           *observer.KafkaObserver
	analysisService service.DesignAnalysisService
	handler         http.Handler
}

// NewContainer builds the dependency graph for cfg and starts the worker pool
func NewContainer(cfg *config.Config) (*Container, error) {
	components := factory.NewComponentFactory(cfg)

	sources, err := components.StorageFactory.CreateSources()
	if err != nil {
		return nil, fmt.Errorf("failed to create image sources: %w", err)
	}
	sampling, err := components.StrategyFactory.CreateStrategy(cfg.AnalysisMode)
	if err != nil {
		return nil, fmt.Errorf("failed to create sampling strategy: %w", err)
	}

	urlValidator := validation.NewURLValidatorWithOptions(validation.DefaultSchemes, cfg.AllowedURLHosts)
	imageRepository := repository.NewImageRepository(urlValidator, sources)

	provider := imagestats.NewProvider(imagestats.Options{
		AutoOrient: cfg.AutoOrient,
		MaxPixels:  imagestats.DefaultMaxPixels,
		Strategy:   sampling,
	})
	engine := analyzer.NewEngine(analyzer.DefaultOptions())

	pool := workerpool.New(cfg.MaxConcurrentAnalyses)
	pool.Start()

	events := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	var kafkaObserver *observer.KafkaObserver
	if cfg.Kafka.Enabled() {
		kafkaObserver = observer.NewKafkaObserver(observer.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic), logger.Logger)
		events.Subscribe(kafkaObserver)
		logger.WithField("topic", cfg.Kafka.Topic).Info("Publishing analysis events to Kafka")
	}

	analysisService := service.NewDesignAnalysisService(
		imageRepository,
		provider,
		engine,
		validation.NewUploadValidator(cfg.MaxRequestBodySize),
		pool,
		events,
		service.Timeouts{Fetch: cfg.ImageFetchTimeout, Analysis: cfg.AnalysisTimeout},
	)

	return &Container{
		config:          cfg,
		imageRepository: imageRepository,
		provider:        provider,
		engine:          engine,
		pool:            pool,
		events:          events,
		metrics:         metrics,
		kafka:           kafkaObserver,
		analysisService: analysisService,
		handler:         transport.NewHandler(analysisService, metrics, pool, cfg),
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the analysis service
func (c *Container) Service() service.DesignAnalysisService {
	return c.analysisService
}

// Close stops the pool, drains pending events and closes the Kafka writer
func (c *Container) Close() error {
	c.pool.Close()
	c.events.Flush()

	var errs []error
	if c.kafka != nil {
		if err := c.kafka.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close kafka writer: %w", err))
		}
	}
	return errors.Join(errs...)
}
