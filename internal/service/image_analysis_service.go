package service

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/anime-shed/design-inspector-go/internal/analyzer"
	apperrors "github.com/anime-shed/design-inspector-go/internal/errors"
	"github.com/anime-shed/design-inspector-go/internal/imagestats"
	"github.com/anime-shed/design-inspector-go/internal/logger"
	"github.com/anime-shed/design-inspector-go/internal/observer"
	"github.com/anime-shed/design-inspector-go/internal/repository"
	"github.com/anime-shed/design-inspector-go/internal/storage"
	"github.com/anime-shed/design-inspector-go/internal/workerpool"
	"github.com/anime-shed/design-inspector-go/pkg/models"
	"github.com/anime-shed/design-inspector-go/pkg/validation"
)

// DesignAnalysisService analyzes uploaded or remote design images
type DesignAnalysisService interface {
	AnalyzeUpload(ctx context.Context, filename string, data []byte, opts analyzer.Options) (*models.Report, error)
	AnalyzeURL(ctx context.Context, imageURL string, opts analyzer.Options) (*models.Report, error)
	ValidateImageURL(imageURL string) error
}

// Timeouts bounds the stages of one analysis
type Timeouts struct {
	Fetch    time.Duration
	Analysis time.Duration
}

// designAnalysisService implements DesignAnalysisService
type designAnalysisService struct {
	imageRepo repository.ImageRepository
	provider  imagestats.Provider
	analyzer  analyzer.DesignAnalyzer
	uploads   *validation.UploadValidator
	pool      *workerpool.WorkerPool
	events    observer.Subject
	timeouts  Timeouts
}

// NewDesignAnalysisService creates a new design analysis service
func NewDesignAnalysisService(
	imageRepository repository.ImageRepository,
	provider imagestats.Provider,
	designAnalyzer analyzer.DesignAnalyzer,
	uploads *validation.UploadValidator,
	pool *workerpool.WorkerPool,
	events observer.Subject,
	timeouts Timeouts,
) DesignAnalysisService {
	return &designAnalysisService{
		imageRepo: imageRepository,
		provider:  provider,
		analyzer:  designAnalyzer,
		uploads:   uploads,
		pool:      pool,
		events:    events,
		timeouts:  timeouts,
	}
}

// AnalyzeUpload analyzes image bytes received from a client
func (s *designAnalysisService) AnalyzeUpload(ctx context.Context, filename string, data []byte, opts analyzer.Options) (*models.Report, error) {
	return s.analyze(ctx, filename, observer.SourceUpload, data, opts)
}

// AnalyzeURL fetches a remote image and analyzes it
func (s *designAnalysisService) AnalyzeURL(ctx context.Context, imageURL string, opts analyzer.Options) (*models.Report, error) {
	if err := s.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}

	start := time.Now()
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeouts.Fetch)
	defer cancel()

	data, err := s.imageRepo.FetchImage(fetchCtx, imageURL)
	if err != nil {
		appErr := classifyFetchError(err)
		s.publish(ctx, observer.AnalysisEvent{
			EventType:      observer.ImageFetchFailed,
			Source:         imageURL,
			SourceKind:     observer.SourceURL,
			ProcessingTime: time.Since(start),
			ErrorType:      string(appErr.Type),
			ErrorMessage:   err.Error(),
		})
		return nil, appErr
	}

	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.ImageFetched,
		Source:         imageURL,
		SourceKind:     observer.SourceURL,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"bytes": len(data)},
	})

	return s.analyze(ctx, imageURL, observer.SourceURL, data, opts)
}

// ValidateImageURL validates the image URL
func (s *designAnalysisService) ValidateImageURL(imageURL string) error {
	err := s.imageRepo.ValidateImageURL(imageURL)
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.NewValidationError("invalid image URL", err)
}

func (s *designAnalysisService) analyze(ctx context.Context, source string, kind observer.SourceKind, data []byte, opts analyzer.Options) (*models.Report, error) {
	start := time.Now()
	s.publish(ctx, observer.AnalysisEvent{
		EventType:  observer.AnalysisStarted,
		Source:     source,
		SourceKind: kind,
	})

	report, meta, err := s.compute(ctx, data, opts)
	if err != nil {
		appErr := classifyAnalysisError(err)
		logger.FromContext(ctx).WithError(err).
			WithField("source", source).
			Debug("Analysis error classified as " + string(appErr.Type))
		s.publish(ctx, observer.AnalysisEvent{
			EventType:      observer.AnalysisFailed,
			Source:         source,
			SourceKind:     kind,
			ProcessingTime: time.Since(start),
			ErrorType:      string(appErr.Type),
			ErrorMessage:   appErr.Error(),
		})
		return nil, appErr
	}

	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		Source:         source,
		SourceKind:     kind,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       meta,
		Report:         report,
	})
	return report, nil
}

func (s *designAnalysisService) compute(ctx context.Context, data []byte, opts analyzer.Options) (*models.Report, map[string]interface{}, error) {
	mimeType, err := s.uploads.ValidateContent(data)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Analysis)
	defer cancel()

	var result *imagestats.Result
	err = s.pool.Run(ctx, func(ctx context.Context) error {
		r, err := s.provider.Compute(ctx, bytes.NewReader(data))
		result = r
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	report, err := s.analyzer.AnalyzeWithOptions(result.Channels, result.Metadata, opts)
	if err != nil {
		return nil, nil, err
	}

	meta := map[string]interface{}{
		"width":           result.Metadata.Width,
		"height":          result.Metadata.Height,
		"format":          result.Metadata.Format,
		"mime_type":       mimeType,
		"strategy":        result.Strategy,
		"locale":          opts.Locale.String(),
		"recommendations": len(report.Recommendations),
	}
	return report, meta, nil
}

func (s *designAnalysisService) publish(ctx context.Context, event observer.AnalysisEvent) {
	if s.events == nil {
		return
	}
	event.RequestID = logger.RequestIDFromContext(ctx)
	event.Timestamp = time.Now()
	s.events.NotifyObservers(ctx, event)
}

// classifyAnalysisError maps decode, engine and scheduling failures onto the error taxonomy
func classifyAnalysisError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("analysis timed out", err)
	case errors.Is(err, context.Canceled):
		return apperrors.NewTimeoutError("analysis cancelled", err)
	case errors.Is(err, analyzer.ErrInvalidInput):
		return apperrors.NewValidationError("invalid image statistics", err).WithDetails(err.Error())
	case errors.Is(err, imagestats.ErrTooManyPixels):
		return apperrors.NewTooLargeError("image dimensions too large", err)
	case errors.Is(err, imagestats.ErrDecode):
		return apperrors.NewProcessingError("failed to decode image", err)
	case errors.Is(err, workerpool.ErrPoolClosed):
		return apperrors.NewInternalError("service is shutting down", err)
	default:
		return apperrors.NewInternalError("analysis failed", err)
	}
}

// classifyFetchError maps remote source failures; anything unrecognized is a network error
func classifyFetchError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("image fetch timed out", err)
	case errors.Is(err, storage.ErrBodyTooLarge):
		return apperrors.NewTooLargeError("remote image too large", err)
	case errors.Is(err, storage.ErrSourceNotFound):
		return apperrors.NewNotFoundError("remote image not found", err)
	case errors.Is(err, repository.ErrUnsupportedSource):
		return apperrors.NewValidationError("unsupported image source", err)
	default:
		return apperrors.NewNetworkError("failed to fetch image", err)
	}
}
