package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/design-inspector-go/pkg/models"
)

// SourceKind tells where the analyzed image came from
type SourceKind string

const (
	SourceUpload SourceKind = "upload"
	SourceURL    SourceKind = "url"
)

// AnalysisEvent represents an analysis event
type AnalysisEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	RequestID      string                 `json:"request_id,omitempty"`
	Source         string                 `json:"source"`
	SourceKind     SourceKind             `json:"source_kind"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorType      string                 `json:"error_type,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	Report         *models.Report         `json:"report,omitempty"`
}

// EventType represents the type of analysis event
type EventType string

const (
	// AnalysisStarted when analysis begins
	AnalysisStarted EventType = "analysis_started"
	// AnalysisCompleted when analysis finishes successfully
	AnalysisCompleted EventType = "analysis_completed"
	// AnalysisFailed when analysis fails
	AnalysisFailed EventType = "analysis_failed"
	// ImageFetched when a remote image is successfully fetched
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when a remote image fetch fails
	ImageFetchFailed EventType = "image_fetch_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event AnalysisEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event AnalysisEvent)
}

// LoggingObserver logs analysis events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles analysis events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	fields := logrus.Fields{
		"event_type":         event.EventType,
		"source":             event.Source,
		"source_kind":        event.SourceKind,
		"processing_time_ms": event.ProcessingTime.Milliseconds(),
		"success":            event.Success,
	}
	if event.RequestID != "" {
		fields["request_id"] = event.RequestID
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
		fields["error_type"] = event.ErrorType
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case AnalysisStarted:
		entry.Debug("Design analysis started")
	case AnalysisCompleted:
		entry.Info("Design analysis completed")
	case AnalysisFailed:
		entry.Error("Design analysis failed")
	case ImageFetched:
		entry.Debug("Image fetched successfully")
	case ImageFetchFailed:
		entry.Warn("Image fetch failed")
	default:
		entry.Info("Analysis event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsSnapshot is the JSON body served by the metrics endpoint
type MetricsSnapshot struct {
	TotalAnalyses        int64            `json:"total_analyses"`
	SuccessfulAnalyses   int64            `json:"successful_analyses"`
	FailedAnalyses       int64            `json:"failed_analyses"`
	FailuresByType       map[string]int64 `json:"failures_by_type"`
	ImagesFetched        int64            `json:"images_fetched"`
	ImageFetchFailures   int64            `json:"image_fetch_failures"`
	TotalProcessingMs    int64            `json:"total_processing_ms"`
	AvgProcessingMs      float64          `json:"avg_processing_ms"`
	RecommendationsTotal int64            `json:"recommendations_total"`
}

// MetricsObserver collects metrics from analysis events
type MetricsObserver struct {
	mu                   sync.RWMutex
	totalAnalyses        int64
	successfulAnalyses   int64
	failedAnalyses       int64
	failuresByType       map[string]int64
	imagesFetched        int64
	imageFetchFailures   int64
	totalProcessingTime  time.Duration
	recommendationsTotal int64
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		failuresByType: make(map[string]int64),
	}
}

// OnEvent handles analysis events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case AnalysisStarted:
		o.totalAnalyses++
	case AnalysisCompleted:
		o.successfulAnalyses++
		o.totalProcessingTime += event.ProcessingTime
		if event.Report != nil {
			o.recommendationsTotal += int64(len(event.Report.Recommendations))
		}
	case AnalysisFailed:
		o.failedAnalyses++
		errType := event.ErrorType
		if errType == "" {
			errType = "unknown"
		}
		o.failuresByType[errType]++
	case ImageFetched:
		o.imagesFetched++
	case ImageFetchFailed:
		o.imageFetchFailures++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() MetricsSnapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avg := 0.0
	if o.successfulAnalyses > 0 {
		avg = float64(o.totalProcessingTime.Milliseconds()) / float64(o.successfulAnalyses)
	}

	failures := make(map[string]int64, len(o.failuresByType))
	for k, v := range o.failuresByType {
		failures[k] = v
	}

	return MetricsSnapshot{
		TotalAnalyses:        o.totalAnalyses,
		SuccessfulAnalyses:   o.successfulAnalyses,
		FailedAnalyses:       o.failedAnalyses,
		FailuresByType:       failures,
		ImagesFetched:        o.imagesFetched,
		ImageFetchFailures:   o.imageFetchFailures,
		TotalProcessingMs:    o.totalProcessingTime.Milliseconds(),
		AvgProcessingMs:      avg,
		RecommendationsTotal: o.recommendationsTotal,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	pending   sync.WaitGroup
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event.
// Observers run concurrently and outlive the caller's cancellation.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event AnalysisEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	ctx = context.WithoutCancel(ctx)

	for _, observer := range observers {
		p.pending.Add(1)
		go func(obs Observer) {
			defer p.pending.Done()
			defer func() {
				if r := recover(); r != nil {
					// Log panic but don't crash the application
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

// Flush blocks until every in-flight notification has been handled
func (p *EventPublisher) Flush() {
	p.pending.Wait()
}
