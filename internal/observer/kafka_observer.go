package observer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// MessageWriter is the subset of *kafka.Writer used by KafkaObserver
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter creates a writer for the analysis event topic
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// KafkaObserver publishes terminal analysis events (completed or failed) as JSON
type KafkaObserver struct {
	writer  MessageWriter
	logger  *logrus.Logger
	timeout time.Duration
}

// NewKafkaObserver creates a new Kafka observer
func NewKafkaObserver(writer MessageWriter, logger *logrus.Logger) *KafkaObserver {
	return &KafkaObserver{
		writer:  writer,
		logger:  logger,
		timeout: 10 * time.Second,
	}
}

// OnEvent writes completed and failed events, keyed by request ID
func (o *KafkaObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	if event.EventType != AnalysisCompleted && event.EventType != AnalysisFailed {
		return
	}

	value, err := json.Marshal(event)
	if err != nil {
		o.logger.WithError(err).Error("Failed to encode analysis event")
		return
	}

	key := event.RequestID
	if key == "" {
		key = "design-inspector"
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  event.Timestamp,
	}
	if err := o.writer.WriteMessages(ctx, msg); err != nil {
		o.logger.WithError(err).
			WithField("event_type", event.EventType).
			Warn("Failed to publish analysis event to Kafka")
	}
}

// GetObserverName returns the observer name
func (o *KafkaObserver) GetObserverName() string {
	return "kafka_observer"
}

// Close flushes and closes the underlying writer
func (o *KafkaObserver) Close() error {
	return o.writer.Close()
}
