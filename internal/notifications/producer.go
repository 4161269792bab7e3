package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"busly/internal/shared/config"
	"busly/pkg/logger"
)

type NotificationProducer interface {
	PublishNotification(ctx context.Context, notification *Notification) error
	Close() error
	HealthCheck() error
}

type KafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaProducer(cfg config.KafkaConfig) (*KafkaProducer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Compression = sarama.CompressionSnappy

	// Idempotent writes need a single in-flight request per connection.
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1

	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaProducer{
		producer: producer,
		topic:    cfg.NotificationTopic,
	}, nil
}

func (kp *KafkaProducer) PublishNotification(ctx context.Context, notification *Notification) error {
	payload, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize notification: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: kp.topic,
		Key:   sarama.StringEncoder(notification.GetPartitionKey()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("notification_type"), Value: []byte(notification.Type)},
			{Key: []byte("notification_id"), Value: []byte(notification.ID.String())},
		},
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to publish notification", err, map[string]interface{}{
			"notification_id": notification.ID.String(),
			"type":            string(notification.Type),
		})
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	logger.GetDefault().DebugContext(ctx, "notification published",
		slog.String("notification_id", notification.ID.String()),
		slog.String("type", string(notification.Type)),
		slog.Int64("partition", int64(partition)),
		slog.Int64("offset", offset),
	)
	return nil
}

func (kp *KafkaProducer) Close() error {
	return kp.producer.Close()
}

func (kp *KafkaProducer) HealthCheck() error {
	if kp.producer == nil {
		return fmt.Errorf("kafka producer is not initialized")
	}
	return nil
}

// NoopProducer stands in when Kafka is disabled; notifications are
// dropped after a log line instead of failing the booking flow.
type NoopProducer struct{}

func NewNoopProducer() *NoopProducer {
	return &NoopProducer{}
}

func (np *NoopProducer) PublishNotification(ctx context.Context, notification *Notification) error {
	logger.GetDefault().DebugContext(ctx, "notification dropped, kafka disabled",
		slog.String("notification_id", notification.ID.String()),
		slog.String("type", string(notification.Type)),
	)
	return nil
}

func (np *NoopProducer) Close() error { return nil }

func (np *NoopProducer) HealthCheck() error { return nil }
