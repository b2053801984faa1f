package repository

import (
	"context"
	"fmt"

	"FundFlow/internal/domain/models"
	"FundFlow/pkg/config"
	"FundFlow/pkg/kafka"
)

// KafkaSignalPublisher emits triggered composite signals to a Kafka topic,
// keyed by symbol so per-symbol ordering survives partitioning.
type KafkaSignalPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaSignalPublisher(cfg *config.Config) (*KafkaSignalPublisher, error) {
	opts := []kafka.ProducerOption{
		kafka.WithBrokers(cfg.Kafka.Brokers),
		kafka.WithHashByKey(true),
		kafka.WithAsync(cfg.Kafka.Producer.Async),
	}
	// Zero means unset in yaml; keep the producer's all-acks default then.
	if cfg.Kafka.RequiredAcks != 0 {
		opts = append(opts, kafka.WithRequiredAcks(cfg.Kafka.RequiredAcks))
	}
	if cfg.Kafka.Compression != "" {
		opts = append(opts, kafka.WithCompression(cfg.Kafka.Compression))
	}
	if cfg.Kafka.Producer.MaxAttempts > 0 {
		opts = append(opts, kafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts))
	}
	if cfg.Kafka.Producer.BatchSize > 0 {
		opts = append(opts, kafka.WithBatchSize(cfg.Kafka.Producer.BatchSize))
	}
	if cfg.Kafka.Producer.BatchBytes > 0 {
		opts = append(opts, kafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes))
	}
	if cfg.Kafka.Producer.Linger > 0 {
		opts = append(opts, kafka.WithBatchTimeout(cfg.Kafka.Producer.Linger))
	}
	if cfg.Kafka.Producer.WriteTimeout > 0 || cfg.Kafka.Producer.ReadTimeout > 0 {
		opts = append(opts, kafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout))
	}

	producer, err := kafka.NewProducer(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &KafkaSignalPublisher{producer: producer, topic: cfg.Kafka.Topic}, nil
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, sig *models.Composite) error {
	if sig == nil {
		return nil
	}
	return p.producer.Publish(ctx, p.topic, []byte(sig.Symbol), sig)
}

func (p *KafkaSignalPublisher) Close() error {
	return p.producer.Close()
}

// NoopSignalPublisher is used when Kafka is disabled.
type NoopSignalPublisher struct{}

func (NoopSignalPublisher) Publish(context.Context, *models.Composite) error { return nil }
func (NoopSignalPublisher) Close() error                                     { return nil }
