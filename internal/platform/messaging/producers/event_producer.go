package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"github.com/shopkeeper-ledger/internal/config"
)

// EventProducer publishes JSON encoded messages to a single Kafka topic
type EventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewAuditRequestProducer creates the producer the API gateway uses to hand audits to the reconciler.
// Writes are asynchronous; the caller only learns about broker failures through the logs.
func NewAuditRequestProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*EventProducer, error) {
	if cfg.AuditRequestTopic == "" {
		return nil, fmt.Errorf("kafka audit request topic is not configured")
	}
	return newEventProducer(ctx, logger, cfg, cfg.AuditRequestTopic, true)
}

// NewBalanceEventProducer creates the producer for balance change and audit completion events.
// Writes are synchronous so the outbox poller only marks rows the broker acknowledged.
func NewBalanceEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*EventProducer, error) {
	if cfg.BalanceEventsTopic == "" {
		return nil, fmt.Errorf("kafka balance events topic is not configured")
	}
	return newEventProducer(ctx, logger, cfg, cfg.BalanceEventsTopic, false)
}

func newEventProducer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig, topic string, async bool) (*EventProducer, error) {
	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for producer on %s: %w", topic, err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, topic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure topic %s exists: %w", topic, err)
	}

	acks := kafka.RequireAll
	if async {
		acks = kafka.RequireOne
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // keeps one customer's events on one partition
		RequiredAcks: acks,
		Async:        async,
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages", "topic", topic, "async", async, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote messages", "topic", topic, "async", async, "count", len(messages))
			}
		},
	}

	return &EventProducer{
		logger: logger,
		writer: writer,
		topic:  topic,
	}, nil
}

// Publish encodes value as JSON and writes it under key
func (p *EventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message value for %s: %w", p.topic, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published message",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

// Topic returns the topic the producer writes to
func (p *EventProducer) Topic() string {
	return p.topic
}

func (p *EventProducer) Close() error {
	p.logger.Info("Closing Kafka message producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
