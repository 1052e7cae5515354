package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopkeeper-ledger/internal/domain/outbox"
	"github.com/shopkeeper-ledger/internal/domain/shared"
	"github.com/shopkeeper-ledger/internal/platform/messaging/producers"
)

// BalancePublisher publishes outbox messages to the balance events topic
type BalancePublisher interface {
	PublishBalanceEvent(ctx context.Context, message *outbox.Message) error
}

// BalancePublisherImpl implements BalancePublisher
type BalancePublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewBalancePublisher creates a new publisher
func NewBalancePublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) BalancePublisher {
	return &BalancePublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishBalanceEvent publishes the stored event keyed by customer and marks the message as processed.
// Events of one customer share a partition and keep their order.
func (p *BalancePublisherImpl) PublishBalanceEvent(ctx context.Context, message *outbox.Message) error {
	event, err := message.GetEvent()
	if err != nil {
		p.logger.Error("Failed to unmarshal balance event from outbox payload",
			"outbox_id", message.ID, "event_id", message.EventID.String(), "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Debug("Publishing balance event", "outbox_id", message.ID, "event_type", message.EventType, "customer_id", message.CustomerID.String())

	if err := p.producer.Publish(ctx, message.CustomerID.String(), message.Payload); err != nil {
		return fmt.Errorf("failed to publish balance event %s: %w", message.EventID.String(), err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "event_id", message.EventID.String(), "error", err,
		)
		return fmt.Errorf("balance event %s published, but failed to mark outbox %d as PROCESSED: %w", message.EventID.String(), message.ID, err)
	}

	logger.Info("Balance event published", "outbox_id", message.ID, "event_type", message.EventType, "customer_id", message.CustomerID.String())
	return nil
}
