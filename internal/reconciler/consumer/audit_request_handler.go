package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopkeeper-ledger/internal/domain/shared"
	"github.com/shopkeeper-ledger/internal/platform/messaging/producers"
	"github.com/shopkeeper-ledger/internal/reconciler/service"
)

// AuditRequestHandler handles audit request messages from Kafka
type AuditRequestHandler struct {
	processor service.RequestProcessor
	producer  producers.DeadLetterPublisher
	logger    *slog.Logger
}

// NewAuditRequestHandler creates a new handler. producer may be nil when no DLQ is configured.
func NewAuditRequestHandler(
	logger *slog.Logger,
	processor service.RequestProcessor,
	producer producers.DeadLetterPublisher,
) *AuditRequestHandler {
	return &AuditRequestHandler{
		processor: processor,
		producer:  producer,
		logger:    logger,
	}
}

// HandleMessage processes Kafka messages. A nil return commits the offset.
func (h *AuditRequestHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.AuditRequest
	if err := json.Unmarshal(value, &request); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal audit request from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				return nil
			}
		}
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	if request.RequestID == uuid.Nil {
		request.RequestID = uuid.New()
	}

	logger := h.logger
	if request.CorrelationID != "" {
		logger = h.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Received audit request",
		"request_id", request.RequestID.String(),
		"customers", len(request.CustomerIDs),
		"repair", request.Repair,
		"dry_run", request.IsDryRun(),
	)

	if err := h.processor.ProcessRequest(ctx, &request); err != nil {
		logger.Error("Failed to process audit request",
			"request_id", request.RequestID.String(),
			"error", err,
		)
		return fmt.Errorf("processing audit request %s failed: %w", request.RequestID.String(), err)
	}

	logger.Info("Audit request processed", "request_id", request.RequestID.String())
	return nil
}
