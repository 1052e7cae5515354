package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopkeeper-ledger/internal/domain/balance"
	"github.com/shopkeeper-ledger/internal/domain/outbox"
	"github.com/shopkeeper-ledger/internal/domain/reconciliation"
	"github.com/shopkeeper-ledger/internal/reconciler/service"
)

type OutboxManagerImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxManager(outboxRepo outbox.Repository, logger *slog.Logger) service.OutboxManager {
	return &OutboxManagerImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// CreateRepairEvents stores one balances.repaired event per repaired customer
func (m *OutboxManagerImpl) CreateRepairEvents(ctx context.Context, tx pgx.Tx, discrepancies []reconciliation.Discrepancy, correlationID string) error {
	logger := m.logger
	if correlationID != "" {
		logger = m.logger.With("correlation_id", correlationID)
	}

	outboxRepoTx := m.outboxRepo.WithTx(tx)

	for _, d := range discrepancies {
		event := outbox.NewBalanceEvent(
			outbox.EventBalancesRepaired,
			d.CustomerID,
			nil,
			balance.Balances{Outstanding: d.ComputedOutstanding, Credit: d.ComputedCredit},
			balance.Effect{
				DebtChange:   d.ComputedOutstanding - d.StoredOutstanding,
				CreditChange: d.ComputedCredit - d.StoredCredit,
			},
			correlationID,
		)

		message, err := outbox.NewMessage(event)
		if err != nil {
			logger.Error("Failed to create outbox message (marshal payload)", "customer_id", d.CustomerID.String(), "error", err)
			return fmt.Errorf("failed to create outbox message payload for customer %s: %w", d.CustomerID.String(), err)
		}

		if err := outboxRepoTx.Create(ctx, message); err != nil {
			logger.Error("Failed to create outbox message", "customer_id", d.CustomerID.String(), "error", err)
			return fmt.Errorf("failed to create outbox message for customer %s: %w", d.CustomerID.String(), err)
		}
	}

	logger.Info("Repair events queued", "events", len(discrepancies))
	return nil
}
