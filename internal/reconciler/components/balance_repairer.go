package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopkeeper-ledger/internal/domain/customer"
	"github.com/shopkeeper-ledger/internal/reconciler/service"
)

type BalanceRepairerImpl struct {
	customerRepo customer.Repository
	logger       *slog.Logger
}

func NewBalanceRepairer(customerRepo customer.Repository, logger *slog.Logger) service.BalanceRepairer {
	return &BalanceRepairerImpl{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// ApplyRepairs writes every repair and fails with ErrStaleBalances unless all of them matched
func (r *BalanceRepairerImpl) ApplyRepairs(ctx context.Context, tx pgx.Tx, repairs []customer.BalanceRepair) (int64, error) {
	applied, err := r.customerRepo.WithTx(tx).ApplyBalanceRepairs(ctx, repairs)
	if err != nil {
		r.logger.Error("Failed to apply balance repairs", "repairs", len(repairs), "error", err)
		return 0, fmt.Errorf("failed to apply balance repairs: %w", err)
	}

	if applied != int64(len(repairs)) {
		r.logger.Warn("Customer balances changed since the audit",
			"expected", len(repairs),
			"matched", applied,
		)
		return applied, customer.ErrStaleBalances{Expected: len(repairs), Applied: applied}
	}

	r.logger.Info("Balance repairs written", "repairs", applied)
	return applied, nil
}
