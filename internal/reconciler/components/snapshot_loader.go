package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopkeeper-ledger/internal/domain/customer"
	"github.com/shopkeeper-ledger/internal/domain/transaction"
	"github.com/shopkeeper-ledger/internal/reconciler/service"
)

// SnapshotLoaderImpl implements the SnapshotLoader interface
type SnapshotLoaderImpl struct {
	customerRepo    customer.Repository
	transactionRepo transaction.Repository
	logger          *slog.Logger
}

// NewSnapshotLoader creates a new SnapshotLoaderImpl
func NewSnapshotLoader(customerRepo customer.Repository, transactionRepo transaction.Repository, logger *slog.Logger) service.SnapshotLoader {
	return &SnapshotLoaderImpl{
		customerRepo:    customerRepo,
		transactionRepo: transactionRepo,
		logger:          logger,
	}
}

// LoadSnapshot reads customers and their active transactions through tx.
// With customer ids given, transactions of ids that match no customer are returned too so they surface as orphans.
func (l *SnapshotLoaderImpl) LoadSnapshot(ctx context.Context, tx pgx.Tx, customerIDs []uuid.UUID) (*service.Snapshot, error) {
	customers, err := l.customerRepo.WithTx(tx).List(ctx, customerIDs)
	if err != nil {
		l.logger.Error("Failed to list customers for audit", "customers", len(customerIDs), "error", err)
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	txns, err := l.transactionRepo.WithTx(tx).ListActive(ctx, customerIDs)
	if err != nil {
		l.logger.Error("Failed to list transactions for audit", "customers", len(customerIDs), "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	l.logger.Debug("Audit snapshot loaded", "customers", len(customers), "transactions", len(txns))

	return &service.Snapshot{
		Customers:    customers,
		Transactions: txns,
	}, nil
}
