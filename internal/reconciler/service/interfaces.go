package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopkeeper-ledger/internal/domain/customer"
	"github.com/shopkeeper-ledger/internal/domain/reconciliation"
	"github.com/shopkeeper-ledger/internal/domain/shared"
	"github.com/shopkeeper-ledger/internal/domain/transaction"
)

// AuditOptions scopes an audit run
type AuditOptions struct {
	CustomerIDs   []uuid.UUID // empty means every customer
	Trigger       shared.AuditTrigger
	CorrelationID string
}

// RepairOptions controls a repair run. The zero value is not a dry run, so callers
// translating external input must default DryRun to true themselves.
type RepairOptions struct {
	DryRun        bool
	CorrelationID string
}

// AuditService detects and repairs drift between stored and recomputed customer balances
type AuditService interface {
	// RunAudit compares stored balances with the recomputed ones and archives the report.
	// It never changes balances.
	RunAudit(ctx context.Context, opts AuditOptions) (*reconciliation.Report, error)

	// RepairCustomers applies the recomputed balances of every discrepancy in one transaction.
	// The whole repair rolls back when any customer changed since the audit.
	RepairCustomers(ctx context.Context, discrepancies []reconciliation.Discrepancy, opts RepairOptions) (reconciliation.RepairResult, error)

	// RepairReport repairs the discrepancies of an archived report and records the outcome on it
	RepairReport(ctx context.Context, reportID uuid.UUID, opts RepairOptions) (reconciliation.RepairResult, error)

	RecomputeCustomer(ctx context.Context, customerID uuid.UUID) (reconciliation.CustomerCheck, error)
	GetReport(ctx context.Context, reportID uuid.UUID) (*reconciliation.Report, error)
	ListReports(ctx context.Context, limit, offset int) ([]*reconciliation.Report, int64, error)
}

// RequestProcessor handles audit requests received from Kafka
type RequestProcessor interface {
	ProcessRequest(ctx context.Context, request *shared.AuditRequest) error
}

// Snapshot is a consistent read of customers and their active transactions
type Snapshot struct {
	Customers    []*customer.Customer
	Transactions []*transaction.Transaction
}

// SnapshotLoader reads the data an audit works on
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, tx pgx.Tx, customerIDs []uuid.UUID) (*Snapshot, error)
}

// BalanceRepairer writes recomputed balances back to the customers
type BalanceRepairer interface {
	ApplyRepairs(ctx context.Context, tx pgx.Tx, repairs []customer.BalanceRepair) (int64, error)
}

// OutboxManager records balance events for repaired customers
type OutboxManager interface {
	CreateRepairEvents(ctx context.Context, tx pgx.Tx, discrepancies []reconciliation.Discrepancy, correlationID string) error
}

// EventPublisher publishes audit notifications directly to Kafka
type EventPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}
