package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopkeeper-ledger/internal/domain/customer"
	"github.com/shopkeeper-ledger/internal/domain/outbox"
	"github.com/shopkeeper-ledger/internal/domain/reconciliation"
	"github.com/shopkeeper-ledger/internal/domain/shared"
	"github.com/shopkeeper-ledger/internal/platform/persistence"
)

var (
	// ErrReportAlreadyRepaired is returned when a report's discrepancies were already written back
	ErrReportAlreadyRepaired = errors.New("audit report has already been repaired")

	// errDryRunRollback aborts the repair transaction after the compare-and-set ran
	errDryRunRollback = errors.New("dry run, rolling back repair")
)

type AuditServiceImpl struct {
	db             persistence.Transactor
	loader         SnapshotLoader
	repairer       BalanceRepairer
	outboxManager  OutboxManager
	reportRepo     reconciliation.ReportRepository
	eventPublisher EventPublisher
	policy         shared.OverpaymentPolicy
	logger         *slog.Logger
}

func NewAuditService(
	db persistence.Transactor,
	loader SnapshotLoader,
	repairer BalanceRepairer,
	outboxManager OutboxManager,
	reportRepo reconciliation.ReportRepository,
	eventPublisher EventPublisher,
	policy shared.OverpaymentPolicy,
	logger *slog.Logger,
) *AuditServiceImpl {
	return &AuditServiceImpl{
		db:             db,
		loader:         loader,
		repairer:       repairer,
		outboxManager:  outboxManager,
		reportRepo:     reportRepo,
		eventPublisher: eventPublisher,
		policy:         policy,
		logger:         logger,
	}
}

func (s *AuditServiceImpl) loggerFor(correlationID string) *slog.Logger {
	if correlationID != "" {
		return s.logger.With("correlation_id", correlationID)
	}
	return s.logger
}

// RunAudit reads every customer in scope from one snapshot, archives the report and announces it
func (s *AuditServiceImpl) RunAudit(ctx context.Context, opts AuditOptions) (*reconciliation.Report, error) {
	logger := s.loggerFor(opts.CorrelationID)
	startedAt := time.Now()

	logger.Info("Starting balance audit", "trigger", opts.Trigger, "customers", len(opts.CustomerIDs), "policy", s.policy)

	var snapshot *Snapshot
	err := s.db.ExecuteSnapshotTx(ctx, func(tx pgx.Tx) error {
		var loadErr error
		snapshot, loadErr = s.loader.LoadSnapshot(ctx, tx, opts.CustomerIDs)
		return loadErr
	})
	if err != nil {
		logger.Error("Failed to read audit snapshot", "error", err)
		return nil, fmt.Errorf("failed to read audit snapshot: %w", err)
	}

	result := reconciliation.AuditCustomers(
		snapshot.Customers,
		reconciliation.GroupByCustomer(snapshot.Transactions),
		s.policy,
	)
	report := reconciliation.NewReport(opts.Trigger, opts.CorrelationID, s.policy, opts.CustomerIDs, result, startedAt)

	if err := s.reportRepo.Save(ctx, report); err != nil {
		logger.Error("Failed to archive audit report", "report_id", report.ID.String(), "error", err)
		return nil, fmt.Errorf("failed to archive audit report: %w", err)
	}

	logger.Info("Balance audit completed",
		"report_id", report.ID.String(),
		"customers_checked", result.CustomersChecked,
		"customers_skipped", result.CustomersSkipped,
		"discrepancies", len(result.Discrepancies),
		"orphaned_transactions", len(result.OrphanedTransactions),
		"failures", len(result.Failures),
		"duration", time.Since(startedAt),
	)

	// best effort, the report is already archived
	if err := s.eventPublisher.Publish(ctx, report.ID.String(), outbox.NewAuditCompletedEvent(report)); err != nil {
		logger.Warn("Failed to publish audit completed event", "report_id", report.ID.String(), "error", err)
	}

	return report, nil
}

// RepairCustomers writes the recomputed balances back. Dry runs execute the same statement and roll back.
func (s *AuditServiceImpl) RepairCustomers(ctx context.Context, discrepancies []reconciliation.Discrepancy, opts RepairOptions) (reconciliation.RepairResult, error) {
	logger := s.loggerFor(opts.CorrelationID)

	result := reconciliation.RepairResult{
		DryRun:        opts.DryRun,
		Requested:     len(discrepancies),
		CorrelationID: opts.CorrelationID,
		ExecutedAt:    time.Now(),
	}

	if len(discrepancies) == 0 {
		result.Status = reconciliation.RepairStatusNothingToFix
		return result, nil
	}

	repairs := make([]customer.BalanceRepair, 0, len(discrepancies))
	for _, d := range discrepancies {
		repairs = append(repairs, d.Repair())
	}

	logger.Info("Repairing customer balances", "customers", len(repairs), "dry_run", opts.DryRun)

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		applied, err := s.repairer.ApplyRepairs(ctx, tx, repairs)
		if err != nil {
			return err
		}
		result.Applied = applied

		if opts.DryRun {
			return errDryRunRollback
		}
		return s.outboxManager.CreateRepairEvents(ctx, tx, discrepancies, opts.CorrelationID)
	})

	switch {
	case opts.DryRun && errors.Is(err, errDryRunRollback):
		result.Status = reconciliation.RepairStatusDryRun
		logger.Info("Dry run repair rolled back", "would_apply", result.Applied)
		return result, nil
	case err != nil:
		result.Status = reconciliation.RepairStatusFailed
		result.Applied = 0
		result.Error = err.Error()
		logger.Error("Balance repair failed", "dry_run", opts.DryRun, "error", err)
		return result, err
	}

	result.Status = reconciliation.RepairStatusApplied
	logger.Info("Balance repair committed", "applied", result.Applied)
	return result, nil
}

// RepairReport repairs an archived report once. Dry runs may be repeated.
func (s *AuditServiceImpl) RepairReport(ctx context.Context, reportID uuid.UUID, opts RepairOptions) (reconciliation.RepairResult, error) {
	logger := s.loggerFor(opts.CorrelationID).With("report_id", reportID.String())

	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return reconciliation.RepairResult{}, err
	}
	if report.LastAppliedRepair() != nil {
		logger.Warn("Report already repaired")
		return reconciliation.RepairResult{}, ErrReportAlreadyRepaired
	}

	result, repairErr := s.RepairCustomers(ctx, report.Discrepancies, opts)

	if err := s.reportRepo.AppendRepair(ctx, reportID, result); err != nil {
		// balances.repaired outbox events still record a committed repair
		logger.Error("Failed to record repair on report", "status", result.Status, "error", err)
	}

	return result, repairErr
}

// RecomputeCustomer compares one customer's stored balances with their recomputed history
func (s *AuditServiceImpl) RecomputeCustomer(ctx context.Context, customerID uuid.UUID) (reconciliation.CustomerCheck, error) {
	var snapshot *Snapshot
	err := s.db.ExecuteSnapshotTx(ctx, func(tx pgx.Tx) error {
		var loadErr error
		snapshot, loadErr = s.loader.LoadSnapshot(ctx, tx, []uuid.UUID{customerID})
		return loadErr
	})
	if err != nil {
		return reconciliation.CustomerCheck{}, fmt.Errorf("failed to read customer history: %w", err)
	}
	if len(snapshot.Customers) == 0 {
		return reconciliation.CustomerCheck{}, customer.ErrCustomerNotFound{CustomerID: customerID}
	}

	return reconciliation.CheckCustomer(snapshot.Customers[0], snapshot.Transactions, s.policy)
}

func (s *AuditServiceImpl) GetReport(ctx context.Context, reportID uuid.UUID) (*reconciliation.Report, error) {
	return s.reportRepo.GetByID(ctx, reportID)
}

// ListReports returns a page of reports, newest first, with the total number archived
func (s *AuditServiceImpl) ListReports(ctx context.Context, limit, offset int) ([]*reconciliation.Report, int64, error) {
	reports, err := s.reportRepo.ListRecent(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit reports: %w", err)
	}
	total, err := s.reportRepo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count audit reports: %w", err)
	}
	return reports, total, nil
}

// ProcessRequest runs an audit requested over Kafka and, when asked, repairs what it found.
// Repairs stay dry runs unless the request explicitly turns dry run off.
func (s *AuditServiceImpl) ProcessRequest(ctx context.Context, request *shared.AuditRequest) error {
	logger := s.loggerFor(request.CorrelationID)
	logger.Info("Processing audit request", "request_id", request.RequestID.String(), "repair", request.Repair)

	report, err := s.RunAudit(ctx, AuditOptions{
		CustomerIDs:   request.CustomerIDs,
		Trigger:       shared.AuditTriggerMessage,
		CorrelationID: request.CorrelationID,
	})
	if err != nil {
		return err
	}

	if !request.Repair {
		return nil
	}

	_, err = s.RepairReport(ctx, report.ID, RepairOptions{
		DryRun:        request.IsDryRun(),
		CorrelationID: request.CorrelationID,
	})
	var stale customer.ErrStaleBalances
	if errors.As(err, &stale) {
		// not retried, the next audit reports these customers again
		logger.Warn("Skipping repair of stale audit", "report_id", report.ID.String(), "error", err)
		return nil
	}
	return err
}

var _ AuditService = (*AuditServiceImpl)(nil)
var _ RequestProcessor = (*AuditServiceImpl)(nil)
