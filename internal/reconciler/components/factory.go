package components

import (
	"log/slog"

	"github.com/shopkeeper-ledger/internal/config"
	"github.com/shopkeeper-ledger/internal/domain/customer"
	"github.com/shopkeeper-ledger/internal/domain/outbox"
	"github.com/shopkeeper-ledger/internal/domain/reconciliation"
	"github.com/shopkeeper-ledger/internal/domain/transaction"
	"github.com/shopkeeper-ledger/internal/platform/persistence"
	"github.com/shopkeeper-ledger/internal/reconciler/service"
)

// Repositories groups the stores the audit service works on
type Repositories struct {
	Customers    customer.Repository
	Transactions transaction.Repository
	Outbox       outbox.Repository
	Reports      reconciliation.ReportRepository
}

// CreateAuditService creates a new AuditServiceImpl with all its dependencies.
func CreateAuditService(
	db persistence.Transactor,
	repos Repositories,
	eventPublisher service.EventPublisher,
	logger *slog.Logger,
	cfg *config.Config,
) *service.AuditServiceImpl {
	return service.NewAuditService(
		db,
		NewSnapshotLoader(repos.Customers, repos.Transactions, logger),
		NewBalanceRepairer(repos.Customers, logger),
		NewOutboxManager(repos.Outbox, logger),
		repos.Reports,
		eventPublisher,
		cfg.Reconciliation.OverpaymentPolicy,
		logger,
	)
}

// CreateRequestProcessor wraps the audit service in a worker pool sized from the configuration
func CreateRequestProcessor(auditService *service.AuditServiceImpl, logger *slog.Logger, cfg *config.Config) service.RequestProcessor {
	workerPool, err := service.NewWorkerPoolRequestProcessor(
		auditService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool processor, falling back to base service", "error", err)
		return auditService
	}

	logger.Info("Created worker pool request processor", "pool_size", cfg.WorkerPool.Size)
	return workerPool
}
