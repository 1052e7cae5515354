// Package scheduler runs report-only balance audits on a fixed interval.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper-ledger/internal/config"
	"github.com/shopkeeper-ledger/internal/domain/reconciliation"
	"github.com/shopkeeper-ledger/internal/domain/shared"
	"github.com/shopkeeper-ledger/internal/reconciler/service"
)

// Auditor is the part of the audit service the scheduler needs
type Auditor interface {
	RunAudit(ctx context.Context, opts service.AuditOptions) (*reconciliation.Report, error)
}

type Scheduler struct {
	auditor  Auditor
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewScheduler(cfg *config.ReconciliationConfig, auditor Auditor, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		auditor:  auditor,
		interval: cfg.AuditInterval,
		timeout:  cfg.AuditTimeout,
		logger:   logger,
	}
}

// Enabled reports whether an audit interval is configured
func (s *Scheduler) Enabled() bool {
	return s.interval > 0
}

// Start runs an audit every interval until ctx is canceled. It returns immediately when disabled.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.Enabled() {
		s.logger.Info("Scheduled audits disabled")
		return
	}

	s.logger.Info("Starting audit scheduler", "interval", s.interval.String(), "timeout", s.timeout.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Audit scheduler stopping due to context cancellation.")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	correlationID := "scheduled-" + uuid.NewString()
	report, err := s.auditor.RunAudit(runCtx, service.AuditOptions{
		Trigger:       shared.AuditTriggerSchedule,
		CorrelationID: correlationID,
	})
	if err != nil {
		s.logger.Error("Scheduled audit failed", "correlation_id", correlationID, "error", err)
		return
	}

	if !report.Consistent() {
		s.logger.Warn("Scheduled audit found inconsistencies",
			"correlation_id", correlationID,
			"report_id", report.ID.String(),
			"discrepancies", len(report.Discrepancies),
			"orphaned_transactions", len(report.OrphanedTransactions),
			"failures", len(report.Failures),
		)
	}
}
