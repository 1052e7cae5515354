package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper-ledger/internal/domain/reconciliation"
	"github.com/shopkeeper-ledger/internal/domain/shared"
	reconciler "github.com/shopkeeper-ledger/internal/reconciler/service"
)

// RequestPublisher sends audit requests to the reconciler
type RequestPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// ReconciliationServiceImpl implements the ReconciliationService interface
type ReconciliationServiceImpl struct {
	auditService reconciler.AuditService
	publisher    RequestPublisher
	logger       *slog.Logger
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(logger *slog.Logger, auditService reconciler.AuditService, publisher RequestPublisher) ReconciliationService {
	return &ReconciliationServiceImpl{
		auditService: auditService,
		publisher:    publisher,
		logger:       logger,
	}
}

func (s *ReconciliationServiceImpl) RunAudit(ctx context.Context, customerIDs []uuid.UUID, correlationID string) (*reconciliation.Report, error) {
	return s.auditService.RunAudit(ctx, reconciler.AuditOptions{
		CustomerIDs:   customerIDs,
		Trigger:       shared.AuditTriggerAPI,
		CorrelationID: correlationID,
	})
}

// RequestAudit fills in the request id and timestamp, then publishes the request keyed by its id
func (s *ReconciliationServiceImpl) RequestAudit(ctx context.Context, request *shared.AuditRequest) error {
	if request.RequestID == uuid.Nil {
		request.RequestID = uuid.New()
	}
	if request.RequestedAt.IsZero() {
		request.RequestedAt = time.Now()
	}

	if err := s.publisher.Publish(ctx, request.RequestID.String(), request); err != nil {
		s.logger.Error("Failed to publish audit request",
			"correlation_id", request.CorrelationID,
			"request_id", request.RequestID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to publish audit request: %w", err)
	}

	s.logger.Info("Audit request published",
		"correlation_id", request.CorrelationID,
		"request_id", request.RequestID.String(),
		"customers", len(request.CustomerIDs),
		"repair", request.Repair,
	)
	return nil
}

func (s *ReconciliationServiceImpl) GetReport(ctx context.Context, id uuid.UUID) (*reconciliation.Report, error) {
	return s.auditService.GetReport(ctx, id)
}

// ListReports pages through archived reports, newest first
func (s *ReconciliationServiceImpl) ListReports(ctx context.Context, page, perPage int) ([]*reconciliation.Report, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	return s.auditService.ListReports(ctx, perPage, (page-1)*perPage)
}

func (s *ReconciliationServiceImpl) RepairReport(ctx context.Context, id uuid.UUID, opts reconciler.RepairOptions) (reconciliation.RepairResult, error) {
	return s.auditService.RepairReport(ctx, id, opts)
}

func (s *ReconciliationServiceImpl) CheckCustomer(ctx context.Context, customerID uuid.UUID) (reconciliation.CustomerCheck, error) {
	return s.auditService.RecomputeCustomer(ctx, customerID)
}
