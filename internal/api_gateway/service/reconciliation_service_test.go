package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopkeeper-ledger/internal/domain/reconciliation"
	"github.com/shopkeeper-ledger/internal/domain/shared"
	reconciler "github.com/shopkeeper-ledger/internal/reconciler/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReconciliationService_RunAudit(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	auditService := new(MockAuditService)
	ids := []uuid.UUID{uuid.New()}
	report := &reconciliation.Report{ID: uuid.New(), Trigger: shared.AuditTriggerAPI}

	auditService.On("RunAudit", ctx, reconciler.AuditOptions{
		CustomerIDs:   ids,
		Trigger:       shared.AuditTriggerAPI,
		CorrelationID: "corr-1",
	}).Return(report, nil).Once()

	svc := NewReconciliationService(logger, auditService, new(MockRequestPublisher))
	got, err := svc.RunAudit(ctx, ids, "corr-1")

	require.NoError(t, err)
	assert.Equal(t, report, got)
	auditService.AssertExpectations(t)
}

func TestReconciliationService_RequestAudit(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	tests := []struct {
		name        string
		publishErr  error
		expectedErr bool
	}{
		{name: "publishes keyed by request id"},
		{name: "publish failure", publishErr: errors.New("broker unavailable"), expectedErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := new(MockRequestPublisher)
			request := &shared.AuditRequest{Repair: true, CorrelationID: "corr-2"}

			publisher.On("Publish", ctx, mock.AnythingOfType("string"), request).
				Run(func(args mock.Arguments) {
					assert.Equal(t, request.RequestID.String(), args.String(1))
				}).
				Return(tt.publishErr).Once()

			svc := NewReconciliationService(logger, new(MockAuditService), publisher)
			err := svc.RequestAudit(ctx, request)

			if tt.expectedErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "broker unavailable")
			} else {
				require.NoError(t, err)
			}
			assert.NotEqual(t, uuid.Nil, request.RequestID)
			assert.False(t, request.RequestedAt.IsZero())
			assert.True(t, request.IsDryRun())
			publisher.AssertExpectations(t)
		})
	}
}

func TestReconciliationService_ListReports(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	tests := []struct {
		name           string
		page, perPage  int
		expectedLimit  int
		expectedOffset int
	}{
		{name: "first page", page: 1, perPage: 10, expectedLimit: 10, expectedOffset: 0},
		{name: "third page", page: 3, perPage: 20, expectedLimit: 20, expectedOffset: 40},
		{name: "invalid paging falls back to defaults", page: 0, perPage: 0, expectedLimit: 10, expectedOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auditService := new(MockAuditService)
			auditService.On("ListReports", ctx, tt.expectedLimit, tt.expectedOffset).
				Return([]*reconciliation.Report{}, int64(0), nil).Once()

			svc := NewReconciliationService(logger, auditService, new(MockRequestPublisher))
			_, _, err := svc.ListReports(ctx, tt.page, tt.perPage)

			require.NoError(t, err)
			auditService.AssertExpectations(t)
		})
	}
}

func TestReconciliationService_RepairAndCheck(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	auditService := new(MockAuditService)
	reportID := uuid.New()
	customerID := uuid.New()
	opts := reconciler.RepairOptions{DryRun: true, CorrelationID: "corr-3"}

	auditService.On("RepairReport", ctx, reportID, opts).
		Return(reconciliation.RepairResult{DryRun: true, Status: reconciliation.RepairStatusDryRun, Requested: 2, Applied: 2}, nil).Once()
	auditService.On("RecomputeCustomer", ctx, customerID).
		Return(reconciliation.CustomerCheck{CustomerID: customerID, Consistent: true}, nil).Once()

	svc := NewReconciliationService(logger, auditService, new(MockRequestPublisher))

	result, err := svc.RepairReport(ctx, reportID, opts)
	require.NoError(t, err)
	assert.Equal(t, reconciliation.RepairStatusDryRun, result.Status)

	check, err := svc.CheckCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, check.Consistent)

	auditService.AssertExpectations(t)
}
