package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopkeeper-ledger/internal/domain/customer"
	"github.com/shopkeeper-ledger/internal/domain/reconciliation"
	"github.com/shopkeeper-ledger/internal/domain/shared"
	reconciler "github.com/shopkeeper-ledger/internal/reconciler/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReconciliationHandler_CreateAudit(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("SynchronousAuditOfEveryCustomer", func(t *testing.T) {
		svc := new(MockReconciliationService)
		router := newTestRouter(t)
		router.POST("/audits", NewReconciliationHandler(logger, svc).CreateAudit)

		report := &reconciliation.Report{ID: uuid.New(), Trigger: shared.AuditTriggerAPI}
		svc.On("RunAudit", mock.Anything, []uuid.UUID{}, mock.Anything).Return(report, nil).Once()

		rr := performJSON(router, http.MethodPost, "/audits", nil)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var response DataResponse[reconciliation.Report]
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Equal(t, report.ID, response.Data.ID)
		svc.AssertExpectations(t)
	})

	t.Run("SynchronousAuditOfSelectedCustomers", func(t *testing.T) {
		svc := new(MockReconciliationService)
		router := newTestRouter(t)
		router.POST("/audits", NewReconciliationHandler(logger, svc).CreateAudit)

		id := uuid.New()
		svc.On("RunAudit", mock.Anything, []uuid.UUID{id}, mock.Anything).Return(&reconciliation.Report{ID: uuid.New()}, nil).Once()

		rr := performJSON(router, http.MethodPost, "/audits", AuditRequest{CustomerIDs: []string{id.String()}})

		assert.Equal(t, http.StatusCreated, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("AsyncAuditIsQueued", func(t *testing.T) {
		svc := new(MockReconciliationService)
		router := newTestRouter(t)
		router.POST("/audits", NewReconciliationHandler(logger, svc).CreateAudit)

		svc.On("RequestAudit", mock.Anything, mock.MatchedBy(func(r *shared.AuditRequest) bool {
			return r.Repair && r.IsDryRun() && r.RequestID != uuid.Nil
		})).Return(nil).Once()

		rr := performJSON(router, http.MethodPost, "/audits?async=true", AuditRequest{Repair: true})

		assert.Equal(t, http.StatusAccepted, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("SynchronousRepairIsRejected", func(t *testing.T) {
		svc := new(MockReconciliationService)
		router := newTestRouter(t)
		router.POST("/audits", NewReconciliationHandler(logger, svc).CreateAudit)

		rr := performJSON(router, http.MethodPost, "/audits", AuditRequest{Repair: true})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("InvalidCustomerID", func(t *testing.T) {
		svc := new(MockReconciliationService)
		router := newTestRouter(t)
		router.POST("/audits", NewReconciliationHandler(logger, svc).CreateAudit)

		rr := performJSON(router, http.MethodPost, "/audits", AuditRequest{CustomerIDs: []string{"nope"}})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertExpectations(t)
	})
}

func TestReconciliationHandler_Repair(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	tests := []struct {
		name           string
		query          string
		expectedDryRun bool
		result         reconciliation.RepairResult
		err            error
		expectedCode   int
		errorCode      string
	}{
		{
			name:           "dry run by default",
			expectedDryRun: true,
			result:         reconciliation.RepairResult{DryRun: true, Status: reconciliation.RepairStatusDryRun, Requested: 1, Applied: 1},
			expectedCode:   http.StatusOK,
		},
		{
			name:           "explicit apply",
			query:          "?dry_run=false",
			expectedDryRun: false,
			result:         reconciliation.RepairResult{Status: reconciliation.RepairStatusApplied, Requested: 1, Applied: 1},
			expectedCode:   http.StatusOK,
		},
		{
			name:           "stale balances",
			query:          "?dry_run=false",
			expectedDryRun: false,
			err:            customer.ErrStaleBalances{Expected: 2, Applied: 1},
			expectedCode:   http.StatusConflict,
			errorCode:      CodeStaleBalances,
		},
		{
			name:           "already repaired",
			query:          "?dry_run=false",
			expectedDryRun: false,
			err:            reconciler.ErrReportAlreadyRepaired,
			expectedCode:   http.StatusConflict,
			errorCode:      CodeConflict,
		},
		{
			name:           "report not found",
			expectedDryRun: true,
			err:            reconciliation.ErrReportNotFound{ReportID: uuid.New()},
			expectedCode:   http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReconciliationService)
			router := newTestRouter(t)
			router.POST("/audits/:id/repair", NewReconciliationHandler(logger, svc).Repair)

			reportID := uuid.New()
			svc.On("RepairReport", mock.Anything, reportID, mock.MatchedBy(func(opts reconciler.RepairOptions) bool {
				return opts.DryRun == tt.expectedDryRun
			})).Return(tt.result, tt.err).Once()

			rr := performJSON(router, http.MethodPost, "/audits/"+reportID.String()+"/repair"+tt.query, nil)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.errorCode != "" {
				var response DataResponse[json.RawMessage]
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
				require.NotNil(t, response.Error)
				assert.Equal(t, tt.errorCode, response.Error.Code)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestReconciliationHandler_GetAndList(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Get", func(t *testing.T) {
		svc := new(MockReconciliationService)
		router := newTestRouter(t)
		router.GET("/audits/:id", NewReconciliationHandler(logger, svc).GetByID)

		report := &reconciliation.Report{ID: uuid.New()}
		report.Discrepancies = []reconciliation.Discrepancy{{CustomerID: uuid.New(), StoredOutstanding: 10, ComputedOutstanding: 0, TransactionCount: 1}}
		svc.On("GetReport", mock.Anything, report.ID).Return(report, nil).Once()

		rr := performJSON(router, http.MethodGet, "/audits/"+report.ID.String(), nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		var response DataResponse[reconciliation.Report]
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		require.Len(t, response.Data.Discrepancies, 1)
		svc.AssertExpectations(t)
	})

	t.Run("List", func(t *testing.T) {
		svc := new(MockReconciliationService)
		router := newTestRouter(t)
		router.GET("/audits", NewReconciliationHandler(logger, svc).List)

		reports := []*reconciliation.Report{{ID: uuid.New()}, {ID: uuid.New()}}
		svc.On("ListReports", mock.Anything, 2, 2).Return(reports, int64(5), nil).Once()

		rr := performJSON(router, http.MethodGet, "/audits?page=2&per_page=2", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		var response PaginatedResponse[reconciliation.Report]
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Len(t, response.Data, 2)
		require.NotNil(t, response.Meta)
		assert.Equal(t, int64(3), response.Meta.TotalPages)
		assert.Equal(t, int64(5), response.Meta.TotalItems)
		svc.AssertExpectations(t)
	})

	t.Run("ListFailure", func(t *testing.T) {
		svc := new(MockReconciliationService)
		router := newTestRouter(t)
		router.GET("/audits", NewReconciliationHandler(logger, svc).List)

		svc.On("ListReports", mock.Anything, 1, 10).Return(nil, int64(0), errors.New("mongo down")).Once()

		rr := performJSON(router, http.MethodGet, "/audits", nil)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		svc.AssertExpectations(t)
	})
}
