package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopkeeper-ledger/internal/api_gateway/service"
	"github.com/shopkeeper-ledger/internal/domain/customer"
	"github.com/shopkeeper-ledger/internal/domain/reconciliation"
	"github.com/shopkeeper-ledger/internal/domain/shared"
	"github.com/shopkeeper-ledger/internal/domain/transaction"
	reconciler "github.com/shopkeeper-ledger/internal/reconciler/service"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// PaginatedResponse is a generic version of Response for testing paginated data
type PaginatedResponse[T any] struct {
	Data          []T        `json:"data"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Meta          *MetaInfo  `json:"meta,omitempty"`
}

// DataResponse is a typed version of Response for decoding the data field
type DataResponse[T any] struct {
	Data          T          `json:"data"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
}

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, name, phone string) (*customer.Customer, error) {
	args := m.Called(ctx, name, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) ListTransactions(ctx context.Context, customerID uuid.UUID) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) RecordTransaction(ctx context.Context, customerID uuid.UUID, draft transaction.Draft, correlationID string) (*service.BookingResult, error) {
	args := m.Called(ctx, customerID, draft, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BookingResult), args.Error(1)
}

func (m *MockTransactionService) ReviseTransaction(ctx context.Context, id uuid.UUID, draft transaction.Draft, correlationID string) (*service.BookingResult, error) {
	args := m.Called(ctx, id, draft, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BookingResult), args.Error(1)
}

func (m *MockTransactionService) DeleteTransaction(ctx context.Context, id uuid.UUID, correlationID string) (*service.BookingResult, error) {
	args := m.Called(ctx, id, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BookingResult), args.Error(1)
}

func (m *MockTransactionService) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) PreviewTransaction(ctx context.Context, draft transaction.Draft, customerID *uuid.UUID) (*service.Preview, error) {
	args := m.Called(ctx, draft, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Preview), args.Error(1)
}

type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) RunAudit(ctx context.Context, customerIDs []uuid.UUID, correlationID string) (*reconciliation.Report, error) {
	args := m.Called(ctx, customerIDs, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.Report), args.Error(1)
}

func (m *MockReconciliationService) RequestAudit(ctx context.Context, request *shared.AuditRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockReconciliationService) GetReport(ctx context.Context, id uuid.UUID) (*reconciliation.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.Report), args.Error(1)
}

func (m *MockReconciliationService) ListReports(ctx context.Context, page, perPage int) ([]*reconciliation.Report, int64, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*reconciliation.Report), args.Get(1).(int64), args.Error(2)
}

func (m *MockReconciliationService) RepairReport(ctx context.Context, id uuid.UUID, opts reconciler.RepairOptions) (reconciliation.RepairResult, error) {
	args := m.Called(ctx, id, opts)
	return args.Get(0).(reconciliation.RepairResult), args.Error(1)
}

func (m *MockReconciliationService) CheckCustomer(ctx context.Context, customerID uuid.UUID) (reconciliation.CustomerCheck, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(reconciliation.CustomerCheck), args.Error(1)
}

// newTestRouter returns a gin engine in test mode with the ledger binding rules registered
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())
	return gin.New()
}

func performJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}

	req, _ := http.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}
