package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopkeeper-ledger/internal/domain/customer"
	"github.com/shopkeeper-ledger/internal/domain/outbox"
	"github.com/shopkeeper-ledger/internal/domain/reconciliation"
	"github.com/shopkeeper-ledger/internal/domain/shared"
	"github.com/shopkeeper-ledger/internal/domain/transaction"
	reconciler "github.com/shopkeeper-ledger/internal/reconciler/service"
	"github.com/stretchr/testify/mock"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) List(ctx context.Context, ids []uuid.UUID) ([]*customer.Customer, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) UpdateBalances(ctx context.Context, c *customer.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) ApplyBalanceRepairs(ctx context.Context, repairs []customer.BalanceRepair) (int64, error) {
	args := m.Called(ctx, repairs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) WithTx(tx pgx.Tx) customer.Repository {
	args := m.Called(tx)
	return args.Get(0).(customer.Repository)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Update(ctx context.Context, txn *transaction.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) SoftDelete(ctx context.Context, id uuid.UUID, deletedAt time.Time) error {
	args := m.Called(ctx, id, deletedAt)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListActiveByCustomer(ctx context.Context, customerID uuid.UUID) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListActive(ctx context.Context, customerIDs []uuid.UUID) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, customerIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	args := m.Called(tx)
	return args.Get(0).(transaction.Repository)
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	args := m.Called(tx)
	return args.Get(0).(outbox.Repository)
}

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) RunAudit(ctx context.Context, opts reconciler.AuditOptions) (*reconciliation.Report, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.Report), args.Error(1)
}

func (m *MockAuditService) RepairCustomers(ctx context.Context, discrepancies []reconciliation.Discrepancy, opts reconciler.RepairOptions) (reconciliation.RepairResult, error) {
	args := m.Called(ctx, discrepancies, opts)
	return args.Get(0).(reconciliation.RepairResult), args.Error(1)
}

func (m *MockAuditService) RepairReport(ctx context.Context, reportID uuid.UUID, opts reconciler.RepairOptions) (reconciliation.RepairResult, error) {
	args := m.Called(ctx, reportID, opts)
	return args.Get(0).(reconciliation.RepairResult), args.Error(1)
}

func (m *MockAuditService) RecomputeCustomer(ctx context.Context, customerID uuid.UUID) (reconciliation.CustomerCheck, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(reconciliation.CustomerCheck), args.Error(1)
}

func (m *MockAuditService) GetReport(ctx context.Context, reportID uuid.UUID) (*reconciliation.Report, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.Report), args.Error(1)
}

func (m *MockAuditService) ListReports(ctx context.Context, limit, offset int) ([]*reconciliation.Report, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*reconciliation.Report), args.Get(1).(int64), args.Error(2)
}

type MockRequestPublisher struct {
	mock.Mock
}

func (m *MockRequestPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}
