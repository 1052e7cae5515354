package components

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopkeeper-ledger/internal/config"
	"github.com/shopkeeper-ledger/internal/domain/customer"
	"github.com/shopkeeper-ledger/internal/domain/outbox"
	"github.com/shopkeeper-ledger/internal/domain/reconciliation"
	"github.com/shopkeeper-ledger/internal/domain/transaction"
	"github.com/shopkeeper-ledger/internal/platform/persistence"
	"github.com/shopkeeper-ledger/internal/reconciler/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSnapshotLoader_LoadSnapshot(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	ids := []uuid.UUID{uuid.New()}

	t.Run("ReadsCustomersAndTransactions", func(t *testing.T) {
		customerRepo := new(MockCustomerRepo)
		txnRepo := new(MockTransactionRepo)
		customers := []*customer.Customer{{ID: ids[0]}}
		txns := []*transaction.Transaction{{ID: uuid.New(), CustomerID: ids[0]}}

		customerRepo.On("WithTx", nil).Return(customerRepo).Once()
		customerRepo.On("List", ctx, ids).Return(customers, nil).Once()
		txnRepo.On("WithTx", nil).Return(txnRepo).Once()
		txnRepo.On("ListActive", ctx, ids).Return(txns, nil).Once()

		snapshot, err := NewSnapshotLoader(customerRepo, txnRepo, logger).LoadSnapshot(ctx, nil, ids)
		require.NoError(t, err)
		assert.Equal(t, customers, snapshot.Customers)
		assert.Equal(t, txns, snapshot.Transactions)
		customerRepo.AssertExpectations(t)
		txnRepo.AssertExpectations(t)
	})

	t.Run("CustomerListFails", func(t *testing.T) {
		customerRepo := new(MockCustomerRepo)
		txnRepo := new(MockTransactionRepo)
		dbErr := errors.New("db error")

		customerRepo.On("WithTx", nil).Return(customerRepo).Once()
		customerRepo.On("List", ctx, ids).Return(nil, dbErr).Once()

		_, err := NewSnapshotLoader(customerRepo, txnRepo, logger).LoadSnapshot(ctx, nil, ids)
		assert.ErrorIs(t, err, dbErr)
		txnRepo.AssertNotCalled(t, "ListActive", mock.Anything, mock.Anything)
	})

	t.Run("TransactionListFails", func(t *testing.T) {
		customerRepo := new(MockCustomerRepo)
		txnRepo := new(MockTransactionRepo)
		dbErr := errors.New("db error")

		customerRepo.On("WithTx", nil).Return(customerRepo).Once()
		customerRepo.On("List", ctx, ids).Return([]*customer.Customer{}, nil).Once()
		txnRepo.On("WithTx", nil).Return(txnRepo).Once()
		txnRepo.On("ListActive", ctx, ids).Return(nil, dbErr).Once()

		_, err := NewSnapshotLoader(customerRepo, txnRepo, logger).LoadSnapshot(ctx, nil, ids)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestBalanceRepairer_ApplyRepairs(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	repairs := []customer.BalanceRepair{
		{CustomerID: uuid.New(), ExpectedOutstanding: 500, Outstanding: 0, Credit: 200},
		{CustomerID: uuid.New(), ExpectedOutstanding: 100, Outstanding: 150},
	}

	t.Run("AllMatched", func(t *testing.T) {
		repo := new(MockCustomerRepo)
		repo.On("WithTx", nil).Return(repo).Once()
		repo.On("ApplyBalanceRepairs", ctx, repairs).Return(int64(2), nil).Once()

		applied, err := NewBalanceRepairer(repo, logger).ApplyRepairs(ctx, nil, repairs)
		require.NoError(t, err)
		assert.Equal(t, int64(2), applied)
		repo.AssertExpectations(t)
	})

	t.Run("StaleCustomer", func(t *testing.T) {
		repo := new(MockCustomerRepo)
		repo.On("WithTx", nil).Return(repo).Once()
		repo.On("ApplyBalanceRepairs", ctx, repairs).Return(int64(1), nil).Once()

		applied, err := NewBalanceRepairer(repo, logger).ApplyRepairs(ctx, nil, repairs)
		assert.Equal(t, int64(1), applied)
		assert.Equal(t, customer.ErrStaleBalances{Expected: 2, Applied: 1}, err)
	})

	t.Run("DatabaseError", func(t *testing.T) {
		repo := new(MockCustomerRepo)
		dbErr := errors.New("deadlock detected")
		repo.On("WithTx", nil).Return(repo).Once()
		repo.On("ApplyBalanceRepairs", ctx, repairs).Return(int64(0), dbErr).Once()

		_, err := NewBalanceRepairer(repo, logger).ApplyRepairs(ctx, nil, repairs)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestOutboxManager_CreateRepairEvents(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	discrepancies := []reconciliation.Discrepancy{
		{CustomerID: uuid.New(), StoredOutstanding: 2500, ComputedOutstanding: 2000, StoredCredit: 0, ComputedCredit: 250},
		{CustomerID: uuid.New(), StoredOutstanding: 0, ComputedOutstanding: 700},
	}

	t.Run("OneEventPerCustomer", func(t *testing.T) {
		repo := new(MockOutboxRepo)
		repo.On("WithTx", nil).Return(repo).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(m *outbox.Message) bool {
			event, err := m.GetEvent()
			return err == nil &&
				m.CustomerID == discrepancies[0].CustomerID &&
				m.EventType == outbox.EventBalancesRepaired &&
				event.Balances.Outstanding == 2000 &&
				event.Balances.Credit == 250 &&
				event.Change.DebtChange == -500 &&
				event.Change.CreditChange == 250 &&
				event.CorrelationID == "corr-1"
		})).Return(nil).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(m *outbox.Message) bool {
			return m.CustomerID == discrepancies[1].CustomerID
		})).Return(nil).Once()

		err := NewOutboxManager(repo, logger).CreateRepairEvents(ctx, nil, discrepancies, "corr-1")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("CreateFails", func(t *testing.T) {
		repo := new(MockOutboxRepo)
		dbErr := errors.New("db error")
		repo.On("WithTx", nil).Return(repo).Once()
		repo.On("Create", ctx, mock.Anything).Return(dbErr).Once()

		err := NewOutboxManager(repo, logger).CreateRepairEvents(ctx, nil, discrepancies, "")
		assert.ErrorIs(t, err, dbErr)
		repo.AssertNumberOfCalls(t, "Create", 1)
	})
}

func TestCreateAuditService(t *testing.T) {
	logger := slog.Default()
	repos := Repositories{
		Customers:    new(MockCustomerRepo),
		Transactions: new(MockTransactionRepo),
		Outbox:       new(MockOutboxRepo),
	}
	cfg := &config.Config{
		WorkerPool: config.WorkerPoolConfig{Size: 3},
	}

	auditService := CreateAuditService(&persistence.PostgresDB{}, repos, nil, logger, cfg)
	require.NotNil(t, auditService)

	processor := CreateRequestProcessor(auditService, logger, cfg)
	pool, ok := processor.(*service.WorkerPoolRequestProcessor)
	require.True(t, ok)
	defer pool.Shutdown()
	assert.Equal(t, 3, pool.Capacity())
}
