package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopkeeper-ledger/internal/domain/balance"
	"github.com/shopkeeper-ledger/internal/domain/customer"
	"github.com/shopkeeper-ledger/internal/domain/outbox"
	"github.com/shopkeeper-ledger/internal/domain/shared"
	"github.com/shopkeeper-ledger/internal/domain/transaction"
	"github.com/shopkeeper-ledger/internal/platform/persistence"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	db              persistence.Transactor
	customerRepo    customer.Repository
	transactionRepo transaction.Repository
	outboxRepo      outbox.Repository
	policy          shared.OverpaymentPolicy
	logger          *slog.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	logger *slog.Logger,
	db persistence.Transactor,
	customerRepo customer.Repository,
	transactionRepo transaction.Repository,
	outboxRepo outbox.Repository,
	policy shared.OverpaymentPolicy,
) TransactionService {
	return &TransactionServiceImpl{
		db:              db,
		customerRepo:    customerRepo,
		transactionRepo: transactionRepo,
		outboxRepo:      outboxRepo,
		policy:          policy,
		logger:          logger,
	}
}

// repos binds the repositories to one database transaction
type repos struct {
	customers    customer.Repository
	transactions transaction.Repository
	outbox       outbox.Repository
}

func (s *TransactionServiceImpl) withTx(tx pgx.Tx) repos {
	return repos{
		customers:    s.customerRepo.WithTx(tx),
		transactions: s.transactionRepo.WithTx(tx),
		outbox:       s.outboxRepo.WithTx(tx),
	}
}

// RecordTransaction locks the customer, books the transaction and stores both with a balance event
func (s *TransactionServiceImpl) RecordTransaction(ctx context.Context, customerID uuid.UUID, draft transaction.Draft, correlationID string) (*BookingResult, error) {
	txn, err := transaction.NewTransaction(customerID, draft)
	if err != nil {
		return nil, err
	}

	var result *BookingResult
	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		r := s.withTx(tx)

		c, err := r.customers.LockForUpdate(ctx, customerID)
		if err != nil {
			return err
		}

		after, effect, err := balance.Book(c.Balances(), txn.ImpactInput(), s.policy)
		if err != nil {
			return err
		}
		txn.SetBookedEffect(effect)

		if err := r.transactions.Create(ctx, txn); err != nil {
			return fmt.Errorf("failed to store transaction: %w", err)
		}

		if err := s.saveBalances(ctx, r, c, after, txn.SpentAmount()); err != nil {
			return err
		}

		if err := s.queueEvent(ctx, r, outbox.EventTransactionRecorded, c, txn.ID, effect, correlationID); err != nil {
			return err
		}

		result = &BookingResult{Transaction: txn, Customer: c, Change: effect}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to record transaction",
			"correlation_id", correlationID,
			"customer_id", customerID.String(),
			"type", string(draft.Type),
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("Transaction recorded",
		"correlation_id", correlationID,
		"transaction_id", txn.ID.String(),
		"customer_id", customerID.String(),
		"type", string(txn.Type),
		"amount", txn.Amount,
		"debt_change", result.Change.DebtChange,
		"credit_change", result.Change.CreditChange,
	)
	return result, nil
}

// ReviseTransaction undoes the booked effect exactly, applies the draft and books it again
func (s *TransactionServiceImpl) ReviseTransaction(ctx context.Context, id uuid.UUID, draft transaction.Draft, correlationID string) (*BookingResult, error) {
	var result *BookingResult
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		r := s.withTx(tx)

		txn, c, err := s.lockTransaction(ctx, r, id)
		if err != nil {
			return err
		}

		before := c.Balances()
		spentBefore := txn.SpentAmount()

		reversed, _ := balance.Reverse(before, txn.BookedEffect(), s.policy)
		if err := txn.Revise(draft); err != nil {
			return err
		}

		after, effect, err := balance.Book(reversed, txn.ImpactInput(), s.policy)
		if err != nil {
			return err
		}
		txn.SetBookedEffect(effect)

		if err := r.transactions.Update(ctx, txn); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}

		if err := s.saveBalances(ctx, r, c, after, txn.SpentAmount()-spentBefore); err != nil {
			return err
		}

		change := balance.Effect{
			DebtChange:   after.Outstanding - before.Outstanding,
			CreditChange: after.Credit - before.Credit,
		}
		if err := s.queueEvent(ctx, r, outbox.EventTransactionRevised, c, txn.ID, change, correlationID); err != nil {
			return err
		}

		result = &BookingResult{Transaction: txn, Customer: c, Change: change}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to revise transaction", "correlation_id", correlationID, "transaction_id", id.String(), "error", err)
		return nil, err
	}

	s.logger.Info("Transaction revised",
		"correlation_id", correlationID,
		"transaction_id", id.String(),
		"customer_id", result.Customer.ID.String(),
		"debt_change", result.Change.DebtChange,
		"credit_change", result.Change.CreditChange,
	)
	return result, nil
}

// DeleteTransaction soft deletes the transaction and reverses what it booked
func (s *TransactionServiceImpl) DeleteTransaction(ctx context.Context, id uuid.UUID, correlationID string) (*BookingResult, error) {
	var result *BookingResult
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		r := s.withTx(tx)

		txn, c, err := s.lockTransaction(ctx, r, id)
		if err != nil {
			return err
		}

		after, change := balance.Reverse(c.Balances(), txn.BookedEffect(), s.policy)
		txn.MarkDeleted()

		if err := r.transactions.SoftDelete(ctx, txn.ID, *txn.DeletedAt); err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}

		if err := s.saveBalances(ctx, r, c, after, -txn.SpentAmount()); err != nil {
			return err
		}

		if err := s.queueEvent(ctx, r, outbox.EventTransactionDeleted, c, txn.ID, change, correlationID); err != nil {
			return err
		}

		result = &BookingResult{Transaction: txn, Customer: c, Change: change}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to delete transaction", "correlation_id", correlationID, "transaction_id", id.String(), "error", err)
		return nil, err
	}

	s.logger.Info("Transaction deleted",
		"correlation_id", correlationID,
		"transaction_id", id.String(),
		"customer_id", result.Customer.ID.String(),
		"debt_change", result.Change.DebtChange,
		"credit_change", result.Change.CreditChange,
	)
	return result, nil
}

func (s *TransactionServiceImpl) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return s.transactionRepo.GetByID(ctx, id)
}

// PreviewTransaction derives split, status and balance impact of a draft. With a customer it
// also projects the balances the customer would end up with.
func (s *TransactionServiceImpl) PreviewTransaction(ctx context.Context, draft transaction.Draft, customerID *uuid.UUID) (*Preview, error) {
	amounts, status, err := draft.Settlement()
	if err != nil {
		return nil, err
	}

	in := balance.ImpactInput{
		Type:            draft.Type,
		PaymentMethod:   amounts.PaymentMethod,
		Amount:          draft.Amount,
		RemainingAmount: amounts.RemainingAmount,
		AppliedToDebt:   draft.Type == shared.TransactionTypePayment && draft.AppliedToDebt,
	}

	debtImpact, err := balance.CalculateDebtImpact(in)
	if err != nil {
		return nil, err
	}
	balanceImpact, err := balance.CalculateCustomerBalanceImpact(in)
	if err != nil {
		return nil, err
	}

	preview := &Preview{
		Amounts:       amounts,
		Status:        status,
		DebtImpact:    debtImpact,
		BalanceImpact: balanceImpact,
	}

	if draft.Type == shared.TransactionTypeSale && amounts.PaymentMethod == shared.PaymentMethodMixed && draft.PaidAmount != nil {
		check := balance.ValidateMixedPayment(draft.Amount, amounts.PaidAmount, amounts.RemainingAmount)
		preview.MixedPayment = &check
	}

	if customerID != nil {
		c, err := s.customerRepo.GetByID(ctx, *customerID)
		if err != nil {
			return nil, err
		}
		projected, _, err := balance.Book(c.Balances(), in, s.policy)
		if err != nil {
			return nil, err
		}
		preview.Projected = &projected
	}

	return preview, nil
}

// lockTransaction locks the owning customer and re-reads the transaction under that lock
func (s *TransactionServiceImpl) lockTransaction(ctx context.Context, r repos, id uuid.UUID) (*transaction.Transaction, *customer.Customer, error) {
	txn, err := r.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if txn.IsDeleted {
		return nil, nil, transaction.ErrTransactionDeleted
	}

	c, err := r.customers.LockForUpdate(ctx, txn.CustomerID)
	if err != nil {
		return nil, nil, err
	}

	txn, err = r.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if txn.IsDeleted {
		return nil, nil, transaction.ErrTransactionDeleted
	}

	return txn, c, nil
}

func (s *TransactionServiceImpl) saveBalances(ctx context.Context, r repos, c *customer.Customer, after balance.Balances, spentDelta int64) error {
	if err := c.ApplyBalances(after, spentDelta); err != nil {
		return err
	}
	if err := r.customers.UpdateBalances(ctx, c); err != nil {
		return fmt.Errorf("failed to update customer balances: %w", err)
	}
	return nil
}

func (s *TransactionServiceImpl) queueEvent(ctx context.Context, r repos, eventType outbox.EventType, c *customer.Customer, txnID uuid.UUID, change balance.Effect, correlationID string) error {
	event := outbox.NewBalanceEvent(eventType, c.ID, &txnID, c.Balances(), change, correlationID)

	message, err := outbox.NewMessage(event)
	if err != nil {
		return fmt.Errorf("failed to create outbox message payload for transaction %s: %w", txnID.String(), err)
	}
	if err := r.outbox.Create(ctx, message); err != nil {
		return fmt.Errorf("failed to create outbox message for transaction %s: %w", txnID.String(), err)
	}
	return nil
}
