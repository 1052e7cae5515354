package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopkeeper-ledger/internal/domain/balance"
	"github.com/shopkeeper-ledger/internal/domain/customer"
	"github.com/shopkeeper-ledger/internal/domain/reconciliation"
	"github.com/shopkeeper-ledger/internal/domain/shared"
	"github.com/shopkeeper-ledger/internal/domain/transaction"
	reconciler "github.com/shopkeeper-ledger/internal/reconciler/service"
)

// CustomerService defines the interface for customer operations
type CustomerService interface {
	// CreateCustomer creates a customer with zero balances
	// Returns customer.ErrEmptyName if the name is blank
	CreateCustomer(ctx context.Context, name, phone string) (*customer.Customer, error)

	// GetCustomer retrieves a customer by its ID
	// Returns ErrCustomerNotFound if the customer doesn't exist
	GetCustomer(ctx context.Context, id uuid.UUID) (*customer.Customer, error)

	// ListTransactions returns the customer's active transactions in booking order
	ListTransactions(ctx context.Context, customerID uuid.UUID) ([]*transaction.Transaction, error)
}

// BookingResult is the outcome of a write that changed a customer's balances
type BookingResult struct {
	Transaction *transaction.Transaction
	Customer    *customer.Customer
	Change      balance.Effect
}

// Preview shows what recording a draft would do, without storing anything
type Preview struct {
	Amounts       balance.InitialAmounts
	Status        balance.StatusResult
	DebtImpact    balance.DebtImpact
	BalanceImpact balance.BalanceImpact
	MixedPayment  *balance.ValidationResult // set for mixed sales with an explicit paid amount
	Projected     *balance.Balances         // set when previewing against a customer
}

// TransactionService defines the interface for transaction operations.
// Every write keeps the customer's balances in step within the same database transaction.
type TransactionService interface {
	// RecordTransaction books a new transaction on the customer
	// Returns ErrCustomerNotFound if the customer doesn't exist
	RecordTransaction(ctx context.Context, customerID uuid.UUID, draft transaction.Draft, correlationID string) (*BookingResult, error)

	// ReviseTransaction reverses the previous booking and books the revised transaction
	// Returns ErrTransactionDeleted for soft deleted transactions
	ReviseTransaction(ctx context.Context, id uuid.UUID, draft transaction.Draft, correlationID string) (*BookingResult, error)

	// DeleteTransaction soft deletes a transaction and reverses its booking
	DeleteTransaction(ctx context.Context, id uuid.UUID, correlationID string) (*BookingResult, error)

	// GetTransaction retrieves a transaction, including soft deleted ones
	GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)

	// PreviewTransaction runs the balance rules for a draft. customerID is optional.
	PreviewTransaction(ctx context.Context, draft transaction.Draft, customerID *uuid.UUID) (*Preview, error)
}

// ReconciliationService exposes audits and repairs to the HTTP API
type ReconciliationService interface {
	RunAudit(ctx context.Context, customerIDs []uuid.UUID, correlationID string) (*reconciliation.Report, error)

	// RequestAudit hands the audit to the reconciler over Kafka
	RequestAudit(ctx context.Context, request *shared.AuditRequest) error

	GetReport(ctx context.Context, id uuid.UUID) (*reconciliation.Report, error)
	ListReports(ctx context.Context, page, perPage int) ([]*reconciliation.Report, int64, error)
	RepairReport(ctx context.Context, id uuid.UUID, opts reconciler.RepairOptions) (reconciliation.RepairResult, error)
	CheckCustomer(ctx context.Context, customerID uuid.UUID) (reconciliation.CustomerCheck, error)
}
