package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopkeeper-ledger/internal/domain/transaction"
	"github.com/shopkeeper-ledger/internal/platform/persistence"
)

// Rows written before the split was stored carry NULL amounts: paid reads as 0 and
// remaining falls back to the full amount.
const transactionColumns = `id, sequence, customer_id, type, payment_method, amount,
	COALESCE(paid_amount, 0), COALESCE(remaining_amount, amount), applied_to_debt, status, note, date,
	debt_effect, credit_effect, is_deleted, created_at, updated_at, deleted_at`

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository that runs every statement on tx
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanTransaction(row pgx.Row) (*transaction.Transaction, error) {
	var t transaction.Transaction
	err := row.Scan(
		&t.ID,
		&t.Sequence,
		&t.CustomerID,
		&t.Type,
		&t.PaymentMethod,
		&t.Amount,
		&t.PaidAmount,
		&t.RemainingAmount,
		&t.AppliedToDebt,
		&t.Status,
		&t.Note,
		&t.Date,
		&t.DebtEffect,
		&t.CreditEffect,
		&t.IsDeleted,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create stores a new transaction and fills in its store-assigned sequence
func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, customer_id, type, payment_method, amount, paid_amount, remaining_amount,
			applied_to_debt, status, note, date, debt_effect, credit_effect, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING sequence
	`

	err := r.querier.QueryRow(ctx, query,
		t.ID,
		t.CustomerID,
		t.Type,
		t.PaymentMethod,
		t.Amount,
		t.PaidAmount,
		t.RemainingAmount,
		t.AppliedToDebt,
		t.Status,
		t.Note,
		t.Date,
		t.DebtEffect,
		t.CreditEffect,
		t.IsDeleted,
		t.CreatedAt,
		t.UpdatedAt,
	).Scan(&t.Sequence)
	if err != nil {
		r.logger.Error("Failed to create transaction",
			"id", t.ID.String(),
			"customer_id", t.CustomerID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its ID, including soft deleted ones
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	t, err := scanTransaction(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return t, nil
}

// Update rewrites the editable fields and the booked effect of an active transaction
func (r *TransactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET type = $1, payment_method = $2, amount = $3, paid_amount = $4, remaining_amount = $5,
			applied_to_debt = $6, status = $7, note = $8, date = $9, debt_effect = $10, credit_effect = $11, updated_at = $12
		WHERE id = $13 AND is_deleted = FALSE
	`

	result, err := r.querier.Exec(ctx, query,
		t.Type,
		t.PaymentMethod,
		t.Amount,
		t.PaidAmount,
		t.RemainingAmount,
		t.AppliedToDebt,
		t.Status,
		t.Note,
		t.Date,
		t.DebtEffect,
		t.CreditEffect,
		t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update transaction", "id", t.ID.String(), "error", err)
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{TransactionID: t.ID}
	}

	return nil
}

// SoftDelete flags an active transaction as deleted
func (r *TransactionRepository) SoftDelete(ctx context.Context, id uuid.UUID, deletedAt time.Time) error {
	query := `
		UPDATE transactions
		SET is_deleted = TRUE, deleted_at = $1, updated_at = $1
		WHERE id = $2 AND is_deleted = FALSE
	`

	result, err := r.querier.Exec(ctx, query, deletedAt, id)
	if err != nil {
		r.logger.Error("Failed to soft delete transaction", "id", id.String(), "error", err)
		return fmt.Errorf("failed to soft delete transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{TransactionID: id}
	}

	return nil
}

// ListActiveByCustomer returns a customer's active transactions in booking order
func (r *TransactionRepository) ListActiveByCustomer(ctx context.Context, customerID uuid.UUID) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE customer_id = $1 AND is_deleted = FALSE
		ORDER BY date, sequence, id
	`

	rows, err := r.querier.Query(ctx, query, customerID)
	if err != nil {
		r.logger.Error("Failed to list customer transactions", "customer_id", customerID.String(), "error", err)
		return nil, fmt.Errorf("failed to list customer transactions: %w", err)
	}

	return r.collect(rows)
}

// ListActive returns active transactions of the given customers, or of all customers when ids is empty
func (r *TransactionRepository) ListActive(ctx context.Context, customerIDs []uuid.UUID) ([]*transaction.Transaction, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if len(customerIDs) == 0 {
		rows, err = r.querier.Query(ctx, `
			SELECT `+transactionColumns+`
			FROM transactions
			WHERE is_deleted = FALSE
			ORDER BY customer_id, date, sequence, id
		`)
	} else {
		rows, err = r.querier.Query(ctx, `
			SELECT `+transactionColumns+`
			FROM transactions
			WHERE customer_id = ANY($1) AND is_deleted = FALSE
			ORDER BY customer_id, date, sequence, id
		`, customerIDs)
	}
	if err != nil {
		r.logger.Error("Failed to list active transactions", "customers", len(customerIDs), "error", err)
		return nil, fmt.Errorf("failed to list active transactions: %w", err)
	}

	return r.collect(rows)
}

func (r *TransactionRepository) collect(rows pgx.Rows) ([]*transaction.Transaction, error) {
	defer rows.Close()

	var txns []*transaction.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			r.logger.Error("Failed to scan transaction", "error", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over transactions", "error", err)
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return txns, nil
}
