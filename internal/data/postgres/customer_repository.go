// Package postgres provides PostgreSQL implementations of the domain repositories.
// Every repository can be bound to a pgx.Tx with WithTx so that balance changes,
// transaction rows and outbox events commit together.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopkeeper-ledger/internal/domain/customer"
	"github.com/shopkeeper-ledger/internal/platform/persistence"
)

const customerColumns = `id, name, phone, outstanding_balance, credit_balance, total_spent, version, created_at, updated_at`

// CustomerRepository implements the customer.Repository interface for PostgreSQL
type CustomerRepository struct {
	querier persistence.Querier // Can be the pool or pgx.Tx
	logger  *slog.Logger
}

// NewCustomerRepository creates a new PostgreSQL customer repository
func NewCustomerRepository(logger *slog.Logger, db *persistence.PostgresDB) customer.Repository {
	return &CustomerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository that runs every statement on tx
func (r *CustomerRepository) WithTx(tx pgx.Tx) customer.Repository {
	return &CustomerRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Phone,
		&c.OutstandingBalance,
		&c.CreditBalance,
		&c.TotalSpent,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create stores a new customer
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (id, name, phone, outstanding_balance, credit_balance, total_spent, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Phone,
		c.OutstandingBalance,
		c.CreditBalance,
		c.TotalSpent,
		c.Version,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create customer", "id", c.ID.String(), "error", err)
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// GetByID retrieves a customer by its ID
func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrCustomerNotFound{CustomerID: id}
		}
		r.logger.Error("Failed to get customer", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return c, nil
}

// List returns the requested customers ordered by creation, or all customers when ids is empty.
// Unknown ids are silently absent from the result.
func (r *CustomerRepository) List(ctx context.Context, ids []uuid.UUID) ([]*customer.Customer, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if len(ids) == 0 {
		rows, err = r.querier.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY created_at, id`)
	} else {
		rows, err = r.querier.Query(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ANY($1) ORDER BY created_at, id`, ids)
	}
	if err != nil {
		r.logger.Error("Failed to list customers", "requested", len(ids), "error", err)
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []*customer.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			r.logger.Error("Failed to scan customer", "error", err)
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over customers", "error", err)
		return nil, fmt.Errorf("error iterating over customers: %w", err)
	}

	return customers, nil
}

// LockForUpdate obtains a pessimistic lock on the customer row and returns its current state.
// Must be called inside a transaction.
func (r *CustomerRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1 FOR UPDATE`

	c, err := scanCustomer(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrCustomerNotFound{CustomerID: id}
		}
		r.logger.Error("Failed to lock customer for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock customer for update: %w", err)
	}

	return c, nil
}

// UpdateBalances writes the balances of c. c.Version must already be incremented;
// the row is only updated if it still holds the previous version.
func (r *CustomerRepository) UpdateBalances(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers
		SET outstanding_balance = $1, credit_balance = $2, total_spent = $3, version = $4, updated_at = $5
		WHERE id = $6 AND version = $7
	`

	result, err := r.querier.Exec(ctx, query,
		c.OutstandingBalance,
		c.CreditBalance,
		c.TotalSpent,
		c.Version,
		c.UpdatedAt,
		c.ID,
		c.Version-1,
	)
	if err != nil {
		r.logger.Error("Failed to update customer balances", "id", c.ID.String(), "error", err)
		return fmt.Errorf("failed to update customer balances: %w", err)
	}

	if result.RowsAffected() == 0 {
		return customer.ErrConcurrentModification{CustomerID: c.ID}
	}

	return nil
}

// ApplyBalanceRepairs overwrites balances in a single statement. A row is only changed while
// its stored balances still equal the expected ones, so the caller can detect concurrent writers
// by comparing the returned count with len(repairs).
func (r *CustomerRepository) ApplyBalanceRepairs(ctx context.Context, repairs []customer.BalanceRepair) (int64, error) {
	if len(repairs) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, len(repairs))
	expectedOutstanding := make([]int64, len(repairs))
	expectedCredit := make([]int64, len(repairs))
	outstanding := make([]int64, len(repairs))
	credit := make([]int64, len(repairs))
	for i, rp := range repairs {
		ids[i] = rp.CustomerID
		expectedOutstanding[i] = rp.ExpectedOutstanding
		expectedCredit[i] = rp.ExpectedCredit
		outstanding[i] = rp.Outstanding
		credit[i] = rp.Credit
	}

	query := `
		UPDATE customers AS c
		SET outstanding_balance = r.outstanding,
			credit_balance = r.credit,
			version = c.version + 1,
			updated_at = NOW()
		FROM unnest($1::uuid[], $2::bigint[], $3::bigint[], $4::bigint[], $5::bigint[])
			AS r(id, expected_outstanding, expected_credit, outstanding, credit)
		WHERE c.id = r.id
			AND c.outstanding_balance = r.expected_outstanding
			AND c.credit_balance = r.expected_credit
	`

	result, err := r.querier.Exec(ctx, query, ids, expectedOutstanding, expectedCredit, outstanding, credit)
	if err != nil {
		r.logger.Error("Failed to apply balance repairs", "requested", len(repairs), "error", err)
		return 0, fmt.Errorf("failed to apply balance repairs: %w", err)
	}

	return result.RowsAffected(), nil
}
