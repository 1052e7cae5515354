package customer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BalanceRepair sets a customer's balances to recomputed values, provided the
// stored values still match what the audit observed
type BalanceRepair struct {
	CustomerID          uuid.UUID
	ExpectedOutstanding int64
	ExpectedCredit      int64
	Outstanding         int64
	Credit              int64
}

// Repository defines customer persistence operations
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// List returns the given customers, or every customer when ids is empty
	List(ctx context.Context, ids []uuid.UUID) ([]*Customer, error)

	// LockForUpdate acquires a pessimistic lock for balance maintenance
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Customer, error)

	// UpdateBalances uses optimistic locking on the version the caller read
	UpdateBalances(ctx context.Context, c *Customer) error

	// ApplyBalanceRepairs applies every repair in one statement and returns the number of rows changed.
	// Rows whose stored balances no longer match the expected values are left untouched.
	ApplyBalanceRepairs(ctx context.Context, repairs []BalanceRepair) (int64, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrCustomerNotFound indicates missing customer
type ErrCustomerNotFound struct {
	CustomerID uuid.UUID
}

func (e ErrCustomerNotFound) Error() string {
	return "customer not found: " + e.CustomerID.String()
}

// Is implements the errors.Is interface for ErrCustomerNotFound
func (e ErrCustomerNotFound) Is(target error) bool {
	t, ok := target.(ErrCustomerNotFound)
	if !ok {
		return false
	}
	if t.CustomerID == uuid.Nil {
		return true
	}
	return e.CustomerID == t.CustomerID
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	CustomerID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for customer: " + e.CustomerID.String()
}

// ErrStaleBalances indicates that some customers changed between audit and repair
type ErrStaleBalances struct {
	Expected int
	Applied  int64
}

func (e ErrStaleBalances) Error() string {
	return fmt.Sprintf("stale balances: %d of %d repairs still matched the audited values", e.Applied, e.Expected)
}
