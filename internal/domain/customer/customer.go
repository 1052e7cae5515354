package customer

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper-ledger/internal/domain/balance"
)

// Common errors
var (
	ErrEmptyName        = errors.New("customer name cannot be empty")
	ErrNegativeBalances = errors.New("customer balances cannot be negative")
)

// Customer is a shop customer with the balances derived from their transactions
type Customer struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Phone              string    `json:"phone,omitempty"`
	OutstandingBalance int64     `json:"outstanding_balance"` // minor units owed by the customer
	CreditBalance      int64     `json:"credit_balance"`      // minor units owed to the customer
	TotalSpent         int64     `json:"total_spent"`
	Version            int       `json:"version"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewCustomer creates a customer with zero balances
func NewCustomer(name, phone string) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	now := time.Now()
	return &Customer{
		ID:        uuid.New(),
		Name:      name,
		Phone:     strings.TrimSpace(phone),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Balances returns the stored outstanding and credit balances
func (c *Customer) Balances() balance.Balances {
	return balance.Balances{
		Outstanding: c.OutstandingBalance,
		Credit:      c.CreditBalance,
	}
}

// ApplyBalances replaces the stored balances and adjusts total spent by spentDelta
func (c *Customer) ApplyBalances(b balance.Balances, spentDelta int64) error {
	if b.Outstanding < 0 || b.Credit < 0 {
		return ErrNegativeBalances
	}

	c.OutstandingBalance = b.Outstanding
	c.CreditBalance = b.Credit
	c.TotalSpent = max(0, c.TotalSpent+spentDelta)
	c.UpdatedAt = time.Now()
	c.Version++
	return nil
}
