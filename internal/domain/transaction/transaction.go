package transaction

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper-ledger/internal/domain/balance"
	"github.com/shopkeeper-ledger/internal/domain/shared"
)

// Common errors
var (
	ErrTransactionDeleted = errors.New("transaction has been deleted")
	ErrMissingCustomer    = errors.New("customer id is required")
)

// ErrInvalidMixedPayment carries the message of a rejected mixed payment split
type ErrInvalidMixedPayment struct {
	Reason string
}

func (e ErrInvalidMixedPayment) Error() string {
	return "invalid mixed payment: " + e.Reason
}

// Draft holds the caller supplied fields of a transaction, before its split and status are derived
type Draft struct {
	Type          shared.TransactionType
	PaymentMethod shared.PaymentMethod
	Amount        int64  // minor units
	PaidAmount    *int64 // only read for mixed sales
	AppliedToDebt bool   // only read for payments
	Date          time.Time
	Note          string
}

// Transaction is one recorded money movement between the shop and a customer
type Transaction struct {
	ID              uuid.UUID                `json:"id"`
	CustomerID      uuid.UUID                `json:"customer_id"`
	Sequence        int64                    `json:"sequence"` // store-assigned insertion order
	Type            shared.TransactionType   `json:"type"`
	PaymentMethod   shared.PaymentMethod     `json:"payment_method"`
	Amount          int64                    `json:"amount"` // Stored in minor units
	PaidAmount      int64                    `json:"paid_amount"`
	RemainingAmount int64                    `json:"remaining_amount"`
	AppliedToDebt   bool                     `json:"applied_to_debt"`
	Status          shared.TransactionStatus `json:"status"`
	Note            string                   `json:"note,omitempty"`
	Date            time.Time                `json:"date"`
	DebtEffect      int64                    `json:"debt_effect"`   // signed change booked on the customer's outstanding balance
	CreditEffect    int64                    `json:"credit_effect"` // signed change booked on the customer's credit balance
	IsDeleted       bool                     `json:"is_deleted"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
	DeletedAt       *time.Time               `json:"deleted_at,omitempty"`
}

// Settlement derives the split and status a draft resolves to
func (d Draft) Settlement() (balance.InitialAmounts, balance.StatusResult, error) {
	if !d.Type.IsValid() {
		return balance.InitialAmounts{}, balance.StatusResult{}, fmt.Errorf("%w: %q", shared.ErrInvalidTransactionType, d.Type)
	}
	if d.Amount <= 0 {
		return balance.InitialAmounts{}, balance.StatusResult{}, balance.ErrInvalidAmount
	}

	if d.Type == shared.TransactionTypeSale && d.PaymentMethod == shared.PaymentMethodMixed && d.PaidAmount != nil {
		cash := *d.PaidAmount
		if check := balance.ValidateMixedPayment(d.Amount, cash, d.Amount-cash); !check.IsValid {
			return balance.InitialAmounts{}, balance.StatusResult{}, ErrInvalidMixedPayment{Reason: check.Error}
		}
	}

	amounts, err := balance.ResolveInitialAmounts(d.Type, d.PaymentMethod, d.Amount, d.PaidAmount)
	if err != nil {
		return balance.InitialAmounts{}, balance.StatusResult{}, err
	}

	status, err := balance.CalculateStatus(d.Type, d.Amount, amounts.PaidAmount, amounts.RemainingAmount)
	if err != nil {
		return balance.InitialAmounts{}, balance.StatusResult{}, err
	}

	return amounts, status, nil
}

// NewTransaction creates a transaction for the customer with its split and status derived from the draft
func NewTransaction(customerID uuid.UUID, d Draft) (*Transaction, error) {
	if customerID == uuid.Nil {
		return nil, ErrMissingCustomer
	}

	now := time.Now()
	t := &Transaction{
		ID:         uuid.New(),
		CustomerID: customerID,
		CreatedAt:  now,
	}
	if err := t.apply(d, now, now); err != nil {
		return nil, err
	}

	return t, nil
}

// Revise replaces the caller supplied fields and re-derives split and status.
// A draft without a date keeps the transaction's date. The booked effect is left
// untouched; callers reverse and re-book it.
func (t *Transaction) Revise(d Draft) error {
	if t.IsDeleted {
		return ErrTransactionDeleted
	}
	return t.apply(d, time.Now(), t.Date)
}

// apply sets the draft fields. defaultDate is used when the draft carries no date.
func (t *Transaction) apply(d Draft, now, defaultDate time.Time) error {
	amounts, status, err := d.Settlement()
	if err != nil {
		return err
	}

	date := d.Date
	if date.IsZero() {
		date = defaultDate
	}

	t.Type = d.Type
	t.PaymentMethod = amounts.PaymentMethod
	t.Amount = d.Amount
	t.PaidAmount = amounts.PaidAmount
	t.RemainingAmount = amounts.RemainingAmount
	t.AppliedToDebt = d.Type == shared.TransactionTypePayment && d.AppliedToDebt
	t.Status = status.Status
	t.Note = d.Note
	t.Date = date.UTC()
	t.UpdatedAt = now
	return nil
}

// ImpactInput exposes the fields the balance rules read
func (t *Transaction) ImpactInput() balance.ImpactInput {
	return balance.ImpactInput{
		Type:            t.Type,
		PaymentMethod:   t.PaymentMethod,
		Amount:          t.Amount,
		RemainingAmount: t.RemainingAmount,
		AppliedToDebt:   t.AppliedToDebt,
	}
}

// BookedEffect returns the balance change recorded when the transaction was last booked
func (t *Transaction) BookedEffect() balance.Effect {
	return balance.Effect{DebtChange: t.DebtEffect, CreditChange: t.CreditEffect}
}

func (t *Transaction) SetBookedEffect(e balance.Effect) {
	t.DebtEffect = e.DebtChange
	t.CreditEffect = e.CreditChange
}

// StatusDetails recomputes the status breakdown, including the paid percentage
func (t *Transaction) StatusDetails() (balance.StatusResult, error) {
	return balance.CalculateStatus(t.Type, t.Amount, t.PaidAmount, t.RemainingAmount)
}

// SpentAmount is the amount counted towards the customer's total spent
func (t *Transaction) SpentAmount() int64 {
	if t.Type == shared.TransactionTypeSale {
		return t.Amount
	}
	return 0
}

// MarkDeleted soft deletes the transaction
func (t *Transaction) MarkDeleted() {
	now := time.Now()
	t.IsDeleted = true
	t.DeletedAt = &now
	t.UpdatedAt = now
}

// Compare orders transactions by date, then insertion sequence, then id
func Compare(a, b *Transaction) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Sequence, b.Sequence); c != 0 {
		return c
	}
	return slices.Compare(a.ID[:], b.ID[:])
}

// SortChronologically sorts transactions in place in booking order
func SortChronologically(txns []*Transaction) {
	slices.SortFunc(txns, Compare)
}
