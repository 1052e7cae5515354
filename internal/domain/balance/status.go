// Package balance holds the pure rules that derive a transaction's settlement split and
// status, and the effect a transaction has on a customer's debt and credit balances.
// Nothing in this package touches storage.
package balance

import (
	"errors"
	"fmt"

	"github.com/shopkeeper-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrNegativeAmount       = errors.New("amounts cannot be negative")
	ErrPaidAmountOutOfRange = errors.New("paid amount must be between zero and the transaction amount")
)

// StatusResult is the derived settlement state of a transaction
type StatusResult struct {
	Status          shared.TransactionStatus `json:"status"`
	PaidAmount      int64                    `json:"paid_amount"`
	RemainingAmount int64                    `json:"remaining_amount"`
	PercentagePaid  float64                  `json:"percentage_paid"`
}

// CalculateStatus derives the status of a transaction from its split.
// Zero paid/remaining values stand for "not provided".
func CalculateStatus(txType shared.TransactionType, totalAmount, paidAmount, remainingAmount int64) (StatusResult, error) {
	if totalAmount < 0 || paidAmount < 0 || remainingAmount < 0 {
		return StatusResult{}, ErrNegativeAmount
	}

	result := StatusResult{
		PaidAmount:      paidAmount,
		RemainingAmount: remainingAmount,
		PercentagePaid:  percentagePaid(paidAmount, totalAmount),
	}

	switch txType {
	case shared.TransactionTypePayment, shared.TransactionTypeRefund:
		result.Status = shared.TransactionStatusCompleted
	case shared.TransactionTypeSale, shared.TransactionTypeCredit:
		switch {
		case totalAmount == 0, remainingAmount == 0:
			result.Status = shared.TransactionStatusCompleted
		case remainingAmount < totalAmount:
			result.Status = shared.TransactionStatusPartial
		default:
			result.Status = shared.TransactionStatusPending
		}
	default:
		return StatusResult{}, fmt.Errorf("%w: %q", shared.ErrInvalidTransactionType, txType)
	}

	return result, nil
}

func percentagePaid(paid, total int64) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(paid).
		Div(decimal.NewFromInt(total)).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}
