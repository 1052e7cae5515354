// Package reconciliation recomputes customer balances from transaction history and
// compares them with the stored aggregates. It is the ground truth path; incremental
// maintenance at write time lives in package balance.
package reconciliation

import (
	"fmt"

	"github.com/shopkeeper-ledger/internal/domain/balance"
	"github.com/shopkeeper-ledger/internal/domain/shared"
	"github.com/shopkeeper-ledger/internal/domain/transaction"
)

// ActiveChronological returns the non-deleted transactions in booking order.
// The input slice is left untouched.
func ActiveChronological(txns []*transaction.Transaction) []*transaction.Transaction {
	active := make([]*transaction.Transaction, 0, len(txns))
	for _, txn := range txns {
		if txn != nil && !txn.IsDeleted {
			active = append(active, txn)
		}
	}
	transaction.SortChronologically(active)
	return active
}

// RecomputeCustomerBalance folds a customer's transaction history into outstanding and credit balances.
// Deleted transactions are ignored. Calling it again on the same history returns the same result.
func RecomputeCustomerBalance(txns []*transaction.Transaction, policy shared.OverpaymentPolicy) (balance.Balances, error) {
	var outstanding, credit int64

	for _, txn := range ActiveChronological(txns) {
		switch txn.Type {
		case shared.TransactionTypeSale, shared.TransactionTypeCredit:
			outstanding += txn.RemainingAmount

		case shared.TransactionTypePayment:
			if !txn.AppliedToDebt {
				credit += txn.Amount
				continue
			}
			if policy == shared.OverpaymentClamp {
				outstanding -= txn.Amount
				continue
			}
			alloc := balance.HandleOverpayment(txn.Amount, outstanding)
			outstanding -= alloc.DebtCleared
			credit += alloc.CreditCreated

		case shared.TransactionTypeRefund:
			outstanding -= txn.Amount
			if policy != shared.OverpaymentClamp {
				outstanding = max(0, outstanding)
			}

		default:
			return balance.Balances{}, fmt.Errorf("transaction %s: %w: %q", txn.ID, shared.ErrInvalidTransactionType, txn.Type)
		}
	}

	return balance.Balances{
		Outstanding: max(0, outstanding),
		Credit:      credit,
	}, nil
}
