package reconciliation

import (
	"bytes"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper-ledger/internal/domain/balance"
	"github.com/shopkeeper-ledger/internal/domain/customer"
	"github.com/shopkeeper-ledger/internal/domain/shared"
	"github.com/shopkeeper-ledger/internal/domain/transaction"
)

// Discrepancy describes a customer whose stored balances differ from the recomputed ones
type Discrepancy struct {
	CustomerID          uuid.UUID `json:"customer_id" bson:"customer_id"`
	StoredOutstanding   int64     `json:"stored_outstanding" bson:"stored_outstanding"`
	ComputedOutstanding int64     `json:"computed_outstanding" bson:"computed_outstanding"`
	StoredCredit        int64     `json:"stored_credit" bson:"stored_credit"`
	ComputedCredit      int64     `json:"computed_credit" bson:"computed_credit"`
	TransactionCount    int       `json:"transaction_count" bson:"transaction_count"`
}

// Repair converts the discrepancy into a compare-and-set balance update
func (d Discrepancy) Repair() customer.BalanceRepair {
	return customer.BalanceRepair{
		CustomerID:          d.CustomerID,
		ExpectedOutstanding: d.StoredOutstanding,
		ExpectedCredit:      d.StoredCredit,
		Outstanding:         d.ComputedOutstanding,
		Credit:              d.ComputedCredit,
	}
}

// OrphanedTransaction is an active transaction whose customer does not exist
type OrphanedTransaction struct {
	TransactionID uuid.UUID              `json:"transaction_id" bson:"transaction_id"`
	CustomerID    uuid.UUID              `json:"customer_id" bson:"customer_id"`
	Type          shared.TransactionType `json:"type" bson:"type"`
	Amount        int64                  `json:"amount" bson:"amount"`
	Date          time.Time              `json:"date" bson:"date"`
}

// CustomerFailure records a customer whose history could not be folded
type CustomerFailure struct {
	CustomerID uuid.UUID `json:"customer_id" bson:"customer_id"`
	Reason     string    `json:"reason" bson:"reason"`
}

// AuditResult is the read-only outcome of comparing stored and recomputed balances
type AuditResult struct {
	CustomersChecked     int                   `json:"customers_checked" bson:"customers_checked"`
	CustomersSkipped     int                   `json:"customers_skipped" bson:"customers_skipped"`
	Discrepancies        []Discrepancy         `json:"discrepancies" bson:"discrepancies"`
	OrphanedTransactions []OrphanedTransaction `json:"orphaned_transactions" bson:"orphaned_transactions"`
	Failures             []CustomerFailure     `json:"failures,omitempty" bson:"failures,omitempty"`
}

// Consistent reports whether the audit found nothing to act on
func (r AuditResult) Consistent() bool {
	return len(r.Discrepancies) == 0 && len(r.OrphanedTransactions) == 0 && len(r.Failures) == 0
}

// GroupByCustomer buckets transactions by customer id. Nil entries are dropped.
func GroupByCustomer(txns []*transaction.Transaction) map[uuid.UUID][]*transaction.Transaction {
	grouped := make(map[uuid.UUID][]*transaction.Transaction)
	for _, txn := range txns {
		if txn == nil {
			continue
		}
		grouped[txn.CustomerID] = append(grouped[txn.CustomerID], txn)
	}
	return grouped
}

// AuditCustomers compares every customer's stored balances with the balances recomputed from
// their history and reports transactions that belong to no known customer. It never mutates anything.
func AuditCustomers(customers []*customer.Customer, txnsByCustomer map[uuid.UUID][]*transaction.Transaction, policy shared.OverpaymentPolicy) AuditResult {
	result := AuditResult{
		Discrepancies:        []Discrepancy{},
		OrphanedTransactions: []OrphanedTransaction{},
	}

	known := make(map[uuid.UUID]struct{}, len(customers))
	for _, c := range customers {
		known[c.ID] = struct{}{}

		active := ActiveChronological(txnsByCustomer[c.ID])
		if len(active) == 0 {
			result.CustomersSkipped++
			continue
		}
		result.CustomersChecked++

		computed, err := RecomputeCustomerBalance(active, policy)
		if err != nil {
			result.Failures = append(result.Failures, CustomerFailure{CustomerID: c.ID, Reason: err.Error()})
			continue
		}

		if computed.Outstanding != c.OutstandingBalance || computed.Credit != c.CreditBalance {
			result.Discrepancies = append(result.Discrepancies, Discrepancy{
				CustomerID:          c.ID,
				StoredOutstanding:   c.OutstandingBalance,
				ComputedOutstanding: computed.Outstanding,
				StoredCredit:        c.CreditBalance,
				ComputedCredit:      computed.Credit,
				TransactionCount:    len(active),
			})
		}
	}

	for customerID, txns := range txnsByCustomer {
		if _, ok := known[customerID]; ok {
			continue
		}
		for _, txn := range ActiveChronological(txns) {
			result.OrphanedTransactions = append(result.OrphanedTransactions, OrphanedTransaction{
				TransactionID: txn.ID,
				CustomerID:    customerID,
				Type:          txn.Type,
				Amount:        txn.Amount,
				Date:          txn.Date,
			})
		}
	}

	// map iteration order is random
	slices.SortStableFunc(result.OrphanedTransactions, func(a, b OrphanedTransaction) int {
		return bytes.Compare(a.CustomerID[:], b.CustomerID[:])
	})

	return result
}

// CustomerCheck compares one customer's stored balances with the recomputed ones
type CustomerCheck struct {
	CustomerID       uuid.UUID        `json:"customer_id"`
	Stored           balance.Balances `json:"stored"`
	Computed         balance.Balances `json:"computed"`
	TransactionCount int              `json:"transaction_count"`
	Consistent       bool             `json:"consistent"`
}

// CheckCustomer recomputes a single customer's balances. Unlike AuditCustomers it also reports
// customers without active transactions, whose computed balances are zero.
func CheckCustomer(c *customer.Customer, txns []*transaction.Transaction, policy shared.OverpaymentPolicy) (CustomerCheck, error) {
	active := ActiveChronological(txns)
	computed, err := RecomputeCustomerBalance(active, policy)
	if err != nil {
		return CustomerCheck{}, err
	}

	stored := c.Balances()
	return CustomerCheck{
		CustomerID:       c.ID,
		Stored:           stored,
		Computed:         computed,
		TransactionCount: len(active),
		Consistent:       stored == computed,
	}, nil
}
