package balance

import (
	"github.com/shopkeeper-ledger/internal/domain/shared"
)

// Balances are the two aggregates kept per customer, in minor units
type Balances struct {
	Outstanding int64 `json:"outstanding"`
	Credit      int64 `json:"credit"`
}

// Effect is the signed change a booking actually applied to a customer's balances.
// It is stored with the transaction so the booking can be undone exactly.
type Effect struct {
	DebtChange   int64 `json:"debt_change"`
	CreditChange int64 `json:"credit_change"`
}

func effectBetween(before, after Balances) Effect {
	return Effect{
		DebtChange:   after.Outstanding - before.Outstanding,
		CreditChange: after.Credit - before.Credit,
	}
}

// Book applies one transaction to the running balances of its customer.
// Payments applied to debt always go through HandleOverpayment when the policy routes excess to credit.
func Book(current Balances, in ImpactInput, policy shared.OverpaymentPolicy) (Balances, Effect, error) {
	impact, err := CalculateCustomerBalanceImpact(in)
	if err != nil {
		return current, Effect{}, err
	}

	next := current
	if in.Type == shared.TransactionTypePayment && in.AppliedToDebt && policy != shared.OverpaymentClamp {
		alloc := HandleOverpayment(in.Amount, current.Outstanding)
		next.Outstanding -= alloc.DebtCleared
		next.Credit += alloc.CreditCreated
	} else {
		next.Outstanding = max(0, current.Outstanding+impact.DebtChange)
		next.Credit = max(0, current.Credit+impact.CreditChange)
	}

	return next, effectBetween(current, next), nil
}

// Reverse undoes a previously booked effect, e.g. when its transaction is edited or deleted.
// Removing debt the customer has since paid off turns the paid part into credit unless the policy clamps.
func Reverse(current Balances, booked Effect, policy shared.OverpaymentPolicy) (Balances, Effect) {
	next := current

	if booked.DebtChange > 0 {
		if policy == shared.OverpaymentClamp {
			next.Outstanding = max(0, current.Outstanding-booked.DebtChange)
		} else {
			alloc := HandleOverpayment(booked.DebtChange, current.Outstanding)
			next.Outstanding -= alloc.DebtCleared
			next.Credit += alloc.CreditCreated
		}
	} else {
		next.Outstanding -= booked.DebtChange
	}

	next.Credit = max(0, next.Credit-booked.CreditChange)

	return next, effectBetween(current, next)
}
