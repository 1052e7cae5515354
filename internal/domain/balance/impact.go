package balance

import (
	"fmt"

	"github.com/shopkeeper-ledger/internal/domain/shared"
)

// ImpactInput carries the transaction fields that influence customer balances
type ImpactInput struct {
	Type            shared.TransactionType
	PaymentMethod   shared.PaymentMethod
	Amount          int64
	RemainingAmount int64
	AppliedToDebt   bool
}

// DebtImpact is the effect of one transaction on outstanding debt.
// Change is a magnitude; the flags give its direction.
type DebtImpact struct {
	Change     int64 `json:"change"`
	IsIncrease bool  `json:"is_increase"`
	IsDecrease bool  `json:"is_decrease"`
}

// BalanceImpact holds signed changes for both customer balance fields
type BalanceImpact struct {
	DebtChange   int64 `json:"debt_change"`
	CreditChange int64 `json:"credit_change"`
}

func increase(change int64) DebtImpact {
	if change == 0 {
		return DebtImpact{}
	}
	return DebtImpact{Change: change, IsIncrease: true}
}

func decrease(change int64) DebtImpact {
	if change == 0 {
		return DebtImpact{}
	}
	return DebtImpact{Change: change, IsDecrease: true}
}

// CalculateDebtImpact returns how a transaction moves the customer's outstanding debt
func CalculateDebtImpact(in ImpactInput) (DebtImpact, error) {
	if in.Amount < 0 || in.RemainingAmount < 0 {
		return DebtImpact{}, ErrNegativeAmount
	}
	if in.Amount == 0 {
		return DebtImpact{}, nil
	}

	switch in.Type {
	case shared.TransactionTypeSale:
		switch method := in.PaymentMethod; {
		case method == shared.PaymentMethodCredit:
			return increase(in.Amount), nil
		case method == shared.PaymentMethodMixed:
			// only the unpaid part becomes debt
			return increase(in.RemainingAmount), nil
		case method.IsImmediate(), method == shared.PaymentMethodUnset:
			return DebtImpact{}, nil
		default:
			return DebtImpact{}, fmt.Errorf("%w: %q", shared.ErrInvalidPaymentMethod, in.PaymentMethod)
		}
	case shared.TransactionTypeCredit:
		return increase(in.Amount), nil
	case shared.TransactionTypePayment:
		if in.AppliedToDebt {
			return decrease(in.Amount), nil
		}
		return DebtImpact{}, nil
	case shared.TransactionTypeRefund:
		return decrease(in.Amount), nil
	}

	return DebtImpact{}, fmt.Errorf("%w: %q", shared.ErrInvalidTransactionType, in.Type)
}

// CalculateCustomerBalanceImpact folds the debt impact and the credit accrual of
// payments not applied to debt into one pair of signed changes
func CalculateCustomerBalanceImpact(in ImpactInput) (BalanceImpact, error) {
	debt, err := CalculateDebtImpact(in)
	if err != nil {
		return BalanceImpact{}, err
	}

	var impact BalanceImpact
	switch {
	case debt.IsIncrease:
		impact.DebtChange = debt.Change
	case debt.IsDecrease:
		impact.DebtChange = -debt.Change
	}

	if in.Type == shared.TransactionTypePayment && !in.AppliedToDebt {
		impact.CreditChange = in.Amount
	}

	return impact, nil
}
