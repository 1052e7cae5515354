package balance

import (
	"fmt"

	"github.com/shopkeeper-ledger/internal/domain/shared"
)

// InitialAmounts is the paid/remaining split of a newly recorded transaction
type InitialAmounts struct {
	PaidAmount      int64                `json:"paid_amount"`
	RemainingAmount int64                `json:"remaining_amount"`
	PaymentMethod   shared.PaymentMethod `json:"payment_method"`
}

// ResolveInitialAmounts computes the split of a new transaction from its type and payment method.
// providedPaid is only consulted for mixed sales; nil means the sale was paid in full.
func ResolveInitialAmounts(txType shared.TransactionType, method shared.PaymentMethod, amount int64, providedPaid *int64) (InitialAmounts, error) {
	if amount <= 0 {
		return InitialAmounts{}, ErrInvalidAmount
	}
	if method != shared.PaymentMethodUnset && !method.IsValid() {
		return InitialAmounts{}, fmt.Errorf("%w: %q", shared.ErrInvalidPaymentMethod, method)
	}

	switch txType {
	case shared.TransactionTypeCredit:
		// credit transactions never receive immediate payment
		return InitialAmounts{
			PaidAmount:      0,
			RemainingAmount: amount,
			PaymentMethod:   shared.PaymentMethodCredit,
		}, nil

	case shared.TransactionTypePayment, shared.TransactionTypeRefund:
		return fullyPaid(amount, method), nil

	case shared.TransactionTypeSale:
		switch method {
		case shared.PaymentMethodCredit:
			return InitialAmounts{
				PaidAmount:      0,
				RemainingAmount: amount,
				PaymentMethod:   shared.PaymentMethodCredit,
			}, nil
		case shared.PaymentMethodMixed:
			paid := amount
			if providedPaid != nil {
				if *providedPaid < 0 || *providedPaid > amount {
					return InitialAmounts{}, ErrPaidAmountOutOfRange
				}
				paid = *providedPaid
			}
			return InitialAmounts{
				PaidAmount:      paid,
				RemainingAmount: max(0, amount-paid),
				PaymentMethod:   shared.PaymentMethodMixed,
			}, nil
		default:
			if !method.IsImmediate() && method != shared.PaymentMethodUnset {
				return InitialAmounts{}, fmt.Errorf("%w: %q", shared.ErrInvalidPaymentMethod, method)
			}
			return fullyPaid(amount, method), nil
		}
	}

	return InitialAmounts{}, fmt.Errorf("%w: %q", shared.ErrInvalidTransactionType, txType)
}

func fullyPaid(amount int64, method shared.PaymentMethod) InitialAmounts {
	if method == shared.PaymentMethodUnset {
		method = shared.PaymentMethodCash
	}
	return InitialAmounts{
		PaidAmount:      amount,
		RemainingAmount: 0,
		PaymentMethod:   method,
	}
}
