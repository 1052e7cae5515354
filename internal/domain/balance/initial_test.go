package balance

import (
	"testing"

	"github.com/shopkeeper-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paid(v int64) *int64 {
	return &v
}

func TestResolveInitialAmounts(t *testing.T) {
	testCases := []struct {
		name     string
		txType   shared.TransactionType
		method   shared.PaymentMethod
		amount   int64
		provided *int64
		expected InitialAmounts
	}{
		{
			name:     "CreditForcesCreditMethod",
			txType:   shared.TransactionTypeCredit,
			method:   shared.PaymentMethodCash,
			amount:   500,
			expected: InitialAmounts{PaidAmount: 0, RemainingAmount: 500, PaymentMethod: shared.PaymentMethodCredit},
		},
		{
			name:     "PaymentDefaultsToCash",
			txType:   shared.TransactionTypePayment,
			amount:   700,
			expected: InitialAmounts{PaidAmount: 700, RemainingAmount: 0, PaymentMethod: shared.PaymentMethodCash},
		},
		{
			name:     "PaymentKeepsGivenMethod",
			txType:   shared.TransactionTypePayment,
			method:   shared.PaymentMethodBankTransfer,
			amount:   700,
			expected: InitialAmounts{PaidAmount: 700, RemainingAmount: 0, PaymentMethod: shared.PaymentMethodBankTransfer},
		},
		{
			name:     "SaleCash",
			txType:   shared.TransactionTypeSale,
			method:   shared.PaymentMethodCash,
			amount:   1000,
			expected: InitialAmounts{PaidAmount: 1000, RemainingAmount: 0, PaymentMethod: shared.PaymentMethodCash},
		},
		{
			name:     "SalePOSCard",
			txType:   shared.TransactionTypeSale,
			method:   shared.PaymentMethodPOSCard,
			amount:   1000,
			expected: InitialAmounts{PaidAmount: 1000, RemainingAmount: 0, PaymentMethod: shared.PaymentMethodPOSCard},
		},
		{
			name:     "SaleOnCredit",
			txType:   shared.TransactionTypeSale,
			method:   shared.PaymentMethodCredit,
			amount:   3000,
			expected: InitialAmounts{PaidAmount: 0, RemainingAmount: 3000, PaymentMethod: shared.PaymentMethodCredit},
		},
		{
			name:     "SaleMixedWithSplit",
			txType:   shared.TransactionTypeSale,
			method:   shared.PaymentMethodMixed,
			amount:   2000,
			provided: paid(800),
			expected: InitialAmounts{PaidAmount: 800, RemainingAmount: 1200, PaymentMethod: shared.PaymentMethodMixed},
		},
		{
			name:     "SaleMixedWithoutSplitIsFullyPaid",
			txType:   shared.TransactionTypeSale,
			method:   shared.PaymentMethodMixed,
			amount:   2000,
			expected: InitialAmounts{PaidAmount: 2000, RemainingAmount: 0, PaymentMethod: shared.PaymentMethodMixed},
		},
		{
			name:     "SaleWithoutMethodIsCash",
			txType:   shared.TransactionTypeSale,
			amount:   150,
			expected: InitialAmounts{PaidAmount: 150, RemainingAmount: 0, PaymentMethod: shared.PaymentMethodCash},
		},
		{
			name:     "RefundIsFullyPaid",
			txType:   shared.TransactionTypeRefund,
			amount:   400,
			expected: InitialAmounts{PaidAmount: 400, RemainingAmount: 0, PaymentMethod: shared.PaymentMethodCash},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ResolveInitialAmounts(tc.txType, tc.method, tc.amount, tc.provided)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
			assert.Equal(t, tc.amount, result.PaidAmount+result.RemainingAmount)
		})
	}
}

func TestResolveInitialAmounts_Errors(t *testing.T) {
	t.Run("NonPositiveAmount", func(t *testing.T) {
		_, err := ResolveInitialAmounts(shared.TransactionTypeSale, shared.PaymentMethodCash, 0, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = ResolveInitialAmounts(shared.TransactionTypePayment, shared.PaymentMethodCash, -10, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("PaidAmountOutOfRange", func(t *testing.T) {
		_, err := ResolveInitialAmounts(shared.TransactionTypeSale, shared.PaymentMethodMixed, 1000, paid(1001))
		assert.ErrorIs(t, err, ErrPaidAmountOutOfRange)

		_, err = ResolveInitialAmounts(shared.TransactionTypeSale, shared.PaymentMethodMixed, 1000, paid(-1))
		assert.ErrorIs(t, err, ErrPaidAmountOutOfRange)
	})

	t.Run("UnknownType", func(t *testing.T) {
		_, err := ResolveInitialAmounts(shared.TransactionType("barter"), shared.PaymentMethodCash, 100, nil)
		assert.ErrorIs(t, err, shared.ErrInvalidTransactionType)
	})

	t.Run("UnknownMethod", func(t *testing.T) {
		_, err := ResolveInitialAmounts(shared.TransactionTypeSale, shared.PaymentMethod("cheque"), 100, nil)
		assert.ErrorIs(t, err, shared.ErrInvalidPaymentMethod)
	})
}

func TestResolveThenStatus_MixedSale(t *testing.T) {
	amounts, err := ResolveInitialAmounts(shared.TransactionTypeSale, shared.PaymentMethodMixed, 2000, paid(800))
	require.NoError(t, err)

	status, err := CalculateStatus(shared.TransactionTypeSale, 2000, amounts.PaidAmount, amounts.RemainingAmount)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), status.RemainingAmount)
	assert.Equal(t, shared.TransactionStatusPartial, status.Status)

	impact, err := CalculateDebtImpact(ImpactInput{
		Type:            shared.TransactionTypeSale,
		PaymentMethod:   amounts.PaymentMethod,
		Amount:          2000,
		RemainingAmount: amounts.RemainingAmount,
	})
	require.NoError(t, err)
	assert.Equal(t, DebtImpact{Change: 1200, IsIncrease: true}, impact)
}
