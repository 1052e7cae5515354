package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleOverpayment(t *testing.T) {
	testCases := []struct {
		name     string
		payment  int64
		debt     int64
		expected Allocation
	}{
		{"Overpayment", 1500, 1000, Allocation{DebtCleared: 1000, CreditCreated: 500}},
		{"ExactPayment", 1000, 1000, Allocation{DebtCleared: 1000, CreditCreated: 0}},
		{"Underpayment", 400, 1000, Allocation{DebtCleared: 400, CreditCreated: 0}},
		{"NoDebt", 750, 0, Allocation{DebtCleared: 0, CreditCreated: 750}},
		{"ZeroPayment", 0, 300, Allocation{}},
		{"NegativeDebtReadAsZero", 100, -50, Allocation{DebtCleared: 0, CreditCreated: 100}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, HandleOverpayment(tc.payment, tc.debt))
		})
	}
}

func TestHandleOverpayment_Conservation(t *testing.T) {
	for payment := int64(0); payment <= 300; payment += 7 {
		for debt := int64(0); debt <= 300; debt += 11 {
			alloc := HandleOverpayment(payment, debt)
			assert.Equal(t, payment, alloc.DebtCleared+alloc.CreditCreated)
			assert.LessOrEqual(t, alloc.DebtCleared, debt)
			assert.GreaterOrEqual(t, alloc.CreditCreated, int64(0))
		}
	}
}
