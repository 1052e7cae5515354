package balance

// Allocation splits a payment into the part that clears debt and the part that becomes credit
type Allocation struct {
	DebtCleared   int64 `json:"debt_cleared"`
	CreditCreated int64 `json:"credit_created"`
}

// HandleOverpayment allocates a payment against existing debt; the excess becomes credit.
// Negative inputs are read as zero.
func HandleOverpayment(paymentAmount, existingDebt int64) Allocation {
	paymentAmount = max(0, paymentAmount)
	existingDebt = max(0, existingDebt)

	cleared := min(existingDebt, paymentAmount)
	return Allocation{
		DebtCleared:   cleared,
		CreditCreated: paymentAmount - cleared,
	}
}
