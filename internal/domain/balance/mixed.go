package balance

// MixedPaymentTolerance is the rounding slack, in minor units, allowed between the
// cash + credit split and the transaction total
const MixedPaymentTolerance int64 = 1

const (
	MsgNegativePaymentAmounts = "Payment amounts cannot be negative"
	MsgPaymentTotalMismatch   = "Payment amounts must equal total amount"
	MsgCashNotLessThanTotal   = "For mixed payments, cash amount must be less than total"
)

// ValidationResult is the structured outcome of a validator
type ValidationResult struct {
	IsValid bool   `json:"is_valid"`
	Error   string `json:"error,omitempty"`
}

func invalid(msg string) ValidationResult {
	return ValidationResult{IsValid: false, Error: msg}
}

// ValidateMixedPayment checks a cash + credit split against the total, all in minor units.
// Pass credit as 0 when the caller did not supply it.
func ValidateMixedPayment(total, cash, credit int64) ValidationResult {
	if cash < 0 || credit < 0 || total < 0 {
		return invalid(MsgNegativePaymentAmounts)
	}

	diff := cash + credit - total
	if diff > MixedPaymentTolerance || diff < -MixedPaymentTolerance {
		return invalid(MsgPaymentTotalMismatch)
	}

	// a mixed payment always leaves a credit remainder
	if cash >= total {
		return invalid(MsgCashNotLessThanTotal)
	}

	return ValidationResult{IsValid: true}
}
