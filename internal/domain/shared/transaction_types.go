package shared

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidPaymentMethod   = errors.New("invalid payment method")
	ErrInvalidPolicy          = errors.New("invalid overpayment policy")
)

// TransactionType is the kind of money movement recorded against a customer
type TransactionType string

const (
	TransactionTypeSale    TransactionType = "sale"
	TransactionTypePayment TransactionType = "payment"
	TransactionTypeCredit  TransactionType = "credit"
	TransactionTypeRefund  TransactionType = "refund"
)

// TransactionTypes lists every accepted transaction type
var TransactionTypes = []TransactionType{
	TransactionTypeSale,
	TransactionTypePayment,
	TransactionTypeCredit,
	TransactionTypeRefund,
}

func (t TransactionType) IsValid() bool {
	return slices.Contains(TransactionTypes, t)
}

// ParseTransactionType normalizes and validates a raw transaction type
func ParseTransactionType(raw string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q (expected one of %s)", ErrInvalidTransactionType, raw, joinValues(TransactionTypes))
	}
	return t, nil
}

// PaymentMethod describes how a transaction was settled.
// The zero value means "not provided" and is resolved to a default by the balance rules.
type PaymentMethod string

const (
	PaymentMethodUnset        PaymentMethod = ""
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodPOSCard      PaymentMethod = "pos_card"
	PaymentMethodCredit       PaymentMethod = "credit"
	PaymentMethodMixed        PaymentMethod = "mixed"
)

// PaymentMethods lists every accepted payment method
var PaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodBankTransfer,
	PaymentMethodPOSCard,
	PaymentMethodCredit,
	PaymentMethodMixed,
}

func (m PaymentMethod) IsValid() bool {
	return slices.Contains(PaymentMethods, m)
}

// IsImmediate reports whether the method settles the full amount at the point of sale
func (m PaymentMethod) IsImmediate() bool {
	return m == PaymentMethodCash || m == PaymentMethodBankTransfer || m == PaymentMethodPOSCard
}

// ParsePaymentMethod validates a raw payment method. An empty input yields PaymentMethodUnset.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return PaymentMethodUnset, nil
	}
	m := PaymentMethod(normalized)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q (expected one of %s)", ErrInvalidPaymentMethod, raw, joinValues(PaymentMethods))
	}
	return m, nil
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// TransactionStatus is the settlement state derived from the paid/remaining split
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusPartial   TransactionStatus = "partial"
	TransactionStatusCompleted TransactionStatus = "completed"
)

// OverpaymentPolicy decides what happens to the part of a debt-reducing movement
// that exceeds the customer's outstanding balance
type OverpaymentPolicy string

const (
	// OverpaymentRouteToCredit clears debt first and books the excess of a payment as credit
	OverpaymentRouteToCredit OverpaymentPolicy = "route_to_credit"
	// OverpaymentClamp floors the outstanding balance at zero and drops the excess
	OverpaymentClamp OverpaymentPolicy = "clamp"
)

func ParseOverpaymentPolicy(raw string) (OverpaymentPolicy, error) {
	switch p := OverpaymentPolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case OverpaymentRouteToCredit, OverpaymentClamp:
		return p, nil
	case "":
		return OverpaymentRouteToCredit, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, raw)
}

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

// AuditTrigger records what started a reconciliation run
type AuditTrigger string

const (
	AuditTriggerAPI      AuditTrigger = "api"
	AuditTriggerSchedule AuditTrigger = "schedule"
	AuditTriggerMessage  AuditTrigger = "message"
)
