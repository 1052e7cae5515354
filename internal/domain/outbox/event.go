package outbox

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper-ledger/internal/domain/balance"
	"github.com/shopkeeper-ledger/internal/domain/reconciliation"
	"github.com/shopkeeper-ledger/internal/domain/shared"
)

// EventType names what happened to a customer's balances
type EventType string

const (
	EventTransactionRecorded EventType = "transaction.recorded"
	EventTransactionRevised  EventType = "transaction.revised"
	EventTransactionDeleted  EventType = "transaction.deleted"
	EventBalancesRepaired    EventType = "balances.repaired"
	EventAuditCompleted      EventType = "audit.completed"
)

// BalanceEvent is published for every committed change of a customer's balances
type BalanceEvent struct {
	EventID       uuid.UUID        `json:"event_id"`
	Type          EventType        `json:"type"`
	CustomerID    uuid.UUID        `json:"customer_id"`
	TransactionID *uuid.UUID       `json:"transaction_id,omitempty"`
	Balances      balance.Balances `json:"balances"`
	Change        balance.Effect   `json:"change"`
	CorrelationID string           `json:"correlation_id,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// NewBalanceEvent builds an event for the customer's balances after a change
func NewBalanceEvent(eventType EventType, customerID uuid.UUID, transactionID *uuid.UUID, after balance.Balances, change balance.Effect, correlationID string) *BalanceEvent {
	return &BalanceEvent{
		EventID:       uuid.New(),
		Type:          eventType,
		CustomerID:    customerID,
		TransactionID: transactionID,
		Balances:      after,
		Change:        change,
		CorrelationID: correlationID,
		OccurredAt:    time.Now().UTC(),
	}
}

// AuditCompletedEvent summarises a finished audit run. It is published directly, not through the outbox.
type AuditCompletedEvent struct {
	EventID              uuid.UUID           `json:"event_id"`
	Type                 EventType           `json:"type"`
	ReportID             uuid.UUID           `json:"report_id"`
	Trigger              shared.AuditTrigger `json:"trigger"`
	CustomersChecked     int                 `json:"customers_checked"`
	Discrepancies        int                 `json:"discrepancies"`
	OrphanedTransactions int                 `json:"orphaned_transactions"`
	Failures             int                 `json:"failures"`
	CorrelationID        string              `json:"correlation_id,omitempty"`
	OccurredAt           time.Time           `json:"occurred_at"`
}

// NewAuditCompletedEvent builds the notification for an archived report
func NewAuditCompletedEvent(report *reconciliation.Report) *AuditCompletedEvent {
	return &AuditCompletedEvent{
		EventID:              uuid.New(),
		Type:                 EventAuditCompleted,
		ReportID:             report.ID,
		Trigger:              report.Trigger,
		CustomersChecked:     report.CustomersChecked,
		Discrepancies:        len(report.Discrepancies),
		OrphanedTransactions: len(report.OrphanedTransactions),
		Failures:             len(report.Failures),
		CorrelationID:        report.CorrelationID,
		OccurredAt:           time.Now().UTC(),
	}
}
