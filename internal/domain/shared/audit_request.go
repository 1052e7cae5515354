package shared

import (
	"time"

	"github.com/google/uuid"
)

// AuditRequest defines a Kafka message asking the reconciler to audit customer balances
type AuditRequest struct {
	RequestID     uuid.UUID   `json:"request_id"`
	CustomerIDs   []uuid.UUID `json:"customer_ids,omitempty"` // empty means every customer
	Repair        bool        `json:"repair"`
	DryRun        *bool       `json:"dry_run,omitempty"` // repairs are dry runs unless explicitly false
	CorrelationID string      `json:"correlation_id"`
	RequestedAt   time.Time   `json:"requested_at"`
}

// IsDryRun resolves the effective dry-run flag of the request
func (r *AuditRequest) IsDryRun() bool {
	return r.DryRun == nil || *r.DryRun
}
