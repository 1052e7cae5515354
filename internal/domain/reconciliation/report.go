package reconciliation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopkeeper-ledger/internal/domain/shared"
)

// RepairStatus is the outcome of one repair run
type RepairStatus string

const (
	RepairStatusApplied      RepairStatus = "applied"
	RepairStatusDryRun       RepairStatus = "dry_run"
	RepairStatusNothingToFix RepairStatus = "nothing_to_repair"
	RepairStatusFailed       RepairStatus = "failed"
)

// RepairResult describes a repair run over a set of discrepancies
type RepairResult struct {
	DryRun        bool         `json:"dry_run" bson:"dry_run"`
	Status        RepairStatus `json:"status" bson:"status"`
	Requested     int          `json:"requested" bson:"requested"`
	Applied       int64        `json:"applied" bson:"applied"` // rows changed, or rows that would change on a dry run
	Error         string       `json:"error,omitempty" bson:"error,omitempty"`
	CorrelationID string       `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	ExecutedAt    time.Time    `json:"executed_at" bson:"executed_at"`
}

// Report is an archived audit run
type Report struct {
	ID            uuid.UUID                `json:"id" bson:"report_id"`
	Trigger       shared.AuditTrigger      `json:"trigger" bson:"trigger"`
	CorrelationID string                   `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	Policy        shared.OverpaymentPolicy `json:"policy" bson:"policy"`
	CustomerIDs   []uuid.UUID              `json:"customer_ids,omitempty" bson:"customer_ids,omitempty"` // empty means every customer
	AuditResult   `bson:",inline"`
	Repairs       []RepairResult `json:"repairs,omitempty" bson:"repairs,omitempty"`
	StartedAt     time.Time      `json:"started_at" bson:"started_at"`
	CompletedAt   time.Time      `json:"completed_at" bson:"completed_at"`
}

// NewReport wraps an audit result into a report ready to be archived
func NewReport(trigger shared.AuditTrigger, correlationID string, policy shared.OverpaymentPolicy, customerIDs []uuid.UUID, result AuditResult, startedAt time.Time) *Report {
	return &Report{
		ID:            uuid.New(),
		Trigger:       trigger,
		CorrelationID: correlationID,
		Policy:        policy,
		CustomerIDs:   customerIDs,
		AuditResult:   result,
		StartedAt:     startedAt,
		CompletedAt:   time.Now(),
	}
}

// LastAppliedRepair returns the most recent repair that committed changes, if any
func (r *Report) LastAppliedRepair() *RepairResult {
	for i := len(r.Repairs) - 1; i >= 0; i-- {
		if r.Repairs[i].Status == RepairStatusApplied {
			return &r.Repairs[i]
		}
	}
	return nil
}
