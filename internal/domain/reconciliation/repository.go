package reconciliation

import (
	"context"

	"github.com/google/uuid"
)

// ReportRepository archives audit reports and their repair history
type ReportRepository interface {
	Save(ctx context.Context, report *Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*Report, error)

	// ListRecent returns reports newest first
	ListRecent(ctx context.Context, limit, offset int) ([]*Report, error)
	Count(ctx context.Context) (int64, error)
	AppendRepair(ctx context.Context, id uuid.UUID, repair RepairResult) error
}

// ErrReportNotFound indicates missing audit report
type ErrReportNotFound struct {
	ReportID uuid.UUID
}

func (e ErrReportNotFound) Error() string {
	return "audit report not found: " + e.ReportID.String()
}

// Is implements the errors.Is interface for ErrReportNotFound
func (e ErrReportNotFound) Is(target error) bool {
	t, ok := target.(ErrReportNotFound)
	if !ok {
		return false
	}
	if t.ReportID == uuid.Nil {
		return true
	}
	return e.ReportID == t.ReportID
}
