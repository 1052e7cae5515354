package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shopkeeper-ledger/internal/domain/reconciliation"
)

const (
	// ReportCollectionName is the name of the audit report collection in MongoDB
	ReportCollectionName = "audit_reports"
)

// ReportIndexes are the indexes the report repository relies on
func ReportIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "report_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "started_at", Value: -1}},
		},
	}
}

// ReportRepository implements the reconciliation.ReportRepository interface for MongoDB
type ReportRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewReportRepository creates a new MongoDB audit report repository
func NewReportRepository(logger *slog.Logger, db *mongo.Database) reconciliation.ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
	}
}

// Save archives a completed audit report
func (r *ReportRepository) Save(ctx context.Context, report *reconciliation.Report) error {
	collection := r.db.Collection(ReportCollectionName)

	if _, err := collection.InsertOne(ctx, report); err != nil {
		r.logger.Error("Failed to save audit report",
			"report_id", report.ID.String(),
			"error", err)
		return fmt.Errorf("failed to save audit report: %w", err)
	}

	return nil
}

// GetByID retrieves an audit report by its ID.
// Returns ErrReportNotFound if no report exists.
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*reconciliation.Report, error) {
	collection := r.db.Collection(ReportCollectionName)

	var report reconciliation.Report
	err := collection.FindOne(ctx, bson.M{"report_id": id}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reconciliation.ErrReportNotFound{ReportID: id}
		}
		r.logger.Error("Failed to get audit report",
			"report_id", id.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get audit report: %w", err)
	}

	return &report, nil
}

// ListRecent retrieves paginated audit reports, newest first
func (r *ReportRepository) ListRecent(ctx context.Context, limit, offset int) ([]*reconciliation.Report, error) {
	collection := r.db.Collection(ReportCollectionName)

	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.logger.Error("Failed to list audit reports", "error", err)
		return nil, fmt.Errorf("failed to list audit reports: %w", err)
	}
	defer cursor.Close(ctx)

	reports := []*reconciliation.Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		r.logger.Error("Failed to decode audit reports", "error", err)
		return nil, fmt.Errorf("failed to decode audit reports: %w", err)
	}

	return reports, nil
}

// Count returns the number of archived audit reports
func (r *ReportRepository) Count(ctx context.Context) (int64, error) {
	collection := r.db.Collection(ReportCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		r.logger.Error("Failed to count audit reports", "error", err)
		return 0, fmt.Errorf("failed to count audit reports: %w", err)
	}

	return count, nil
}

// AppendRepair records a repair run against the report it was derived from.
// Returns ErrReportNotFound if the report doesn't exist.
func (r *ReportRepository) AppendRepair(ctx context.Context, id uuid.UUID, repair reconciliation.RepairResult) error {
	collection := r.db.Collection(ReportCollectionName)

	update := bson.M{"$push": bson.M{"repairs": repair}}
	result, err := collection.UpdateOne(ctx, bson.M{"report_id": id}, update)
	if err != nil {
		r.logger.Error("Failed to append repair to audit report",
			"report_id", id.String(),
			"status", string(repair.Status),
			"error", err)
		return fmt.Errorf("failed to append repair to audit report: %w", err)
	}

	if result.MatchedCount == 0 {
		return reconciliation.ErrReportNotFound{ReportID: id}
	}

	return nil
}
