package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopkeeper-ledger/internal/api_gateway/middleware"
	"github.com/shopkeeper-ledger/internal/api_gateway/service"
	"github.com/shopkeeper-ledger/internal/domain/shared"
	reconciler "github.com/shopkeeper-ledger/internal/reconciler/service"
)

// ReconciliationHandler handles HTTP requests for balance audits and repairs
type ReconciliationHandler struct {
	reconciliationService service.ReconciliationService
	logger                *slog.Logger
}

// NewReconciliationHandler creates a new reconciliation handler
func NewReconciliationHandler(logger *slog.Logger, reconciliationService service.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconciliationService: reconciliationService,
		logger:                logger,
	}
}

// CreateAudit runs an audit synchronously, or hands it to the reconciler with async=true
func (h *ReconciliationHandler) CreateAudit(c *gin.Context) {
	var query AuditQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query parameters")
		return
	}

	var req AuditRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Error("Invalid request body", "error", err)
			RespondBadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}

	customerIDs, err := parseCustomerIDs(req.CustomerIDs)
	if err != nil {
		RespondBadRequest(c, "Invalid customer ID")
		return
	}
	correlationID := middleware.GetCorrelationID(c)

	if query.Async {
		request := &shared.AuditRequest{
			RequestID:     uuid.New(),
			CustomerIDs:   customerIDs,
			Repair:        req.Repair,
			DryRun:        req.DryRun,
			CorrelationID: correlationID,
			RequestedAt:   time.Now(),
		}
		if err := h.reconciliationService.RequestAudit(c.Request.Context(), request); err != nil {
			respondWithServiceError(c, h.logger, "request audit", err)
			return
		}
		RespondAccepted(c, gin.H{
			"request_id": request.RequestID,
			"status":     "QUEUED",
		})
		return
	}

	if req.Repair {
		RespondBadRequest(c, "Repairs are requested on an archived report or with async=true")
		return
	}

	report, err := h.reconciliationService.RunAudit(c.Request.Context(), customerIDs, correlationID)
	if err != nil {
		respondWithServiceError(c, h.logger, "run audit", err)
		return
	}

	RespondCreated(c, report)
}

// GetByID retrieves an archived audit report
func (h *ReconciliationHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	report, err := h.reconciliationService.GetReport(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, h.logger, "get audit report", err)
		return
	}

	RespondOK(c, report)
}

// List returns archived audit reports, newest first
func (h *ReconciliationHandler) List(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	reports, total, err := h.reconciliationService.ListReports(c.Request.Context(), pagination.Page, pagination.PerPage)
	if err != nil {
		respondWithServiceError(c, h.logger, "list audit reports", err)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, reports, pagination.Page, pagination.PerPage, total)
}

// Repair writes back the recomputed balances of a report. dry_run defaults to true.
func (h *ReconciliationHandler) Repair(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var query RepairQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.reconciliationService.RepairReport(c.Request.Context(), id, reconciler.RepairOptions{
		DryRun:        query.DryRun,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		respondWithServiceError(c, h.logger, "repair audit report", err)
		return
	}

	RespondOK(c, result)
}

func (h *ReconciliationHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid report ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid report ID")
		return uuid.Nil, false
	}
	return id, true
}
