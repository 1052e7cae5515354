package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopkeeper-ledger/internal/api_gateway/middleware"
	"github.com/shopkeeper-ledger/internal/api_gateway/service"
)

// TransactionHandler handles HTTP requests for transaction operations
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// Create records a transaction and updates the customer's balances
func (h *TransactionHandler) Create(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		RespondBadRequest(c, "Invalid customer ID")
		return
	}

	draft, err := req.toDraft()
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.transactionService.RecordTransaction(c.Request.Context(), customerID, draft, middleware.GetCorrelationID(c))
	if err != nil {
		respondWithServiceError(c, h.logger, "record transaction", err)
		return
	}

	RespondCreated(c, mapBookingToResponse(result))
}

// GetByID retrieves transaction details by its ID, returns 404 if not found
func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, h.logger, "get transaction", err)
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

// Update revises a transaction and re-books its balance effect
func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req TransactionDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	draft, err := req.toDraft()
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.transactionService.ReviseTransaction(c.Request.Context(), id, draft, middleware.GetCorrelationID(c))
	if err != nil {
		respondWithServiceError(c, h.logger, "revise transaction", err)
		return
	}

	RespondOK(c, mapBookingToResponse(result))
}

// Delete soft deletes a transaction and reverses its balance effect
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	result, err := h.transactionService.DeleteTransaction(c.Request.Context(), id, middleware.GetCorrelationID(c))
	if err != nil {
		respondWithServiceError(c, h.logger, "delete transaction", err)
		return
	}

	RespondOK(c, mapBookingToResponse(result))
}

// Preview shows the split, status and balance impact of a draft without storing it
func (h *TransactionHandler) Preview(c *gin.Context) {
	var req PreviewTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	draft, err := req.toDraft()
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	var customerID *uuid.UUID
	if req.CustomerID != "" {
		id, err := uuid.Parse(req.CustomerID)
		if err != nil {
			RespondBadRequest(c, "Invalid customer ID")
			return
		}
		customerID = &id
	}

	preview, err := h.transactionService.PreviewTransaction(c.Request.Context(), draft, customerID)
	if err != nil {
		respondWithServiceError(c, h.logger, "preview transaction", err)
		return
	}

	RespondOK(c, PreviewResponse{
		Amounts:       preview.Amounts,
		Status:        preview.Status,
		DebtImpact:    preview.DebtImpact,
		BalanceImpact: preview.BalanceImpact,
		MixedPayment:  preview.MixedPayment,
		Projected:     preview.Projected,
	})
}

func (h *TransactionHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid transaction ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transaction ID")
		return uuid.Nil, false
	}
	return id, true
}

func mapBookingToResponse(result *service.BookingResult) BookingResponse {
	return BookingResponse{
		Transaction: mapTransactionToResponse(result.Transaction),
		Customer:    mapCustomerToResponse(result.Customer),
		Change:      result.Change,
	}
}
