package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopkeeper-ledger/internal/api_gateway/service"
)

// CustomerHandler handles HTTP requests for customer operations
type CustomerHandler struct {
	customerService       service.CustomerService
	reconciliationService service.ReconciliationService
	logger                *slog.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(logger *slog.Logger, customerService service.CustomerService, reconciliationService service.ReconciliationService) *CustomerHandler {
	return &CustomerHandler{
		customerService:       customerService,
		reconciliationService: reconciliationService,
		logger:                logger,
	}
}

// Create handles creation of a new customer with zero balances
func (h *CustomerHandler) Create(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.customerService.CreateCustomer(c.Request.Context(), req.Name, req.Phone)
	if err != nil {
		respondWithServiceError(c, h.logger, "create customer", err)
		return
	}

	RespondCreated(c, mapCustomerToResponse(created))
}

// GetByID retrieves a customer by its ID, returning 404 if not found
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	found, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, h.logger, "get customer", err)
		return
	}

	RespondOK(c, mapCustomerToResponse(found))
}

// ListTransactions returns the customer's active transactions in booking order
func (h *CustomerHandler) ListTransactions(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	txns, err := h.customerService.ListTransactions(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, h.logger, "list transactions", err)
		return
	}

	transactions := make([]TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		transactions = append(transactions, mapTransactionToResponse(txn))
	}

	RespondOK(c, transactions)
}

// Reconciliation compares the customer's stored balances with the recomputed ones
func (h *CustomerHandler) Reconciliation(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	check, err := h.reconciliationService.CheckCustomer(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, h.logger, "check customer balances", err)
		return
	}

	RespondOK(c, check)
}

func (h *CustomerHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid customer ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid customer ID")
		return uuid.Nil, false
	}
	return id, true
}
