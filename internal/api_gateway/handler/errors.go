package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/shopkeeper-ledger/internal/api_gateway/middleware"
	"github.com/shopkeeper-ledger/internal/domain/balance"
	"github.com/shopkeeper-ledger/internal/domain/customer"
	"github.com/shopkeeper-ledger/internal/domain/reconciliation"
	"github.com/shopkeeper-ledger/internal/domain/shared"
	"github.com/shopkeeper-ledger/internal/domain/transaction"
	reconciler "github.com/shopkeeper-ledger/internal/reconciler/service"
)

var validationErrors = []error{
	balance.ErrInvalidAmount,
	balance.ErrNegativeAmount,
	balance.ErrPaidAmountOutOfRange,
	shared.ErrInvalidTransactionType,
	shared.ErrInvalidPaymentMethod,
	customer.ErrEmptyName,
	transaction.ErrMissingCustomer,
}

var conflictErrors = []error{
	transaction.ErrTransactionDeleted,
	reconciler.ErrReportAlreadyRepaired,
}

// respondWithServiceError maps service errors onto the response envelope
func respondWithServiceError(c *gin.Context, logger *slog.Logger, operation string, err error) {
	switch {
	case errors.Is(err, customer.ErrCustomerNotFound{}):
		RespondNotFound(c, "Customer not found")
		return
	case errors.Is(err, transaction.ErrTransactionNotFound{}):
		RespondNotFound(c, "Transaction not found")
		return
	case errors.Is(err, reconciliation.ErrReportNotFound{}):
		RespondNotFound(c, "Audit report not found")
		return
	}

	var mixedErr transaction.ErrInvalidMixedPayment
	if errors.As(err, &mixedErr) {
		RespondInvalidMixedPayment(c, mixedErr.Reason)
		return
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			RespondBadRequest(c, err.Error())
			return
		}
	}

	var stale customer.ErrStaleBalances
	if errors.As(err, &stale) {
		RespondStaleBalances(c, err.Error())
		return
	}
	var concurrent customer.ErrConcurrentModification
	if errors.As(err, &concurrent) {
		RespondConflict(c, err.Error())
		return
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			RespondConflict(c, err.Error())
			return
		}
	}

	logger.Error("Failed to "+operation,
		"correlation_id", middleware.GetCorrelationID(c),
		"error", err,
	)
	RespondInternalError(c)
}
