package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/shopkeeper-ledger/internal/domain/balance"
)

// ValidationHandler exposes the stateless validators
type ValidationHandler struct {
	logger *slog.Logger
}

func NewValidationHandler(logger *slog.Logger) *ValidationHandler {
	return &ValidationHandler{logger: logger}
}

// MixedPayment checks a cash + credit split. A rejected split is a 200 with is_valid false.
func (h *ValidationHandler) MixedPayment(c *gin.Context) {
	var req MixedPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	total, err := parseAmount(req.Total)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	cash, err := parseAmount(req.Cash)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	var credit int64
	if req.Credit != "" {
		if credit, err = parseAmount(req.Credit); err != nil {
			RespondBadRequest(c, err.Error())
			return
		}
	}

	RespondOK(c, balance.ValidateMixedPayment(total, cash, credit))
}
