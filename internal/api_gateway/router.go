package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopkeeper-ledger/internal/api_gateway/handler"
	"github.com/shopkeeper-ledger/internal/api_gateway/middleware"
)

// handlers groups the HTTP handlers the router mounts
type handlers struct {
	customer       *handler.CustomerHandler
	transaction    *handler.TransactionHandler
	validation     *handler.ValidationHandler
	reconciliation *handler.ReconciliationHandler
}

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, h handlers) {
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger, "/health"))
	r.Use(middleware.Recovery(logger))

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		customers := v1.Group("/customers")
		{
			customers.POST("", h.customer.Create)
			customers.GET("/:id", h.customer.GetByID)
			customers.GET("/:id/transactions", h.customer.ListTransactions)
			customers.GET("/:id/reconciliation", h.customer.Reconciliation)
		}

		transactions := v1.Group("/transactions")
		{
			transactions.POST("", h.transaction.Create)
			transactions.POST("/preview", h.transaction.Preview)
			transactions.GET("/:id", h.transaction.GetByID)
			transactions.PUT("/:id", h.transaction.Update)
			transactions.DELETE("/:id", h.transaction.Delete)
		}

		v1.POST("/validations/mixed-payment", h.validation.MixedPayment)

		audits := v1.Group("/reconciliation/audits")
		{
			audits.POST("", h.reconciliation.CreateAudit)
			audits.GET("", h.reconciliation.List)
			audits.GET("/:id", h.reconciliation.GetByID)
			audits.POST("/:id/repair", h.reconciliation.Repair)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
