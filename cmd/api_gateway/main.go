package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopkeeper-ledger/internal/api_gateway"
	"github.com/shopkeeper-ledger/internal/api_gateway/service"
	"github.com/shopkeeper-ledger/internal/config"
	"github.com/shopkeeper-ledger/internal/data/mongo"
	"github.com/shopkeeper-ledger/internal/data/postgres"
	"github.com/shopkeeper-ledger/internal/logger"
	"github.com/shopkeeper-ledger/internal/platform/messaging/producers"
	"github.com/shopkeeper-ledger/internal/platform/persistence"
	"github.com/shopkeeper-ledger/internal/reconciler/components"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}
	if err := mongoDB.EnsureIndexes(appCtx, mongo.ReportCollectionName, mongo.ReportIndexes()); err != nil {
		log.Error("Failed to create audit report indexes", "error", err)
		os.Exit(1)
	}

	// Audit requests go to the reconciler, audit completions of synchronous audits to the balance events topic
	auditRequestProducer, err := producers.NewAuditRequestProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize audit request Kafka producer", "error", err)
		os.Exit(1)
	}
	balanceEventProducer, err := producers.NewBalanceEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize balance event Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	customerRepo := postgres.NewCustomerRepository(log, postgresDB)
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	reportRepo := mongo.NewReportRepository(log, mongoDB.Database())

	// Initialize services
	auditService := components.CreateAuditService(
		postgresDB,
		components.Repositories{
			Customers:    customerRepo,
			Transactions: transactionRepo,
			Outbox:       outboxRepo,
			Reports:      reportRepo,
		},
		balanceEventProducer,
		logger.ForComponent(log, "audit_service"),
		cfg,
	)

	services := api_gateway.Services{
		Customers: service.NewCustomerService(customerRepo, transactionRepo),
		Transactions: service.NewTransactionService(
			logger.ForComponent(log, "transaction_service"),
			postgresDB,
			customerRepo,
			transactionRepo,
			outboxRepo,
			cfg.Reconciliation.OverpaymentPolicy,
		),
		Reconciliation: service.NewReconciliationService(log, auditService, auditRequestProducer),
	}

	// Initialize REST server
	server, err := api_gateway.NewServer(log, cfg, services)
	if err != nil {
		log.Error("Failed to initialize REST server", "error", err)
		os.Exit(1)
	}
	log.Info("REST server initialized", "overpayment_policy", string(cfg.Reconciliation.OverpaymentPolicy))

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server before the stores it uses
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	postgresDB.Close()

	if err = auditRequestProducer.Close(); err != nil {
		log.Error("Error closing audit request Kafka producer", "error", err)
	}
	if err = balanceEventProducer.Close(); err != nil {
		log.Error("Error closing balance event Kafka producer", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
