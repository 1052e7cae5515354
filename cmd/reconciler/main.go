package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/shopkeeper-ledger/internal/config"
	"github.com/shopkeeper-ledger/internal/data/mongo"
	"github.com/shopkeeper-ledger/internal/data/postgres"
	"github.com/shopkeeper-ledger/internal/logger"
	"github.com/shopkeeper-ledger/internal/platform/messaging/consumers"
	"github.com/shopkeeper-ledger/internal/platform/messaging/producers"
	"github.com/shopkeeper-ledger/internal/platform/persistence"
	"github.com/shopkeeper-ledger/internal/reconciler/components"
	"github.com/shopkeeper-ledger/internal/reconciler/consumer"
	"github.com/shopkeeper-ledger/internal/reconciler/outbox_poller"
	"github.com/shopkeeper-ledger/internal/reconciler/scheduler"
	"github.com/shopkeeper-ledger/internal/reconciler/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("reconciler")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Reconciler",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"overpayment_policy", string(cfg.Reconciliation.OverpaymentPolicy),
	)

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

	// Initialize repositories
	customerRepo := postgres.NewCustomerRepository(log, postgresDB)
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	reportRepo := mongo.NewReportRepository(log, mongoDB.Database())

	// Initialize Kafka producers
	balanceEventProducer, err := producers.NewBalanceEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize balance event Kafka producer", "error", err)
		os.Exit(1)
	}

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	var deadLetters producers.DeadLetterPublisher
	if dlqProducer != nil {
		deadLetters = dlqProducer
	}

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize audit service and the worker pool in front of it
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
	requestProcessor := components.CreateRequestProcessor(auditService, log, cfg)

	// Initialize audit request handler
	auditRequestHandler := consumer.NewAuditRequestHandler(
		logger.ForComponent(log, "audit_request_handler"),
		requestProcessor,
		deadLetters,
	)

	// Initialize outbox poller
	balancePublisher := outbox_poller.NewBalancePublisher(
		outboxRepo,
		balanceEventProducer,
		logger.ForComponent(log, "balance_publisher"),
	)
	poller := outbox_poller.NewPoller(
		&cfg.Outbox,
		outboxRepo,
		balancePublisher,
		logger.ForComponent(log, "outbox_poller"),
	)

	auditScheduler := scheduler.NewScheduler(&cfg.Reconciliation, auditService, logger.ForComponent(log, "scheduler"))

	// Create error channel for service errors
	errChan := make(chan error, 3)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumer
	log.Info("Starting Kafka consumer",
		"topic", cfg.Kafka.AuditRequestTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := kafkaConsumer.Subscribe(appCtx, auditRequestHandler.HandleMessage); err != nil {
		errChan <- fmt.Errorf("kafka consumer error: %w", err)
	}

	// Start outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	if auditScheduler.Enabled() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			auditScheduler.Start(appCtx)
		}()
	}

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Shutdown the worker pool if the processor is one
	if workerPool, ok := requestProcessor.(*service.WorkerPoolRequestProcessor); ok {
		log.Info("Shutting down worker pool", "running_workers", workerPool.Running())
		workerPool.Shutdown()
	}

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if dlqProducer != nil {
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	if err = balanceEventProducer.Close(); err != nil {
		log.Error("Error closing balance event Kafka producer", "error", err)
	}

	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Reconciler shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Reconciler shutdown completed with errors")
	} else {
		log.Info("Reconciler shutdown completed successfully")
	}
}
