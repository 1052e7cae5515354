package service

import (
	"context"
	"log/slog"

	"github.com/panjf2000/ants/v2"
	"github.com/shopkeeper-ledger/internal/domain/shared"
)

// WorkerPoolRequestProcessor bounds how many audit requests run at once
type WorkerPoolRequestProcessor struct {
	baseProcessor RequestProcessor
	pool          *ants.Pool
	logger        *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolRequestProcessor(
	baseProcessor RequestProcessor,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolRequestProcessor, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolRequestProcessor{
		baseProcessor: baseProcessor,
		pool:          pool,
		logger:        logger,
	}, nil
}

// ProcessRequest submits an audit request to the worker pool and waits for its outcome
func (p *WorkerPoolRequestProcessor) ProcessRequest(ctx context.Context, request *shared.AuditRequest) error {
	logger := p.logger
	if request.CorrelationID != "" {
		logger = p.logger.With("correlation_id", request.CorrelationID)
	}

	requestID := request.RequestID.String()
	logger.Info("Submitting audit request to worker pool", "request_id", requestID)

	resultChan := make(chan error, 1)

	// Copy the request to avoid data races with the caller
	requestCopy := *request

	err := p.pool.Submit(func() {
		resultChan <- p.baseProcessor.ProcessRequest(ctx, &requestCopy)
	})
	if err != nil {
		logger.Error("Failed to submit audit request to worker pool",
			"request_id", requestID,
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (p *WorkerPoolRequestProcessor) Shutdown() {
	p.logger.Info("Shutting down worker pool", "running_workers", p.pool.Running())
	p.pool.Release()
}

// Running returns the number of running workers in the pool.
func (p *WorkerPoolRequestProcessor) Running() int {
	return p.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (p *WorkerPoolRequestProcessor) Capacity() int {
	return p.pool.Cap()
}
