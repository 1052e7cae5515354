package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopkeeper-ledger/internal/domain/customer"
	"github.com/shopkeeper-ledger/internal/domain/transaction"
)

// CustomerServiceImpl implements the CustomerService interface
type CustomerServiceImpl struct {
	customerRepo    customer.Repository
	transactionRepo transaction.Repository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo customer.Repository, transactionRepo transaction.Repository) CustomerService {
	return &CustomerServiceImpl{
		customerRepo:    customerRepo,
		transactionRepo: transactionRepo,
	}
}

func (s *CustomerServiceImpl) CreateCustomer(ctx context.Context, name, phone string) (*customer.Customer, error) {
	c, err := customer.NewCustomer(name, phone)
	if err != nil {
		return nil, err
	}

	if err := s.customerRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *CustomerServiceImpl) GetCustomer(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

// ListTransactions checks that the customer exists so unknown ids are reported as not found
func (s *CustomerServiceImpl) ListTransactions(ctx context.Context, customerID uuid.UUID) ([]*transaction.Transaction, error) {
	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.transactionRepo.ListActiveByCustomer(ctx, customerID)
}
