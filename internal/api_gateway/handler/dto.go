package handler

import (
	"time"

	"github.com/shopkeeper-ledger/internal/domain/balance"
	"github.com/shopkeeper-ledger/internal/domain/customer"
	"github.com/shopkeeper-ledger/internal/domain/money"
	"github.com/shopkeeper-ledger/internal/domain/transaction"
)

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Phone string `json:"phone" binding:"max=32"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Phone                string `json:"phone,omitempty"`
	OutstandingBalance   int64  `json:"outstanding_balance"`
	OutstandingFormatted string `json:"outstanding_balance_formatted"`
	CreditBalance        int64  `json:"credit_balance"`
	CreditFormatted      string `json:"credit_balance_formatted"`
	TotalSpent           int64  `json:"total_spent"`
	TotalSpentFormatted  string `json:"total_spent_formatted"`
	Version              int    `json:"version"`
	CreatedAt            string `json:"created_at"`
	UpdatedAt            string `json:"updated_at"`
}

// TransactionDraftRequest carries the caller supplied fields of a transaction.
// Amounts are major-unit strings such as "1,250.50".
type TransactionDraftRequest struct {
	Type          string     `json:"type" binding:"required,transaction_type"`
	PaymentMethod string     `json:"payment_method" binding:"omitempty,payment_method"`
	Amount        string     `json:"amount" binding:"required,money_amount"`
	PaidAmount    *string    `json:"paid_amount" binding:"omitempty,money_amount"`
	AppliedToDebt bool       `json:"applied_to_debt"`
	Date          *time.Time `json:"date"`
	Note          string     `json:"note" binding:"max=500"`
}

// CreateTransactionRequest represents a request to record a transaction
type CreateTransactionRequest struct {
	CustomerID string `json:"customer_id" binding:"required,uuid"`
	TransactionDraftRequest
}

// PreviewTransactionRequest previews a draft, optionally against a customer's balances
type PreviewTransactionRequest struct {
	CustomerID string `json:"customer_id" binding:"omitempty,uuid"`
	TransactionDraftRequest
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID                       string  `json:"id"`
	CustomerID               string  `json:"customer_id"`
	Type                     string  `json:"type"`
	PaymentMethod            string  `json:"payment_method"`
	Amount                   int64   `json:"amount"`
	AmountFormatted          string  `json:"amount_formatted"`
	PaidAmount               int64   `json:"paid_amount"`
	RemainingAmount          int64   `json:"remaining_amount"`
	RemainingAmountFormatted string  `json:"remaining_amount_formatted"`
	PercentagePaid           float64 `json:"percentage_paid"`
	AppliedToDebt            bool    `json:"applied_to_debt"`
	Status                   string  `json:"status"`
	Note                     string  `json:"note,omitempty"`
	Date                     string  `json:"date"`
	DebtEffect               int64   `json:"debt_effect"`
	CreditEffect             int64   `json:"credit_effect"`
	IsDeleted                bool    `json:"is_deleted"`
	CreatedAt                string  `json:"created_at"`
	UpdatedAt                string  `json:"updated_at"`
	DeletedAt                string  `json:"deleted_at,omitempty"`
}

// BookingResponse represents a write that changed a customer's balances
type BookingResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Customer    CustomerResponse    `json:"customer"`
	Change      balance.Effect      `json:"change"`
}

// PreviewResponse represents the outcome of previewing a draft
type PreviewResponse struct {
	Amounts       balance.InitialAmounts    `json:"amounts"`
	Status        balance.StatusResult      `json:"status"`
	DebtImpact    balance.DebtImpact        `json:"debt_impact"`
	BalanceImpact balance.BalanceImpact     `json:"balance_impact"`
	MixedPayment  *balance.ValidationResult `json:"mixed_payment,omitempty"`
	Projected     *balance.Balances         `json:"projected_balances,omitempty"`
}

// MixedPaymentRequest represents a cash + credit split to validate. Credit defaults to zero.
type MixedPaymentRequest struct {
	Total  string `json:"total" binding:"required,money_amount"`
	Cash   string `json:"cash" binding:"required,money_amount"`
	Credit string `json:"credit" binding:"omitempty,money_amount"`
}

// AuditRequest represents a request to audit customer balances
type AuditRequest struct {
	CustomerIDs []string `json:"customer_ids" binding:"omitempty,dive,uuid"`
	Repair      bool     `json:"repair"`
	DryRun      *bool    `json:"dry_run"`
}

// AuditQuery holds the query parameters of an audit request
type AuditQuery struct {
	Async bool `form:"async"`
}

// RepairQuery holds the query parameters of a repair request
type RepairQuery struct {
	DryRun bool `form:"dry_run,default=true"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

func mapCustomerToResponse(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:                   c.ID.String(),
		Name:                 c.Name,
		Phone:                c.Phone,
		OutstandingBalance:   c.OutstandingBalance,
		OutstandingFormatted: money.Format(c.OutstandingBalance),
		CreditBalance:        c.CreditBalance,
		CreditFormatted:      money.Format(c.CreditBalance),
		TotalSpent:           c.TotalSpent,
		TotalSpentFormatted:  money.Format(c.TotalSpent),
		Version:              c.Version,
		CreatedAt:            c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            c.UpdatedAt.Format(time.RFC3339),
	}
}

func mapTransactionToResponse(t *transaction.Transaction) TransactionResponse {
	response := TransactionResponse{
		ID:                       t.ID.String(),
		CustomerID:               t.CustomerID.String(),
		Type:                     string(t.Type),
		PaymentMethod:            string(t.PaymentMethod),
		Amount:                   t.Amount,
		AmountFormatted:          money.Format(t.Amount),
		PaidAmount:               t.PaidAmount,
		RemainingAmount:          t.RemainingAmount,
		RemainingAmountFormatted: money.Format(t.RemainingAmount),
		AppliedToDebt:            t.AppliedToDebt,
		Status:                   string(t.Status),
		Note:                     t.Note,
		Date:                     t.Date.Format(time.RFC3339),
		DebtEffect:               t.DebtEffect,
		CreditEffect:             t.CreditEffect,
		IsDeleted:                t.IsDeleted,
		CreatedAt:                t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:                t.UpdatedAt.Format(time.RFC3339),
	}

	if details, err := t.StatusDetails(); err == nil {
		response.PercentagePaid = details.PercentagePaid
	}
	if t.DeletedAt != nil {
		response.DeletedAt = t.DeletedAt.Format(time.RFC3339)
	}

	return response
}
