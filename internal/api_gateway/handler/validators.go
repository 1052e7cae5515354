package handler

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopkeeper-ledger/internal/domain/money"
	"github.com/shopkeeper-ledger/internal/domain/shared"
	"github.com/shopkeeper-ledger/internal/domain/transaction"
)

var registerOnce sync.Once

// RegisterValidators adds the ledger binding rules to gin's validator
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("unexpected binding validator engine")
			return
		}
		if err = v.RegisterValidation("money_amount", validateMoneyAmount); err != nil {
			return
		}
		if err = v.RegisterValidation("transaction_type", validateTransactionType); err != nil {
			return
		}
		err = v.RegisterValidation("payment_method", validatePaymentMethod)
	})
	return err
}

func validateMoneyAmount(fl validator.FieldLevel) bool {
	return money.ParseAmount(fl.Field().String()).Success
}

func validateTransactionType(fl validator.FieldLevel) bool {
	_, err := shared.ParseTransactionType(fl.Field().String())
	return err == nil
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	_, err := shared.ParsePaymentMethod(fl.Field().String())
	return err == nil
}

// parseAmount converts a bound amount string to minor units
func parseAmount(raw string) (int64, error) {
	result := money.ParseAmount(raw)
	if !result.Success {
		return 0, errors.New(result.Error)
	}
	return result.Value, nil
}

// toDraft converts the request into a domain draft
func (r TransactionDraftRequest) toDraft() (transaction.Draft, error) {
	txType, err := shared.ParseTransactionType(r.Type)
	if err != nil {
		return transaction.Draft{}, err
	}
	method, err := shared.ParsePaymentMethod(r.PaymentMethod)
	if err != nil {
		return transaction.Draft{}, err
	}
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return transaction.Draft{}, err
	}

	draft := transaction.Draft{
		Type:          txType,
		PaymentMethod: method,
		Amount:        amount,
		AppliedToDebt: r.AppliedToDebt,
		Note:          r.Note,
	}
	if r.PaidAmount != nil {
		paid, err := parseAmount(*r.PaidAmount)
		if err != nil {
			return transaction.Draft{}, err
		}
		draft.PaidAmount = &paid
	}
	if r.Date != nil {
		draft.Date = *r.Date
	}
	return draft, nil
}

// parseCustomerIDs converts bound ids; binding has already checked their format
func parseCustomerIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
