package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/shopkeeper-ledger/internal/domain/balance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationHandler_MixedPayment(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	tests := []struct {
		name          string
		body          interface{}
		expectedCode  int
		expectedValid bool
		expectedError string
	}{
		{
			name:          "valid split",
			body:          MixedPaymentRequest{Total: "1,000", Cash: "400", Credit: "600"},
			expectedCode:  http.StatusOK,
			expectedValid: true,
		},
		{
			name:          "within rounding tolerance",
			body:          MixedPaymentRequest{Total: "10.00", Cash: "3.33", Credit: "6.66"},
			expectedCode:  http.StatusOK,
			expectedValid: true,
		},
		{
			name:          "sum mismatch",
			body:          MixedPaymentRequest{Total: "1000", Cash: "400", Credit: "500"},
			expectedCode:  http.StatusOK,
			expectedError: balance.MsgPaymentTotalMismatch,
		},
		{
			name:          "cash covers total",
			body:          MixedPaymentRequest{Total: "1000", Cash: "1000", Credit: "0"},
			expectedCode:  http.StatusOK,
			expectedError: balance.MsgCashNotLessThanTotal,
		},
		{
			name:         "unparseable amount",
			body:         MixedPaymentRequest{Total: "abc", Cash: "1"},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "missing cash",
			body:         `{"total":"10"}`,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t)
			router.POST("/validations/mixed-payment", NewValidationHandler(logger).MixedPayment)

			rr := performJSON(router, http.MethodPost, "/validations/mixed-payment", tt.body)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedCode != http.StatusOK {
				return
			}

			var response DataResponse[balance.ValidationResult]
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedValid, response.Data.IsValid)
			assert.Equal(t, tt.expectedError, response.Data.Error)
		})
	}
}
