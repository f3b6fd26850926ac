package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"payja-lending/internal/pkg/consts"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", consts.ErrorLoanNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("%w: 42", consts.ErrorInstallmentNotFound), http.StatusNotFound},
		{"invalid request", consts.ErrorInvalidRequest, http.StatusUnprocessableEntity},
		{"amount mismatch", consts.ErrorInstallmentAmountMismatch, http.StatusUnprocessableEntity},
		{"transition", consts.ErrorInvalidStatusTransition, http.StatusConflict},
		{"in progress", consts.ErrorDisbursementInProgress, http.StatusConflict},
		{"bank failure", fmt.Errorf("%w: timeout", consts.ErrorBankDisbursementFailed), http.StatusBadGateway},
		{"ledger imbalance", consts.ErrorLedgerImbalance, http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestRespondBindErrorNamesFields(t *testing.T) {
	engine := new(MockUssdEngine)

	w := postJSON(ussdRouter(engine), http.MethodPost, "/ussd", `{"userInput":"1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{
		"code":"PAYJA_VALIDATION_INVALID_REQUEST",
		"message":"sessionID failed required; phoneNumber failed required"
	}`, w.Body.String())

	w = postJSON(ussdRouter(engine), http.MethodPost, "/ussd", `{"sessionId":`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "request body is not valid JSON")
}
