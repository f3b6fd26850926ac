package error_handling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAPIError(t *testing.T) {
	cause := errors.New("connection reset")

	bankErr := NewBankAPIError(cause, -1)
	assert.Equal(t, "bank", bankErr.Party)
	assert.Equal(t, -1, bankErr.StatusCode)
	assert.ErrorIs(t, bankErr, cause)

	walletErr := NewWalletAPIError(cause)
	assert.Equal(t, 0, walletErr.StatusCode)
	assert.Contains(t, walletErr.Error(), "wallet API error")
	assert.Contains(t, walletErr.Error(), "connection reset")
}

func TestPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want bool
	}{
		{name: "no response", err: &APIError{StatusCode: -1}, want: false},
		{name: "bad request", err: &APIError{StatusCode: 400}, want: true},
		{name: "unauthorized", err: &APIError{StatusCode: 401}, want: true},
		{name: "request timeout", err: &APIError{StatusCode: 408}, want: false},
		{name: "rate limited", err: &APIError{StatusCode: 429}, want: false},
		{name: "server error", err: &APIError{StatusCode: 503}, want: false},
		{name: "declined", err: &APIError{StatusCode: 200, Declined: true}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Permanent())
		})
	}
}
