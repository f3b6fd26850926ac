package error_handling

import (
	"fmt"
	"net/http"
)

// APIError is returned by the bank and wallet clients. StatusCode is -1 when
// no response was received.
type APIError struct {
	Party        string `json:"-"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	StatusCode   int    `json:"-"`
	// Declined marks a well-formed business refusal (e.g. "sucesso": false).
	Declined bool `json:"-"`
	Err      error
}

func NewBankAPIError(err error, statusCode ...int) *APIError {
	return newAPIError("bank", err, statusCode...)
}

func NewWalletAPIError(err error, statusCode ...int) *APIError {
	return newAPIError("wallet", err, statusCode...)
}

func newAPIError(party string, err error, statusCode ...int) *APIError {
	e := &APIError{Party: party, Err: err}
	if len(statusCode) > 0 {
		e.StatusCode = statusCode[0]
	}
	return e
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: statusCode=%d, err:%v, errorCode=%v, errorMessage=%s",
		e.Party,
		e.StatusCode,
		e.Err,
		e.ErrorCode,
		e.ErrorMessage,
	)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Permanent reports whether repeating the call cannot succeed: client errors and
// business declines. Timeouts, missing responses and 5xx are transient.
func (e *APIError) Permanent() bool {
	if e.Declined {
		return true
	}
	return e.StatusCode >= http.StatusBadRequest &&
		e.StatusCode < http.StatusInternalServerError &&
		e.StatusCode != http.StatusTooManyRequests &&
		e.StatusCode != http.StatusRequestTimeout
}
