package bank

import (
	errs "payja-lending/internal/pkg/downstream/error_handling"
)

// dialect translates between the normalized contract and one partner's wire
// format. Nothing outside this package sees partner field names.
type dialect interface {
	defaultPaths() map[string]string

	eligibilityRequest(id Identity) any
	parseEligibility(body []byte) (*Eligibility, error)

	disbursementRequest(req DisbursementRequest) any
	parseDisbursement(body []byte, req DisbursementRequest) (*DisbursementResult, error)

	paymentRequest(notice PaymentNotice) any

	parseEmployees(body []byte) ([]Employee, error)

	parseError(statusCode int, body []byte) *errs.APIError
}

func dialectFor(adapter string) (dialect, bool) {
	switch adapter {
	case "bci":
		return bciDialect{}, true
	case "bim":
		return bimDialect{}, true
	}
	return nil, false
}
