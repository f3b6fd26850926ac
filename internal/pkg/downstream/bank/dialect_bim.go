package bank

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	errs "payja-lending/internal/pkg/downstream/error_handling"
)

// bimDialect speaks the snake_case BIM API.
type bimDialect struct{}

type bimEligibilityRequest struct {
	TaxID    string `json:"tax_id"`
	IDNumber string `json:"id_number,omitempty"`
	FullName string `json:"full_name,omitempty"`
	MSISDN   string `json:"msisdn,omitempty"`
}

type bimEligibilityResponse struct {
	Eligible     bool    `json:"eligible"`
	MaxAmount    float64 `json:"max_amount"`
	InterestRate float64 `json:"interest_rate"`
	TenorMonths  int     `json:"tenor_months"`
	EmployerName string  `json:"employer_name"`
	NetSalary    float64 `json:"net_salary"`
}

type bimDisbursementRequest struct {
	Reference          string  `json:"reference"`
	Amount             float64 `json:"amount"`
	DestinationAccount string  `json:"destination_account"`
	MSISDN             string  `json:"msisdn,omitempty"`
}

type bimDisbursementResponse struct {
	Status         string     `json:"status"`
	TransactionRef string     `json:"transaction_ref"`
	Amount         float64    `json:"amount"`
	ProcessedAt    *time.Time `json:"processed_at"`
	Reason         string     `json:"reason"`
}

type bimPaymentRequest struct {
	LoanReference    string    `json:"loan_reference"`
	Installment      int       `json:"installment"`
	Amount           float64   `json:"amount"`
	PaymentReference string    `json:"payment_reference"`
	PaidAt           time.Time `json:"paid_at"`
}

type bimEmployee struct {
	TaxID           string  `json:"tax_id"`
	FullName        string  `json:"full_name"`
	MSISDN          string  `json:"msisdn"`
	IDNumber        string  `json:"id_number"`
	EmployerName    string  `json:"employer_name"`
	NetSalary       float64 `json:"net_salary"`
	ApprovedLimit   float64 `json:"approved_limit"`
	CreditScore     int     `json:"credit_score"`
	OutstandingDebt float64 `json:"outstanding_debt"`
	AccountStatus   string  `json:"account_status"`
}

type bimEmployeesResponse struct {
	Employees []bimEmployee `json:"employees"`
}

type bimError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (bimDialect) defaultPaths() map[string]string {
	return map[string]string{
		OpEligibility:  "/v2/credit/eligibility",
		OpDisbursement: "/v2/credit/disbursements",
		OpPayment:      "/v2/credit/repayments",
		OpEmployees:    "/v2/payroll/employees",
	}
}

func (bimDialect) eligibilityRequest(id Identity) any {
	return bimEligibilityRequest{TaxID: id.NUIT, IDNumber: id.BINumber, FullName: id.Name, MSISDN: id.PhoneNumber}
}

func (bimDialect) parseEligibility(body []byte) (*Eligibility, error) {
	var resp bimEligibilityResponse
	if err := decodeSuccess(body, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &Eligibility{
		Eligible:     resp.Eligible,
		MaxAmount:    resp.MaxAmount,
		InterestRate: resp.InterestRate,
		TermMonths:   resp.TenorMonths,
		Employer:     resp.EmployerName,
		Salary:       resp.NetSalary,
	}, nil
}

func (bimDialect) disbursementRequest(req DisbursementRequest) any {
	return bimDisbursementRequest{
		Reference:          req.Reference,
		Amount:             req.Amount,
		DestinationAccount: req.Destination,
		MSISDN:             req.PhoneNumber,
	}
}

func (bimDialect) parseDisbursement(body []byte, req DisbursementRequest) (*DisbursementResult, error) {
	var resp bimDisbursementResponse
	if err := decodeSuccess(body, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	if !strings.EqualFold(resp.Status, "OK") {
		reason := resp.Reason
		if reason == "" {
			reason = resp.Status
		}
		return nil, declined(reason)
	}
	amount := resp.Amount
	if amount == 0 {
		amount = req.Amount
	}
	return &DisbursementResult{
		TransactionID: resp.TransactionRef,
		Amount:        amount,
		ProcessedAt:   timeOrNow(resp.ProcessedAt),
	}, nil
}

func (bimDialect) paymentRequest(n PaymentNotice) any {
	return bimPaymentRequest{
		LoanReference:    n.LoanReference,
		Installment:      n.InstallmentNumber,
		Amount:           n.Amount,
		PaymentReference: n.PaymentReference,
		PaidAt:           n.PaidAt,
	}
}

func (bimDialect) parseEmployees(body []byte) ([]Employee, error) {
	var resp bimEmployeesResponse
	if err := decodeSuccess(body, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	out := make([]Employee, 0, len(resp.Employees))
	for _, e := range resp.Employees {
		out = append(out, Employee{
			NUIT:          e.TaxID,
			Name:          e.FullName,
			PhoneNumber:   normalizePhone(e.MSISDN),
			BINumber:      e.IDNumber,
			Employer:      e.EmployerName,
			Salary:        e.NetSalary,
			ApprovedLimit: e.ApprovedLimit,
			CreditScore:   e.CreditScore,
			ActiveDebt:    e.OutstandingDebt,
			AccountActive: strings.EqualFold(e.AccountStatus, "ACTIVE"),
		})
	}
	return out, nil
}

func (bimDialect) parseError(statusCode int, body []byte) *errs.APIError {
	var e bimError
	err := json.Unmarshal(body, &e)
	return errorFromEnvelope(statusCode, e.Error.Code, e.Error.Message, err)
}
