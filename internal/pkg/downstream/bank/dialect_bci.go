package bank

import (
	"encoding/json"
	"net/http"
	"time"

	errs "payja-lending/internal/pkg/downstream/error_handling"
)

// bciDialect speaks the Portuguese-keyed BCI API.
type bciDialect struct{}

type bciEligibilityRequest struct {
	NUIT     string `json:"nuit"`
	BI       string `json:"bi,omitempty"`
	Nome     string `json:"nome,omitempty"`
	Telefone string `json:"telefone,omitempty"`
}

type bciEligibilityResponse struct {
	Elegivel         bool    `json:"elegivel"`
	ValorMaximo      float64 `json:"valorMaximo"`
	Taxa             float64 `json:"taxa"`
	Prazo            int     `json:"prazo"`
	EntidadePatronal string  `json:"entidadePatronal"`
	Salario          float64 `json:"salario"`
}

type bciDisbursementRequest struct {
	Referencia   string  `json:"referencia"`
	Valor        float64 `json:"valor"`
	ContaDestino string  `json:"contaDestino"`
	Telefone     string  `json:"telefone,omitempty"`
}

type bciDisbursementResponse struct {
	Sucesso     bool       `json:"sucesso"`
	IDTransacao string     `json:"idTransacao"`
	Valor       float64    `json:"valor"`
	DataHora    *time.Time `json:"dataHora"`
	Motivo      string     `json:"motivo"`
}

type bciPaymentRequest struct {
	Referencia          string    `json:"referencia"`
	Prestacao           int       `json:"prestacao"`
	Valor               float64   `json:"valor"`
	ReferenciaPagamento string    `json:"referenciaPagamento"`
	DataPagamento       time.Time `json:"dataPagamento"`
}

type bciEmployee struct {
	NUIT             string  `json:"nuit"`
	Nome             string  `json:"nome"`
	Telefone         string  `json:"telefone"`
	BI               string  `json:"bi"`
	EntidadePatronal string  `json:"entidadePatronal"`
	Salario          float64 `json:"salario"`
	LimiteAprovado   float64 `json:"limiteAprovado"`
	ScoreCredito     int     `json:"scoreCredito"`
	DividaActiva     float64 `json:"dividaActiva"`
	ContaActiva      bool    `json:"contaActiva"`
}

type bciEmployeesResponse struct {
	Funcionarios []bciEmployee `json:"funcionarios"`
}

type bciError struct {
	Codigo   string `json:"codigo"`
	Mensagem string `json:"mensagem"`
}

func (bciDialect) defaultPaths() map[string]string {
	return map[string]string{
		OpEligibility:  "/api/v1/elegibilidade",
		OpDisbursement: "/api/v1/desembolso",
		OpPayment:      "/api/v1/pagamentos",
		OpEmployees:    "/api/v1/funcionarios",
	}
}

func (bciDialect) eligibilityRequest(id Identity) any {
	return bciEligibilityRequest{NUIT: id.NUIT, BI: id.BINumber, Nome: id.Name, Telefone: id.PhoneNumber}
}

func (bciDialect) parseEligibility(body []byte) (*Eligibility, error) {
	var resp bciEligibilityResponse
	if err := decodeSuccess(body, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &Eligibility{
		Eligible:     resp.Elegivel,
		MaxAmount:    resp.ValorMaximo,
		InterestRate: resp.Taxa,
		TermMonths:   resp.Prazo,
		Employer:     resp.EntidadePatronal,
		Salary:       resp.Salario,
	}, nil
}

func (bciDialect) disbursementRequest(req DisbursementRequest) any {
	return bciDisbursementRequest{
		Referencia:   req.Reference,
		Valor:        req.Amount,
		ContaDestino: req.Destination,
		Telefone:     req.PhoneNumber,
	}
}

func (bciDialect) parseDisbursement(body []byte, req DisbursementRequest) (*DisbursementResult, error) {
	var resp bciDisbursementResponse
	if err := decodeSuccess(body, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	if !resp.Sucesso {
		return nil, declined(resp.Motivo)
	}
	amount := resp.Valor
	if amount == 0 {
		amount = req.Amount
	}
	return &DisbursementResult{
		TransactionID: resp.IDTransacao,
		Amount:        amount,
		ProcessedAt:   timeOrNow(resp.DataHora),
	}, nil
}

func (bciDialect) paymentRequest(n PaymentNotice) any {
	return bciPaymentRequest{
		Referencia:          n.LoanReference,
		Prestacao:           n.InstallmentNumber,
		Valor:               n.Amount,
		ReferenciaPagamento: n.PaymentReference,
		DataPagamento:       n.PaidAt,
	}
}

func (bciDialect) parseEmployees(body []byte) ([]Employee, error) {
	var resp bciEmployeesResponse
	if err := decodeSuccess(body, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	out := make([]Employee, 0, len(resp.Funcionarios))
	for _, f := range resp.Funcionarios {
		out = append(out, Employee{
			NUIT:          f.NUIT,
			Name:          f.Nome,
			PhoneNumber:   normalizePhone(f.Telefone),
			BINumber:      f.BI,
			Employer:      f.EntidadePatronal,
			Salary:        f.Salario,
			ApprovedLimit: f.LimiteAprovado,
			CreditScore:   f.ScoreCredito,
			ActiveDebt:    f.DividaActiva,
			AccountActive: f.ContaActiva,
		})
	}
	return out, nil
}

func (bciDialect) parseError(statusCode int, body []byte) *errs.APIError {
	var e bciError
	err := json.Unmarshal(body, &e)
	return errorFromEnvelope(statusCode, e.Codigo, e.Mensagem, err)
}
