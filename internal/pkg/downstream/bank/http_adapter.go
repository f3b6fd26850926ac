package bank

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/downstream/retry"
	"payja-lending/internal/pkg/store/models"
)

// HTTPAdapter drives one partner over JSON/HTTP using the partner's dialect.
type HTTPAdapter struct {
	code      string
	baseURL   string
	paths     map[string]string
	dialect   dialect
	transport *transport
	policy    retry.Policy
}

// NewHTTPAdapter builds the adapter for an already validated partner record.
func NewHTTPAdapter(p *models.BankPartner, policy retry.Policy) (*HTTPAdapter, error) {
	d, ok := dialectFor(p.Adapter)
	if !ok {
		return nil, fmt.Errorf("%w: adapter %q", consts.ErrorBankPartnerInvalid, p.Adapter)
	}

	paths := d.defaultPaths()
	for op, path := range p.Endpoints {
		if path != "" {
			paths[op] = path
		}
	}

	return &HTTPAdapter{
		code:      p.Code,
		baseURL:   strings.TrimRight(p.BaseURL, "/"),
		paths:     paths,
		dialect:   d,
		transport: newTransport(p.Code, p.APIKey, time.Duration(p.TimeoutSeconds)*time.Second, d.parseError),
		policy:    policy.WithMaxAttempts(p.MaxRetries + 1),
	}, nil
}

func (a *HTTPAdapter) Code() string {
	return a.code
}

func (a *HTTPAdapter) url(op string) string {
	path := a.paths[op]
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return a.baseURL + path
}

func (a *HTTPAdapter) opName(op string) string {
	return a.code + "." + op
}

func (a *HTTPAdapter) CheckEligibility(ctx context.Context, id Identity) (*Eligibility, error) {
	var out *Eligibility
	err := a.policy.Do(ctx, a.opName(OpEligibility), func(ctx context.Context) error {
		body, err := a.transport.call(ctx, http.MethodPost, a.url(OpEligibility), a.dialect.eligibilityRequest(id), nil)
		if err != nil {
			return err
		}
		out, err = a.dialect.parseEligibility(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RequestDisbursement sends the loan reference as Idempotency-Key so a retried
// attempt cannot move money twice on the partner side.
func (a *HTTPAdapter) RequestDisbursement(ctx context.Context, req DisbursementRequest) (*DisbursementResult, error) {
	headers := map[string]string{"Idempotency-Key": req.Reference}

	var out *DisbursementResult
	err := a.policy.Do(ctx, a.opName(OpDisbursement), func(ctx context.Context) error {
		body, err := a.transport.call(ctx, http.MethodPost, a.url(OpDisbursement), a.dialect.disbursementRequest(req), headers)
		if err != nil {
			return err
		}
		out, err = a.dialect.parseDisbursement(body, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *HTTPAdapter) NotifyPayment(ctx context.Context, notice PaymentNotice) error {
	headers := map[string]string{"Idempotency-Key": notice.PaymentReference}
	return a.policy.Do(ctx, a.opName(OpPayment), func(ctx context.Context) error {
		_, err := a.transport.call(ctx, http.MethodPost, a.url(OpPayment), a.dialect.paymentRequest(notice), headers)
		return err
	})
}

func (a *HTTPAdapter) SyncEmployees(ctx context.Context) ([]Employee, error) {
	var out []Employee
	err := a.policy.Do(ctx, a.opName(OpEmployees), func(ctx context.Context) error {
		body, err := a.transport.call(ctx, http.MethodGet, a.url(OpEmployees), nil, nil)
		if err != nil {
			return err
		}
		out, err = a.dialect.parseEmployees(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
