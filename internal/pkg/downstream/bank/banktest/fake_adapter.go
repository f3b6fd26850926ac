// Package banktest provides an in-memory bank.Adapter for service tests.
package banktest

import (
	"context"
	"sync"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/downstream/bank"
)

type FakeAdapter struct {
	BankCode string

	EligibilityFn  func(bank.Identity) (*bank.Eligibility, error)
	DisbursementFn func(bank.DisbursementRequest) (*bank.DisbursementResult, error)
	PaymentFn      func(bank.PaymentNotice) error
	EmployeesFn    func() ([]bank.Employee, error)

	mu            sync.Mutex
	Disbursements []bank.DisbursementRequest
	Payments      []bank.PaymentNotice
	Eligibilities []bank.Identity
}

func (f *FakeAdapter) Code() string { return f.BankCode }

func (f *FakeAdapter) CheckEligibility(_ context.Context, id bank.Identity) (*bank.Eligibility, error) {
	f.mu.Lock()
	f.Eligibilities = append(f.Eligibilities, id)
	f.mu.Unlock()
	if f.EligibilityFn == nil {
		return &bank.Eligibility{Eligible: true}, nil
	}
	return f.EligibilityFn(id)
}

func (f *FakeAdapter) RequestDisbursement(_ context.Context, req bank.DisbursementRequest) (*bank.DisbursementResult, error) {
	f.mu.Lock()
	f.Disbursements = append(f.Disbursements, req)
	f.mu.Unlock()
	if f.DisbursementFn == nil {
		return &bank.DisbursementResult{TransactionID: "BANK-" + req.Reference, Amount: req.Amount}, nil
	}
	return f.DisbursementFn(req)
}

func (f *FakeAdapter) NotifyPayment(_ context.Context, n bank.PaymentNotice) error {
	f.mu.Lock()
	f.Payments = append(f.Payments, n)
	f.mu.Unlock()
	if f.PaymentFn == nil {
		return nil
	}
	return f.PaymentFn(n)
}

func (f *FakeAdapter) SyncEmployees(context.Context) ([]bank.Employee, error) {
	if f.EmployeesFn == nil {
		return nil, nil
	}
	return f.EmployeesFn()
}

func (f *FakeAdapter) DisbursementCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Disbursements)
}

// Resolver serves fixed adapters by bank code.
type Resolver map[string]bank.Adapter

func (r Resolver) Adapter(_ context.Context, code string) (bank.Adapter, error) {
	a, ok := r[code]
	if !ok {
		return nil, consts.ErrorUnknownBank
	}
	return a, nil
}
