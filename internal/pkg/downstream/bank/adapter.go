package bank

import (
	"context"
	"time"
)

// Operation keys used in a partner's endpoint map.
const (
	OpEligibility  = "eligibility"
	OpDisbursement = "disbursement"
	OpPayment      = "payment"
	OpEmployees    = "employees"
)

// Adapter is the uniform contract every partner bank is driven through.
// Implementations retry transient failures internally and return the error of
// the last attempt.
type Adapter interface {
	Code() string
	CheckEligibility(ctx context.Context, id Identity) (*Eligibility, error)
	RequestDisbursement(ctx context.Context, req DisbursementRequest) (*DisbursementResult, error)
	NotifyPayment(ctx context.Context, notice PaymentNotice) error
	SyncEmployees(ctx context.Context) ([]Employee, error)
}

// Resolver hands out the adapter configured for a bank code.
type Resolver interface {
	Adapter(ctx context.Context, bankCode string) (Adapter, error)
}

type Identity struct {
	NUIT        string
	BINumber    string
	Name        string
	PhoneNumber string
	Institution string
}

type Eligibility struct {
	Eligible     bool
	MaxAmount    float64
	InterestRate float64
	TermMonths   int
	Employer     string
	Salary       float64
}

type DisbursementRequest struct {
	// Reference doubles as the idempotency key on the partner side.
	Reference   string
	Amount      float64
	Destination string
	PhoneNumber string
}

type DisbursementResult struct {
	TransactionID string
	Amount        float64
	ProcessedAt   time.Time
}

type PaymentNotice struct {
	LoanReference     string
	InstallmentNumber int
	Amount            float64
	PaymentReference  string
	PaidAt            time.Time
}

type Employee struct {
	NUIT          string
	Name          string
	PhoneNumber   string
	BINumber      string
	Employer      string
	Salary        float64
	ApprovedLimit float64
	CreditScore   int
	ActiveDebt    float64
	AccountActive bool
}
