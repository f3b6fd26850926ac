package loans

import (
	"context"
	"errors"
	"testing"
	"time"

	"payja-lending/internal/pkg/config"
	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/downstream/bank"
	"payja-lending/internal/pkg/downstream/bank/banktest"
	"payja-lending/internal/pkg/store/memstore"
	"payja-lending/internal/pkg/store/models"
	"payja-lending/internal/service/servicetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubScorer struct {
	decision consts.ScoringDecision
	err      error
	calls    int
}

func (s *stubScorer) CalculateScoring(_ context.Context, _ *models.Customer, loan *models.Loan) (*models.ScoringResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &models.ScoringResult{LoanID: loan.ID, Decision: s.decision, FinalScore: 75}, nil
}

type fixture struct {
	svc          *LoanGatewayService
	loans        *memstore.Loans
	installments *memstore.Installments
	scorer       *stubScorer
	adapter      *banktest.FakeAdapter
	sms          *servicetest.SmsRecorder
	events       *servicetest.EventRecorder
}

var fixedNow = time.Date(2026, 4, 10, 9, 30, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		loans:        &memstore.Loans{},
		installments: &memstore.Installments{},
		scorer:       &stubScorer{decision: consts.DecisionApproved},
		adapter:      &banktest.FakeAdapter{BankCode: "BCI"},
		sms:          &servicetest.SmsRecorder{},
		events:       &servicetest.EventRecorder{},
	}
	svc, err := NewLoanGatewayService(
		f.loans, f.installments, f.scorer, banktest.Resolver{"BCI": f.adapter}, f.sms, f.events,
		config.LoanConfig{ReferenceNodeID: 1, Channel: "USSD"},
		config.CommissionConfig{BankRate: 0.08, AggregatorRate: 0.03, WalletRate: 0.03},
	)
	require.NoError(t, err)
	svc.now = func() time.Time { return fixedNow }
	f.svc = svc
	return f
}

func testCustomer() *models.Customer {
	return &models.Customer{ID: primitive.NewObjectID(), PhoneNumber: "258841234567", BankCode: "BCI", CreditLimit: 20000}
}

func TestCreateLoanSnapshotsTermsAndCommission(t *testing.T) {
	f := newFixture(t)
	loan, err := f.svc.CreateLoan(context.Background(), LoanRequest{
		Customer:  testCustomer(),
		SessionID: "sess-1",
		Amount:    3000,
		TermCode:  "M3",
		Purpose:   "EDUCACAO",
		BankCode:  "BCI",
	})
	require.NoError(t, err)

	assert.Equal(t, consts.LoanStatusAnalyzing, loan.Status)
	assert.Equal(t, 600.0, loan.InterestAmount)
	assert.Equal(t, 3600.0, loan.TotalAmount)
	assert.Equal(t, 3, loan.InstallmentCount)
	assert.Equal(t, 1200.0, loan.InstallmentAmount)
	assert.Equal(t, 3, loan.TermMonths)
	assert.Equal(t, models.CommissionRates{Bank: 0.08, Aggregator: 0.03, Wallet: 0.03}, loan.Commission)
	assert.Equal(t, "USSD", loan.Channel)
	assert.Regexp(t, `^PJ[0-9A-Z]+$`, loan.Reference)
	assert.Equal(t, fixedNow.AddDate(0, 3, 0), *loan.DueDate)
	assert.Equal(t, []consts.LoanEventType{consts.EventLoanCreated}, f.events.Types())
	assert.Len(t, f.sms.ByCategory(consts.SmsCategoryLoan), 1)
}

func TestCreateLoanIsIdempotentPerSession(t *testing.T) {
	f := newFixture(t)
	req := LoanRequest{Customer: testCustomer(), SessionID: "sess-1", Amount: 1000, TermCode: "D7", BankCode: "BCI"}

	first, err := f.svc.CreateLoan(context.Background(), req)
	require.NoError(t, err)
	second, err := f.svc.CreateLoan(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.events.Events, 1)
}

func TestCreateLoanRejectsUnknownTerm(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateLoan(context.Background(), LoanRequest{Customer: testCustomer(), Amount: 1000, TermCode: "Y1"})
	assert.ErrorIs(t, err, consts.ErrorUnknownTerm)
}

func TestDecide(t *testing.T) {
	t.Run("approved", func(t *testing.T) {
		f := newFixture(t)
		c := testCustomer()
		loan, err := f.svc.CreateLoan(context.Background(), LoanRequest{Customer: c, SessionID: "s", Amount: 1000, TermCode: "D7", BankCode: "BCI"})
		require.NoError(t, err)

		updated, result, err := f.svc.Decide(context.Background(), c, loan)
		require.NoError(t, err)
		assert.Equal(t, consts.DecisionApproved, result.Decision)
		assert.Equal(t, consts.LoanStatusApproved, updated.Status)

		stored, _ := f.loans.FindByID(context.Background(), loan.ID)
		assert.Equal(t, consts.LoanStatusApproved, stored.Status)
	})

	t.Run("rejected", func(t *testing.T) {
		f := newFixture(t)
		f.scorer.decision = consts.DecisionRejected
		c := testCustomer()
		loan, err := f.svc.CreateLoan(context.Background(), LoanRequest{Customer: c, SessionID: "s", Amount: 1000, TermCode: "D7", BankCode: "BCI"})
		require.NoError(t, err)

		updated, _, err := f.svc.Decide(context.Background(), c, loan)
		require.NoError(t, err)
		assert.Equal(t, consts.LoanStatusRejected, updated.Status)
		assert.Contains(t, f.events.Types(), consts.EventLoanRejected)
	})

	t.Run("scoring unavailable leaves loan analyzing", func(t *testing.T) {
		f := newFixture(t)
		f.scorer.err = consts.ErrorScoringUnavailable
		c := testCustomer()
		loan, err := f.svc.CreateLoan(context.Background(), LoanRequest{Customer: c, SessionID: "s", Amount: 1000, TermCode: "D7", BankCode: "BCI"})
		require.NoError(t, err)

		same, _, err := f.svc.Decide(context.Background(), c, loan)
		assert.ErrorIs(t, err, consts.ErrorScoringUnavailable)
		assert.Equal(t, consts.LoanStatusAnalyzing, same.Status)
	})
}

func TestTransitionStatus(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		from    consts.LoanStatus
		to      consts.LoanStatus
		wantErr error
	}{
		{consts.LoanStatusAnalyzing, consts.LoanStatusApproved, nil},
		{consts.LoanStatusApproved, consts.LoanStatusDisbursed, nil},
		{consts.LoanStatusActive, consts.LoanStatusOverdue, nil},
		{consts.LoanStatusOverdue, consts.LoanStatusCompleted, nil},
		{consts.LoanStatusAnalyzing, consts.LoanStatusDisbursed, consts.ErrorInvalidStatusTransition},
		{consts.LoanStatusRejected, consts.LoanStatusApproved, consts.ErrorInvalidStatusTransition},
		{consts.LoanStatusCompleted, consts.LoanStatusActive, consts.ErrorInvalidStatusTransition},
		{consts.LoanStatusDisbursed, consts.LoanStatusCompleted, consts.ErrorInvalidStatusTransition},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			f := newFixture(t)
			loan := f.loans.Put(models.Loan{Reference: "PJ1", Status: tt.from})

			got, err := f.svc.TransitionStatus(ctx, loan.ID, tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				stored, _ := f.loans.FindByID(ctx, loan.ID)
				assert.Equal(t, tt.from, stored.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
		})
	}

	t.Run("unknown loan", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.TransitionStatus(ctx, primitive.NewObjectID(), consts.LoanStatusApproved)
		assert.ErrorIs(t, err, consts.ErrorLoanNotFound)
	})

	t.Run("disbursed stamps timestamp", func(t *testing.T) {
		f := newFixture(t)
		loan := f.loans.Put(models.Loan{Reference: "PJ2", Status: consts.LoanStatusApproved})
		_, err := f.svc.TransitionStatus(ctx, loan.ID, consts.LoanStatusDisbursed)
		require.NoError(t, err)
		stored, _ := f.loans.FindByID(ctx, loan.ID)
		require.NotNil(t, stored.DisbursedAt)
		assert.True(t, fixedNow.Equal(*stored.DisbursedAt))
	})
}

func seedActiveLoan(f *fixture, status consts.LoanStatus, statuses ...consts.InstallmentStatus) models.Loan {
	loan := f.loans.Put(models.Loan{Reference: "PJ77", PhoneNumber: "258841234567", BankCode: "BCI", Status: status})
	var schedule []models.Installment
	for i, st := range statuses {
		schedule = append(schedule, models.Installment{
			LoanID: loan.ID, Number: i + 1, Amount: 1200, DueDate: fixedNow.AddDate(0, i, 0), Status: st,
		})
	}
	_ = f.installments.CreateSchedule(context.Background(), schedule)
	return loan
}

func TestPayInstallment(t *testing.T) {
	ctx := context.Background()

	t.Run("partial repayment keeps loan active", func(t *testing.T) {
		f := newFixture(t)
		loan := seedActiveLoan(f, consts.LoanStatusActive, consts.InstallmentPending, consts.InstallmentPending)

		inst, err := f.svc.PayInstallment(ctx, PaymentRequest{LoanID: loan.ID, Number: 1, Amount: 1200, Reference: "MP-1"})
		require.NoError(t, err)
		assert.Equal(t, consts.InstallmentPaid, inst.Status)

		stored, _ := f.loans.FindByID(ctx, loan.ID)
		assert.Equal(t, consts.LoanStatusActive, stored.Status)
		require.Len(t, f.adapter.Payments, 1)
		assert.Equal(t, bank.PaymentNotice{
			LoanReference: "PJ77", InstallmentNumber: 1, Amount: 1200, PaymentReference: "MP-1", PaidAt: fixedNow,
		}, f.adapter.Payments[0])
	})

	t.Run("last installment completes loan", func(t *testing.T) {
		f := newFixture(t)
		loan := seedActiveLoan(f, consts.LoanStatusActive, consts.InstallmentPaid, consts.InstallmentPending)

		_, err := f.svc.PayInstallment(ctx, PaymentRequest{LoanID: loan.ID, Number: 2, Amount: 1200, Reference: "MP-2"})
		require.NoError(t, err)
		stored, _ := f.loans.FindByID(ctx, loan.ID)
		assert.Equal(t, consts.LoanStatusCompleted, stored.Status)
		assert.Contains(t, f.events.Types(), consts.EventLoanCompleted)
	})

	t.Run("clearing overdue installment reactivates loan", func(t *testing.T) {
		f := newFixture(t)
		loan := seedActiveLoan(f, consts.LoanStatusOverdue, consts.InstallmentOverdue, consts.InstallmentPending)

		_, err := f.svc.PayInstallment(ctx, PaymentRequest{LoanID: loan.ID, Number: 1, Amount: 1200, Reference: "MP-3"})
		require.NoError(t, err)
		stored, _ := f.loans.FindByID(ctx, loan.ID)
		assert.Equal(t, consts.LoanStatusActive, stored.Status)
	})

	t.Run("already paid", func(t *testing.T) {
		f := newFixture(t)
		loan := seedActiveLoan(f, consts.LoanStatusActive, consts.InstallmentPaid, consts.InstallmentPending)

		_, err := f.svc.PayInstallment(ctx, PaymentRequest{LoanID: loan.ID, Number: 1, Amount: 1200, Reference: "MP-4"})
		assert.ErrorIs(t, err, consts.ErrorInstallmentAlreadyPaid)
		assert.Empty(t, f.adapter.Payments)
	})

	t.Run("short payment", func(t *testing.T) {
		f := newFixture(t)
		loan := seedActiveLoan(f, consts.LoanStatusActive, consts.InstallmentPending)

		_, err := f.svc.PayInstallment(ctx, PaymentRequest{LoanID: loan.ID, Number: 1, Amount: 1000, Reference: "MP-5"})
		assert.ErrorIs(t, err, consts.ErrorInstallmentAmountMismatch)
	})

	t.Run("unknown installment", func(t *testing.T) {
		f := newFixture(t)
		loan := seedActiveLoan(f, consts.LoanStatusActive, consts.InstallmentPending)

		_, err := f.svc.PayInstallment(ctx, PaymentRequest{LoanID: loan.ID, Number: 9, Amount: 1200})
		assert.ErrorIs(t, err, consts.ErrorInstallmentNotFound)
	})

	t.Run("bank notification failure does not fail payment", func(t *testing.T) {
		f := newFixture(t)
		f.adapter.PaymentFn = func(bank.PaymentNotice) error { return errors.New("bank offline") }
		loan := seedActiveLoan(f, consts.LoanStatusActive, consts.InstallmentPending)

		inst, err := f.svc.PayInstallment(ctx, PaymentRequest{LoanID: loan.ID, Number: 1, Amount: 1200, Reference: "MP-6"})
		require.NoError(t, err)
		assert.Equal(t, consts.InstallmentPaid, inst.Status)
	})
}

func TestLatestLoan(t *testing.T) {
	f := newFixture(t)
	got, err := f.svc.LatestLoan(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.Nil(t, got)
}
