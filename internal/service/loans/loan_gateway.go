package loans

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"payja-lending/internal/pkg/config"
	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/downstream/bank"
	"payja-lending/internal/pkg/events"
	"payja-lending/internal/pkg/log_messages"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/pkg/store/models"
	"payja-lending/internal/service/interfaces"
	"payja-lending/internal/service/pricing"

	"github.com/bwmarrin/snowflake"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// allowedTransitions is the loan lifecycle. REJECTED and COMPLETED are terminal.
var allowedTransitions = map[consts.LoanStatus][]consts.LoanStatus{
	consts.LoanStatusAnalyzing: {consts.LoanStatusApproved, consts.LoanStatusRejected},
	consts.LoanStatusApproved:  {consts.LoanStatusDisbursed},
	consts.LoanStatusDisbursed: {consts.LoanStatusActive},
	consts.LoanStatusActive:    {consts.LoanStatusOverdue, consts.LoanStatusCompleted},
	consts.LoanStatusOverdue:   {consts.LoanStatusActive, consts.LoanStatusCompleted},
}

func CanTransition(from, to consts.LoanStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Scorer decides a loan. Satisfied by *scoring.ScoringService.
type Scorer interface {
	CalculateScoring(ctx context.Context, customer *models.Customer, loan *models.Loan) (*models.ScoringResult, error)
}

type LoanRequest struct {
	Customer  *models.Customer
	SessionID string
	Amount    float64
	TermCode  string
	Purpose   string
	BankCode  string
}

type PaymentRequest struct {
	LoanID    primitive.ObjectID
	Number    int
	Amount    float64
	Reference string
}

type LoanGatewayService struct {
	loans        interfaces.LoanRepositoryInterface
	installments interfaces.InstallmentRepositoryInterface
	scorer       Scorer
	banks        bank.Resolver
	sms          interfaces.SmsSender
	events       interfaces.EventPublisher
	loanCfg      config.LoanConfig
	commission   config.CommissionConfig
	node         *snowflake.Node
	now          func() time.Time
}

func NewLoanGatewayService(
	loans interfaces.LoanRepositoryInterface,
	installments interfaces.InstallmentRepositoryInterface,
	scorer Scorer,
	banks bank.Resolver,
	sms interfaces.SmsSender,
	eventPublisher interfaces.EventPublisher,
	loanCfg config.LoanConfig,
	commission config.CommissionConfig,
) (*LoanGatewayService, error) {
	node, err := snowflake.NewNode(loanCfg.ReferenceNodeID)
	if err != nil {
		return nil, fmt.Errorf("loan reference generator: %w", err)
	}
	return &LoanGatewayService{
		loans:        loans,
		installments: installments,
		scorer:       scorer,
		banks:        banks,
		sms:          sms,
		events:       eventPublisher,
		loanCfg:      loanCfg,
		commission:   commission,
		node:         node,
		now:          time.Now,
	}, nil
}

func (s *LoanGatewayService) newReference() string {
	return "PJ" + strings.ToUpper(s.node.Generate().Base36())
}

// CreateLoan records the request in ANALYZING. One loan exists per USSD
// session, so a replayed confirmation returns the loan already created.
func (s *LoanGatewayService) CreateLoan(ctx context.Context, req LoanRequest) (*models.Loan, error) {
	if req.SessionID != "" {
		existing, err := s.loans.FindBySessionID(ctx, req.SessionID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
	}

	quote, err := pricing.QuoteFor(req.Amount, req.TermCode)
	if err != nil {
		return nil, err
	}
	term, _ := pricing.LookupTerm(req.TermCode)
	now := s.now().UTC()
	due, _ := pricing.DueDate(req.TermCode, now)

	loan := &models.Loan{
		Reference:         s.newReference(),
		CustomerID:        req.Customer.ID,
		PhoneNumber:       req.Customer.PhoneNumber,
		SessionID:         req.SessionID,
		Amount:            quote.Principal,
		InterestRate:      quote.Rate,
		TermCode:          quote.TermCode,
		TermDays:          term.Days,
		TermMonths:        term.Months,
		InterestAmount:    quote.Interest,
		TotalAmount:       quote.TotalAmount,
		InstallmentCount:  len(quote.Installments),
		InstallmentAmount: quote.InstallmentAmount,
		Purpose:           req.Purpose,
		BankCode:          req.BankCode,
		Channel:           s.loanCfg.Channel,
		Status:            consts.LoanStatusAnalyzing,
		Commission: models.CommissionRates{
			Bank:       s.commission.BankRate,
			Aggregator: s.commission.AggregatorRate,
			Wallet:     s.commission.WalletRate,
		},
		DueDate:   &due,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.loans.Create(ctx, loan); err != nil {
		if mongo.IsDuplicateKeyError(err) && req.SessionID != "" {
			return s.loans.FindBySessionID(ctx, req.SessionID)
		}
		return nil, err
	}

	logger.CtxInfo(ctx, "Loan created",
		zap.String("loan_id", loan.ID.Hex()),
		zap.String("reference", loan.Reference),
		zap.Float64("amount", loan.Amount),
		zap.String("term", loan.TermCode),
	)
	s.sms.SendSms(ctx, loan.PhoneNumber, fmt.Sprintf(consts.SmsLoanReceived, loan.Reference, loan.Amount), consts.SmsCategoryLoan)
	s.publish(ctx, consts.EventLoanCreated, loan, nil)
	return loan, nil
}

// Decide scores an ANALYZING loan and moves it to APPROVED or REJECTED.
// A loan that has already left ANALYZING is returned unchanged.
func (s *LoanGatewayService) Decide(ctx context.Context, customer *models.Customer, loan *models.Loan) (*models.Loan, *models.ScoringResult, error) {
	result, err := s.scorer.CalculateScoring(ctx, customer, loan)
	if err != nil {
		return loan, nil, err
	}
	if loan.Status != consts.LoanStatusAnalyzing {
		return loan, result, nil
	}

	to := consts.LoanStatusRejected
	if result.Decision == consts.DecisionApproved {
		to = consts.LoanStatusApproved
	}
	updated, err := s.TransitionStatus(ctx, loan.ID, to)
	if err != nil {
		if errors.Is(err, consts.ErrorStatusChanged) {
			current, ferr := s.loans.FindByID(ctx, loan.ID)
			if ferr != nil {
				return loan, result, ferr
			}
			return current, result, nil
		}
		return loan, result, err
	}

	if to == consts.LoanStatusApproved {
		s.sms.SendSms(ctx, updated.PhoneNumber, fmt.Sprintf(consts.SmsLoanApproved, updated.Reference, updated.TotalAmount), consts.SmsCategoryLoan)
	} else {
		s.sms.SendSms(ctx, updated.PhoneNumber, fmt.Sprintf(consts.SmsLoanRejected, updated.Reference), consts.SmsCategoryLoan)
	}
	return updated, result, nil
}

// TransitionStatus applies one step of the lifecycle with a conditional write.
// ErrorStatusChanged means another writer moved the loan first.
func (s *LoanGatewayService) TransitionStatus(ctx context.Context, loanID primitive.ObjectID, to consts.LoanStatus) (*models.Loan, error) {
	loan, err := s.loans.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, consts.ErrorLoanNotFound
		}
		return nil, err
	}
	if !CanTransition(loan.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", consts.ErrorInvalidStatusTransition, loan.Status, to)
	}

	now := s.now().UTC()
	extra := bson.M{"updatedAt": now}
	if to == consts.LoanStatusDisbursed {
		extra["disbursedAt"] = now
	}
	ok, err := s.loans.TransitionStatus(ctx, loanID, loan.Status, to, extra)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consts.ErrorStatusChanged
	}

	from := loan.Status
	loan.Status = to
	loan.UpdatedAt = now
	logger.CtxInfo(ctx, "Loan status changed",
		zap.String("loan_id", loanID.Hex()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	s.publish(ctx, eventFor(to), loan, map[string]any{"from": string(from)})
	return loan, nil
}

func eventFor(status consts.LoanStatus) consts.LoanEventType {
	switch status {
	case consts.LoanStatusApproved:
		return consts.EventLoanApproved
	case consts.LoanStatusRejected:
		return consts.EventLoanRejected
	case consts.LoanStatusDisbursed:
		return consts.EventLoanDisbursed
	case consts.LoanStatusActive:
		return consts.EventLoanActivated
	case consts.LoanStatusOverdue:
		return consts.EventLoanOverdue
	default:
		return consts.EventLoanCompleted
	}
}

// PayInstallment settles one installment, tells the originating bank, and
// closes the loan once nothing is left unpaid.
func (s *LoanGatewayService) PayInstallment(ctx context.Context, req PaymentRequest) (*models.Installment, error) {
	loan, err := s.loans.FindByID(ctx, req.LoanID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, consts.ErrorLoanNotFound
		}
		return nil, err
	}

	inst, err := s.installments.FindByLoanAndNumber(ctx, req.LoanID, req.Number)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, consts.ErrorInstallmentNotFound
		}
		return nil, err
	}
	if inst.Status == consts.InstallmentPaid {
		return nil, consts.ErrorInstallmentAlreadyPaid
	}
	if req.Amount+0.005 < inst.Amount {
		return nil, consts.ErrorInstallmentAmountMismatch
	}

	now := s.now().UTC()
	paid, err := s.installments.MarkPaid(ctx, inst.ID, req.Reference, now)
	if err != nil {
		return nil, err
	}
	if !paid {
		return nil, consts.ErrorInstallmentAlreadyPaid
	}
	inst.Status = consts.InstallmentPaid
	inst.PaymentRef = req.Reference
	inst.PaidAt = &now

	s.notifyBank(ctx, loan, inst)
	s.sms.SendSms(ctx, loan.PhoneNumber, fmt.Sprintf(consts.SmsPaymentReceived, inst.Amount, inst.Number, loan.Reference), consts.SmsCategoryPayment)
	s.publish(ctx, consts.EventInstallmentPaid, loan, map[string]any{"installment": inst.Number, "paymentRef": req.Reference})

	if err := s.settleLoanStatus(ctx, loan); err != nil {
		logger.CtxError(ctx, "Failed to update loan status after payment", err, zap.String("loan_id", loan.ID.Hex()))
	}
	return inst, nil
}

// settleLoanStatus completes a fully paid loan, and returns an OVERDUE loan to
// ACTIVE once no overdue installment remains.
func (s *LoanGatewayService) settleLoanStatus(ctx context.Context, loan *models.Loan) error {
	unpaid, err := s.installments.CountUnpaid(ctx, loan.ID)
	if err != nil {
		return err
	}
	if unpaid == 0 {
		if _, err := s.TransitionStatus(ctx, loan.ID, consts.LoanStatusCompleted); err != nil {
			return err
		}
		s.sms.SendSms(ctx, loan.PhoneNumber, fmt.Sprintf(consts.SmsLoanCompleted, loan.Reference), consts.SmsCategoryPayment)
		return nil
	}

	if loan.Status != consts.LoanStatusOverdue {
		return nil
	}
	overdue, err := s.installments.CountOverdue(ctx, loan.ID)
	if err != nil || overdue > 0 {
		return err
	}
	_, err = s.TransitionStatus(ctx, loan.ID, consts.LoanStatusActive)
	return err
}

func (s *LoanGatewayService) notifyBank(ctx context.Context, loan *models.Loan, inst *models.Installment) {
	adapter, err := s.banks.Adapter(ctx, loan.BankCode)
	if err == nil {
		err = adapter.NotifyPayment(ctx, bank.PaymentNotice{
			LoanReference:     loan.Reference,
			InstallmentNumber: inst.Number,
			Amount:            inst.Amount,
			PaymentReference:  inst.PaymentRef,
			PaidAt:            *inst.PaidAt,
		})
	}
	if err != nil {
		// the payment is ours to record; the bank catches up from the ledger export
		logger.CtxError(ctx, log_messages.BankNotifyFailure, err,
			zap.String("loan_id", loan.ID.Hex()),
			zap.String("bank_code", loan.BankCode),
			zap.Int("installment", inst.Number),
		)
	}
}

func (s *LoanGatewayService) LatestLoan(ctx context.Context, customerID primitive.ObjectID) (*models.Loan, error) {
	loan, err := s.loans.FindLatestByCustomer(ctx, customerID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	return loan, err
}

func (s *LoanGatewayService) HasOpenLoan(ctx context.Context, customerID primitive.ObjectID) (bool, error) {
	return s.loans.HasOpenLoan(ctx, customerID)
}

func (s *LoanGatewayService) publish(ctx context.Context, t consts.LoanEventType, loan *models.Loan, details map[string]any) {
	s.events.Publish(ctx, events.LoanEvent{
		Type:        t,
		LoanID:      loan.ID.Hex(),
		Reference:   loan.Reference,
		CustomerID:  loan.CustomerID.Hex(),
		PhoneNumber: loan.PhoneNumber,
		BankCode:    loan.BankCode,
		Status:      loan.Status,
		Amount:      loan.Amount,
		Details:     details,
	})
}
