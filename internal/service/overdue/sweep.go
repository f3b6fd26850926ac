package overdue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/events"
	"payja-lending/internal/pkg/log_messages"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/pkg/store/models"
	"payja-lending/internal/service/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const defaultBatchSize = 200

// StatusTransitioner is satisfied by *loans.LoanGatewayService.
type StatusTransitioner interface {
	TransitionStatus(ctx context.Context, loanID primitive.ObjectID, to consts.LoanStatus) (*models.Loan, error)
}

type Report struct {
	Scanned       int `json:"scanned"`
	MarkedOverdue int `json:"markedOverdue"`
	LoansOverdue  int `json:"loansOverdue"`
}

type SweepService struct {
	installments interfaces.InstallmentRepositoryInterface
	loans        interfaces.LoanRepositoryInterface
	status       StatusTransitioner
	sms          interfaces.SmsSender
	events       interfaces.EventPublisher
	batchSize    int64
	now          func() time.Time
}

func NewSweepService(
	installments interfaces.InstallmentRepositoryInterface,
	loans interfaces.LoanRepositoryInterface,
	status StatusTransitioner,
	sms interfaces.SmsSender,
	eventPublisher interfaces.EventPublisher,
) *SweepService {
	return &SweepService{
		installments: installments,
		loans:        loans,
		status:       status,
		sms:          sms,
		events:       eventPublisher,
		batchSize:    defaultBatchSize,
		now:          time.Now,
	}
}

// Sweep marks every installment whose due date has passed and is still
// PENDING as OVERDUE, and moves its loan from ACTIVE to OVERDUE. Both writes
// are conditional, so concurrent sweeps or a payment landing mid-sweep are
// safe.
func (s *SweepService) Sweep(ctx context.Context) (*Report, error) {
	now := s.now().UTC()
	logger.CtxInfo(ctx, log_messages.OverdueSweepStarted, zap.Time("as_of", now))

	report := &Report{}
	seen := make(map[primitive.ObjectID]*models.Loan)
	for {
		due, err := s.installments.FindDuePending(ctx, now, s.batchSize)
		if err != nil {
			return report, err
		}
		if len(due) == 0 {
			break
		}
		report.Scanned += len(due)

		progressed := false
		for i := range due {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			marked, err := s.markInstallment(ctx, &due[i], seen, report)
			if err != nil {
				return report, err
			}
			progressed = progressed || marked
		}
		if !progressed || int64(len(due)) < s.batchSize {
			break
		}
	}

	logger.CtxInfo(ctx, log_messages.OverdueSweepFinished,
		zap.Int("scanned", report.Scanned),
		zap.Int("installments_overdue", report.MarkedOverdue),
		zap.Int("loans_overdue", report.LoansOverdue),
	)
	return report, nil
}

func (s *SweepService) markInstallment(
	ctx context.Context,
	inst *models.Installment,
	seen map[primitive.ObjectID]*models.Loan,
	report *Report,
) (bool, error) {
	ok, err := s.installments.MarkOverdue(ctx, inst.ID)
	if err != nil {
		return false, err
	}
	if !ok {
		// paid or marked by someone else since the read
		return false, nil
	}
	report.MarkedOverdue++

	loan, cached := seen[inst.LoanID]
	if !cached {
		loan, err = s.loans.FindByID(ctx, inst.LoanID)
		if err != nil {
			logger.CtxError(ctx, "Overdue installment without a readable loan", err,
				zap.String("installment_id", inst.ID.Hex()),
				zap.String("loan_id", inst.LoanID.Hex()),
			)
			return true, nil
		}
		seen[inst.LoanID] = loan
		if s.flagLoan(ctx, loan) {
			report.LoansOverdue++
		}
	}

	s.sms.SendSms(ctx, loan.PhoneNumber,
		fmt.Sprintf(consts.SmsInstallmentOverdue, inst.Number, loan.Reference, inst.Amount),
		consts.SmsCategoryReminder)
	s.events.Publish(ctx, events.LoanEvent{
		Type:        consts.EventInstallmentOverdue,
		LoanID:      loan.ID.Hex(),
		Reference:   loan.Reference,
		CustomerID:  loan.CustomerID.Hex(),
		PhoneNumber: loan.PhoneNumber,
		BankCode:    loan.BankCode,
		Status:      loan.Status,
		Amount:      inst.Amount,
		Details:     map[string]any{"installment": inst.Number, "dueDate": inst.DueDate},
	})
	return true, nil
}

// flagLoan moves an ACTIVE loan to OVERDUE. Any other status is left alone.
func (s *SweepService) flagLoan(ctx context.Context, loan *models.Loan) bool {
	if loan.Status != consts.LoanStatusActive {
		return false
	}
	updated, err := s.status.TransitionStatus(ctx, loan.ID, consts.LoanStatusOverdue)
	switch {
	case err == nil:
		loan.Status = updated.Status
		return true
	case errors.Is(err, consts.ErrorStatusChanged), errors.Is(err, consts.ErrorInvalidStatusTransition):
		logger.CtxInfo(ctx, "Loan moved before it could be flagged overdue", zap.String("loan_id", loan.ID.Hex()))
	default:
		logger.CtxError(ctx, "Failed to flag loan overdue", err, zap.String("loan_id", loan.ID.Hex()))
	}
	return false
}

// Run sweeps on every tick until ctx is done.
func (s *SweepService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				logger.CtxError(ctx, log_messages.OverdueSweepFailed, err)
			}
		}
	}
}
