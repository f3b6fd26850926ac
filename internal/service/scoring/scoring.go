package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/downstream/bank"
	"payja-lending/internal/pkg/log_messages"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/pkg/store/models"
	"payja-lending/internal/service/interfaces"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	ApprovalScore   = 60.0
	LowRiskScore    = 80.0
	matchWeight     = 0.6
	factorWeight    = 20.0
	affordableShare = 0.5
)

const (
	ReasonNotEligible    = "BANK_NOT_ELIGIBLE"
	ReasonAboveLimit     = "AMOUNT_ABOVE_LIMIT"
	ReasonScoreTooLow    = "SCORE_TOO_LOW"
	ReasonScoreSatisfied = "SCORE_SATISFIED"
)

type ScoringService struct {
	results interfaces.ScoringResultRepositoryInterface
	banks   bank.Resolver
	now     func() time.Time
}

func NewScoringService(results interfaces.ScoringResultRepositoryInterface, banks bank.Resolver) *ScoringService {
	return &ScoringService{results: results, banks: banks, now: time.Now}
}

// CalculateScoring decides a loan once. A loan that already has a result gets
// the stored one back without calling the bank again.
func (s *ScoringService) CalculateScoring(ctx context.Context, customer *models.Customer, loan *models.Loan) (*models.ScoringResult, error) {
	existing, err := s.results.FindByLoan(ctx, loan.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	bankCode := loan.BankCode
	if bankCode == "" {
		bankCode = customer.BankCode
	}
	adapter, err := s.banks.Adapter(ctx, bankCode)
	if err != nil {
		return nil, err
	}
	eligibility, err := adapter.CheckEligibility(ctx, bank.Identity{
		NUIT:        customer.NUIT,
		BINumber:    customer.BINumber,
		Name:        customer.Name,
		PhoneNumber: customer.PhoneNumber,
		Institution: customer.Institution,
	})
	if err != nil {
		logger.CtxError(ctx, "Bank eligibility check failed", err,
			zap.String("loan_id", loan.ID.Hex()),
			zap.String("bank_code", bankCode),
		)
		return nil, fmt.Errorf("%w: %v", consts.ErrorScoringUnavailable, err)
	}

	result := Evaluate(customer, loan, eligibility)
	result.LoanID = loan.ID
	result.CustomerID = customer.ID
	result.BankCode = bankCode
	result.CreatedAt = s.now().UTC()

	stored, err := s.results.CreateOnce(ctx, result)
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, log_messages.ScoringCompleted,
		zap.String("loan_id", loan.ID.Hex()),
		zap.String("decision", string(stored.Decision)),
		zap.Float64("final_score", stored.FinalScore),
		zap.String("risk", string(stored.Risk)),
	)
	return stored, nil
}

// Evaluate is the pure scoring rule:
//
//	score = matchScore*0.6 + utilization*20 + affordability*20
//
// utilization is the unused share of the credit limit after this loan and
// affordability is how far the installment stays under half the salary.
func Evaluate(customer *models.Customer, loan *models.Loan, e *bank.Eligibility) *models.ScoringResult {
	amount := decimal.NewFromFloat(loan.Amount)

	utilization := decimal.Zero
	if customer.CreditLimit > 0 {
		utilization = clamp01(decimal.NewFromInt(1).Sub(amount.Div(decimal.NewFromFloat(customer.CreditLimit))))
	}

	salary := customer.Salary
	if salary <= 0 {
		salary = e.Salary
	}
	affordability := decimal.NewFromFloat(0.5)
	if salary > 0 {
		limit := decimal.NewFromFloat(salary).Mul(decimal.NewFromFloat(affordableShare))
		affordability = clamp01(decimal.NewFromInt(1).Sub(decimal.NewFromFloat(loan.InstallmentAmount).Div(limit)))
	}

	score := decimal.NewFromFloat(customer.MatchScore).Mul(decimal.NewFromFloat(matchWeight)).
		Add(utilization.Mul(decimal.NewFromFloat(factorWeight))).
		Add(affordability.Mul(decimal.NewFromFloat(factorWeight))).
		Round(2)
	finalScore := score.InexactFloat64()

	ceiling := customer.CreditLimit
	if e.MaxAmount > 0 && e.MaxAmount < ceiling {
		ceiling = e.MaxAmount
	}

	result := &models.ScoringResult{
		FinalScore: finalScore,
		Risk:       RiskBand(finalScore),
		Decision:   consts.DecisionRejected,
		Factors: map[string]float64{
			"matchScore":    customer.MatchScore,
			"utilization":   utilization.Round(4).InexactFloat64(),
			"affordability": affordability.Round(4).InexactFloat64(),
			"bankMaxAmount": e.MaxAmount,
			"creditLimit":   customer.CreditLimit,
		},
	}

	switch {
	case !e.Eligible:
		result.Reason = ReasonNotEligible
	case loan.Amount > ceiling:
		result.Reason = ReasonAboveLimit
	case finalScore < ApprovalScore:
		result.Reason = ReasonScoreTooLow
	default:
		result.Decision = consts.DecisionApproved
		result.Reason = ReasonScoreSatisfied
	}
	return result
}

func RiskBand(score float64) consts.RiskBand {
	switch {
	case score >= LowRiskScore:
		return consts.RiskLow
	case score >= ApprovalScore:
		return consts.RiskMedium
	default:
		return consts.RiskHigh
	}
}

func clamp01(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return d
}
