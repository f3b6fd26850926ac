package crossvalidation

import (
	"context"
	"errors"
	"strings"

	"payja-lending/internal/pkg/config"
	"payja-lending/internal/pkg/log_messages"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/pkg/store/models"
	"payja-lending/internal/pkg/utils"
	"payja-lending/internal/service/interfaces"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Field weights. They sum to 100.
const (
	WeightNUIT          = 30.0
	WeightName          = 25.0
	WeightPhone         = 20.0
	WeightBI            = 15.0
	WeightActiveAccount = 10.0
)

const (
	ReasonApproved     = "APPROVED"
	ReasonNotFound     = "NOT_FOUND"
	ReasonNUITMismatch = "NUIT_MISMATCH"
	ReasonLowScore     = "LOW_MATCH_SCORE"
)

// Candidate is the wallet-side identity being verified.
type Candidate struct {
	NUIT        string
	BINumber    string
	Name        string
	PhoneNumber string
	Institution string
}

type Result struct {
	Approved    bool
	MatchScore  float64
	CreditLimit float64
	Reason      string
	Breakdown   map[string]float64
	// Record is the bank-side record the candidate was matched against, if any.
	Record *models.BankRecord
}

type CrossValidationService struct {
	records interfaces.BankRecordRepositoryInterface
	cfg     config.CrossValidationConfig
}

func NewCrossValidationService(records interfaces.BankRecordRepositoryInterface, cfg config.CrossValidationConfig) *CrossValidationService {
	return &CrossValidationService{records: records, cfg: cfg}
}

func (s *CrossValidationService) Validate(ctx context.Context, c Candidate) (*Result, error) {
	record, byNUIT, err := s.lookup(ctx, c)
	if err != nil {
		return nil, err
	}
	if record == nil {
		logger.CtxInfo(ctx, log_messages.CrossValidationNotFound, zap.String("nuit", c.NUIT))
		return &Result{Reason: ReasonNotFound, Breakdown: map[string]float64{}}, nil
	}
	if !byNUIT {
		// found by phone or name only: the tax id does not match any bank record
		return &Result{Reason: ReasonNUITMismatch, Breakdown: map[string]float64{}, Record: record}, nil
	}

	breakdown := s.score(c, record)
	total := decimal.Zero
	for _, v := range breakdown {
		total = total.Add(decimal.NewFromFloat(v))
	}
	score := total.Round(2).InexactFloat64()

	result := &Result{
		MatchScore: score,
		Breakdown:  breakdown,
		Record:     record,
		Reason:     ReasonLowScore,
	}
	if score >= s.cfg.ApprovalThreshold {
		result.Approved = true
		result.Reason = ReasonApproved
		result.CreditLimit = s.CreditCeiling(record)
	}

	logger.CtxInfo(ctx, log_messages.CrossValidationResult,
		zap.String("nuit", c.NUIT),
		zap.String("bank_code", record.BankCode),
		zap.Float64("match_score", score),
		zap.Bool("approved", result.Approved),
		zap.Float64("credit_limit", result.CreditLimit),
	)
	return result, nil
}

// lookup tries the tax id first and falls back to phone or name. The second
// return value reports whether the record was found by tax id.
func (s *CrossValidationService) lookup(ctx context.Context, c Candidate) (*models.BankRecord, bool, error) {
	if c.NUIT != "" {
		record, err := s.records.FindByNUIT(ctx, c.NUIT)
		switch {
		case err == nil:
			return record, true, nil
		case !errors.Is(err, mongo.ErrNoDocuments):
			return nil, false, err
		}
	}

	if c.PhoneNumber == "" && strings.TrimSpace(c.Name) == "" {
		return nil, false, nil
	}
	record, err := s.records.FindByPhoneOrName(ctx, c.PhoneNumber, strings.TrimSpace(c.Name))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return record, false, nil
}

func (s *CrossValidationService) score(c Candidate, r *models.BankRecord) map[string]float64 {
	b := map[string]float64{
		"nuit":          WeightNUIT,
		"name":          0,
		"phone":         0,
		"bi":            0,
		"activeAccount": 0,
	}

	sim := decimal.NewFromFloat(nameSimilarity(c.Name, r.Name))
	b["name"] = sim.Mul(decimal.NewFromFloat(WeightName)).Round(2).InexactFloat64()

	if c.PhoneNumber != "" && utils.SamePhone(c.PhoneNumber, r.PhoneNumber) {
		b["phone"] = WeightPhone
	}
	if bi := strings.TrimSpace(c.BINumber); bi != "" && strings.EqualFold(bi, strings.TrimSpace(r.BINumber)) {
		b["bi"] = WeightBI
	}
	if r.AccountActive {
		b["activeAccount"] = WeightActiveAccount
	}
	return b
}

// CreditCeiling scales the bank's approved limit by the credit-score band and
// the active-debt factor, multiplied together, then floors it at the minimum
// viable amount.
func (s *CrossValidationService) CreditCeiling(r *models.BankRecord) float64 {
	if r.ApprovedLimit <= 0 {
		return 0
	}

	factor := decimal.NewFromInt(1)
	switch {
	case r.CreditScore < s.cfg.LowCreditScore:
		factor = factor.Mul(decimal.NewFromFloat(s.cfg.LowBandFactor))
	case r.CreditScore < s.cfg.MidCreditScore:
		factor = factor.Mul(decimal.NewFromFloat(s.cfg.MidBandFactor))
	}
	if r.ActiveDebt > 0 {
		factor = factor.Mul(decimal.NewFromFloat(s.cfg.ActiveDebtFactor))
	}

	ceiling := decimal.NewFromFloat(r.ApprovedLimit).Mul(factor).Round(2)
	minViable := decimal.NewFromFloat(s.cfg.MinViableAmount)
	if ceiling.LessThan(minViable) {
		ceiling = minViable
	}
	return ceiling.InexactFloat64()
}
